package controllers

import (
	"errors"
	"time"

	"atlasfreight/backend/config"
	"atlasfreight/backend/middleware"
	"atlasfreight/backend/models"
	"atlasfreight/backend/training"
	"atlasfreight/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ModulesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewModulesController(db *gorm.DB, cfg *config.Config) *ModulesController {
	return &ModulesController{DB: db, Cfg: cfg}
}

// ListModules returns the active training modules with the caller's
// per-module rollup.
func (mc *ModulesController) ListModules(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	summaries, err := buildModuleSummaries(mc.DB, userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"modules": summaries})
}

// GetModule returns one module's ordered lessons together with the caller's
// progress and the unlocked set.
func (mc *ModulesController) GetModule(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	module, err := findModuleBySlug(mc.DB, c.Params("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Module not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	lessons, err := activeLessons(mc.DB, module.ID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	progress, err := progressForLessons(mc.DB, userID, lessons)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	unlocked := training.UnlockedLessons(lessons, progress)

	lessonList := make([]fiber.Map, 0, len(lessons))
	for _, lesson := range lessons {
		entry := fiber.Map{
			"id":             lesson.ID,
			"title":          lesson.Title,
			"video_url":      lesson.VideoURL,
			"sequence_order": lesson.SequenceOrder,
			"unlocked":       unlocked[lesson.ID],
		}
		if record, ok := progress[lesson.ID]; ok {
			entry["progress"] = fiber.Map{
				"passed":       record.Passed,
				"score":        record.Score,
				"completed_at": record.CompletedAt,
			}
		}
		lessonList = append(lessonList, entry)
	}

	return c.JSON(fiber.Map{
		"module": fiber.Map{
			"id":             module.ID,
			"slug":           module.Slug,
			"title":          module.Title,
			"description":    module.Description,
			"sequence_order": module.SequenceOrder,
		},
		"lessons": lessonList,
	})
}

// RecordActivity adds client-reported seconds to the module's time counter
// and stamps started-at on the first report.
func (mc *ModulesController) RecordActivity(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Seconds int `json:"seconds"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Seconds <= 0 {
		return utils.BadRequest(c, "Seconds must be positive")
	}

	module, err := findModuleBySlug(mc.DB, c.Params("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Module not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var activity models.ModuleActivity
	err = mc.DB.Where("user_id = ? AND module_id = ?", userID, module.ID).First(&activity).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.InternalServerError(c, "Could not query database")
		}
		activity = models.ModuleActivity{
			UserID:           userID,
			ModuleID:         module.ID,
			StartedAt:        time.Now(),
			TimeSpentSeconds: input.Seconds,
		}
		if err := mc.DB.Create(&activity).Error; err != nil {
			return utils.InternalServerError(c, "Could not save activity")
		}
	} else {
		activity.TimeSpentSeconds += input.Seconds
		if activity.StartedAt.IsZero() {
			activity.StartedAt = time.Now()
		}
		if err := mc.DB.Save(&activity).Error; err != nil {
			return utils.InternalServerError(c, "Could not save activity")
		}
	}

	return c.JSON(fiber.Map{
		"message": "Activity recorded",
		"activity": fiber.Map{
			"started_at":         activity.StartedAt,
			"time_spent_seconds": activity.TimeSpentSeconds,
		},
	})
}

func findModuleBySlug(db *gorm.DB, slug string) (models.TrainingModule, error) {
	var module models.TrainingModule
	err := db.Where("slug = ? AND is_active = ?", slug, true).First(&module).Error
	return module, err
}

func activeLessons(db *gorm.DB, moduleID uint) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := db.Where("module_id = ? AND is_active = ?", moduleID, true).
		Order("sequence_order").
		Find(&lessons).Error
	return lessons, err
}

func progressForLessons(db *gorm.DB, userID uint, lessons []models.Lesson) (map[uint]models.LessonProgress, error) {
	lessonIDs := make([]uint, 0, len(lessons))
	for _, lesson := range lessons {
		lessonIDs = append(lessonIDs, lesson.ID)
	}

	progress := make(map[uint]models.LessonProgress, len(lessonIDs))
	if len(lessonIDs) == 0 {
		return progress, nil
	}

	var records []models.LessonProgress
	if err := db.Where("user_id = ? AND lesson_id IN ?", userID, lessonIDs).Find(&records).Error; err != nil {
		return nil, err
	}
	for _, record := range records {
		progress[record.LessonID] = record
	}
	return progress, nil
}

// buildModuleSummaries assembles the learner rollup for every active module.
func buildModuleSummaries(db *gorm.DB, userID uint) ([]training.ModuleSummary, error) {
	var modules []models.TrainingModule
	if err := db.Where("is_active = ?", true).Order("sequence_order").Find(&modules).Error; err != nil {
		return nil, err
	}

	var activities []models.ModuleActivity
	if err := db.Where("user_id = ?", userID).Find(&activities).Error; err != nil {
		return nil, err
	}
	activityByModule := make(map[uint]models.ModuleActivity, len(activities))
	for _, activity := range activities {
		activityByModule[activity.ModuleID] = activity
	}

	summaries := make([]training.ModuleSummary, 0, len(modules))
	for _, module := range modules {
		lessons, err := activeLessons(db, module.ID)
		if err != nil {
			return nil, err
		}
		progress, err := progressForLessons(db, userID, lessons)
		if err != nil {
			return nil, err
		}

		var activity *models.ModuleActivity
		if a, ok := activityByModule[module.ID]; ok {
			activity = &a
		}
		summaries = append(summaries, training.SummarizeModule(module, lessons, progress, activity))
	}
	return summaries, nil
}
