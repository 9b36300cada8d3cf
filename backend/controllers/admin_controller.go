package controllers

import (
	"errors"
	"strconv"

	"atlasfreight/backend/config"
	"atlasfreight/backend/middleware"
	"atlasfreight/backend/models"
	"atlasfreight/backend/training"
	"atlasfreight/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const defaultReportLimit = 50

type AdminController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAdminController(db *gorm.DB, cfg *config.Config) *AdminController {
	return &AdminController{DB: db, Cfg: cfg}
}

// CheckAdmin reports whether the caller holds the admin role. Unlike the
// report route it answers non-admins too, so the UI can gate itself.
func (ac *AdminController) CheckAdmin(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := ac.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Unauthorized")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"is_admin": user.Role == "admin"})
}

// GetReport returns the denormalized progress report across all users,
// filtered by free-text query and optional module slug.
func (ac *AdminController) GetReport(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultReportLimit)))
	if err != nil || limit <= 0 {
		limit = defaultReportLimit
	}
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	var users []models.User
	if err := ac.DB.Order("email").Find(&users).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var modules []models.TrainingModule
	if err := ac.DB.Where("is_active = ?", true).Order("sequence_order").Find(&modules).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	lessonsByModule := make(map[uint][]models.Lesson, len(modules))
	for _, module := range modules {
		lessons, err := activeLessons(ac.DB, module.ID)
		if err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}
		lessonsByModule[module.ID] = lessons
	}

	var records []models.LessonProgress
	if err := ac.DB.Find(&records).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	progressByUser := make(map[uint]map[uint]models.LessonProgress)
	for _, record := range records {
		if progressByUser[record.UserID] == nil {
			progressByUser[record.UserID] = make(map[uint]models.LessonProgress)
		}
		progressByUser[record.UserID][record.LessonID] = record
	}

	var activities []models.ModuleActivity
	if err := ac.DB.Find(&activities).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	activityByUser := make(map[uint]map[uint]models.ModuleActivity)
	for _, activity := range activities {
		if activityByUser[activity.UserID] == nil {
			activityByUser[activity.UserID] = make(map[uint]models.ModuleActivity)
		}
		activityByUser[activity.UserID][activity.ModuleID] = activity
	}

	rows := training.BuildAdminReport(users, modules, lessonsByModule, progressByUser, activityByUser, training.ReportFilter{
		Query:      c.Query("q"),
		ModuleSlug: c.Query("module"),
		Limit:      limit,
		Offset:     offset,
	})

	return c.JSON(fiber.Map{
		"report": rows,
		"limit":  limit,
		"offset": offset,
	})
}
