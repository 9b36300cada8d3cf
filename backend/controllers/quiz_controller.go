package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"atlasfreight/backend/config"
	"atlasfreight/backend/middleware"
	"atlasfreight/backend/models"
	"atlasfreight/backend/training"
	"atlasfreight/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Logger *log.Logger
}

func NewQuizController(db *gorm.DB, cfg *config.Config, logger *log.Logger) *QuizController {
	return &QuizController{DB: db, Cfg: cfg, Logger: logger}
}

// GetLesson returns the lesson content and its quiz questions with correct
// answers stripped. Locked lessons return 403 without leaking any content.
func (qc *QuizController) GetLesson(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	lesson, questions, err := qc.loadLesson(uint(lessonID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	unlocked, err := qc.lessonUnlocked(userID, lesson)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if !unlocked {
		return utils.Forbidden(c, "Lesson locked")
	}

	questionList := make([]fiber.Map, 0, len(questions))
	for _, q := range questions {
		entry := fiber.Map{
			"id":             q.ID,
			"prompt":         q.Prompt,
			"sequence_order": q.SequenceOrder,
		}
		if q.HasChoices() {
			choices := make([]fiber.Map, 0, len(q.Choices))
			for _, choice := range q.Choices {
				choices = append(choices, fiber.Map{
					"id":   choice.ID,
					"text": choice.Text,
				})
			}
			entry["choices"] = choices
		} else {
			var options []string
			if err := json.Unmarshal([]byte(q.Options), &options); err != nil {
				qc.Logger.Printf("question %d has malformed options: %v", q.ID, err)
				options = []string{}
			}
			entry["options"] = options
		}
		questionList = append(questionList, entry)
	}

	return c.JSON(fiber.Map{
		"lesson": fiber.Map{
			"id":             lesson.ID,
			"module_id":      lesson.ModuleID,
			"title":          lesson.Title,
			"content":        lesson.Content,
			"video_url":      lesson.VideoURL,
			"sequence_order": lesson.SequenceOrder,
		},
		"questions": questionList,
	})
}

// SubmitQuiz grades a submission, upserts the lesson progress record and
// appends a module attempt. The attempt insert is best-effort; a failed
// progress upsert is reported so the client can flag the result as unsaved.
func (qc *QuizController) SubmitQuiz(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	type answerInput struct {
		QuestionID  uint `json:"question_id"`
		ChoiceID    uint `json:"choice_id"`
		OptionIndex *int `json:"option_index"`
	}
	var input struct {
		Answers []answerInput `json:"answers"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	lesson, questions, err := qc.loadLesson(uint(lessonID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	unlocked, err := qc.lessonUnlocked(userID, lesson)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if !unlocked {
		return utils.Forbidden(c, "Lesson locked")
	}

	if len(questions) == 0 {
		return utils.BadRequest(c, "Lesson has no quiz")
	}

	var module models.TrainingModule
	if err := qc.DB.First(&module, lesson.ModuleID).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	answers := make(map[uint]training.Answer, len(input.Answers))
	for _, a := range input.Answers {
		answers[a.QuestionID] = training.Answer{
			ChoiceID:    a.ChoiceID,
			OptionIndex: a.OptionIndex,
		}
	}

	result, err := training.ScoreQuiz(questions, answers, module.PassingScore)
	if err != nil {
		return utils.BadRequest(c, "Lesson has no quiz")
	}

	record := models.LessonProgress{
		UserID:      userID,
		LessonID:    lesson.ID,
		Passed:      result.Passed,
		Score:       result.Score,
		CompletedAt: time.Now(),
	}
	saveErr := qc.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"passed", "score", "completed_at", "updated_at"}),
	}).Create(&record).Error

	// append-only attempt log, best-effort
	attempt := models.ModuleAttempt{
		UserID:   userID,
		ModuleID: lesson.ModuleID,
		Score:    result.Score,
		Passed:   result.Passed,
	}
	if err := qc.DB.Create(&attempt).Error; err != nil {
		qc.Logger.Printf("attempt log insert failed for user %d module %d: %v", userID, lesson.ModuleID, err)
	}

	if saveErr != nil {
		qc.Logger.Printf("progress upsert failed for user %d lesson %d: %v", userID, lesson.ID, saveErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  "Could not save progress",
			"result": result,
			"saved":  false,
		})
	}

	return c.JSON(fiber.Map{
		"result": result,
		"saved":  true,
	})
}

func (qc *QuizController) loadLesson(lessonID uint) (models.Lesson, []models.Question, error) {
	var lesson models.Lesson
	err := qc.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("sequence_order")
		}).
		Preload("Questions.Choices").
		Where("id = ? AND is_active = ?", lessonID, true).
		First(&lesson).Error
	if err != nil {
		return models.Lesson{}, nil, err
	}
	return lesson, lesson.Questions, nil
}

// lessonUnlocked re-runs the unlock chain server-side so a crafted request
// cannot reach a locked lesson.
func (qc *QuizController) lessonUnlocked(userID uint, lesson models.Lesson) (bool, error) {
	lessons, err := activeLessons(qc.DB, lesson.ModuleID)
	if err != nil {
		return false, err
	}
	progress, err := progressForLessons(qc.DB, userID, lessons)
	if err != nil {
		return false, err
	}
	return training.UnlockedLessons(lessons, progress)[lesson.ID], nil
}
