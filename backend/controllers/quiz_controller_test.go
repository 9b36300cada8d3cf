package controllers_test

import (
	"strconv"
	"testing"

	"atlasfreight/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type seededModule struct {
	module       models.TrainingModule
	lessonOne    models.Lesson
	lessonTwo    models.Lesson
	questionOne  models.Question // embedded options, correct index 1
	questionTwo  models.Question // embedded options, correct index 0
	choiceQ      models.Question // choice rows, on lesson two
	correctChoice models.Choice
}

// seedTrainingModule creates one module with two lessons: lesson one carries
// two embedded-option questions, lesson two one choice-row question.
func seedTrainingModule(t *testing.T, db *gorm.DB) seededModule {
	t.Helper()

	s := seededModule{}

	s.module = models.TrainingModule{Slug: "safety-basics", Title: "Safety Basics", SequenceOrder: 1, IsActive: true}
	require.NoError(t, db.Create(&s.module).Error)

	s.lessonOne = models.Lesson{ModuleID: s.module.ID, Title: "Hours of Service", SequenceOrder: 1, IsActive: true}
	require.NoError(t, db.Create(&s.lessonOne).Error)
	s.lessonTwo = models.Lesson{ModuleID: s.module.ID, Title: "Load Securement", SequenceOrder: 2, IsActive: true}
	require.NoError(t, db.Create(&s.lessonTwo).Error)

	s.questionOne = models.Question{
		LessonID: s.lessonOne.ID, Prompt: "Maximum driving hours per shift?",
		SequenceOrder: 1, IsActive: true,
		Options: `["8","11","14"]`, CorrectIndex: 1,
	}
	require.NoError(t, db.Create(&s.questionOne).Error)

	s.questionTwo = models.Question{
		LessonID: s.lessonOne.ID, Prompt: "Logbook entries are mandatory?",
		SequenceOrder: 2, IsActive: true,
		Options: `["Yes","No"]`, CorrectIndex: 0,
	}
	require.NoError(t, db.Create(&s.questionTwo).Error)

	s.choiceQ = models.Question{
		LessonID: s.lessonTwo.ID, Prompt: "Minimum tie-downs for a 12ft load?",
		SequenceOrder: 1, IsActive: true,
	}
	require.NoError(t, db.Create(&s.choiceQ).Error)

	wrong := models.Choice{QuestionID: s.choiceQ.ID, Text: "One", IsCorrect: false}
	require.NoError(t, db.Create(&wrong).Error)
	s.correctChoice = models.Choice{QuestionID: s.choiceQ.ID, Text: "Two", IsCorrect: true}
	require.NoError(t, db.Create(&s.correctChoice).Error)

	return s
}

func lessonPath(lesson models.Lesson) string {
	return "/api/training/lessons/" + strconv.FormatUint(uint64(lesson.ID), 10)
}

func TestLessonLockedUntilPredecessorPassed(t *testing.T) {
	app, db := newTestApp(t)
	token := registerUser(t, app, "Agent", "agent@atlasfreight.com")
	s := seedTrainingModule(t, db)

	resp := doJSON(t, app, "GET", lessonPath(s.lessonTwo), token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "POST", lessonPath(s.lessonTwo)+"/submit", token, fiber.Map{
		"answers": []fiber.Map{{"question_id": s.choiceQ.ID, "choice_id": s.correctChoice.ID}},
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestLessonQuestionsAreSanitized(t *testing.T) {
	app, db := newTestApp(t)
	token := registerUser(t, app, "Agent", "agent@atlasfreight.com")
	s := seedTrainingModule(t, db)

	resp := doJSON(t, app, "GET", lessonPath(s.lessonOne), token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := decodeBody(t, resp)
	questions := result["questions"].([]interface{})
	assert.Len(t, questions, 2)

	for _, raw := range questions {
		question := raw.(map[string]interface{})
		assert.NotContains(t, question, "correct_index")
		assert.NotContains(t, question, "CorrectIndex")
		if choices, ok := question["choices"]; ok {
			for _, c := range choices.([]interface{}) {
				assert.NotContains(t, c.(map[string]interface{}), "is_correct")
			}
		}
	}
}

func TestSubmitQuizPassUnlocksNextLesson(t *testing.T) {
	app, db := newTestApp(t)
	token := registerUser(t, app, "Agent", "agent@atlasfreight.com")
	s := seedTrainingModule(t, db)

	resp := doJSON(t, app, "POST", lessonPath(s.lessonOne)+"/submit", token, fiber.Map{
		"answers": []fiber.Map{
			{"question_id": s.questionOne.ID, "option_index": 1},
			{"question_id": s.questionTwo.ID, "option_index": 0},
		},
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := decodeBody(t, resp)
	assert.Equal(t, true, result["saved"])
	score := result["result"].(map[string]interface{})
	assert.Equal(t, float64(100), score["score"])
	assert.Equal(t, true, score["passed"])

	// lesson two now opens
	resp = doJSON(t, app, "GET", lessonPath(s.lessonTwo), token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSubmitQuizFailKeepsNextLessonLocked(t *testing.T) {
	app, db := newTestApp(t)
	token := registerUser(t, app, "Agent", "agent@atlasfreight.com")
	s := seedTrainingModule(t, db)

	resp := doJSON(t, app, "POST", lessonPath(s.lessonOne)+"/submit", token, fiber.Map{
		"answers": []fiber.Map{
			{"question_id": s.questionOne.ID, "option_index": 1},
			{"question_id": s.questionTwo.ID, "option_index": 1}, // wrong
		},
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := decodeBody(t, resp)
	score := result["result"].(map[string]interface{})
	assert.Equal(t, float64(50), score["score"])
	assert.Equal(t, false, score["passed"])

	// a failed attempt still writes a progress record
	var count int64
	db.Model(&models.LessonProgress{}).Count(&count)
	assert.Equal(t, int64(1), count)

	resp = doJSON(t, app, "GET", lessonPath(s.lessonTwo), token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSubmitQuizUpsertsProgress(t *testing.T) {
	app, db := newTestApp(t)
	token := registerUser(t, app, "Agent", "agent@atlasfreight.com")
	s := seedTrainingModule(t, db)

	payload := fiber.Map{
		"answers": []fiber.Map{
			{"question_id": s.questionOne.ID, "option_index": 1},
			{"question_id": s.questionTwo.ID, "option_index": 0},
		},
	}

	resp := doJSON(t, app, "POST", lessonPath(s.lessonOne)+"/submit", token, payload)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var first models.LessonProgress
	require.NoError(t, db.Where("lesson_id = ?", s.lessonOne.ID).First(&first).Error)

	resp = doJSON(t, app, "POST", lessonPath(s.lessonOne)+"/submit", token, payload)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// still exactly one record, with a refreshed completed-at
	var count int64
	db.Model(&models.LessonProgress{}).Where("lesson_id = ?", s.lessonOne.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	var second models.LessonProgress
	require.NoError(t, db.Where("lesson_id = ?", s.lessonOne.ID).First(&second).Error)
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.CompletedAt.Before(first.CompletedAt))

	// every submission appends to the attempt log
	var attempts int64
	db.Model(&models.ModuleAttempt{}).Where("module_id = ?", s.module.ID).Count(&attempts)
	assert.Equal(t, int64(2), attempts)
}

func TestSubmitQuizChoiceVariant(t *testing.T) {
	app, db := newTestApp(t)
	token := registerUser(t, app, "Agent", "agent@atlasfreight.com")
	s := seedTrainingModule(t, db)

	// pass lesson one first
	doJSON(t, app, "POST", lessonPath(s.lessonOne)+"/submit", token, fiber.Map{
		"answers": []fiber.Map{
			{"question_id": s.questionOne.ID, "option_index": 1},
			{"question_id": s.questionTwo.ID, "option_index": 0},
		},
	})

	resp := doJSON(t, app, "POST", lessonPath(s.lessonTwo)+"/submit", token, fiber.Map{
		"answers": []fiber.Map{{"question_id": s.choiceQ.ID, "choice_id": s.correctChoice.ID}},
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := decodeBody(t, resp)
	score := result["result"].(map[string]interface{})
	assert.Equal(t, float64(100), score["score"])
	assert.Equal(t, true, score["passed"])
}

func TestSubmitQuizUnknownLesson(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerUser(t, app, "Agent", "agent@atlasfreight.com")

	resp := doJSON(t, app, "POST", "/api/training/lessons/9999/submit", token, fiber.Map{
		"answers": []fiber.Map{},
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSubmitQuizLessonWithoutQuestions(t *testing.T) {
	app, db := newTestApp(t)
	token := registerUser(t, app, "Agent", "agent@atlasfreight.com")

	module := models.TrainingModule{Slug: "orientation", Title: "Orientation", SequenceOrder: 1, IsActive: true}
	require.NoError(t, db.Create(&module).Error)
	lesson := models.Lesson{ModuleID: module.ID, Title: "Welcome", SequenceOrder: 1, IsActive: true}
	require.NoError(t, db.Create(&lesson).Error)

	resp := doJSON(t, app, "POST", lessonPath(lesson)+"/submit", token, fiber.Map{
		"answers": []fiber.Map{},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
