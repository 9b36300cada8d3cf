package training

import (
	"errors"
	"math"

	"atlasfreight/backend/models"
)

// DefaultPassingScore applies when a module carries no override.
const DefaultPassingScore = 80

var ErrNoQuestions = errors.New("quiz has no questions")

// Answer is one submitted answer. ChoiceID is read for choice-row questions,
// OptionIndex for embedded-option questions; the other field is ignored.
type Answer struct {
	ChoiceID    uint `json:"choice_id"`
	OptionIndex *int `json:"option_index"`
}

type Result struct {
	Total   int  `json:"total"`
	Correct int  `json:"correct"`
	Score   int  `json:"score"`
	Passed  bool `json:"passed"`
}

// ScoreQuiz grades a full question set against the submitted answers.
// Unanswered questions count as incorrect. The score is
// round(100 * correct / total), half up; a score equal to the threshold
// passes. passingScore <= 0 selects the global default.
func ScoreQuiz(questions []models.Question, answers map[uint]Answer, passingScore int) (Result, error) {
	if len(questions) == 0 {
		return Result{}, ErrNoQuestions
	}
	if passingScore <= 0 {
		passingScore = DefaultPassingScore
	}

	correct := 0
	for _, q := range questions {
		answer, ok := answers[q.ID]
		if !ok {
			continue
		}
		if answeredCorrectly(q, answer) {
			correct++
		}
	}

	score := int(math.Round(100 * float64(correct) / float64(len(questions))))
	return Result{
		Total:   len(questions),
		Correct: correct,
		Score:   score,
		Passed:  score >= passingScore,
	}, nil
}

func answeredCorrectly(q models.Question, a Answer) bool {
	if q.HasChoices() {
		for _, choice := range q.Choices {
			if choice.IsCorrect {
				return a.ChoiceID == choice.ID
			}
		}
		return false
	}
	return a.OptionIndex != nil && *a.OptionIndex == q.CorrectIndex
}
