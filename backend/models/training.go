package models

import "gorm.io/gorm"

type TrainingModule struct {
	gorm.Model
	Slug          string `gorm:"uniqueIndex;not null"`
	Title         string
	Description   string
	SequenceOrder int
	PassingScore  int  `gorm:"default:0"` // 0 means use the global default
	IsActive      bool `gorm:"default:true"`
	Lessons       []Lesson `gorm:"foreignKey:ModuleID"`
}

type Lesson struct {
	gorm.Model
	ModuleID      uint `gorm:"index"`
	Title         string
	Content       string
	VideoURL      string
	SequenceOrder int
	IsActive      bool `gorm:"default:true"`
	Questions     []Question
}

// Question supports two schema variants behind one type: questions with
// discrete Choice rows score by choice id, questions with an embedded
// Options JSON array score by option index. HasChoices tells them apart.
type Question struct {
	gorm.Model
	LessonID      uint `gorm:"index"`
	Prompt        string
	SequenceOrder int
	IsActive      bool     `gorm:"default:true"`
	Options       string   // JSON array of option texts (embedded variant)
	CorrectIndex  int      // embedded variant only
	Choices       []Choice // choice-row variant only
}

type Choice struct {
	gorm.Model
	QuestionID uint `gorm:"index"`
	Text       string
	IsCorrect  bool
}

func (q Question) HasChoices() bool {
	return len(q.Choices) > 0
}
