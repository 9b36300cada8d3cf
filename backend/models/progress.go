package models

import "time"

// LessonProgress holds one row per (user, lesson). A resubmission overwrites
// in place; CompletedAt is stamped on every write, including failed attempts.
type LessonProgress struct {
	ID          uint `gorm:"primarykey"`
	UserID      uint `gorm:"uniqueIndex:idx_user_lesson;not null"`
	LessonID    uint `gorm:"uniqueIndex:idx_user_lesson;not null"`
	Passed      bool
	Score       int // percent 0-100
	CompletedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ModuleAttempt is an append-only log: every quiz submission inserts a row.
type ModuleAttempt struct {
	ID        uint `gorm:"primarykey"`
	UserID    uint `gorm:"index"`
	ModuleID  uint `gorm:"index"`
	Score     int
	Passed    bool
	CreatedAt time.Time
}

// ModuleActivity carries the externally supplied time counter: the client
// reports seconds spent and the server only accumulates them.
type ModuleActivity struct {
	ID               uint `gorm:"primarykey"`
	UserID           uint `gorm:"uniqueIndex:idx_user_module;not null"`
	ModuleID         uint `gorm:"uniqueIndex:idx_user_module;not null"`
	StartedAt        time.Time
	TimeSpentSeconds int `gorm:"default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
