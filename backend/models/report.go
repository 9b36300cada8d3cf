package models

import "time"

// AdminProgressRow is the denormalized row the admin progress report returns,
// one per (user, module). Not a table.
type AdminProgressRow struct {
	UserID                uint       `json:"user_id"`
	UserEmail             string     `json:"user_email"`
	ModuleID              uint       `json:"module_id"`
	ModuleSlug            string     `json:"module_slug"`
	ModuleTitle           string     `json:"module_title"`
	ModuleOrder           int        `json:"module_order"`
	StartedAt             *time.Time `json:"started_at"`
	CompletedAt           *time.Time `json:"completed_at"`
	TimeSpentSeconds      int        `json:"time_spent_seconds"`
	LessonsTotal          int        `json:"lessons_total"`
	LessonsPassed         int        `json:"lessons_passed"`
	LastLessonCompletedAt *time.Time `json:"last_lesson_completed_at"`
	Status                string     `json:"status"`
}
