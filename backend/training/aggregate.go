package training

import (
	"sort"
	"strings"
	"time"

	"atlasfreight/backend/models"
)

const (
	StatusCompleted  = "Completed"
	StatusInProgress = "In progress"
	StatusNotStarted = "Not started"
)

// ModuleSummary is the per-module rollup shown on the learner dashboard.
type ModuleSummary struct {
	ModuleID         uint       `json:"module_id"`
	Slug             string     `json:"slug"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	SequenceOrder    int        `json:"sequence_order"`
	LessonsTotal     int        `json:"lessons_total"`
	LessonsPassed    int        `json:"lessons_passed"`
	Completed        bool       `json:"completed"`
	LastScore        int        `json:"last_score"`
	LastAttemptAt    *time.Time `json:"last_attempt_at"`
	TimeSpentSeconds int        `json:"time_spent_seconds"`
	Status           string     `json:"status"`
}

// SummarizeModule rolls up one user's state for one module. lessons must be
// the module's active lessons; activity may be nil when the user never
// reported time for the module.
func SummarizeModule(module models.TrainingModule, lessons []models.Lesson, progress map[uint]models.LessonProgress, activity *models.ModuleActivity) ModuleSummary {
	summary := ModuleSummary{
		ModuleID:      module.ID,
		Slug:          module.Slug,
		Title:         module.Title,
		Description:   module.Description,
		SequenceOrder: module.SequenceOrder,
		LessonsTotal:  len(lessons),
	}

	hasProgress := false
	var latest *models.LessonProgress
	for _, lesson := range lessons {
		record, ok := progress[lesson.ID]
		if !ok {
			continue
		}
		hasProgress = true
		if record.Passed {
			summary.LessonsPassed++
		}
		if latest == nil || record.CompletedAt.After(latest.CompletedAt) {
			r := record
			latest = &r
		}
	}

	if latest != nil {
		summary.LastScore = latest.Score
		at := latest.CompletedAt
		summary.LastAttemptAt = &at
	}

	started := false
	if activity != nil {
		summary.TimeSpentSeconds = activity.TimeSpentSeconds
		started = !activity.StartedAt.IsZero()
	}

	// a module with zero active lessons is never completed
	summary.Completed = summary.LessonsTotal > 0 && summary.LessonsPassed == summary.LessonsTotal
	summary.Status = statusLabel(summary.Completed, hasProgress, summary.TimeSpentSeconds, started)
	return summary
}

func statusLabel(completed, hasProgress bool, timeSpent int, started bool) string {
	switch {
	case completed:
		return StatusCompleted
	case hasProgress || timeSpent > 0 || started:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

// ReportFilter narrows the admin progress report. Query is a free-text match
// against user email and name; ModuleSlug is an exact match when set.
type ReportFilter struct {
	Query      string
	ModuleSlug string
	Limit      int
	Offset     int
}

// BuildAdminReport produces the denormalized admin rows, one per matching
// (user, module) pair, sorted by user email then module order. Limit and
// offset apply after sorting.
func BuildAdminReport(
	users []models.User,
	modules []models.TrainingModule,
	lessonsByModule map[uint][]models.Lesson,
	progressByUser map[uint]map[uint]models.LessonProgress,
	activityByUser map[uint]map[uint]models.ModuleActivity,
	filter ReportFilter,
) []models.AdminProgressRow {
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	rows := make([]models.AdminProgressRow, 0)
	for _, user := range users {
		if query != "" &&
			!strings.Contains(strings.ToLower(user.Email), query) &&
			!strings.Contains(strings.ToLower(user.Name), query) {
			continue
		}
		for _, module := range modules {
			if filter.ModuleSlug != "" && module.Slug != filter.ModuleSlug {
				continue
			}

			var activity *models.ModuleActivity
			if byModule, ok := activityByUser[user.ID]; ok {
				if a, ok := byModule[module.ID]; ok {
					activity = &a
				}
			}
			summary := SummarizeModule(module, lessonsByModule[module.ID], progressByUser[user.ID], activity)

			row := models.AdminProgressRow{
				UserID:                user.ID,
				UserEmail:             user.Email,
				ModuleID:              module.ID,
				ModuleSlug:            module.Slug,
				ModuleTitle:           module.Title,
				ModuleOrder:           module.SequenceOrder,
				TimeSpentSeconds:      summary.TimeSpentSeconds,
				LessonsTotal:          summary.LessonsTotal,
				LessonsPassed:         summary.LessonsPassed,
				LastLessonCompletedAt: summary.LastAttemptAt,
				Status:                summary.Status,
			}
			if activity != nil && !activity.StartedAt.IsZero() {
				at := activity.StartedAt
				row.StartedAt = &at
			}
			if summary.Completed {
				row.CompletedAt = summary.LastAttemptAt
			}
			rows = append(rows, row)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].UserEmail != rows[j].UserEmail {
			return rows[i].UserEmail < rows[j].UserEmail
		}
		return rows[i].ModuleOrder < rows[j].ModuleOrder
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(rows) {
			return []models.AdminProgressRow{}
		}
		rows = rows[filter.Offset:]
	}
	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}
	return rows
}
