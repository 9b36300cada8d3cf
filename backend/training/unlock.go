package training

import "atlasfreight/backend/models"

// UnlockedLessons computes which of a module's lessons the user may open.
// Lessons must already be the module's active lessons in sequence order.
// The first lesson is always unlocked; each later lesson unlocks only when
// the immediately preceding lesson has a passed progress record.
func UnlockedLessons(lessons []models.Lesson, progress map[uint]models.LessonProgress) map[uint]bool {
	unlocked := make(map[uint]bool, len(lessons))
	for i, lesson := range lessons {
		if i == 0 {
			unlocked[lesson.ID] = true
			continue
		}
		prev, ok := progress[lessons[i-1].ID]
		if ok && prev.Passed {
			unlocked[lesson.ID] = true
		}
	}
	return unlocked
}
