package controllers

import (
	"atlasfreight/backend/config"
	"atlasfreight/backend/middleware"
	"atlasfreight/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DashboardController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewDashboardController(db *gorm.DB, cfg *config.Config) *DashboardController {
	return &DashboardController{DB: db, Cfg: cfg}
}

// GetDashboard returns the learner rollup: every active module's summary
// plus overall totals.
func (dc *DashboardController) GetDashboard(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	summaries, err := buildModuleSummaries(dc.DB, userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	completed := 0
	totalSeconds := 0
	for _, summary := range summaries {
		if summary.Completed {
			completed++
		}
		totalSeconds += summary.TimeSpentSeconds
	}

	return c.JSON(fiber.Map{
		"modules": summaries,
		"totals": fiber.Map{
			"modules_total":      len(summaries),
			"modules_completed":  completed,
			"time_spent_seconds": totalSeconds,
		},
	})
}
