package routes

import (
	"log"

	"atlasfreight/backend/config"
	"atlasfreight/backend/controllers"
	"atlasfreight/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *log.Logger) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	oauthController := controllers.NewOAuthController(db, cfg, logger)
	app.Get("/api/auth/oauth/login", oauthController.Login)
	app.Get("/api/auth/oauth/callback", oauthController.Callback)

	// Contact form - public, independently deployable handler
	contactController := controllers.NewContactController(db)
	app.Post("/api/contact", contactController.Submit)
	app.Options("/api/contact", contactController.Submit)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(db, cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	app.Get("/api/auth/session", authMiddleware, authController.Session)
	app.Post("/api/auth/signout", authMiddleware, authController.SignOut)

	// Training routes
	modulesController := controllers.NewModulesController(db, cfg)
	quizController := controllers.NewQuizController(db, cfg, logger)
	trainingGroup := app.Group("/api/training", authMiddleware)
	trainingGroup.Get("/modules", modulesController.ListModules)
	trainingGroup.Get("/modules/:slug", modulesController.GetModule)
	trainingGroup.Post("/modules/:slug/activity", modulesController.RecordActivity)
	trainingGroup.Get("/lessons/:id", quizController.GetLesson)
	trainingGroup.Post("/lessons/:id/submit", quizController.SubmitQuiz)

	// Dashboard
	dashboardController := controllers.NewDashboardController(db, cfg)
	app.Get("/api/dashboard", authMiddleware, dashboardController.GetDashboard)

	// Admin routes
	adminController := controllers.NewAdminController(db, cfg)
	app.Get("/api/admin/check", authMiddleware, adminController.CheckAdmin)
	app.Get("/api/admin/report", authMiddleware, adminMiddleware, adminController.GetReport)
}
