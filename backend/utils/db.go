package utils

import (
	"fmt"

	"atlasfreight/backend/config"
	"atlasfreight/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := MigrateDB(db); err != nil {
		return nil, err
	}
	return db, nil
}

func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserSession{},
		&models.TrainingModule{},
		&models.Lesson{},
		&models.Question{},
		&models.Choice{},
		&models.LessonProgress{},
		&models.ModuleAttempt{},
		&models.ModuleActivity{},
		&models.ContactSubmission{},
	)
}
