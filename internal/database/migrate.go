package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Hitesh-Saha/FeastAI/internal/models"
)

// Migrate creates or updates the tables, including the unique indexes that
// keep one review per (recipe, user) and one favorite per (user, recipe).
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Recipe{},
		&models.Review{},
		&models.Favorite{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
