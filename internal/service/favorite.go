package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Hitesh-Saha/FeastAI/internal/models"
)

// ToggleFavorite flips the (user, recipe) favorite relationship and reports
// the new state. Removal is a conditional DELETE and creation an insert that
// ignores a concurrent duplicate, so repeated or racing toggles never leave
// two rows behind.
func (s *RecipeService) ToggleFavorite(ctx context.Context, userID, recipeID string) (bool, error) {
	if userID == "" {
		return false, newError(KindUnauthenticated, msgAuthRequired, nil)
	}

	var favorited bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := findRecipe(tx, recipeID)
		if err != nil {
			return err
		}
		if !recipe.VisibleTo(userID) {
			return newError(KindNotFound, msgRecipeNotFound, nil)
		}

		res := tx.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&models.Favorite{})
		if res.Error != nil {
			return fmt.Errorf("failed to remove favorite: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			favorited = false
			return nil
		}

		fav := models.Favorite{UserID: userID, RecipeID: recipeID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fav).Error; err != nil {
			return fmt.Errorf("failed to add favorite: %w", err)
		}
		favorited = true
		return nil
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return false, err
		}
		return false, s.internal("failed to toggle favorite", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":   userID,
		"recipe_id": recipeID,
		"favorited": favorited,
	}).Info("favorite toggled")
	return favorited, nil
}

// FavoriteStatus reports whether userID has favorited recipeID. Anonymous
// callers never have favorites.
func (s *RecipeService) FavoriteStatus(ctx context.Context, userID, recipeID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, s.internal("failed to load favorite status", err)
	}
	return count > 0, nil
}

// ListFavorites returns the recipes userID has favorited, most recently
// favorited first. Recipes that have since gone private are left out.
func (s *RecipeService) ListFavorites(ctx context.Context, userID string) ([]models.Recipe, error) {
	if userID == "" {
		return nil, newError(KindUnauthenticated, msgAuthRequired, nil)
	}

	var recipes []models.Recipe
	if err := s.db.WithContext(ctx).
		Preload("Reviews", orderReviews).
		Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
		Where("favorites.user_id = ?", userID).
		Where("(recipes.is_public = ? OR recipes.owner_id = ?)", true, userID).
		Order("favorites.created_at DESC").
		Find(&recipes).Error; err != nil {
		return nil, s.internal("failed to list favorites", err)
	}
	for i := range recipes {
		recipes[i].IsFavorite = true
	}
	return recipes, nil
}
