package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Hitesh-Saha/FeastAI/internal/models"
	"github.com/Hitesh-Saha/FeastAI/internal/schema"
)

// RatingRequest is a rating submission.
type RatingRequest struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// RateRecipe records userID's rating of recipeID, replacing any earlier
// rating by the same user, and recomputes the recipe's average from the
// stored reviews. It returns the updated recipe.
func (s *RecipeService) RateRecipe(ctx context.Context, recipeID, userID string, req RatingRequest) (*models.Recipe, error) {
	if userID == "" {
		return nil, newError(KindUnauthenticated, msgAuthRequired, nil)
	}
	req.Comment = strings.TrimSpace(req.Comment)
	if err := schema.Struct(req); err != nil {
		return nil, validationError("Invalid rating", err)
	}

	var average float64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Raters of one recipe queue on its row so each average sees every
		// committed review.
		recipe, err := findRecipe(tx.Clauses(clause.Locking{Strength: "UPDATE"}), recipeID)
		if err != nil {
			return err
		}
		if !recipe.VisibleTo(userID) {
			return newError(KindNotFound, msgRecipeNotFound, nil)
		}

		review := models.Review{
			RecipeID:  recipeID,
			UserID:    userID,
			Rating:    req.Rating,
			Comment:   req.Comment,
			CreatedAt: s.now(),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recipe_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "created_at"}),
		}).Create(&review).Error; err != nil {
			return fmt.Errorf("failed to save review: %w", err)
		}

		if err := tx.Model(&models.Review{}).
			Where("recipe_id = ?", recipeID).
			Select("COALESCE(AVG(rating), 0)").
			Scan(&average).Error; err != nil {
			return fmt.Errorf("failed to compute average rating: %w", err)
		}

		if err := tx.Model(&models.Recipe{}).
			Where("id = ?", recipeID).
			Update("average_rating", average).Error; err != nil {
			return fmt.Errorf("failed to update average rating: %w", err)
		}
		return nil
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return nil, err
		}
		return nil, s.internal("failed to rate recipe", err)
	}

	s.log.WithFields(logrus.Fields{
		"recipe_id": recipeID,
		"user_id":   userID,
		"rating":    req.Rating,
		"average":   average,
	}).Info("recipe rated")
	return s.GetRecipe(ctx, recipeID, userID)
}
