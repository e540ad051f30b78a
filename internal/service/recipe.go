package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Hitesh-Saha/FeastAI/internal/models"
)

// FeaturedLimit caps the featured list.
const FeaturedLimit = 10

// RecipeService handles reads and owner mutations on stored recipes, plus
// favorites and ratings.
type RecipeService struct {
	db  *gorm.DB
	log logrus.FieldLogger
	now func() time.Time
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, log logrus.FieldLogger) *RecipeService {
	return &RecipeService{
		db:  db,
		log: log.WithField("component", "recipes"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// GetRecipe returns one recipe. Private recipes are only visible to their owner.
func (s *RecipeService) GetRecipe(ctx context.Context, id, viewerID string) (*models.Recipe, error) {
	db := s.db.WithContext(ctx)
	recipe, err := findRecipe(db.Preload("Reviews", orderReviews), id)
	if err != nil {
		return nil, err
	}
	if !recipe.VisibleTo(viewerID) {
		return nil, newError(KindNotFound, msgRecipeNotFound, nil)
	}

	list := []models.Recipe{*recipe}
	if err := s.markFavorites(db, viewerID, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// History lists the caller's recipes, newest first.
func (s *RecipeService) History(ctx context.Context, userID string) ([]models.Recipe, error) {
	if userID == "" {
		return nil, newError(KindUnauthenticated, msgAuthRequired, nil)
	}
	db := s.db.WithContext(ctx)

	var recipes []models.Recipe
	if err := db.Preload("Reviews", orderReviews).
		Where("owner_id = ?", userID).
		Order("timestamp DESC").
		Find(&recipes).Error; err != nil {
		return nil, s.internal("failed to list history", err)
	}
	if err := s.markFavorites(db, userID, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// Featured lists the best rated public recipes.
func (s *RecipeService) Featured(ctx context.Context, viewerID string) ([]models.Recipe, error) {
	db := s.db.WithContext(ctx)

	var recipes []models.Recipe
	if err := db.Preload("Reviews", orderReviews).
		Where("is_public = ?", true).
		Order("average_rating DESC").
		Order("timestamp DESC").
		Limit(FeaturedLimit).
		Find(&recipes).Error; err != nil {
		return nil, s.internal("failed to list featured recipes", err)
	}
	if err := s.markFavorites(db, viewerID, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// ToggleVisibility flips isPublic. Only the owner may do this; the flip is a
// single conditional UPDATE so concurrent toggles cannot lose a write.
func (s *RecipeService) ToggleVisibility(ctx context.Context, recipeID, userID string) (*models.Recipe, error) {
	if userID == "" {
		return nil, newError(KindUnauthenticated, msgAuthRequired, nil)
	}
	db := s.db.WithContext(ctx)

	res := db.Model(&models.Recipe{}).
		Where("id = ? AND owner_id = ?", recipeID, userID).
		Update("is_public", gorm.Expr("NOT is_public"))
	if res.Error != nil {
		return nil, s.internal("failed to toggle visibility", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, s.ownershipError(db, recipeID)
	}

	recipe, err := s.GetRecipe(ctx, recipeID, userID)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"recipe_id": recipeID, "is_public": recipe.IsPublic}).Info("recipe visibility changed")
	return recipe, nil
}

// UpdateDietaryTags replaces the recipe's tags. Only the owner may do this.
func (s *RecipeService) UpdateDietaryTags(ctx context.Context, recipeID, userID string, tags []string) ([]string, error) {
	if userID == "" {
		return nil, newError(KindUnauthenticated, msgAuthRequired, nil)
	}
	normalized := NormalizeTags(tags)
	db := s.db.WithContext(ctx)

	res := db.Model(&models.Recipe{}).
		Where("id = ? AND owner_id = ?", recipeID, userID).
		Update("dietary_tags", models.JSONBStringArray(normalized))
	if res.Error != nil {
		return nil, s.internal("failed to update dietary tags", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, s.ownershipError(db, recipeID)
	}
	return normalized, nil
}

// NormalizeTags lower-cases, trims and de-duplicates tags, keeping order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = lowerString(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ownershipError tells "no such recipe" apart from "not yours" after an
// owner-scoped update matched nothing.
func (s *RecipeService) ownershipError(db *gorm.DB, recipeID string) error {
	var count int64
	if err := db.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return s.internal("failed to look up recipe", err)
	}
	if count == 0 {
		return newError(KindNotFound, msgNotOwned, nil)
	}
	return newError(KindForbidden, msgNoPermission, nil)
}

// markFavorites sets IsFavorite on recipes the viewer has favorited.
func (s *RecipeService) markFavorites(db *gorm.DB, viewerID string, recipes []models.Recipe) error {
	if viewerID == "" || len(recipes) == 0 {
		return nil
	}
	ids := make([]string, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
	}

	var favorited []string
	if err := db.Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id IN ?", viewerID, ids).
		Pluck("recipe_id", &favorited).Error; err != nil {
		return s.internal("failed to load favorites", err)
	}

	set := toSet(favorited...)
	for i := range recipes {
		_, recipes[i].IsFavorite = set[recipes[i].ID]
	}
	return nil
}

func (s *RecipeService) internal(msg string, err error) error {
	s.log.WithError(err).Error(msg)
	return newError(KindInternal, msgSomethingWrong, fmt.Errorf("%s: %w", msg, err))
}

func findRecipe(db *gorm.DB, id string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := db.First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, msgRecipeNotFound, err)
		}
		return nil, newError(KindInternal, msgSomethingWrong, fmt.Errorf("failed to load recipe: %w", err))
	}
	return &recipe, nil
}

func orderReviews(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}
