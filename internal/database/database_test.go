package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hitesh-Saha/FeastAI/internal/models"
	"github.com/Hitesh-Saha/FeastAI/internal/testhelpers"
)

func newRecipe(owner string) *models.Recipe {
	return &models.Recipe{
		Title:        "Tomato Soup",
		Ingredients:  models.JSONBStringArray{"tomato", "salt"},
		Instructions: models.JSONBStringArray{"Simmer", "Blend"},
		ImageURL:     "https://example.com/soup.jpg",
		Servings:     4,
		CookingTime:  30,
		UserID:       owner,
		IsPublic:     true,
	}
}

func TestMigrateEnforcesOneReviewPerUser(t *testing.T) {
	db := testhelpers.SetupTestDB(t)

	recipe := newRecipe("owner-1")
	require.NoError(t, db.Create(recipe).Error)

	require.NoError(t, db.Create(&models.Review{RecipeID: recipe.ID, UserID: "u1", Rating: 4}).Error)
	assert.Error(t, db.Create(&models.Review{RecipeID: recipe.ID, UserID: "u1", Rating: 2}).Error)
	assert.NoError(t, db.Create(&models.Review{RecipeID: recipe.ID, UserID: "u2", Rating: 2}).Error)
}

func TestMigrateEnforcesOneFavoritePerPair(t *testing.T) {
	db := testhelpers.SetupTestDB(t)

	require.NoError(t, db.Create(&models.Favorite{UserID: "u1", RecipeID: "r1"}).Error)
	assert.Error(t, db.Create(&models.Favorite{UserID: "u1", RecipeID: "r1"}).Error)
}

func TestRecipeRoundTripSQLite(t *testing.T) {
	db := testhelpers.SetupTestDB(t)

	recipe := newRecipe("owner-1")
	recipe.Nutrition = models.Nutrition{Calories: 120, Sodium: 300}
	recipe.DietaryTags = models.JSONBStringArray{"vegan"}
	require.NoError(t, db.Create(recipe).Error)
	assert.NotEmpty(t, recipe.ID)
	assert.False(t, recipe.Timestamp.IsZero())

	var loaded models.Recipe
	require.NoError(t, db.First(&loaded, "id = ?", recipe.ID).Error)
	assert.Equal(t, models.JSONBStringArray{"tomato", "salt"}, loaded.Ingredients)
	assert.Equal(t, models.JSONBStringArray{"vegan"}, loaded.DietaryTags)
	assert.Equal(t, 120.0, loaded.Nutrition.Calories)
	assert.Equal(t, 300.0, loaded.Nutrition.Sodium)
	assert.Equal(t, "owner-1", loaded.UserID)
	assert.True(t, loaded.IsPublic)
}

func TestRecipeRoundTripPostgres(t *testing.T) {
	db := testhelpers.SetupPostgres(t)
	require.NoError(t, db.HealthCheck(context.Background()))

	recipe := newRecipe("owner-1")
	require.NoError(t, db.Create(recipe).Error)

	var loaded models.Recipe
	require.NoError(t, db.First(&loaded, "id = ?", recipe.ID).Error)
	assert.Equal(t, recipe.Ingredients, loaded.Ingredients)
	assert.Equal(t, recipe.Title, loaded.Title)
}
