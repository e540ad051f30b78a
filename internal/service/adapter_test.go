package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hitesh-Saha/FeastAI/internal/logging"
	"github.com/Hitesh-Saha/FeastAI/internal/models"
	"github.com/Hitesh-Saha/FeastAI/internal/schema"
	"github.com/Hitesh-Saha/FeastAI/internal/service"
)

const resolvedImage = "https://images.unsplash.com/photo-1"

func TestAdaptFillsDefaults(t *testing.T) {
	adapter := service.NewAdapter(&stubResolver{url: resolvedImage}, 0, logging.Discard())

	raw := generated("Plain Rice")
	raw.Nutrition = nil
	raw.Servings = nil

	recipes, err := adapter.Adapt(context.Background(), []schema.GeneratedRecipe{raw}, "user-1", false)
	require.NoError(t, err)
	require.Len(t, recipes, 1)

	r := recipes[0]
	assert.Equal(t, models.Nutrition{}, r.Nutrition)
	assert.Equal(t, models.DefaultServings, r.Servings)
	assert.Equal(t, models.DefaultCookingTime, r.CookingTime)
	assert.Equal(t, "user-1", r.UserID)
	assert.True(t, r.IsPublic)
	assert.False(t, r.IsFavorite)
	assert.Zero(t, r.AverageRating)
	assert.Empty(t, r.Reviews)
	assert.NotNil(t, r.DietaryTags)
	assert.Empty(t, r.DietaryTags)
	assert.Empty(t, r.SuggestedPairings)
	assert.Equal(t, resolvedImage, r.ImageURL)
	assert.Empty(t, r.ID, "ids are assigned by the store for signed-in callers")
}

func TestAdaptHonorsModelEstimates(t *testing.T) {
	adapter := service.NewAdapter(&stubResolver{url: resolvedImage}, 0, logging.Discard())

	raw := generated("Slow Stew")
	raw.Servings = intPtr(6)
	raw.CookingTime = intPtr(90)

	recipes, err := adapter.Adapt(context.Background(), []schema.GeneratedRecipe{raw}, "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, 6, recipes[0].Servings)
	assert.Equal(t, 90, recipes[0].CookingTime)
	assert.Equal(t, 450.0, recipes[0].Nutrition.Calories)
}

func TestAdaptGuestRecipes(t *testing.T) {
	adapter := service.NewAdapter(&stubResolver{url: resolvedImage}, 0, logging.Discard())

	before := time.Now().UTC().Add(-time.Second)
	recipes, err := adapter.Adapt(context.Background(),
		[]schema.GeneratedRecipe{generated("One"), generated("Two")}, "user-1", true)
	require.NoError(t, err)
	require.Len(t, recipes, 2)

	for _, r := range recipes {
		assert.NotEmpty(t, r.ID)
		assert.True(t, r.Timestamp.After(before))
		assert.Equal(t, "", r.UserID)
	}
	assert.NotEqual(t, recipes[0].ID, recipes[1].ID)
}

func TestAdaptRejectsWholeBatch(t *testing.T) {
	adapter := service.NewAdapter(&stubResolver{url: resolvedImage}, 0, logging.Discard())

	raw := []schema.GeneratedRecipe{
		generated("A"), generated("B"), generated("C"), generated("D"), generated("E"),
	}
	raw[2].ImageURL = "not-a-url"

	recipes, err := adapter.Adapt(context.Background(), raw, "user-1", false)
	require.Error(t, err)
	assert.Nil(t, recipes)

	verr, ok := schema.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "2.imageUrl")
	assert.Len(t, verr.Fields, 1)
}

func TestAdaptResolvesImagesInOrder(t *testing.T) {
	resolver := &stubResolver{}
	adapter := service.NewAdapter(resolver, 0, logging.Discard())

	recipes, err := adapter.Adapt(context.Background(),
		[]schema.GeneratedRecipe{generated("Fried Rice"), generated("Chicken Curry")}, "user-1", false)
	require.NoError(t, err)

	assert.Equal(t, service.FallbackImageURL("Fried Rice"), recipes[0].ImageURL)
	assert.Equal(t, service.FallbackImageURL("Chicken Curry"), recipes[1].ImageURL)
	assert.ElementsMatch(t, []string{"Fried Rice food", "Chicken Curry food"}, resolver.queries)
}

func TestAdaptBoundsImageLookups(t *testing.T) {
	adapter := service.NewAdapter(blockingResolver{}, 20*time.Millisecond, logging.Discard())

	start := time.Now()
	recipes, err := adapter.Adapt(context.Background(),
		[]schema.GeneratedRecipe{generated("One"), generated("Two"), generated("Three")}, "", true)
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 2*time.Second)
	for _, r := range recipes {
		assert.Equal(t, service.FallbackImageURL(r.Title), r.ImageURL)
	}
}

func TestFallbackImageURL(t *testing.T) {
	assert.Equal(t, "https://source.unsplash.com/featured/?Chicken-Fried-Rice,food",
		service.FallbackImageURL("Chicken  Fried Rice"))
	assert.Equal(t, "Chicken Fried Rice food", service.ImageQuery(" Chicken Fried Rice "))
}
