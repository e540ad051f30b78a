package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hitesh-Saha/FeastAI/internal/logging"
	"github.com/Hitesh-Saha/FeastAI/internal/models"
	"github.com/Hitesh-Saha/FeastAI/internal/service"
	"github.com/Hitesh-Saha/FeastAI/internal/testhelpers"
)

func TestToggleFavoriteIsIdempotent(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewRecipeService(db, logging.Discard())
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	fan := createUser(t, db, "fan")
	recipe := createRecipe(t, db, owner.ID, true)

	status, err := svc.FavoriteStatus(ctx, fan.ID, recipe.ID)
	require.NoError(t, err)
	assert.False(t, status)

	favorited, err := svc.ToggleFavorite(ctx, fan.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, favorited)

	status, err = svc.FavoriteStatus(ctx, fan.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, status)

	favorited, err = svc.ToggleFavorite(ctx, fan.ID, recipe.ID)
	require.NoError(t, err)
	assert.False(t, favorited)

	var count int64
	require.NoError(t, db.Model(&models.Favorite{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestToggleFavoriteRules(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewRecipeService(db, logging.Discard())
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	other := createUser(t, db, "other")
	private := createRecipe(t, db, owner.ID, false)

	_, err := svc.ToggleFavorite(ctx, "", private.ID)
	requireKind(t, err, service.KindUnauthenticated)

	_, err = svc.ToggleFavorite(ctx, other.ID, private.ID)
	requireKind(t, err, service.KindNotFound)

	_, err = svc.ToggleFavorite(ctx, other.ID, "missing")
	requireKind(t, err, service.KindNotFound)

	favorited, err := svc.ToggleFavorite(ctx, owner.ID, private.ID)
	require.NoError(t, err)
	assert.True(t, favorited)
}

func TestListFavorites(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewRecipeService(db, logging.Discard())
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	fan := createUser(t, db, "fan")
	first := createRecipe(t, db, owner.ID, true)
	second := createRecipe(t, db, owner.ID, true)
	createRecipe(t, db, owner.ID, true)

	_, err := svc.ToggleFavorite(ctx, fan.ID, first.ID)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = svc.ToggleFavorite(ctx, fan.ID, second.ID)
	require.NoError(t, err)

	favorites, err := svc.ListFavorites(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 2)
	assert.Equal(t, second.ID, favorites[0].ID)
	assert.Equal(t, first.ID, favorites[1].ID)
	for _, r := range favorites {
		assert.True(t, r.IsFavorite)
	}

	// A favorite that goes private drops out of someone else's list.
	_, err = svc.ToggleVisibility(ctx, second.ID, owner.ID)
	require.NoError(t, err)
	favorites, err = svc.ListFavorites(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, first.ID, favorites[0].ID)
}

func TestRateRecipeAverages(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewRecipeService(db, logging.Discard())
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	recipe := createRecipe(t, db, owner.ID, true)
	a := createUser(t, db, "a")
	b := createUser(t, db, "b")
	c := createUser(t, db, "c")

	for _, r := range []struct {
		user   string
		rating int
	}{{a.ID, 5}, {b.ID, 3}, {c.ID, 4}} {
		_, err := svc.RateRecipe(ctx, recipe.ID, r.user, service.RatingRequest{Rating: r.rating})
		require.NoError(t, err)
	}

	got, err := svc.GetRecipe(ctx, recipe.ID, a.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, got.AverageRating, 1e-9)
	assert.Len(t, got.Reviews, 3)

	// A second rating by the same user replaces the first.
	updated, err := svc.RateRecipe(ctx, recipe.ID, a.ID, service.RatingRequest{Rating: 2, Comment: "  too salty "})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, updated.AverageRating, 1e-9)
	require.Len(t, updated.Reviews, 3)

	var mine *models.Review
	for i := range updated.Reviews {
		if updated.Reviews[i].UserID == a.ID {
			mine = &updated.Reviews[i]
		}
	}
	require.NotNil(t, mine)
	assert.Equal(t, 2, mine.Rating)
	assert.Equal(t, "too salty", mine.Comment)
}

func TestRateRecipeRejections(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewRecipeService(db, logging.Discard())
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	other := createUser(t, db, "other")
	public := createRecipe(t, db, owner.ID, true)
	private := createRecipe(t, db, owner.ID, false)

	_, err := svc.RateRecipe(ctx, public.ID, "", service.RatingRequest{Rating: 3})
	requireKind(t, err, service.KindUnauthenticated)

	for _, rating := range []int{0, 6} {
		_, err = svc.RateRecipe(ctx, public.ID, other.ID, service.RatingRequest{Rating: rating})
		svcErr := requireKind(t, err, service.KindValidation)
		assert.Contains(t, svcErr.Fields, "rating")
	}

	_, err = svc.RateRecipe(ctx, private.ID, other.ID, service.RatingRequest{Rating: 3})
	requireKind(t, err, service.KindNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Review{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestToggleVisibility(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewRecipeService(db, logging.Discard())
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	intruder := createUser(t, db, "intruder")
	recipe := createRecipe(t, db, owner.ID, true)

	_, err := svc.ToggleVisibility(ctx, recipe.ID, intruder.ID)
	svcErr := requireKind(t, err, service.KindForbidden)
	assert.Equal(t, "You don't have permission to modify this recipe", svcErr.Message)

	var stored models.Recipe
	require.NoError(t, db.First(&stored, "id = ?", recipe.ID).Error)
	assert.True(t, stored.IsPublic)

	_, err = svc.ToggleVisibility(ctx, "missing", owner.ID)
	requireKind(t, err, service.KindNotFound)

	toggled, err := svc.ToggleVisibility(ctx, recipe.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsPublic)

	toggled, err = svc.ToggleVisibility(ctx, recipe.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsPublic)
}

func TestGuestRecipesHaveNoOwner(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewRecipeService(db, logging.Discard())

	recipe := createRecipe(t, db, "", true)
	_, err := svc.ToggleVisibility(context.Background(), recipe.ID, "")
	requireKind(t, err, service.KindUnauthenticated)
}

func TestUpdateDietaryTags(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewRecipeService(db, logging.Discard())
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	other := createUser(t, db, "other")
	recipe := createRecipe(t, db, owner.ID, true)

	tags, err := svc.UpdateDietaryTags(ctx, recipe.ID, owner.ID, []string{" Vegan", "gluten-free", "vegan", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"vegan", "gluten-free"}, tags)

	got, err := svc.GetRecipe(ctx, recipe.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JSONBStringArray{"vegan", "gluten-free"}, got.DietaryTags)

	_, err = svc.UpdateDietaryTags(ctx, recipe.ID, other.ID, []string{"keto"})
	requireKind(t, err, service.KindForbidden)

	_, err = svc.UpdateDietaryTags(ctx, "missing", owner.ID, []string{"keto"})
	svcErr := requireKind(t, err, service.KindNotFound)
	assert.Equal(t, "Recipe not found or not owned by user", svcErr.Message)
}

func TestGetRecipeVisibility(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewRecipeService(db, logging.Discard())
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	other := createUser(t, db, "other")
	private := createRecipe(t, db, owner.ID, false)

	_, err := svc.GetRecipe(ctx, private.ID, other.ID)
	requireKind(t, err, service.KindNotFound)
	_, err = svc.GetRecipe(ctx, private.ID, "")
	requireKind(t, err, service.KindNotFound)

	got, err := svc.GetRecipe(ctx, private.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, private.ID, got.ID)
	assert.False(t, got.IsFavorite)
}

func TestHistoryAndFeatured(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewRecipeService(db, logging.Discard())
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	rater := createUser(t, db, "rater")
	older := createRecipe(t, db, owner.ID, true)
	time.Sleep(5 * time.Millisecond)
	newer := createRecipe(t, db, owner.ID, false)
	createRecipe(t, db, rater.ID, true)

	history, err := svc.History(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, newer.ID, history[0].ID)
	assert.Equal(t, older.ID, history[1].ID)

	_, err = svc.History(ctx, "")
	requireKind(t, err, service.KindUnauthenticated)

	_, err = svc.RateRecipe(ctx, older.ID, rater.ID, service.RatingRequest{Rating: 5})
	require.NoError(t, err)
	_, err = svc.ToggleFavorite(ctx, rater.ID, older.ID)
	require.NoError(t, err)

	featured, err := svc.Featured(ctx, rater.ID)
	require.NoError(t, err)
	require.Len(t, featured, 2)
	assert.Equal(t, older.ID, featured[0].ID)
	assert.True(t, featured[0].IsFavorite)
	assert.False(t, featured[1].IsFavorite)
	for _, r := range featured {
		assert.NotEqual(t, newer.ID, r.ID)
	}
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"keto", "low-carb"}, service.NormalizeTags([]string{"KETO", " low-carb ", "keto"}))
	assert.Empty(t, service.NormalizeTags(nil))
}
