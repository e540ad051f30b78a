package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Hitesh-Saha/FeastAI/internal/models"
	"github.com/Hitesh-Saha/FeastAI/internal/schema"
)

// mockGenerator is a testify mock for service.RecipeGenerator.
type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateRecipes(ctx context.Context, prompt string, count int) (string, error) {
	args := m.Called(ctx, prompt, count)
	return args.String(0), args.Error(1)
}

// slowGenerator answers after delay regardless of cancellation, the way a
// misbehaving client library might.
type slowGenerator struct {
	delay time.Duration
	text  string
	err   error

	mu       sync.Mutex
	finished bool
}

func (g *slowGenerator) GenerateRecipes(_ context.Context, _ string, _ int) (string, error) {
	time.Sleep(g.delay)
	g.mu.Lock()
	g.finished = true
	g.mu.Unlock()
	return g.text, g.err
}

func (g *slowGenerator) done() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.finished
}

// stubResolver resolves every query to a fixed URL, or to nothing.
type stubResolver struct {
	url string

	mu      sync.Mutex
	queries []string
}

func (r *stubResolver) ResolveImage(_ context.Context, query string) (string, bool) {
	r.mu.Lock()
	r.queries = append(r.queries, query)
	r.mu.Unlock()
	if r.url == "" {
		return "", false
	}
	return r.url, true
}

// blockingResolver waits for the context to end.
type blockingResolver struct{}

func (blockingResolver) ResolveImage(ctx context.Context, _ string) (string, bool) {
	<-ctx.Done()
	return "", false
}

func intPtr(v int) *int { return &v }

func generated(title string) schema.GeneratedRecipe {
	return schema.GeneratedRecipe{
		Title:        title,
		Ingredients:  []string{"2 cups rice", "200g chicken"},
		Instructions: []string{"Cook the rice", "Fry the chicken", "Combine"},
		ImageURL:     "https://example.com/dish.jpg",
		Nutrition: &models.Nutrition{
			Calories: 450, Protein: 30, Carbohydrates: 50, Fat: 12, Fiber: 3, Sugar: 2, Sodium: 700,
		},
		Servings: intPtr(2),
	}
}

func generatedJSON(t *testing.T, titles ...string) string {
	t.Helper()
	items := make([]schema.GeneratedRecipe, len(titles))
	for i, title := range titles {
		items[i] = generated(title)
	}
	data, err := json.Marshal(items)
	require.NoError(t, err)
	return string(data)
}

func createUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createRecipe(t *testing.T, db *gorm.DB, ownerID string, public bool) models.Recipe {
	t.Helper()
	recipe := models.Recipe{
		Title:             "Lemon Rice",
		Ingredients:       models.JSONBStringArray{"rice", "lemon"},
		Instructions:      models.JSONBStringArray{"Cook", "Squeeze"},
		ImageURL:          "https://example.com/lemon-rice.jpg",
		Servings:          models.DefaultServings,
		CookingTime:       models.DefaultCookingTime,
		DietaryTags:       models.JSONBStringArray{},
		SuggestedPairings: models.JSONBStringArray{},
		UserID:            ownerID,
		IsPublic:          true,
	}
	require.NoError(t, db.Create(&recipe).Error)
	if !public {
		require.NoError(t, db.Model(&recipe).Update("is_public", false).Error)
		recipe.IsPublic = false
	}
	return recipe
}
