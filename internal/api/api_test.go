package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Hitesh-Saha/FeastAI/internal/logging"
	"github.com/Hitesh-Saha/FeastAI/internal/middleware"
	"github.com/Hitesh-Saha/FeastAI/internal/service"
	"github.com/Hitesh-Saha/FeastAI/internal/testhelpers"
)

const twoRecipes = `[
	{"title":"Chicken Rice","ingredients":["chicken","rice"],"instructions":["cook"],"imageUrl":"https://example.com/a.jpg","servings":2,
	 "nutrition":{"calories":500,"protein":30,"carbohydrates":50,"fat":10,"fiber":2,"sugar":1,"sodium":600}},
	{"title":"Chicken Soup","ingredients":["chicken","water"],"instructions":["boil"],"imageUrl":"https://example.com/b.jpg","servings":4}
]`

type cannedGenerator struct {
	text string
}

func (g cannedGenerator) GenerateRecipes(context.Context, string, int) (string, error) {
	return g.text, nil
}

type noImages struct{}

func (noImages) ResolveImage(context.Context, string) (string, bool) { return "", false }

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)
	log := logging.Discard()

	authSvc := service.NewAuthService(db, "api-test-secret-api-test-secret!!", log)
	adapter := service.NewAdapter(noImages{}, time.Second, log)
	generation := service.NewGenerationService(db, cannedGenerator{text: twoRecipes}, adapter, time.Second, log)
	recipes := service.NewRecipeService(db, log)

	router := gin.New()
	router.Use(middleware.RequestLogger(log), middleware.Recovery(), middleware.Session(authSvc))
	v1 := router.Group("/api/v1")
	NewAuthHandler(authSvc, false).RegisterRoutes(v1)
	NewRecipeHandler(generation, recipes, nil).RegisterRoutes(v1)

	return &testServer{router: router, db: db, auth: authSvc}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) signup(t *testing.T, name string) (string, string) {
	t.Helper()
	_, token, err := s.auth.Signup(context.Background(), service.SignupRequest{
		Name:     name,
		Email:    name + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	session, err := s.auth.ParseSession(token)
	require.NoError(t, err)
	return session.UserID, token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
