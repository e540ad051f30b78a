package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hitesh-Saha/FeastAI/internal/middleware"
	"github.com/Hitesh-Saha/FeastAI/internal/service"
)

// RecipeHandler serves generation and recipe endpoints.
type RecipeHandler struct {
	generation      *service.GenerationService
	recipes         *service.RecipeService
	generationLimit gin.HandlerFunc
}

// NewRecipeHandler creates a RecipeHandler. generationLimit may be nil.
func NewRecipeHandler(generation *service.GenerationService, recipes *service.RecipeService, generationLimit gin.HandlerFunc) *RecipeHandler {
	return &RecipeHandler{
		generation:      generation,
		recipes:         recipes,
		generationLimit: generationLimit,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		generate := []gin.HandlerFunc{h.Generate}
		if h.generationLimit != nil {
			generate = append([]gin.HandlerFunc{h.generationLimit}, generate...)
		}
		recipes.POST("/generate", generate...)

		recipes.GET("/featured", h.Featured)
		recipes.GET("/:id", h.GetRecipe)

		authed := recipes.Group("", middleware.RequireSession())
		authed.GET("/history", h.History)
		authed.GET("/favorites", h.ListFavorites)
		authed.GET("/:id/favorite", h.FavoriteStatus)
		authed.POST("/:id/favorite", h.ToggleFavorite)
		authed.POST("/:id/rating", h.Rate)
		authed.POST("/:id/visibility", h.ToggleVisibility)
		authed.PUT("/:id/dietary", h.UpdateDietaryTags)
	}
}

// Generate handles both guest and signed-in generation; the service decides
// whether a session is required.
func (h *RecipeHandler) Generate(c *gin.Context) {
	var req service.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	session, _ := middleware.SessionFrom(c)
	recipes, err := h.generation.Generate(c.Request.Context(), session, req)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if req.IsGuest {
		status = http.StatusOK
	}
	respondList(c, status, recipes)
}

func (h *RecipeHandler) Featured(c *gin.Context) {
	recipes, err := h.recipes.Featured(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, http.StatusOK, recipes)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", recipe)
}

func (h *RecipeHandler) History(c *gin.Context) {
	recipes, err := h.recipes.History(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, http.StatusOK, recipes)
}

func (h *RecipeHandler) ListFavorites(c *gin.Context) {
	recipes, err := h.recipes.ListFavorites(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, http.StatusOK, recipes)
}

func (h *RecipeHandler) FavoriteStatus(c *gin.Context) {
	favorited, err := h.recipes.FavoriteStatus(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", FavoriteState{IsFavorited: favorited})
}

func (h *RecipeHandler) ToggleFavorite(c *gin.Context) {
	favorited, err := h.recipes.ToggleFavorite(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Recipe removed from favorites"
	if favorited {
		message = "Recipe added to favorites"
	}
	respond(c, http.StatusOK, message, FavoriteState{IsFavorited: favorited})
}

func (h *RecipeHandler) Rate(c *gin.Context) {
	var req service.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	recipe, err := h.recipes.RateRecipe(c.Request.Context(), c.Param("id"), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Rating submitted successfully", recipe)
}

func (h *RecipeHandler) ToggleVisibility(c *gin.Context) {
	recipe, err := h.recipes.ToggleVisibility(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Recipe is now private"
	if recipe.IsPublic {
		message = "Recipe is now public"
	}
	respond(c, http.StatusOK, message, recipe)
}

type dietaryRequest struct {
	Tags []string `json:"tags"`
}

func (h *RecipeHandler) UpdateDietaryTags(c *gin.Context) {
	var req dietaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	if _, err := h.recipes.UpdateDietaryTags(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.Tags); err != nil {
		respondError(c, err)
		return
	}
	respond[any](c, http.StatusOK, "Recipe dietary preferences updated", nil)
}
