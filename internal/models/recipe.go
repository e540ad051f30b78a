package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultServings    = 4
	DefaultCookingTime = 30
)

// Nutrition holds per-serving nutrition estimates.
type Nutrition struct {
	Calories      float64 `json:"calories" validate:"gte=0"`
	Protein       float64 `json:"protein" validate:"gte=0"`
	Carbohydrates float64 `json:"carbohydrates" validate:"gte=0"`
	Fat           float64 `json:"fat" validate:"gte=0"`
	Fiber         float64 `json:"fiber" validate:"gte=0"`
	Sugar         float64 `json:"sugar" validate:"gte=0"`
	Sodium        float64 `json:"sodium" validate:"gte=0"`
}

// Recipe is the canonical recipe record as stored and displayed.
type Recipe struct {
	ID                string           `gorm:"type:varchar(36);primarykey" json:"id"`
	Title             string           `gorm:"not null" json:"title" validate:"notblank"`
	Ingredients       JSONBStringArray `gorm:"type:jsonb;not null" json:"ingredients" validate:"min=1,dive,notblank"`
	Instructions      JSONBStringArray `gorm:"type:jsonb;not null" json:"instructions" validate:"min=1,dive,notblank"`
	ImageURL          string           `gorm:"type:text;not null" json:"imageUrl" validate:"required,url"`
	Servings          int              `gorm:"not null" json:"servings" validate:"gt=0"`
	CookingTime       int              `gorm:"not null" json:"cookingTime" validate:"gt=0"`
	Nutrition         Nutrition        `gorm:"embedded;embeddedPrefix:nutrition_" json:"nutrition"`
	DietaryTags       JSONBStringArray `gorm:"type:jsonb;not null" json:"dietaryTags" validate:"dive,notblank"`
	SuggestedPairings JSONBStringArray `gorm:"type:jsonb;not null" json:"suggestedPairings"`
	Reviews           []Review         `gorm:"foreignKey:RecipeID" json:"reviews" validate:"dive"`
	AverageRating     float64          `gorm:"not null;default:0" json:"averageRating" validate:"gte=0,lte=5"`
	UserID            string           `gorm:"column:owner_id;type:varchar(36);index;not null" json:"user"`
	IsPublic          bool             `gorm:"not null" json:"isPublic"`
	IsFavorite        bool             `gorm:"-" json:"isFavorite"`
	ModifiedFrom      *string          `gorm:"type:varchar(36)" json:"modifiedFrom,omitempty"`
	Timestamp         time.Time        `gorm:"index;not null" json:"timestamp"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// BeforeCreate assigns the identity and creation time when the caller has not.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	return nil
}

// VisibleTo reports whether userID may read the recipe.
func (r *Recipe) VisibleTo(userID string) bool {
	return r.IsPublic || (userID != "" && r.UserID == userID)
}

// OwnedBy reports whether userID owns the recipe. Guest recipes have no owner.
func (r *Recipe) OwnedBy(userID string) bool {
	return userID != "" && r.UserID == userID
}

// Review is one user's rating of a recipe. A user holds at most one review per recipe.
type Review struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"-"`
	RecipeID  string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_reviews_recipe_user" json:"-"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_reviews_recipe_user" json:"userId" validate:"required"`
	Rating    int       `gorm:"not null" json:"rating" validate:"min=1,max=5"`
	Comment   string    `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Favorite links a user to a recipe they favorited.
type Favorite struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorites_user_recipe" json:"userId"`
	RecipeID  string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorites_user_recipe;index" json:"recipeId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
