package service

import (
	"context"
)

// RecipeGenerator sends a prompt to a generative model and returns its raw
// text, which is expected to hold a JSON array of at most count recipes.
type RecipeGenerator interface {
	GenerateRecipes(ctx context.Context, prompt string, count int) (string, error)
}

// ImageResolver finds a photo URL for a free-text query. It reports ok=false
// instead of an error on any failure.
type ImageResolver interface {
	ResolveImage(ctx context.Context, query string) (imageURL string, ok bool)
}
