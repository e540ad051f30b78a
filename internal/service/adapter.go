package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Hitesh-Saha/FeastAI/internal/models"
	"github.com/Hitesh-Saha/FeastAI/internal/schema"
)

// Adapter turns validated model output into canonical recipes. It never
// returns a partial batch: one bad recipe fails the whole call.
type Adapter struct {
	images        ImageResolver
	lookupTimeout time.Duration
	log           logrus.FieldLogger
	now           func() time.Time
}

// NewAdapter creates an Adapter. lookupTimeout bounds each image lookup;
// zero disables the per-lookup bound.
func NewAdapter(images ImageResolver, lookupTimeout time.Duration, log logrus.FieldLogger) *Adapter {
	return &Adapter{
		images:        images,
		lookupTimeout: lookupTimeout,
		log:           log.WithField("component", "adapter"),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Adapt validates raw, resolves one image per recipe concurrently, fills
// defaults and validates the result. userID is the owner for authenticated
// callers; guests get locally assigned ids and timestamps instead.
func (a *Adapter) Adapt(ctx context.Context, raw []schema.GeneratedRecipe, userID string, guest bool) ([]models.Recipe, error) {
	if err := schema.ValidateGenerated(raw); err != nil {
		return nil, fmt.Errorf("generated recipes failed validation: %w", err)
	}

	images := a.resolveImages(ctx, raw)

	if guest {
		userID = ""
	}
	out := make([]models.Recipe, len(raw))
	for i, r := range raw {
		recipe := a.withDefaults(r, images[i], userID)
		if guest {
			recipe.ID = uuid.NewString()
			recipe.Timestamp = a.now()
		}
		if err := schema.ValidateRecipe(&recipe); err != nil {
			return nil, fmt.Errorf("recipe %q failed validation: %w", r.Title, err)
		}
		out[i] = recipe
	}
	return out, nil
}

// resolveImages fans out one lookup per recipe and waits for all of them.
// Results keep input order; misses fall back to a generated URL.
func (a *Adapter) resolveImages(ctx context.Context, raw []schema.GeneratedRecipe) []string {
	urls := make([]string, len(raw))
	var g errgroup.Group
	for i := range raw {
		i := i
		title := raw[i].Title
		g.Go(func() error {
			lookupCtx := ctx
			if a.lookupTimeout > 0 {
				var cancel context.CancelFunc
				lookupCtx, cancel = context.WithTimeout(ctx, a.lookupTimeout)
				defer cancel()
			}

			if u, ok := a.images.ResolveImage(lookupCtx, ImageQuery(title)); ok && u != "" {
				urls[i] = u
				return nil
			}
			a.log.WithField("title", title).Debug("using fallback image")
			urls[i] = FallbackImageURL(title)
			return nil
		})
	}
	_ = g.Wait()
	return urls
}

func (a *Adapter) withDefaults(r schema.GeneratedRecipe, imageURL, userID string) models.Recipe {
	recipe := models.Recipe{
		Title:             r.Title,
		Ingredients:       models.JSONBStringArray(r.Ingredients),
		Instructions:      models.JSONBStringArray(r.Instructions),
		ImageURL:          imageURL,
		Servings:          models.DefaultServings,
		CookingTime:       models.DefaultCookingTime,
		DietaryTags:       models.JSONBStringArray{},
		SuggestedPairings: models.JSONBStringArray{},
		Reviews:           []models.Review{},
		AverageRating:     0,
		UserID:            userID,
		IsPublic:          true,
		IsFavorite:        false,
	}
	if r.Nutrition != nil {
		recipe.Nutrition = *r.Nutrition
	}
	if r.Servings != nil {
		recipe.Servings = *r.Servings
	}
	if r.CookingTime != nil && *r.CookingTime > 0 {
		recipe.CookingTime = *r.CookingTime
	}
	return recipe
}
