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
	"github.com/Hitesh-Saha/FeastAI/internal/schema"
)

const (
	MinRecipeCount = 1
	MaxRecipeCount = 6

	DefaultGenerationTimeout = 30 * time.Second
)

// GenerationRequest is one "make me recipes" submission.
type GenerationRequest struct {
	Ingredients []string `json:"ingredients" validate:"required,min=1,max=30,dive,notblank"`
	Count       int      `json:"count" validate:"min=1,max=6"`
	Preference  string   `json:"preference" validate:"max=100"`
	IsGuest     bool     `json:"isGuest"`
}

// GenerationService drives a generation request end to end: prompt, model
// call raced against a timeout, parsing, adaptation and, for signed-in
// callers, persistence.
type GenerationService struct {
	db        *gorm.DB
	generator RecipeGenerator
	adapter   *Adapter
	timeout   time.Duration
	log       logrus.FieldLogger
}

func NewGenerationService(db *gorm.DB, generator RecipeGenerator, adapter *Adapter, timeout time.Duration, log logrus.FieldLogger) *GenerationService {
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}
	return &GenerationService{
		db:        db,
		generator: generator,
		adapter:   adapter,
		timeout:   timeout,
		log:       log.WithField("component", "generation"),
	}
}

// Generate produces recipes for req. session may be nil only for guests.
// Guest recipes are returned without touching the store; everything else is
// inserted and returned with store-assigned ids.
func (s *GenerationService) Generate(ctx context.Context, session *Session, req GenerationRequest) ([]models.Recipe, error) {
	if !req.IsGuest && (session == nil || session.UserID == "") {
		return nil, newError(KindUnauthenticated, msgAuthRequired, nil)
	}
	if err := schema.Struct(req); err != nil {
		return nil, validationError("Field Validation Error", err)
	}

	preference := NormalizePreference(req.Preference)
	ingredients, dropped := SanitizeIngredients(req.Ingredients, preference)
	if len(ingredients) == 0 {
		return nil, fieldError("No usable ingredients for the selected preference", "ingredients",
			"all ingredients were removed as non-food or conflicting with the dietary preference")
	}

	userID := ""
	if !req.IsGuest {
		userID = session.UserID
	}
	log := s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"guest":      req.IsGuest,
		"count":      req.Count,
		"preference": preference,
	})
	if len(dropped) > 0 {
		log.WithField("dropped", dropped).Info("ignoring unusable ingredients")
	}

	text, err := s.callModel(ctx, BuildPrompt(ingredients, req.Count, preference), req.Count)
	if err != nil {
		if KindOf(err) == KindTimeout {
			log.WithError(err).Warn("recipe generation timed out")
		} else {
			log.WithError(err).Error("recipe generation failed")
		}
		return nil, err
	}

	raw, err := schema.Decode([]byte(text))
	if err != nil {
		log.WithError(err).WithField("response", text).Error("model returned unusable recipes")
		if errors.Is(err, schema.ErrMalformedResponse) {
			return nil, newError(KindUpstream, msgGenerationFailed, err)
		}
		return nil, validationError(msgInvalidGenerated, err)
	}
	if len(raw) == 0 {
		log.WithField("response", text).Warn("model returned no recipes")
		return nil, newError(KindUpstream, msgGenerationFailed, errors.New("model returned an empty recipe list"))
	}
	if len(raw) > req.Count {
		raw = raw[:req.Count]
	}

	recipes, err := s.adapter.Adapt(ctx, raw, userID, req.IsGuest)
	if err != nil {
		log.WithError(err).Error("generated recipes rejected")
		return nil, validationError(msgInvalidGenerated, err)
	}

	if req.IsGuest {
		return recipes, nil
	}

	if err := s.db.WithContext(ctx).Create(&recipes).Error; err != nil {
		log.WithError(err).Error("failed to store generated recipes")
		return nil, newError(KindInternal, msgGenerationFailed, fmt.Errorf("failed to insert recipes: %w", err))
	}
	log.WithField("stored", len(recipes)).Info("recipes generated")
	return recipes, nil
}

type modelResult struct {
	text string
	err  error
}

// callModel races the generator against s.timeout. The result channel is
// buffered so a late answer never blocks and is simply dropped.
func (s *GenerationService) callModel(ctx context.Context, prompt string, count int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan modelResult, 1)
	go func() {
		text, err := s.generator.GenerateRecipes(ctx, prompt, count)
		done <- modelResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", s.contextError(ctx.Err())
	case res := <-done:
		if res.err != nil {
			if ctx.Err() != nil {
				return "", s.contextError(ctx.Err())
			}
			return "", newError(KindUpstream, msgGenerationFailed, res.err)
		}
		if ctx.Err() != nil {
			return "", s.contextError(ctx.Err())
		}
		return res.text, nil
	}
}

func (s *GenerationService) contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(KindTimeout, msgGenerationTimeout, fmt.Errorf("model call exceeded %s: %w", s.timeout, err))
	}
	return newError(KindInternal, msgGenerationFailed, err)
}

// BuildPrompt writes the natural-language request for the model.
func BuildPrompt(ingredients []string, count int, preference string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Create a maximum of %d recipes using these ingredients: %s. ", count, strings.Join(ingredients, ", "))
	if preference == PreferenceAll {
		sb.WriteString("The recipes can follow any diet type. ")
	} else {
		fmt.Fprintf(&sb, "The recipes should have %s diet type preference. ", preference)
	}
	sb.WriteString("Include detailed nutritional information for each recipe. ")
	sb.WriteString("Also, suggest the URL of a relevant image of the final dish or a similar dish. ")
	sb.WriteString("Be creative but make sure the recipe is practical and delicious. ")
	sb.WriteString("Each recipe should include calories, protein, carbohydrates, fat, fiber, sugar, and sodium content per serving, ")
	sb.WriteString("the number of servings, and the total cooking time in minutes.")
	return sb.String()
}
