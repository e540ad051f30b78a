package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Hitesh-Saha/FeastAI/internal/models"
)

// ErrMalformedResponse is returned when the model output is not a JSON array.
var ErrMalformedResponse = errors.New("model response is not a JSON array")

// GeneratedRecipe is one recipe as produced by the generative model, before
// any defaults are applied. Optional fields are pointers so that absence can
// be told apart from zero.
type GeneratedRecipe struct {
	Title        string            `json:"title" validate:"notblank"`
	Ingredients  []string          `json:"ingredients" validate:"required,min=1,dive,notblank"`
	Instructions []string          `json:"instructions" validate:"required,min=1,dive,notblank"`
	ImageURL     string            `json:"imageUrl" validate:"required,url"`
	Nutrition    *models.Nutrition `json:"nutrition,omitempty" validate:"omitempty"`
	Servings     *int              `json:"servings,omitempty" validate:"omitempty,gt=0"`
	CookingTime  *int              `json:"cookingTime,omitempty" validate:"omitempty,gt=0"`
}

// DecodeGenerated parses raw model text into generated recipes. Text that is
// not a JSON array yields ErrMalformedResponse. Elements whose fields have the
// wrong JSON type are reported as a *ValidationError keyed by index.
func DecodeGenerated(data []byte) ([]GeneratedRecipe, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	verr := &ValidationError{}
	out := make([]GeneratedRecipe, len(raw))
	for i, item := range raw {
		if err := json.Unmarshal(item, &out[i]); err != nil {
			prefix := strconv.Itoa(i)
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) && typeErr.Field != "" {
				verr.add(prefix+"."+typeErr.Field, fmt.Sprintf("must be of type %s", typeErr.Type))
				continue
			}
			verr.add(prefix, "must be a recipe object")
		}
	}

	if !verr.empty() {
		return out, verr
	}
	return out, nil
}

// ValidateGenerated checks every generated recipe and aggregates all failures
// under "<index>.<field>" paths.
func ValidateGenerated(items []GeneratedRecipe) error {
	verr := &ValidationError{}
	for i := range items {
		collect(verr, strconv.Itoa(i)+".", validate.Struct(&items[i]))
	}
	if verr.empty() {
		return nil
	}
	return verr
}

// Decode parses and validates in one step, merging field errors from both.
func Decode(data []byte) ([]GeneratedRecipe, error) {
	items, err := DecodeGenerated(data)
	if errors.Is(err, ErrMalformedResponse) {
		return nil, err
	}

	verr, _ := AsValidationError(err)
	if verr == nil {
		verr = &ValidationError{}
	}
	for i := range items {
		prefix := strconv.Itoa(i) + "."
		if verr.has(strconv.Itoa(i)) {
			continue
		}
		collect(verr, prefix, validate.Struct(&items[i]))
	}

	if !verr.empty() {
		return nil, verr
	}
	return items, nil
}
