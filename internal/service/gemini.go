package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// GeminiClient is a RecipeGenerator backed by the Gemini API.
type GeminiClient struct {
	client    *genai.Client
	modelName string
	log       logrus.FieldLogger
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, log logrus.FieldLogger) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{
		client:    client,
		modelName: modelName,
		log:       log.WithFields(logrus.Fields{"component": "gemini", "model": modelName}),
	}, nil
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// GenerateRecipes asks the model for a JSON array of recipes constrained by
// RecipeResponseSchema and returns the array text.
func (c *GeminiClient) GenerateRecipes(ctx context.Context, prompt string, count int) (string, error) {
	model := c.client.GenerativeModel(c.modelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = RecipeResponseSchema(count)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}

	c.log.WithField("finish_reason", resp.Candidates[0].FinishReason.String()).Debug("gemini response received")
	return extractJSONArray(sb.String()), nil
}

// RecipeResponseSchema is the structured-output contract sent with every
// generation request.
func RecipeResponseSchema(count int) *genai.Schema {
	number := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeNumber, Description: desc}
	}
	stringList := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString, Description: desc}}
	}

	return &genai.Schema{
		Type:        genai.TypeArray,
		Description: fmt.Sprintf("Between 0 and %d recipes", count),
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":        {Type: genai.TypeString, Description: "Name of the recipe"},
				"ingredients":  stringList("Ingredient with measurement"),
				"instructions": stringList("One cooking step"),
				"imageUrl":     {Type: genai.TypeString, Description: "Image URL of the dish"},
				"nutrition": {
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"calories":      number("Calories per serving"),
						"protein":       number("Protein in grams per serving"),
						"carbohydrates": number("Carbohydrates in grams per serving"),
						"fat":           number("Fat in grams per serving"),
						"fiber":         number("Fiber in grams per serving"),
						"sugar":         number("Sugar in grams per serving"),
						"sodium":        number("Sodium in milligrams per serving"),
					},
					Required: []string{"calories", "protein", "carbohydrates", "fat", "fiber", "sugar", "sodium"},
				},
				"servings":    {Type: genai.TypeInteger, Description: "Number of servings this recipe makes"},
				"cookingTime": {Type: genai.TypeInteger, Description: "Total cooking time in minutes"},
			},
			Required: []string{"title", "ingredients", "instructions", "imageUrl", "nutrition", "servings"},
		},
	}
}

// extractJSONArray strips markdown fences or chatter around the array the
// model was asked for. Text without brackets is returned unchanged.
func extractJSONArray(text string) string {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || start > end {
		return strings.TrimSpace(text)
	}
	return text[start : end+1]
}
