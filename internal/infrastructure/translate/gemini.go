package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"GovernanceWeekly/internal/ports"
)

// generator is the slice of the Gemini API the translator needs.
type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gemini translates with a Google Gemini model.
type Gemini struct {
	gen generator
}

var _ ports.Translator = (*Gemini)(nil)

// NewGemini opens a Gemini client for model. Close releases it.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, func() error, error) {
	if apiKey == "" {
		return nil, nil, fmt.Errorf("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{gen: genaiGenerator{model: client.GenerativeModel(model)}}, client.Close, nil
}

// Backend names the translator.
func (g *Gemini) Backend() string { return "gemini" }

// Translate asks the model for a bare translation.
func (g *Gemini) Translate(ctx context.Context, text, source, target string) (string, error) {
	out, err := g.gen.Generate(ctx, prompt(text, source, target))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return out, nil
}

func prompt(text, source, target string) string {
	return fmt.Sprintf("Translate the following %s text to %s. Only provide the translation, nothing else:\n\n%s",
		languageName(source), languageName(target), text)
}

func languageName(code string) string {
	switch strings.ToLower(code) {
	case "ne":
		return "Nepali"
	case "en":
		return "English"
	case "hi":
		return "Hindi"
	default:
		return code
	}
}

type genaiGenerator struct {
	model *genai.GenerativeModel
}

func (g genaiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	var out strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				out.WriteString(string(t))
			}
		}
		break
	}
	return out.String(), nil
}
