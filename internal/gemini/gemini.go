// Package gemini wraps the Google GenAI API for the two Symbi call sites:
// appearance image generation on evolution, and the optional AI
// classification of a day's metrics.
package gemini

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/symbi-app/symbi/internal/model"
)

// Generator produces a new pet appearance for an evolution level. The
// returned reference is opaque to callers; for this client it is the path
// of the written image file.
type Generator interface {
	GenerateAppearance(ctx context.Context, prompt string, level int) (string, error)
}

// DayClassifier classifies a day's metrics into an emotional state.
type DayClassifier interface {
	ClassifyDay(ctx context.Context, snap model.MetricSnapshot) (model.EmotionalState, error)
}

// Client calls Gemini for image and text generation.
type Client struct {
	client        *genai.Client
	imageModel    string
	textModel     string
	appearanceDir string
	logger        *zap.Logger
}

// Options configure a Client. Zero-valued fields take defaults.
type Options struct {
	APIKey        string
	ImageModel    string // default imagen-3.0-generate-002
	TextModel     string // default gemini-2.0-flash
	AppearanceDir string // where generated images are written
	Logger        *zap.Logger
}

// NewClient creates a Gemini client.
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if opts.ImageModel == "" {
		opts.ImageModel = "imagen-3.0-generate-002"
	}
	if opts.TextModel == "" {
		opts.TextModel = "gemini-2.0-flash"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: opts.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{
		client:        client,
		imageModel:    opts.ImageModel,
		textModel:     opts.TextModel,
		appearanceDir: opts.AppearanceDir,
		logger:        opts.Logger,
	}, nil
}

// GenerateAppearance asks the image model for one appearance and writes the
// bytes under the appearance dir. The caller owns timeout and retry policy.
func (c *Client) GenerateAppearance(ctx context.Context, prompt string, level int) (string, error) {
	c.logger.Info("generating appearance",
		zap.Int("level", level),
		zap.String("model", c.imageModel))

	result, err := c.client.Models.GenerateImages(ctx, c.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return "", fmt.Errorf("generate images: %w", err)
	}
	if len(result.GeneratedImages) == 0 || result.GeneratedImages[0].Image == nil {
		return "", fmt.Errorf("no image returned")
	}

	img := result.GeneratedImages[0].Image
	if err := os.MkdirAll(c.appearanceDir, 0o755); err != nil {
		return "", fmt.Errorf("create appearance dir: %w", err)
	}
	path := filepath.Join(c.appearanceDir, fmt.Sprintf("level_%03d.png", level))
	if err := os.WriteFile(path, img.ImageBytes, 0o644); err != nil {
		return "", fmt.Errorf("write appearance: %w", err)
	}

	c.logger.Info("appearance written", zap.String("path", path))
	return path, nil
}

// classifyPrompt constrains the model to the closed state vocabulary.
const classifyPrompt = `You assign a single emotional state to a pet based on its owner's daily health metrics.
Answer with exactly one word from this list and nothing else:
sad, resting, active, vibrant, calm, tired, stressed, anxious, rested.

Metrics for %s:
- steps: %d%s%s`

// ClassifyDay asks the text model for a state. Any transport or parse
// failure is returned as an error; callers fall back to the rule-based
// classifier.
func (c *Client) ClassifyDay(ctx context.Context, snap model.MetricSnapshot) (model.EmotionalState, error) {
	var sleep, hrv string
	if snap.SleepHours != nil {
		sleep = fmt.Sprintf("\n- sleep hours: %.1f", *snap.SleepHours)
	}
	if snap.HRV != nil {
		hrv = fmt.Sprintf("\n- heart-rate variability: %.1f ms", *snap.HRV)
	}
	prompt := fmt.Sprintf(classifyPrompt, snap.Day, snap.Steps, sleep, hrv)

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	result, err := c.client.Models.GenerateContent(ctx, c.textModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(result.Text()))
	state := model.EmotionalState(answer)
	if !state.Valid() {
		return "", fmt.Errorf("model returned unknown state %q", answer)
	}
	return state, nil
}
