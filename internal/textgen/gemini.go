package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cleanoyo/wasteup-api/pkg/config"
)

// ErrUnavailable signals that the collaborator could not produce copy and the
// caller should use its fallback template.
var ErrUnavailable = errors.New("text generator unavailable")

// GeminiClient calls a Gemini-style generateContent REST endpoint. Every call
// is bounded by the configured timeout so a slow collaborator can never hold
// up a lifecycle operation.
type GeminiClient struct {
	endpoint string
	apiKey   string
	model    string
	timeout  time.Duration
	client   *http.Client
	logger   *zap.Logger
}

// NewGeminiClient builds the client from config. Returns a Disabled generator
// when no API key is present.
func NewGeminiClient(cfg config.TextGenConfig, logger *zap.Logger) Generator {
	if cfg.APIKey == "" {
		return Disabled{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &GeminiClient{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		timeout:  timeout,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
	Config   genConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type genConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate implements Generator.
func (g *GeminiClient) Generate(ctx context.Context, kind PromptKind, promptContext map[string]string) (string, error) {
	prompt, temperature := buildPrompt(kind, promptContext)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		Config:   genConfig{Temperature: temperature},
	})
	if err != nil {
		return "", fmt.Errorf("marshal prompt: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.endpoint, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("text generation call failed", zap.String("kind", string(kind)), zap.Error(err))
		return "", ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.logger.Warn("text generation rejected", zap.String("kind", string(kind)), zap.Int("status", resp.StatusCode))
		return "", ErrUnavailable
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", ErrUnavailable
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrUnavailable
	}

	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", ErrUnavailable
	}
	return text, nil
}

func buildPrompt(kind PromptKind, promptContext map[string]string) (string, float64) {
	details := formatContext(promptContext)

	switch kind {
	case PromptStatusSMS:
		return fmt.Sprintf("Generate a short, professional SMS notification (max 140 chars) for a waste management app in Ibadan. Context: status update. Details: %s. Include 'Waste Up Ibadan'.", details), 0.5
	case PromptConfirmationEmail:
		return fmt.Sprintf("Generate a warm confirmation email for a scheduled waste pickup on Waste Up Ibadan. Details: %s. Keep it under 80 words.", details), 0.6
	case PromptWasteTip:
		return fmt.Sprintf("Provide 1 short, actionable tip for residents in Ibadan, Nigeria to better manage %s waste to prevent drainage blockage and flooding. Keep it friendly and localized. (Limit: 30 words)", promptContext["waste_type"]), 0.7
	case PromptRoutePlan:
		return fmt.Sprintf("Suggest an efficient waste collection visiting order for these stops in Ibadan, Nigeria: %s. Consider traffic patterns in areas like Challenge, Dugbe, and Iwo Road. Respond with a JSON object {\"optimizedOrder\": [indices], \"justification\": \"...\"}.", details), 0.4
	default:
		return fmt.Sprintf("Write one short notification line for a waste management portal. Details: %s.", details), 0.5
	}
}

func formatContext(promptContext map[string]string) string {
	if len(promptContext) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(promptContext))
	for k := range promptContext {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, promptContext[k]))
	}
	return strings.Join(pairs, ", ")
}
