// ABOUTME: Gemini curator asks the generateContent API to edit posts into a digest
// ABOUTME: Requests go through the injected HTTP client; API failures are classified for the operator

package curate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"community-digest/core/domain"
	coreerrors "community-digest/core/errors"
	"community-digest/core/interfaces"
)

const (
	// DefaultModel is the model used when none is configured
	DefaultModel = "gemini-2.0-flash-exp"

	// DefaultBaseURL is the public Generative Language API
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	defaultMaxTokens = 8192
	maxErrorBody     = 512
)

// GeminiOptions configures a GeminiCurator
type GeminiOptions struct {
	APIKey    string
	Model     string
	BaseURL   string
	Stories   string
	MaxTokens int

	// Now stamps generated digests; defaults to time.Now
	Now func() time.Time
}

// GeminiCurator implements interfaces.Curator against the Gemini API
type GeminiCurator struct {
	deps interfaces.Dependencies
	opts GeminiOptions
}

// NewGeminiCurator creates a curator with defaults filled in
func NewGeminiCurator(deps interfaces.Dependencies, opts GeminiOptions) *GeminiCurator {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &GeminiCurator{deps: deps, opts: opts}
}

// Available reports whether an API key is configured
func (g *GeminiCurator) Available() bool {
	return strings.TrimSpace(g.opts.APIKey) != ""
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  struct {
		MaxOutputTokens int `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	ModelVersion string `json:"modelVersion"`
}

// Curate sends posts to the model and returns the cleaned digest
func (g *GeminiCurator) Curate(ctx context.Context, posts []domain.Post) (*domain.Digest, error) {
	log := g.deps.Log()

	if !g.Available() {
		return nil, &coreerrors.ValidationError{
			Field:   "llm.api_key",
			Message: "GEMINI_API_KEY is not set; add it to your .env file or environment",
		}
	}
	if len(posts) == 0 {
		return nil, &coreerrors.ValidationError{Field: "posts", Message: "nothing to curate"}
	}
	if g.deps.HTTPClient == nil {
		return nil, fmt.Errorf("gemini: HTTP client not configured")
	}

	var req geminiRequest
	req.Contents = []geminiContent{{
		Role:  "user",
		Parts: []geminiPart{{Text: FormatPosts(posts)}},
	}}
	req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: SystemInstruction(g.opts.Stories)}}}
	req.GenerationConfig.MaxOutputTokens = g.opts.MaxTokens

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.opts.BaseURL, url.PathEscape(g.opts.Model), url.QueryEscape(g.opts.APIKey))

	log.Info("Requesting digest from model", map[string]interface{}{
		"model": g.opts.Model,
		"posts": len(posts),
	})

	resp, err := g.deps.HTTPClient.Post(ctx, endpoint, bytes.NewReader(payload))
	if err != nil {
		// the transport error can echo the URL, which carries the key
		return nil, fmt.Errorf("gemini request failed: %s", redact(err.Error(), g.opts.APIKey))
	}
	body := resp.Body()
	defer body.Close()

	respBody, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		apiErr := &coreerrors.ExternalAPIError{
			StatusCode: resp.StatusCode(),
			API:        "gemini",
			Message:    describeFailure(resp.StatusCode(), respBody),
		}
		log.Error("Gemini API error", map[string]interface{}{
			"status": resp.StatusCode(),
			"error":  apiErr.Message,
		})
		return nil, apiErr
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	var text strings.Builder
	if len(result.Candidates) > 0 {
		for _, part := range result.Candidates[0].Content.Parts {
			text.WriteString(part.Text)
		}
	}
	cleaned := StripFences(text.String())
	if cleaned == "" {
		return nil, &coreerrors.ExternalAPIError{
			StatusCode: resp.StatusCode(),
			API:        "gemini",
			Message:    "model returned no content",
		}
	}

	model := g.opts.Model
	if result.ModelVersion != "" {
		model = result.ModelVersion
	}

	log.Info("Digest generated", map[string]interface{}{
		"model": model,
		"bytes": len(cleaned),
	})

	return &domain.Digest{
		Body:        cleaned,
		HTML:        RenderHTML(cleaned),
		Model:       model,
		PostCount:   len(posts),
		GeneratedAt: g.opts.Now(),
	}, nil
}

func describeFailure(status int, body []byte) string {
	text := strings.TrimSpace(string(body))
	lower := strings.ToLower(text)

	switch {
	case status == http.StatusUnauthorized || strings.Contains(lower, "api_key_invalid") || strings.Contains(lower, "api key not valid"):
		return "invalid API key; check GEMINI_API_KEY"
	case status == http.StatusTooManyRequests || strings.Contains(lower, "quota"):
		return "API quota exceeded; check Gemini billing"
	}

	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	if text == "" {
		text = http.StatusText(status)
	}
	return text
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	s = strings.ReplaceAll(s, url.QueryEscape(secret), "REDACTED")
	return strings.ReplaceAll(s, secret, "REDACTED")
}
