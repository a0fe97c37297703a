// Package insights classifies free-text issue reports through a
// Gemini-style generateContent endpoint.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sitewise/sitewise-server/internal/model"
)

// Part is one content fragment: text or an inlined base64 image.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// GenerateRequest mirrors the public generateContent proxy contract.
type GenerateRequest struct {
	Model          string          `json:"model"`
	Parts          []Part          `json:"parts"`
	ResponseSchema json.RawMessage `json:"responseSchema,omitempty"`
}

// GenerateResponse carries the model output; Text is itself a JSON string
// when a response schema was requested.
type GenerateResponse struct {
	Text string `json:"text"`
}

// classificationSchema constrains the model to the analysis triple.
var classificationSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "category": {"type": "string"},
    "priority": {"type": "string", "enum": ["Low", "Medium", "High"]},
    "summary": {"type": "string"}
  },
  "required": ["category", "priority", "summary"]
}`)

const classifyPrompt = `Classify this construction site issue report. ` +
	`Return the issue category, a priority of Low, Medium or High, and a one-sentence summary.`

// Client calls the upstream generateContent endpoint. There is no retry and
// no backoff: a failed or malformed response surfaces as an error and the
// caller records a null analysis.
type Client struct {
	client *resty.Client
	model  string
}

// New builds a client for the given upstream base URL. An explicit request
// timeout replaces the transport default so a hung upstream cannot pin a
// handler.
func New(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if apiKey != "" {
		c.SetHeader("x-goog-api-key", apiKey)
	}
	return &Client{client: c, model: model}
}

// Generate forwards a raw generateContent request and returns the response
// body. Used by the pass-through proxy endpoint.
func (c *Client) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if req.Model == "" {
		req.Model = c.model
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/generateContent")
	if err != nil {
		return nil, fmt.Errorf("insights request: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("insights status %d: %s", resp.StatusCode(), resp.String())
	}
	var out GenerateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("insights response: %w", err)
	}
	return &out, nil
}

// Classify asks the upstream for a category/priority/summary triple for an
// issue description plus optional photos.
func (c *Client) Classify(ctx context.Context, description string, photos []model.Photo) (*model.Analysis, error) {
	parts := []Part{
		{Text: classifyPrompt},
		{Text: description},
	}
	for _, p := range photos {
		parts = append(parts, Part{InlineData: &InlineData{MimeType: p.MimeType, Data: p.Data}})
	}
	resp, err := c.Generate(ctx, &GenerateRequest{
		Model:          c.model,
		Parts:          parts,
		ResponseSchema: classificationSchema,
	})
	if err != nil {
		return nil, err
	}

	var a model.Analysis
	if err := json.Unmarshal([]byte(resp.Text), &a); err != nil {
		return nil, fmt.Errorf("insights classification not valid JSON: %w", err)
	}
	if a.Category == "" || a.Priority == "" || a.Summary == "" {
		return nil, fmt.Errorf("insights classification incomplete")
	}
	return &a, nil
}

// HealthPing implements health.HealthPinger against the upstream.
func (c *Client) HealthPing(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/")
	if err != nil {
		return err
	}
	// Any routable answer counts; most upstreams 404 the root.
	if resp.StatusCode() >= http.StatusInternalServerError {
		return fmt.Errorf("insights upstream status %d", resp.StatusCode())
	}
	return nil
}
