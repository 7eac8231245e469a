// Package genai is a lightweight facade over the Gemini generateContent API.
// The client is constructed once at the process entry point and handed to the
// orchestrator and selector, so the core stays testable with a fake.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"trainforge/internal/infra"
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client issues generateContent calls. One call per request, no retries; the
// caller decides what a failure means.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

// Part is one ordered unit of model input: plain text or inline binary data.
type Part struct {
	Text   string
	Inline *InlineData
}

// InlineData carries binary content with its media type so it can be attached
// as a multimodal input.
type InlineData struct {
	MIMEType string
	Data     []byte
}

// TextPart builds a text-only part.
func TextPart(text string) Part { return Part{Text: text} }

// ImagePart builds an inline image part.
func ImagePart(mimeType string, data []byte) Part {
	return Part{Inline: &InlineData{MIMEType: mimeType, Data: data}}
}

// GenerateRequest is the full model input for one call.
type GenerateRequest struct {
	SystemInstruction string
	Parts             []Part
	Temperature       float64
}

// GenerateResponse is the normalized model output. A response with no text
// candidate yields an empty Text, not an error.
type GenerateResponse struct {
	Text string
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature    float64 `json:"temperature"`
	CandidateCount int     `json:"candidateCount,omitempty"`
}

type geminiGenerateContentRequest struct {
	SystemInstruction *geminiContent          `json:"system_instruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults. Callers may
// provide a nil HTTP client; a reusable one with a generous timeout is
// created, since artifact generation responses run large.
func NewClient(opts Options) (*Client, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: client,
		logger:     logger,
	}, nil
}

// Model returns the configured Gemini model identifier.
func (c *Client) Model() string {
	return c.model
}

// GenerateContent issues one generateContent call and returns the first
// candidate's text. The request's part order is preserved on the wire.
func (c *Client) GenerateContent(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: encodeParts(req.Parts),
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:    req.Temperature,
			CandidateCount: 1,
		},
	}
	if instruction := strings.TrimSpace(req.SystemInstruction); instruction != "" {
		payload.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: instruction}},
		}
	}

	var response geminiGenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.model))
	if err := c.invoke(ctx, path, payload, &response); err != nil {
		return nil, err
	}

	text := extractText(response)
	c.logger.Debug().
		Str("model", c.model).
		Int("parts", len(req.Parts)).
		Int("response_len", len(text)).
		Msg("genai: generateContent completed")

	return &GenerateResponse{Text: text}, nil
}

func encodeParts(parts []Part) []geminiPart {
	out := make([]geminiPart, 0, len(parts))
	for _, p := range parts {
		if p.Inline != nil {
			out = append(out, geminiPart{InlineData: &geminiInlineData{
				MimeType: p.Inline.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(p.Inline.Data),
			}})
			continue
		}
		out = append(out, geminiPart{Text: p.Text})
	}
	return out
}

// extractText returns the first non-empty candidate text, or "" when the
// model returned no text at all.
func extractText(resp geminiGenerateContentResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

func (c *Client) invoke(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	endpoint := strings.TrimRight(c.baseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr geminiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}
