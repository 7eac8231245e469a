package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateContentWirePayload(t *testing.T) {
	var captured geminiGenerateContentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("api key header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{"parts": []map[string]any{{"text": "<!DOCTYPE html><html></html>"}}},
			}},
		})
	}))
	defer srv.Close()

	client, err := NewClient(Options{APIKey: "test-key", BaseURL: srv.URL, Model: "gemini-2.5-flash"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	resp, err := client.GenerateContent(context.Background(), GenerateRequest{
		SystemInstruction: "be precise",
		Parts: []Part{
			TextPart("first"),
			ImagePart("image/png", []byte{1, 2, 3}),
			TextPart("last"),
		},
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("GenerateContent returned error: %v", err)
	}
	if !strings.HasPrefix(resp.Text, "<!DOCTYPE html>") {
		t.Errorf("Text = %q", resp.Text)
	}

	if captured.SystemInstruction == nil || captured.SystemInstruction.Parts[0].Text != "be precise" {
		t.Error("system instruction not carried on the wire")
	}
	if captured.GenerationConfig == nil || captured.GenerationConfig.Temperature != 0.7 {
		t.Error("temperature not carried on the wire")
	}
	parts := captured.Contents[0].Parts
	if len(parts) != 3 {
		t.Fatalf("parts = %d, want 3", len(parts))
	}
	if parts[0].Text != "first" || parts[2].Text != "last" {
		t.Error("part order not preserved")
	}
	if parts[1].InlineData == nil || parts[1].InlineData.MimeType != "image/png" || parts[1].InlineData.Data == "" {
		t.Errorf("inline image part malformed: %+v", parts[1])
	}
}

func TestGenerateContentEmptyResponseIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	client, err := NewClient(Options{APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	resp, err := client.GenerateContent(context.Background(), GenerateRequest{Parts: []Part{TextPart("hi")}})
	if err != nil {
		t.Fatalf("GenerateContent returned error: %v", err)
	}
	if resp.Text != "" {
		t.Errorf("Text = %q, want empty", resp.Text)
	}
}

func TestGenerateContentSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 429, "message": "quota exhausted"},
		})
	}))
	defer srv.Close()

	client, err := NewClient(Options{APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = client.GenerateContent(context.Background(), GenerateRequest{Parts: []Part{TextPart("hi")}})
	if err == nil || !strings.Contains(err.Error(), "quota exhausted") {
		t.Errorf("error = %v, want wrapped API message", err)
	}
}
