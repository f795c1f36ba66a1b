package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"voicebot/internal/httpc"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.0-flash"
)

// GeminiLLM calls the Generative Language REST API directly with an API key.
type GeminiLLM struct {
	client  *http.Client
	apiKey  string
	model   string
	baseURL string
}

var _ LLMStrategy = (*GeminiLLM)(nil)

type GeminiOption func(*GeminiLLM)

func WithGeminiBaseURL(u string) GeminiOption {
	return func(g *GeminiLLM) { g.baseURL = u }
}

func WithGeminiModel(m string) GeminiOption {
	return func(g *GeminiLLM) { g.model = m }
}

func NewGeminiLLM(apiKey string, opts ...GeminiOption) *GeminiLLM {
	g := &GeminiLLM{
		client:  httpc.NewClient(45 * time.Second),
		apiKey:  apiKey,
		model:   defaultGeminiModel,
		baseURL: defaultGeminiBaseURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GeminiLLM) Name() string { return "gemini" }

// ====== Gemini wire format ======

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiLLM) generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("gemini: %w", ErrMissingCredentials)
	}
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("gemini: status %d: %s", resp.StatusCode, msg)
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gemini: decode: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: empty response")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

func (g *GeminiLLM) ExtractNamePhone(ctx context.Context, text string) (NamePhone, error) {
	raw, err := g.generate(ctx, extractPrompt(text))
	if err != nil {
		return NamePhone{}, err
	}
	return parseNamePhone(raw, text), nil
}

func (g *GeminiLLM) DetectLanguage(ctx context.Context, text string) (string, error) {
	raw, err := g.generate(ctx, detectLanguagePrompt(text))
	if err != nil {
		return "", err
	}
	return normalizeLanguage(raw), nil
}

func (g *GeminiLLM) GenerateResponse(ctx context.Context, input, language string, history []Turn) (string, error) {
	raw, err := g.generate(ctx, respondPrompt(input, language, history))
	if err != nil {
		return "", err
	}
	return stripCodeFences(raw), nil
}
