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

const defaultVertexModel = "gemini-2.0-flash"

// VertexLLM runs the same Gemini model through the Vertex AI endpoint, which
// scopes requests to a project/region. Uses express-mode API key auth.
type VertexLLM struct {
	client   *http.Client
	apiKey   string
	project  string
	location string
	model    string
	baseURL  string // overridable for tests; derived from location otherwise
}

var _ LLMStrategy = (*VertexLLM)(nil)

type VertexOption func(*VertexLLM)

func WithVertexBaseURL(u string) VertexOption {
	return func(v *VertexLLM) { v.baseURL = u }
}

func WithVertexModel(m string) VertexOption {
	return func(v *VertexLLM) { v.model = m }
}

func NewVertexLLM(apiKey, project, location string, opts ...VertexOption) *VertexLLM {
	v := &VertexLLM{
		client:   httpc.NewClient(45 * time.Second),
		apiKey:   apiKey,
		project:  project,
		location: location,
		model:    defaultVertexModel,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.baseURL == "" && v.location != "" {
		v.baseURL = fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1", v.location)
	}
	return v
}

func (v *VertexLLM) Name() string { return "vertex" }

func (v *VertexLLM) generate(ctx context.Context, prompt string) (string, error) {
	if v.apiKey == "" || v.project == "" || v.location == "" {
		return "", fmt.Errorf("vertex: %w", ErrMissingCredentials)
	}
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/projects/%s/locations/%s/publishers/google/models/%s:generateContent?key=%s",
		v.baseURL, v.project, v.location, v.model, v.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("vertex: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("vertex: status %d: %s", resp.StatusCode, msg)
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("vertex: decode: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("vertex: empty response")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

func (v *VertexLLM) ExtractNamePhone(ctx context.Context, text string) (NamePhone, error) {
	raw, err := v.generate(ctx, extractPrompt(text))
	if err != nil {
		return NamePhone{}, err
	}
	return parseNamePhone(raw, text), nil
}

func (v *VertexLLM) DetectLanguage(ctx context.Context, text string) (string, error) {
	raw, err := v.generate(ctx, detectLanguagePrompt(text))
	if err != nil {
		return "", err
	}
	return normalizeLanguage(raw), nil
}

func (v *VertexLLM) GenerateResponse(ctx context.Context, input, language string, history []Turn) (string, error) {
	raw, err := v.generate(ctx, respondPrompt(input, language, history))
	if err != nil {
		return "", err
	}
	return stripCodeFences(raw), nil
}
