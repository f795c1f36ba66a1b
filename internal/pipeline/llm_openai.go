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
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
)

// OpenAILLM calls the chat completions API with a bearer key.
type OpenAILLM struct {
	client  *http.Client
	apiKey  string
	model   string
	baseURL string
}

var _ LLMStrategy = (*OpenAILLM)(nil)

type OpenAIOption func(*OpenAILLM)

func WithOpenAIBaseURL(u string) OpenAIOption {
	return func(o *OpenAILLM) { o.baseURL = u }
}

func WithOpenAIModel(m string) OpenAIOption {
	return func(o *OpenAILLM) { o.model = m }
}

func NewOpenAILLM(apiKey string, opts ...OpenAIOption) *OpenAILLM {
	o := &OpenAILLM{
		client:  httpc.NewClient(45 * time.Second),
		apiKey:  apiKey,
		model:   defaultOpenAIModel,
		baseURL: defaultOpenAIBaseURL,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *OpenAILLM) Name() string { return "openai" }

// ====== Chat completions wire format (shared with Azure OpenAI) ======

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// postChatCompletion is shared transport for the OpenAI-compatible endpoints;
// auth headers differ per caller.
func postChatCompletion(ctx context.Context, client *http.Client, url string, headers map[string]string, reqBody chatCompletionRequest) (string, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, msg)
	}

	var out chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("empty response")
	}
	return out.Choices[0].Message.Content, nil
}

func (o *OpenAILLM) generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	if o.apiKey == "" {
		return "", fmt.Errorf("openai: %w", ErrMissingCredentials)
	}
	text, err := postChatCompletion(ctx, o.client,
		o.baseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + o.apiKey},
		chatCompletionRequest{
			Model:       o.model,
			Messages:    []chatMessage{{Role: "user", Content: prompt}},
			Temperature: temperature,
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	return text, nil
}

func (o *OpenAILLM) ExtractNamePhone(ctx context.Context, text string) (NamePhone, error) {
	raw, err := o.generate(ctx, extractPrompt(text), 0)
	if err != nil {
		return NamePhone{}, err
	}
	return parseNamePhone(raw, text), nil
}

func (o *OpenAILLM) DetectLanguage(ctx context.Context, text string) (string, error) {
	raw, err := o.generate(ctx, detectLanguagePrompt(text), 0)
	if err != nil {
		return "", err
	}
	return normalizeLanguage(raw), nil
}

func (o *OpenAILLM) GenerateResponse(ctx context.Context, input, language string, history []Turn) (string, error) {
	raw, err := o.generate(ctx, respondPrompt(input, language, history), 0.4)
	if err != nil {
		return "", err
	}
	return stripCodeFences(raw), nil
}
