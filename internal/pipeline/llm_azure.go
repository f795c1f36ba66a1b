package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"voicebot/internal/httpc"
)

const defaultAzureAPIVersion = "2024-06-01"

// AzureOpenAILLM speaks the same chat completions wire format as OpenAI but
// against a customer deployment, with api-key header auth.
type AzureOpenAILLM struct {
	client     *http.Client
	apiKey     string
	endpoint   string // e.g. https://myresource.openai.azure.com
	deployment string
	apiVersion string
}

var _ LLMStrategy = (*AzureOpenAILLM)(nil)

type AzureOpenAIOption func(*AzureOpenAILLM)

func WithAzureAPIVersion(v string) AzureOpenAIOption {
	return func(a *AzureOpenAILLM) { a.apiVersion = v }
}

func NewAzureOpenAILLM(apiKey, endpoint, deployment string, opts ...AzureOpenAIOption) *AzureOpenAILLM {
	a := &AzureOpenAILLM{
		client:     httpc.NewClient(45 * time.Second),
		apiKey:     apiKey,
		endpoint:   strings.TrimRight(endpoint, "/"),
		deployment: deployment,
		apiVersion: defaultAzureAPIVersion,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *AzureOpenAILLM) Name() string { return "azure_openai" }

func (a *AzureOpenAILLM) generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	if a.apiKey == "" || a.endpoint == "" || a.deployment == "" {
		return "", fmt.Errorf("azure openai: %w", ErrMissingCredentials)
	}
	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		a.endpoint, a.deployment, a.apiVersion)
	text, err := postChatCompletion(ctx, a.client, url,
		map[string]string{"api-key": a.apiKey},
		chatCompletionRequest{
			// model is implied by the deployment
			Messages:    []chatMessage{{Role: "user", Content: prompt}},
			Temperature: temperature,
		},
	)
	if err != nil {
		return "", fmt.Errorf("azure openai: %w", err)
	}
	return text, nil
}

func (a *AzureOpenAILLM) ExtractNamePhone(ctx context.Context, text string) (NamePhone, error) {
	raw, err := a.generate(ctx, extractPrompt(text), 0)
	if err != nil {
		return NamePhone{}, err
	}
	return parseNamePhone(raw, text), nil
}

func (a *AzureOpenAILLM) DetectLanguage(ctx context.Context, text string) (string, error) {
	raw, err := a.generate(ctx, detectLanguagePrompt(text), 0)
	if err != nil {
		return "", err
	}
	return normalizeLanguage(raw), nil
}

func (a *AzureOpenAILLM) GenerateResponse(ctx context.Context, input, language string, history []Turn) (string, error) {
	raw, err := a.generate(ctx, respondPrompt(input, language, history), 0.4)
	if err != nil {
		return "", err
	}
	return stripCodeFences(raw), nil
}
