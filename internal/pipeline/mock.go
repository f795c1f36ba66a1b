package pipeline

import (
	"context"
	"sync"
)

// MockSpeech implements SpeechStrategy for testing. All methods can be
// customized via function fields; nil fields return canned values.
type MockSpeech struct {
	SpeechToTextFunc func(ctx context.Context, audio []byte, language string) (string, error)
	TextToSpeechFunc func(ctx context.Context, text, language string) (string, error)
	NameValue        string

	mu    sync.Mutex
	calls []string
}

var _ SpeechStrategy = (*MockSpeech)(nil)

func (m *MockSpeech) record(method string) {
	m.mu.Lock()
	m.calls = append(m.calls, method)
	m.mu.Unlock()
}

// Calls returns the methods invoked so far, in order.
func (m *MockSpeech) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockSpeech) SpeechToText(ctx context.Context, audio []byte, language string) (string, error) {
	m.record("SpeechToText")
	if m.SpeechToTextFunc != nil {
		return m.SpeechToTextFunc(ctx, audio, language)
	}
	return "mock transcript", nil
}

func (m *MockSpeech) TextToSpeech(ctx context.Context, text, language string) (string, error) {
	m.record("TextToSpeech")
	if m.TextToSpeechFunc != nil {
		return m.TextToSpeechFunc(ctx, text, language)
	}
	return "/tmp/mock.mp3", nil
}

func (m *MockSpeech) Name() string {
	if m.NameValue != "" {
		return m.NameValue
	}
	return "mock-speech"
}

// MockLLM implements LLMStrategy for testing.
type MockLLM struct {
	ExtractFunc func(ctx context.Context, text string) (NamePhone, error)
	DetectFunc  func(ctx context.Context, text string) (string, error)
	RespondFunc func(ctx context.Context, input, language string, history []Turn) (string, error)
	NameValue   string

	mu    sync.Mutex
	calls []string
}

var _ LLMStrategy = (*MockLLM)(nil)

func (m *MockLLM) record(method string) {
	m.mu.Lock()
	m.calls = append(m.calls, method)
	m.mu.Unlock()
}

func (m *MockLLM) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockLLM) ExtractNamePhone(ctx context.Context, text string) (NamePhone, error) {
	m.record("ExtractNamePhone")
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, text)
	}
	return NamePhone{Name: "mock", Phone: "9999999999"}, nil
}

func (m *MockLLM) DetectLanguage(ctx context.Context, text string) (string, error) {
	m.record("DetectLanguage")
	if m.DetectFunc != nil {
		return m.DetectFunc(ctx, text)
	}
	return DefaultLanguage, nil
}

func (m *MockLLM) GenerateResponse(ctx context.Context, input, language string, history []Turn) (string, error) {
	m.record("GenerateResponse")
	if m.RespondFunc != nil {
		return m.RespondFunc(ctx, input, language, history)
	}
	return "mock response", nil
}

func (m *MockLLM) Name() string {
	if m.NameValue != "" {
		return m.NameValue
	}
	return "mock-llm"
}
