// Package pipeline assembles per-device voice pipelines from interchangeable
// speech and language-model strategies and caches them by device id.
package pipeline

import "context"

// SpeechStrategy is the STT/TTS half of a pipeline. Implementations carry
// their own credentials and HTTP clients; callers switch providers without
// changing call sites.
type SpeechStrategy interface {
	// SpeechToText transcribes a WAV waveform.
	SpeechToText(ctx context.Context, audio []byte, language string) (string, error)

	// TextToSpeech synthesizes text and returns the path of the written
	// audio file.
	TextToSpeech(ctx context.Context, text, language string) (string, error)

	// Name identifies the strategy in logs and metrics.
	Name() string
}

// LLMStrategy is the language-model half of a pipeline.
type LLMStrategy interface {
	// ExtractNamePhone pulls a caller's name and phone number out of a
	// transcribed utterance.
	ExtractNamePhone(ctx context.Context, text string) (NamePhone, error)

	// DetectLanguage names the language the text is written in.
	DetectLanguage(ctx context.Context, text string) (string, error)

	// GenerateResponse produces the next conversational reply.
	GenerateResponse(ctx context.Context, input, language string, history []Turn) (string, error)

	// Name identifies the strategy in logs and metrics.
	Name() string
}

// NamePhone is the result of contact extraction.
type NamePhone struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Turn is one prior exchange in a conversation.
type Turn struct {
	Role string `json:"role"` // "user" | "assistant"
	Text string `json:"text"`
}
