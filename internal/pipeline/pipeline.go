package pipeline

import "context"

// Pipeline is the facade a device talks through: one speech strategy plus one
// LLM strategy, fixed at construction. Pipelines are immutable once built;
// reconfiguration means building a new one.
type Pipeline struct {
	speech SpeechStrategy
	llm    LLMStrategy
}

func New(speech SpeechStrategy, llm LLMStrategy) *Pipeline {
	return &Pipeline{speech: speech, llm: llm}
}

// Speech exposes the active speech strategy (identity checks in tests,
// provider name in logs).
func (p *Pipeline) Speech() SpeechStrategy { return p.speech }

// LLM exposes the active language-model strategy.
func (p *Pipeline) LLM() LLMStrategy { return p.llm }

func (p *Pipeline) SpeechToText(ctx context.Context, audio []byte, language string) (string, error) {
	return p.speech.SpeechToText(ctx, audio, language)
}

func (p *Pipeline) TextToSpeech(ctx context.Context, text, language string) (string, error) {
	return p.speech.TextToSpeech(ctx, text, language)
}

func (p *Pipeline) ExtractNamePhone(ctx context.Context, text string) (NamePhone, error) {
	return p.llm.ExtractNamePhone(ctx, text)
}

func (p *Pipeline) DetectLanguage(ctx context.Context, text string) (string, error) {
	return p.llm.DetectLanguage(ctx, text)
}

func (p *Pipeline) GenerateResponse(ctx context.Context, input, language string, history []Turn) (string, error) {
	return p.llm.GenerateResponse(ctx, input, language, history)
}
