package pipeline

import (
	"errors"
	"fmt"
	"log/slog"

	"voicebot/internal/domain"
)

// SpeechBuilder constructs a speech strategy on demand. Builders may fail
// (missing credentials); LLM strategies are built once at startup and only
// fail at call time.
type SpeechBuilder func() (SpeechStrategy, error)

// Strategies is the full set of provider implementations the registry can
// hand out. Default arms must be non-nil; the rest may be left empty and
// will fall back.
type Strategies struct {
	Gemini      LLMStrategy
	OpenAI      LLMStrategy
	AzureOpenAI LLMStrategy
	Vertex      LLMStrategy

	Library SpeechBuilder
	API     SpeechBuilder
}

// Registry resolves a stored pipeline selection to concrete strategies.
// Readers are lenient: an unknown or unwired value logs a warning and falls
// back to the configured default rather than failing the request. Writes are
// validated strictly before they ever reach storage, so fallback here only
// fires for rows predating an enum change or edited out-of-band.
type Registry struct {
	strategies Strategies
	defaults   domain.PipelineConfig
}

func NewRegistry(strategies Strategies, defaults domain.PipelineConfig) (*Registry, error) {
	if !defaults.PipelineType.Known() || !defaults.LLMService.Known() {
		return nil, fmt.Errorf("registry: bad defaults %q/%q", defaults.PipelineType, defaults.LLMService)
	}
	r := &Registry{strategies: strategies, defaults: defaults}
	if r.llmArm(defaults.LLMService) == nil {
		return nil, fmt.Errorf("registry: default llm %q not wired", defaults.LLMService)
	}
	if r.speechArm(defaults.PipelineType) == nil {
		return nil, fmt.Errorf("registry: default pipeline %q not wired", defaults.PipelineType)
	}
	return r, nil
}

// Defaults returns the fail-closed selection.
func (r *Registry) Defaults() domain.PipelineConfig { return r.defaults }

// Resolve builds a pipeline for the given selection. The LLM strategy is a
// shared singleton; the speech strategy is built per call (cheap, and the API
// builder is where credential errors surface).
func (r *Registry) Resolve(cfg domain.PipelineConfig) (*Pipeline, error) {
	llm := r.llmArm(cfg.LLMService)
	if llm == nil {
		slog.Warn("unknown or unwired llm service, using default",
			"llm_service", string(cfg.LLMService),
			"default", string(r.defaults.LLMService),
		)
		llm = r.llmArm(r.defaults.LLMService)
	}

	build := r.speechArm(cfg.PipelineType)
	if build == nil {
		slog.Warn("unknown or unwired pipeline type, using default",
			"pipeline_type", string(cfg.PipelineType),
			"default", string(r.defaults.PipelineType),
		)
		build = r.speechArm(r.defaults.PipelineType)
	}

	speech, err := build()
	if err != nil {
		return nil, fmt.Errorf("build speech strategy %q: %w", cfg.PipelineType, err)
	}
	return New(speech, llm), nil
}

// Default builds the fail-closed pipeline. Kept as a separate path so callers
// can degrade to it when Resolve fails.
func (r *Registry) Default() (*Pipeline, error) {
	return r.Resolve(r.defaults)
}

func (r *Registry) llmArm(svc domain.LLMService) LLMStrategy {
	switch svc {
	case domain.LLMGemini:
		return r.strategies.Gemini
	case domain.LLMOpenAI:
		return r.strategies.OpenAI
	case domain.LLMAzureOpenAI:
		return r.strategies.AzureOpenAI
	case domain.LLMVertex:
		return r.strategies.Vertex
	default:
		return nil
	}
}

func (r *Registry) speechArm(pt domain.PipelineType) SpeechBuilder {
	switch pt {
	case domain.PipelineLibrary:
		return r.strategies.Library
	case domain.PipelineAPI:
		return r.strategies.API
	default:
		return nil
	}
}

// ErrMissingCredentials is returned by speech builders whose provider needs
// configuration the process was not started with.
var ErrMissingCredentials = errors.New("missing provider credentials")
