package domain

// PipelineType selects the speech (STT/TTS) strategy for a device.
type PipelineType string

const (
	PipelineLibrary PipelineType = "library" // free web endpoints, no credentials
	PipelineAPI     PipelineType = "api"     // paid speech API, needs credentials
)

// Known reports whether p is one of the supported pipeline types.
func (p PipelineType) Known() bool {
	switch p {
	case PipelineLibrary, PipelineAPI:
		return true
	}
	return false
}

// LLMService selects the language-model strategy for a device.
type LLMService string

const (
	LLMGemini      LLMService = "gemini"
	LLMOpenAI      LLMService = "openai"
	LLMAzureOpenAI LLMService = "azure_openai"
	LLMVertex      LLMService = "vertex"
)

// Known reports whether l is one of the supported LLM services.
func (l LLMService) Known() bool {
	switch l {
	case LLMGemini, LLMOpenAI, LLMAzureOpenAI, LLMVertex:
		return true
	}
	return false
}

// PipelineConfig is the per-device pipeline selection as stored on the
// device row. Values are validated strictly on write; readers tolerate
// unknown values by falling back to defaults.
type PipelineConfig struct {
	PipelineType PipelineType `json:"pipelineType"`
	LLMService   LLMService   `json:"llmService"`
}
