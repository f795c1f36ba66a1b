package dto

// PipelineConfigUpdateRequest carries a partial update; nil fields keep the
// stored value.
type PipelineConfigUpdateRequest struct {
	PipelineType *string `json:"pipelineType,omitempty"`
	LLMService   *string `json:"llmService,omitempty"`
}

type PipelineConfigResponse struct {
	DeviceID     int64  `json:"deviceId"`
	PipelineType string `json:"pipelineType"`
	LLMService   string `json:"llmService"`
	Cached       bool   `json:"cached"`
}
