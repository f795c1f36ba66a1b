package dto

type DeviceRegisterRequest struct {
	DeviceName      string `json:"deviceName"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	PipelineType    string `json:"pipelineType,omitempty"`
	LLMService      string `json:"llmService,omitempty"`
}

type DeviceRegisterResponse struct {
	DeviceID     int64  `json:"deviceId"`
	DeviceName   string `json:"deviceName"`
	PipelineType string `json:"pipelineType"`
	LLMService   string `json:"llmService"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}
