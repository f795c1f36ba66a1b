package dto

type TranscribeRequest struct {
	Audio    string `json:"audio"` // base64-encoded waveform
	Language string `json:"language,omitempty"`
}

type TranscribeResponse struct {
	Text string `json:"text"`
}

type SpeakRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

type SpeakResponse struct {
	AudioPath string `json:"audioPath"`
}

type ExtractRequest struct {
	Text string `json:"text"`
}

type ExtractResponse struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type LanguageRequest struct {
	Text string `json:"text"`
}

type LanguageResponse struct {
	Language string `json:"language"`
}

type RespondRequest struct {
	Text     string        `json:"text"`
	Language string        `json:"language,omitempty"`
	History  []HistoryTurn `json:"history,omitempty"`
}

type HistoryTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type RespondResponse struct {
	Text string `json:"text"`
}
