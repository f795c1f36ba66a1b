package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"voicebot/internal/dto"
	"voicebot/internal/observability/metrics"
	"voicebot/internal/pipeline"
)

// Voice endpoints fetch the device's pipeline through GetOrDefault: a broken
// provider config degrades to the default pipeline instead of a dead request.

func (h *handlers) transcribe(w http.ResponseWriter, r *http.Request) {
	dev, ok := mustDevice(w, r)
	if !ok {
		return
	}
	var req dto.TranscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad request"})
		return
	}
	audio, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "audio must be base64"})
		return
	}

	p, err := h.pipelines.GetOrDefault(r.Context(), dev.DeviceID)
	if err != nil {
		voiceResult("transcribe", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "pipeline unavailable"})
		return
	}
	text, err := p.SpeechToText(r.Context(), audio, req.Language)
	voiceResult("transcribe", err)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "speech recognition failed"})
		return
	}
	writeJSON(w, http.StatusOK, dto.TranscribeResponse{Text: text})
}

func (h *handlers) speak(w http.ResponseWriter, r *http.Request) {
	dev, ok := mustDevice(w, r)
	if !ok {
		return
	}
	var req dto.SpeakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "text is required"})
		return
	}

	p, err := h.pipelines.GetOrDefault(r.Context(), dev.DeviceID)
	if err != nil {
		voiceResult("speak", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "pipeline unavailable"})
		return
	}
	path, err := p.TextToSpeech(r.Context(), req.Text, req.Language)
	voiceResult("speak", err)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "speech synthesis failed"})
		return
	}
	writeJSON(w, http.StatusOK, dto.SpeakResponse{AudioPath: path})
}

func (h *handlers) extract(w http.ResponseWriter, r *http.Request) {
	dev, ok := mustDevice(w, r)
	if !ok {
		return
	}
	var req dto.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "text is required"})
		return
	}

	p, err := h.pipelines.GetOrDefault(r.Context(), dev.DeviceID)
	if err != nil {
		voiceResult("extract", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "pipeline unavailable"})
		return
	}
	np, err := p.ExtractNamePhone(r.Context(), req.Text)
	voiceResult("extract", err)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "extraction failed"})
		return
	}
	writeJSON(w, http.StatusOK, dto.ExtractResponse{Name: np.Name, Phone: np.Phone})
}

func (h *handlers) language(w http.ResponseWriter, r *http.Request) {
	dev, ok := mustDevice(w, r)
	if !ok {
		return
	}
	var req dto.LanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "text is required"})
		return
	}

	p, err := h.pipelines.GetOrDefault(r.Context(), dev.DeviceID)
	if err != nil {
		voiceResult("language", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "pipeline unavailable"})
		return
	}
	lang, err := p.DetectLanguage(r.Context(), req.Text)
	voiceResult("language", err)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "language detection failed"})
		return
	}
	writeJSON(w, http.StatusOK, dto.LanguageResponse{Language: lang})
}

func (h *handlers) respond(w http.ResponseWriter, r *http.Request) {
	dev, ok := mustDevice(w, r)
	if !ok {
		return
	}
	var req dto.RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "text is required"})
		return
	}
	if req.Language == "" {
		req.Language = pipeline.DefaultLanguage
	}

	p, err := h.pipelines.GetOrDefault(r.Context(), dev.DeviceID)
	if err != nil {
		voiceResult("respond", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "pipeline unavailable"})
		return
	}
	history := make([]pipeline.Turn, 0, len(req.History))
	for _, t := range req.History {
		history = append(history, pipeline.Turn{Role: t.Role, Text: t.Text})
	}
	text, err := p.GenerateResponse(r.Context(), req.Text, req.Language, history)
	voiceResult("respond", err)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "response generation failed"})
		return
	}
	writeJSON(w, http.StatusOK, dto.RespondResponse{Text: text})
}

func voiceResult(op string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.VoiceOperationsTotal.WithLabelValues(op, result).Inc()
}
