package http

import (
	"encoding/json"
	"net/http"

	"voicebot/internal/dto"
	"voicebot/internal/service"
)

type handlers struct {
	sessions  service.SessionService
	pipelines Pipelines
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req dto.DeviceRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad request"})
		return
	}
	res, err := h.sessions.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req dto.DeviceLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad request"})
		return
	}
	res, err := h.sessions.Login(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad request"})
		return
	}
	res, err := h.sessions.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	dev, ok := mustDevice(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Logout(r.Context(), dev.DeviceID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// validate reports token validity without requiring the auth middleware, so
// clients can probe a stored token cheaply.
func (h *handlers) validate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad request"})
		return
	}
	dev, err := h.sessions.Resolve(r.Context(), body.AccessToken)
	if err != nil {
		writeJSON(w, http.StatusOK, dto.ValidateResponse{Valid: false})
		return
	}
	writeJSON(w, http.StatusOK, dto.ValidateResponse{
		Valid:      true,
		DeviceID:   dev.DeviceID,
		DeviceName: dev.Name,
	})
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	dev, ok := mustDevice(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dto.DeviceInfoResponse{
		DeviceID:  dev.DeviceID,
		Name:      dev.Name,
		CreatedAt: dev.CreatedAt,
		LastLogin: dev.LastLogin,
	})
}

func (h *handlers) suggestID(w http.ResponseWriter, r *http.Request) {
	id, err := h.sessions.SuggestID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SuggestIDResponse{DeviceID: id})
}

func (h *handlers) configInfo(w http.ResponseWriter, r *http.Request) {
	dev, ok := mustDevice(w, r)
	if !ok {
		return
	}
	res, err := h.sessions.ConfigInfo(r.Context(), dev.DeviceID)
	if err != nil {
		writeError(w, err)
		return
	}
	res.Cached = h.pipelines.Cached(dev.DeviceID)
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) updateConfig(w http.ResponseWriter, r *http.Request) {
	dev, ok := mustDevice(w, r)
	if !ok {
		return
	}
	var req dto.PipelineConfigUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad request"})
		return
	}
	res, err := h.sessions.UpdateConfig(r.Context(), dev.DeviceID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	res.Cached = h.pipelines.Cached(dev.DeviceID)
	writeJSON(w, http.StatusOK, res)
}
