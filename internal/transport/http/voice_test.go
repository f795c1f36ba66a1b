package http

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"voicebot/internal/domain"
	"voicebot/internal/dto"
	"voicebot/internal/pipeline"
)

func newVoiceRouter(t *testing.T, speech *pipeline.MockSpeech, llm *pipeline.MockLLM) http.Handler {
	t.Helper()
	dev := &domain.Device{DeviceID: 1201, Name: "Field Kiosk"}
	sessions := &sessionStub{resolveFn: resolveAs("good-token", dev)}
	return NewRouter(sessions, &pipelinesStub{p: pipeline.New(speech, llm)})
}

func TestTranscribeEndpoint(t *testing.T) {
	speech := &pipeline.MockSpeech{
		SpeechToTextFunc: func(_ context.Context, audio []byte, language string) (string, error) {
			if string(audio) != "raw-pcm" {
				t.Fatalf("audio not decoded: %q", audio)
			}
			if language != "tamil" {
				t.Fatalf("language: got %q", language)
			}
			return "vanakkam", nil
		},
	}
	router := newVoiceRouter(t, speech, &pipeline.MockLLM{})

	rec := doRequest(t, router, http.MethodPost, "/v1/voice/transcribe", "good-token", dto.TranscribeRequest{
		Audio:    base64.StdEncoding.EncodeToString([]byte("raw-pcm")),
		Language: "tamil",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	res := decodeBody[dto.TranscribeResponse](t, rec)
	if res.Text != "vanakkam" {
		t.Fatalf("text: got %q", res.Text)
	}
}

func TestTranscribeRejectsBadBase64(t *testing.T) {
	router := newVoiceRouter(t, &pipeline.MockSpeech{}, &pipeline.MockLLM{})
	rec := doRequest(t, router, http.MethodPost, "/v1/voice/transcribe", "good-token", dto.TranscribeRequest{Audio: "%%%not-base64%%%"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", rec.Code)
	}
}

func TestSpeakEndpoint(t *testing.T) {
	speech := &pipeline.MockSpeech{
		TextToSpeechFunc: func(_ context.Context, text, language string) (string, error) {
			return "/srv/audio/greeting.mp3", nil
		},
	}
	router := newVoiceRouter(t, speech, &pipeline.MockLLM{})

	rec := doRequest(t, router, http.MethodPost, "/v1/voice/speak", "good-token", dto.SpeakRequest{Text: "नमस्ते", Language: "hindi"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	res := decodeBody[dto.SpeakResponse](t, rec)
	if res.AudioPath != "/srv/audio/greeting.mp3" {
		t.Fatalf("path: got %q", res.AudioPath)
	}

	// empty text is a client error, not a provider call
	rec = doRequest(t, router, http.MethodPost, "/v1/voice/speak", "good-token", dto.SpeakRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", rec.Code)
	}
}

func TestExtractEndpoint(t *testing.T) {
	llm := &pipeline.MockLLM{
		ExtractFunc: func(_ context.Context, text string) (pipeline.NamePhone, error) {
			return pipeline.NamePhone{Name: "रमेश", Phone: "9876543210"}, nil
		},
	}
	router := newVoiceRouter(t, &pipeline.MockSpeech{}, llm)

	rec := doRequest(t, router, http.MethodPost, "/v1/voice/extract", "good-token", dto.ExtractRequest{Text: "मेरा नाम रमेश है"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	res := decodeBody[dto.ExtractResponse](t, rec)
	if res.Name != "रमेश" || res.Phone != "9876543210" {
		t.Fatalf("unexpected extraction: %+v", res)
	}
}

func TestRespondDefaultsLanguage(t *testing.T) {
	var gotLanguage string
	var gotHistory []pipeline.Turn
	llm := &pipeline.MockLLM{
		RespondFunc: func(_ context.Context, input, language string, history []pipeline.Turn) (string, error) {
			gotLanguage = language
			gotHistory = history
			return "answer", nil
		},
	}
	router := newVoiceRouter(t, &pipeline.MockSpeech{}, llm)

	rec := doRequest(t, router, http.MethodPost, "/v1/voice/respond", "good-token", dto.RespondRequest{
		Text:    "गेहूं कब बोना चाहिए?",
		History: []dto.HistoryTurn{{Role: "user", Text: "नमस्ते"}, {Role: "assistant", Text: "नमस्ते!"}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if gotLanguage != pipeline.DefaultLanguage {
		t.Fatalf("language: got %q want %q", gotLanguage, pipeline.DefaultLanguage)
	}
	if len(gotHistory) != 2 || gotHistory[0].Role != "user" {
		t.Fatalf("history not passed through: %+v", gotHistory)
	}
}

func TestVoiceProviderFailureIsBadGateway(t *testing.T) {
	llm := &pipeline.MockLLM{
		DetectFunc: func(context.Context, string) (string, error) {
			return "", errors.New("provider timeout")
		},
	}
	router := newVoiceRouter(t, &pipeline.MockSpeech{}, llm)

	rec := doRequest(t, router, http.MethodPost, "/v1/voice/language", "good-token", dto.LanguageRequest{Text: "hello"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d want 502", rec.Code)
	}
}

func TestVoicePipelineUnavailable(t *testing.T) {
	dev := &domain.Device{DeviceID: 1201, Name: "Field Kiosk"}
	sessions := &sessionStub{resolveFn: resolveAs("good-token", dev)}
	router := NewRouter(sessions, &pipelinesStub{err: errors.New("no usable pipeline")})

	rec := doRequest(t, router, http.MethodPost, "/v1/voice/language", "good-token", dto.LanguageRequest{Text: "hello"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d want 503", rec.Code)
	}
}

func TestVoiceRequiresAuth(t *testing.T) {
	router := newVoiceRouter(t, &pipeline.MockSpeech{}, &pipeline.MockLLM{})
	rec := doRequest(t, router, http.MethodPost, "/v1/voice/extract", "", dto.ExtractRequest{Text: "x"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d want 401", rec.Code)
	}
}
