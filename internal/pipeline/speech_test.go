package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func TestLibrarySpeechToText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lang") != "ta-IN" {
			t.Errorf("lang: got %q", r.URL.Query().Get("lang"))
		}
		// first line empty result, second carries the transcript
		_, _ = w.Write([]byte(`{"result":[]}
{"result":[{"alternative":[{"transcript":"வணக்கம்"}]}],"result_index":0}`))
	}))
	defer srv.Close()

	s := NewLibrarySpeech(t.TempDir(), WithLibraryEndpoints(srv.URL, srv.URL), WithLibraryClient(srv.Client()))
	text, err := s.SpeechToText(context.Background(), []byte("fake-wav"), "tamil")
	if err != nil {
		t.Fatalf("stt: %v", err)
	}
	if text != "வணக்கம்" {
		t.Fatalf("transcript: got %q", text)
	}
}

func TestLibraryTextToSpeechWritesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("tl") != "hi" {
			t.Errorf("tl: got %q", r.URL.Query().Get("tl"))
		}
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	s := NewLibrarySpeech(dir, WithLibraryEndpoints(srv.URL, srv.URL), WithLibraryClient(srv.Client()))
	path, err := s.TextToSpeech(context.Background(), "नमस्ते", "hindi")
	if err != nil {
		t.Fatalf("tts: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audio: %v", err)
	}
	if string(data) != "mp3-bytes" {
		t.Fatalf("audio content: got %q", data)
	}

	// same phrase maps to the same file
	again, err := s.TextToSpeech(context.Background(), "नमस्ते", "hindi")
	if err != nil {
		t.Fatalf("tts again: %v", err)
	}
	if again != path {
		t.Fatalf("expected stable path, got %q vs %q", again, path)
	}
}

func TestAPISpeechRequiresCredentials(t *testing.T) {
	if _, err := NewAPISpeech("", "", t.TempDir()); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if _, err := NewAPISpeech("key", "", t.TempDir()); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestAPISpeechToText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Ocp-Apim-Subscription-Key") != "k" {
			t.Errorf("missing subscription key header")
		}
		_, _ = w.Write([]byte(`{"RecognitionStatus":"Success","DisplayText":"नमस्ते"}`))
	}))
	defer srv.Close()

	s, err := NewAPISpeech("k", "centralindia", t.TempDir(),
		WithAPIEndpoints(srv.URL, srv.URL), WithAPIClient(srv.Client()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	text, err := s.SpeechToText(context.Background(), []byte("fake-wav"), "hindi")
	if err != nil {
		t.Fatalf("stt: %v", err)
	}
	if text != "नमस्ते" {
		t.Fatalf("transcript: got %q", text)
	}
}

func TestAPISpeechToTextNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"RecognitionStatus":"NoMatch"}`))
	}))
	defer srv.Close()

	s, err := NewAPISpeech("k", "centralindia", t.TempDir(),
		WithAPIEndpoints(srv.URL, srv.URL), WithAPIClient(srv.Client()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := s.SpeechToText(context.Background(), []byte("x"), "hindi"); err == nil {
		t.Fatalf("expected error for NoMatch")
	}
}
