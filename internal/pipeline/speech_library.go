package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"voicebot/internal/httpc"
)

// Default endpoints for the credential-free speech path.
const (
	defaultWebSTTURL = "http://www.google.com/speech-api/v2/recognize"
	defaultWebTTSURL = "https://translate.google.com/translate_tts"
)

// LibrarySpeech talks to the free web speech endpoints. No credentials, best
// effort quality; this is the fail-closed default.
type LibrarySpeech struct {
	client   *http.Client
	sttURL   string
	ttsURL   string
	audioDir string
}

var _ SpeechStrategy = (*LibrarySpeech)(nil)

type LibrarySpeechOption func(*LibrarySpeech)

// WithLibraryEndpoints overrides the web endpoints; tests point them at a
// local httptest server.
func WithLibraryEndpoints(sttURL, ttsURL string) LibrarySpeechOption {
	return func(s *LibrarySpeech) {
		s.sttURL = sttURL
		s.ttsURL = ttsURL
	}
}

func WithLibraryClient(c *http.Client) LibrarySpeechOption {
	return func(s *LibrarySpeech) { s.client = c }
}

func NewLibrarySpeech(audioDir string, opts ...LibrarySpeechOption) *LibrarySpeech {
	s := &LibrarySpeech{
		client:   httpc.NewClient(60 * time.Second),
		sttURL:   defaultWebSTTURL,
		ttsURL:   defaultWebTTSURL,
		audioDir: audioDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LibrarySpeech) Name() string { return "library" }

func (s *LibrarySpeech) SpeechToText(ctx context.Context, audio []byte, language string) (string, error) {
	q := url.Values{}
	q.Set("client", "chromium")
	q.Set("lang", localeFor(language))
	q.Set("output", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sttURL+"?"+q.Encode(), strings.NewReader(string(audio)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "audio/l16; rate=16000")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("web stt: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("web stt: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return parseWebSTT(body)
}

// parseWebSTT handles the endpoint's line-delimited JSON: the first line is
// usually an empty result set, the real transcript follows.
func parseWebSTT(body []byte) (string, error) {
	type alternative struct {
		Transcript string `json:"transcript"`
	}
	type result struct {
		Alternative []alternative `json:"alternative"`
	}
	type response struct {
		Result []result `json:"result"`
	}
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var r response
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			continue
		}
		if len(r.Result) > 0 && len(r.Result[0].Alternative) > 0 {
			return r.Result[0].Alternative[0].Transcript, nil
		}
	}
	return "", fmt.Errorf("web stt: no transcript in response")
}

func (s *LibrarySpeech) TextToSpeech(ctx context.Context, text, language string) (string, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("q", text)
	q.Set("tl", ttsLangFor(language))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.ttsURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("web tts: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("web tts: status %d", resp.StatusCode)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return writeAudioFile(s.audioDir, text, language, "mp3", audio)
}

// writeAudioFile stores synthesized audio under a content-derived name so
// repeated synthesis of the same phrase reuses one file.
func writeAudioFile(dir, text, language, ext string, audio []byte) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	h := fnv.New64a()
	_, _ = io.WriteString(h, language)
	_, _ = io.WriteString(h, "\x00")
	_, _ = io.WriteString(h, text)
	path := filepath.Join(dir, fmt.Sprintf("tts_%x.%s", h.Sum64(), ext))
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
