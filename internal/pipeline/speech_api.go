package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"voicebot/internal/httpc"
)

// Azure neural voices per language.
var azureVoices = map[string]string{
	"hindi":    "hi-IN-SwaraNeural",
	"bengali":  "bn-IN-TanishaaNeural",
	"tamil":    "ta-IN-PallaviNeural",
	"telugu":   "te-IN-ShrutiNeural",
	"gujarati": "gu-IN-DhwaniNeural",
	"marathi":  "mr-IN-AarohiNeural",
}

// APISpeech is the paid speech path backed by Azure Speech Services.
// Construction fails without credentials, which is the canonical way a
// pipeline build fails.
type APISpeech struct {
	client   *http.Client
	key      string
	sttURL   string
	ttsURL   string
	audioDir string
}

var _ SpeechStrategy = (*APISpeech)(nil)

type APISpeechOption func(*APISpeech)

// WithAPIEndpoints overrides the regional endpoints; tests point them at a
// local httptest server.
func WithAPIEndpoints(sttURL, ttsURL string) APISpeechOption {
	return func(s *APISpeech) {
		s.sttURL = sttURL
		s.ttsURL = ttsURL
	}
}

func WithAPIClient(c *http.Client) APISpeechOption {
	return func(s *APISpeech) { s.client = c }
}

func NewAPISpeech(key, region, audioDir string, opts ...APISpeechOption) (*APISpeech, error) {
	if key == "" || region == "" {
		return nil, fmt.Errorf("azure speech: %w", ErrMissingCredentials)
	}
	s := &APISpeech{
		client:   httpc.NewClient(60 * time.Second),
		key:      key,
		sttURL:   fmt.Sprintf("https://%s.stt.speech.microsoft.com/speech/recognition/conversation/cognitiveservices/v1", region),
		ttsURL:   fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", region),
		audioDir: audioDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *APISpeech) Name() string { return "api" }

func (s *APISpeech) SpeechToText(ctx context.Context, audio []byte, language string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.sttURL+"?language="+localeFor(language), bytes.NewReader(audio))
	if err != nil {
		return "", err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", s.key)
	req.Header.Set("Content-Type", "audio/wav")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("azure stt: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("azure stt: status %d", resp.StatusCode)
	}

	var out struct {
		RecognitionStatus string `json:"RecognitionStatus"`
		DisplayText       string `json:"DisplayText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("azure stt: decode: %w", err)
	}
	if out.RecognitionStatus != "Success" {
		return "", fmt.Errorf("azure stt: recognition status %q", out.RecognitionStatus)
	}
	return out.DisplayText, nil
}

func (s *APISpeech) TextToSpeech(ctx context.Context, text, language string) (string, error) {
	voice, ok := azureVoices[language]
	if !ok {
		voice = azureVoices[DefaultLanguage]
	}
	ssml := buildSSML(localeFor(language), voice, text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.ttsURL, bytes.NewReader(ssml))
	if err != nil {
		return "", err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", s.key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", "audio-16khz-32kbitrate-mono-mp3")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("azure tts: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("azure tts: status %d", resp.StatusCode)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return writeAudioFile(s.audioDir, text, language, "mp3", audio)
}

func buildSSML(locale, voice, text string) []byte {
	var esc bytes.Buffer
	_ = xml.EscapeText(&esc, []byte(text))
	return []byte(fmt.Sprintf(
		`<speak version='1.0' xml:lang='%s'><voice name='%s'>%s</voice></speak>`,
		locale, voice, esc.String(),
	))
}
