package pipeline

import (
	"strings"
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"name":"x"}`, `{"name":"x"}`},
		{"json fence", "```json\n{\"name\":\"x\"}\n```", `{"name":"x"}`},
		{"bare fence", "```\n{\"name\":\"x\"}\n```", `{"name":"x"}`},
		{"fence with prose", "Here you go:\n```json\n{\"a\":1}\n``` thanks", `{"a":1}`},
		{"whitespace", "  {\"a\":1}  \n", `{"a":1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripCodeFences(tc.in); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestCleanPhoneNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ten digits", "9876543210", "9876543210"},
		{"spaced digits", "98 765 432 10", "9876543210"},
		{"with plus", "+919876543210", ""},   // 12 digits, out of range
		{"eleven digits", "09876543210", "09876543210"},
		{"too short", "12345", ""},
		{"empty", "", ""},
		{"letters only", "no number here", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := cleanPhoneNumber(tc.in); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestFallbackExtractNamePhone(t *testing.T) {
	got := fallbackExtractNamePhone("मेरा नाम Ramesh Kumar है और फोन 98765 43210")
	if got.Phone != "9876543210" {
		t.Fatalf("phone: got %q", got.Phone)
	}
	if got.Name == "" {
		t.Fatalf("expected a name guess")
	}
}

func TestParseNamePhone(t *testing.T) {
	// well-formed model answer
	got := parseNamePhone("```json\n{\"name\":\"Sita\",\"phone\":\"98 7654 3210\"}\n```", "")
	if got.Name != "Sita" || got.Phone != "9876543210" {
		t.Fatalf("got %+v", got)
	}

	// nulls map to empty fields
	got = parseNamePhone(`{"name":null,"phone":null}`, "irrelevant")
	if got.Name != "" || got.Phone != "" {
		t.Fatalf("nulls: got %+v", got)
	}

	// broken JSON falls back to the regex extractor
	got = parseNamePhone("sorry, I cannot do that", "call me at 9876543210")
	if got.Phone != "9876543210" {
		t.Fatalf("fallback phone: got %q", got.Phone)
	}
}

func TestNormalizeLanguage(t *testing.T) {
	if got := normalizeLanguage("  Tamil\n"); got != "tamil" {
		t.Fatalf("got %q", got)
	}
	if got := normalizeLanguage("french"); got != DefaultLanguage {
		t.Fatalf("unsupported language should default, got %q", got)
	}
	if got := normalizeLanguage(""); got != DefaultLanguage {
		t.Fatalf("empty should default, got %q", got)
	}
}

func TestRespondPromptTrimsHistory(t *testing.T) {
	history := make([]Turn, 8)
	for i := range history {
		history[i] = Turn{Role: "user", Text: string(rune('a' + i))}
	}
	prompt := respondPrompt("hello", "hindi", history)
	for i := 0; i < 3; i++ {
		if containsLine(prompt, string(rune('a'+i))) {
			t.Fatalf("old turn %d should have been trimmed", i)
		}
	}
	if !containsLine(prompt, "h") {
		t.Fatalf("latest turn missing from prompt")
	}
}

func containsLine(prompt, text string) bool {
	return strings.Contains(prompt, "User: "+text+"\n") || strings.Contains(prompt, "Assistant: "+text+"\n")
}
