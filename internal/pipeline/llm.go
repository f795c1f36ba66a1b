package pipeline

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Prompts shared by all LLM strategies. Providers differ only in transport.

func extractPrompt(text string) string {
	return fmt.Sprintf(`Extract the name and phone number from the following Hindi/Indian text.
The text may contain spaces or gaps in phone numbers due to speech recognition.

Return JSON with keys "name" and "phone".
If a field is missing, return null.

Rules:
- Phone numbers must be 10-11 digits
- Indian mobile numbers start with 6-9
- Join separated digits
- Names may be Hindi or Indian languages

Text: %q

Return ONLY valid JSON.`, text)
}

func detectLanguagePrompt(text string) string {
	return fmt.Sprintf(`Detect the language of the following text.
Supported languages:
hindi, bengali, tamil, telugu, gujarati, marathi

Text: %q

Return only the language name.
Default to hindi.`, text)
}

func respondPrompt(input, language string, history []Turn) string {
	var context strings.Builder
	// last five turns only; older context stops helping and costs tokens
	start := 0
	if len(history) > 5 {
		start = len(history) - 5
	}
	for _, t := range history[start:] {
		role := "User"
		if t.Role == "assistant" {
			role = "Assistant"
		}
		fmt.Fprintf(&context, "%s: %s\n", role, t.Text)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are Green Sathi, a helpful agricultural voice assistant for Indian farmers.

Rules:
- Respond strictly in %s
- Simple, rural-friendly language
- Actionable steps
- No symbols or formatting
- End with exactly ONE follow-up question
`, language)
	if context.Len() > 0 {
		fmt.Fprintf(&b, "\nPrevious conversation context:\n%s", context.String())
	}
	fmt.Fprintf(&b, "\nUser message:\n%q", input)
	return b.String()
}

// ====== Model-output post-processing ======

// stripCodeFences removes a markdown code fence wrapper from model output.
func stripCodeFences(text string) string {
	if i := strings.Index(text, "```json"); i >= 0 {
		rest := text[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
	}
	if i := strings.Index(text, "```"); i >= 0 {
		rest := text[i+3:]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
	}
	return strings.TrimSpace(text)
}

var (
	nonPhoneChars = regexp.MustCompile(`[^\d+]`)
	digitsOnlyRe  = regexp.MustCompile(`[^\d]`)
	indianMobile  = regexp.MustCompile(`([6-9]\d{9})`)
	digitRe       = regexp.MustCompile(`\d`)
	nonNameChars  = regexp.MustCompile(`[\d+\-.\s()]+`)
)

// cleanPhoneNumber keeps digits (and a leading +) and accepts 10-11 digit
// numbers only; anything else comes back empty.
func cleanPhoneNumber(phone string) string {
	if phone == "" {
		return ""
	}
	cleaned := nonPhoneChars.ReplaceAllString(phone, "")
	digits := digitsOnlyRe.ReplaceAllString(cleaned, "")
	if len(digits) >= 10 && len(digits) <= 11 {
		return cleaned
	}
	return ""
}

var hindiStopwords = map[string]bool{
	"मेरा": true, "नाम": true, "है": true, "और": true, "का": true,
	"की": true, "के": true, "में": true, "से": true, "को": true,
	"फोन": true, "नंबर": true, "number": true, "mobile": true,
	"मैं": true, "हूँ": true, "हूं": true,
}

// fallbackExtractNamePhone is the regex path used when the model's JSON
// cannot be parsed: collect all digits for the phone, drop stopwords and
// digits for the name.
func fallbackExtractNamePhone(text string) NamePhone {
	var out NamePhone

	allDigits := strings.Join(digitRe.FindAllString(text, -1), "")
	if len(allDigits) >= 8 {
		if m := indianMobile.FindString(allDigits); m != "" {
			out.Phone = m
		} else {
			out.Phone = allDigits
		}
	}

	var nameWords []string
	for _, w := range strings.Fields(nonNameChars.ReplaceAllString(text, " ")) {
		if hindiStopwords[w] || len([]rune(w)) <= 1 {
			continue
		}
		nameWords = append(nameWords, w)
		if len(nameWords) == 3 {
			break
		}
	}
	out.Name = strings.Join(nameWords, " ")
	return out
}

// parseNamePhone decodes the model's JSON answer, falling back to the regex
// extractor when the answer isn't valid JSON.
func parseNamePhone(raw, sourceText string) NamePhone {
	var parsed struct {
		Name  *string `json:"name"`
		Phone *string `json:"phone"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &parsed); err != nil {
		return fallbackExtractNamePhone(sourceText)
	}
	var out NamePhone
	if parsed.Name != nil {
		out.Name = *parsed.Name
	}
	if parsed.Phone != nil {
		out.Phone = cleanPhoneNumber(*parsed.Phone)
	}
	return out
}

// normalizeLanguage lowercases and clamps detection output to the supported
// set.
func normalizeLanguage(raw string) string {
	lang := strings.ToLower(strings.TrimSpace(raw))
	if supportedLanguages[lang] {
		return lang
	}
	return DefaultLanguage
}
