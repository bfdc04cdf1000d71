package ai

import "strings"

// Supported language tags.
const (
	LanguageKannada = "kannada"
	LanguageEnglish = "english"
)

// DefaultRequestLanguage is used by handlers when a request names no language.
const DefaultRequestLanguage = LanguageKannada

var systemPrompts = map[string]string{
	LanguageKannada: `You are a helpful AI assistant that can communicate in Kannada and English.
When the user speaks in Kannada, respond primarily in Kannada. When they speak in English,
respond in English. Be conversational, friendly, and helpful. You can mix languages if appropriate
for clarity.`,
	LanguageEnglish: `You are a helpful AI assistant. Be conversational, friendly, and helpful.`,
}

// SystemPrompt returns the system instruction for language, falling back to English
// for unknown or empty tags.
func SystemPrompt(language string) string {
	if prompt, ok := systemPrompts[normalizeLanguage(language)]; ok {
		return prompt
	}
	return systemPrompts[LanguageEnglish]
}

// Languages lists the supported tags.
func Languages() []string {
	return []string{LanguageKannada, LanguageEnglish}
}

func normalizeLanguage(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}
