package ai

import "testing"

func TestSystemPromptKnownLanguages(t *testing.T) {
	if got := SystemPrompt("kannada"); got != systemPrompts[LanguageKannada] {
		t.Fatalf("unexpected kannada prompt: %q", got)
	}
	if got := SystemPrompt("english"); got != systemPrompts[LanguageEnglish] {
		t.Fatalf("unexpected english prompt: %q", got)
	}
	if got := SystemPrompt("  Kannada "); got != systemPrompts[LanguageKannada] {
		t.Fatalf("tag matching should ignore case and spaces, got %q", got)
	}
}

func TestSystemPromptFallsBackToEnglish(t *testing.T) {
	english := systemPrompts[LanguageEnglish]

	for _, tag := range []string{"", "hindi", "kn-IN", "français", "\t"} {
		if got := SystemPrompt(tag); got != english {
			t.Fatalf("tag %q: expected english fallback, got %q", tag, got)
		}
		if SystemPrompt(tag) != SystemPrompt(tag) {
			t.Fatalf("tag %q: prompt selection must be stable", tag)
		}
	}
}

func TestLanguagesListsEveryPrompt(t *testing.T) {
	langs := Languages()
	if len(langs) != len(systemPrompts) {
		t.Fatalf("expected %d languages, got %d", len(systemPrompts), len(langs))
	}
	for _, lang := range langs {
		if _, ok := systemPrompts[lang]; !ok {
			t.Fatalf("language %q has no prompt", lang)
		}
	}
}
