package ai

import (
	"strings"
	"testing"

	"github.com/duetcast/duetcast/store"
)

func TestOpeningPrompt(t *testing.T) {
	prompt := openingPrompt("Is pineapple valid on pizza?", store.PersonaHumor)

	if !strings.Contains(prompt, "Is pineapple valid on pizza?") {
		t.Error("opening prompt should carry the topic")
	}
	if !strings.Contains(prompt, "humorous") {
		t.Error("opening prompt should carry the humor persona blurb")
	}
	if strings.Contains(prompt, "counterpart") {
		t.Error("opening prompt should not reference the counterpart")
	}
}

func TestReplyPrompt(t *testing.T) {
	tests := []struct {
		persona  store.Persona
		contains string
	}{
		{store.PersonaHumor, "poke fun at your serious counterpart"},
		{store.PersonaSerious, "annoying or irrelevant"},
	}

	for _, tt := range tests {
		prompt := replyPrompt("tabs vs spaces", tt.persona, "tabs, obviously")
		if !strings.Contains(prompt, tt.contains) {
			t.Errorf("reply prompt for %s should contain %q", tt.persona, tt.contains)
		}
		if !strings.Contains(prompt, "tabs, obviously") {
			t.Errorf("reply prompt for %s should quote the previous statement", tt.persona)
		}
	}
}

func TestPersonaProfilesClosed(t *testing.T) {
	if len(personaProfiles) != 2 {
		t.Fatalf("expected exactly 2 persona profiles, got %d", len(personaProfiles))
	}
	for _, p := range []store.Persona{store.PersonaHumor, store.PersonaSerious} {
		profile, ok := personaProfiles[p]
		if !ok {
			t.Fatalf("missing profile for %s", p)
		}
		if profile.opening == "" || profile.reply == "" {
			t.Errorf("profile for %s has empty blurbs", p)
		}
	}
}
