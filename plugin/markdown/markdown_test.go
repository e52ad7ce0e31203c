package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duetcast/duetcast/store"
)

func sampleConversation() *store.Conversation {
	return &store.Conversation{
		UID:       "abc123",
		Topic:     "Should robots tell jokes?",
		CreatedTs: 1724800000,
		Turns: []*store.Turn{
			{Seq: 0, Speaker: store.PersonaHumor, Text: "Of course! Beep boop, knock knock."},
			{Seq: 1, Speaker: store.PersonaSerious, Text: "Humor requires context robots lack."},
		},
	}
}

func TestTranscriptMarkdown(t *testing.T) {
	md := TranscriptMarkdown(sampleConversation())
	require.Contains(t, md, "# Should robots tell jokes?")
	require.Contains(t, md, "**Humor AI**: Of course! Beep boop, knock knock.")
	require.Contains(t, md, "**Serious AI**: Humor requires context robots lack.")
}

func TestRenderTranscript(t *testing.T) {
	renderer := NewRenderer()
	out, err := renderer.RenderTranscript(sampleConversation())
	require.NoError(t, err)
	require.Contains(t, out, "<h1")
	require.Contains(t, out, "Should robots tell jokes?")
	require.Contains(t, out, "<strong>Humor AI</strong>")
	require.Contains(t, out, "<strong>Serious AI</strong>")
}
