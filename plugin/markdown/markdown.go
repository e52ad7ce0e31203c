// Package markdown renders saved transcripts as standalone HTML documents
// for the export endpoint.
package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/duetcast/duetcast/store"
)

// Renderer converts transcript markdown into HTML.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a transcript renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// TranscriptMarkdown builds the markdown form of a finished conversation.
// Each turn becomes a bolded speaker line followed by the statement.
func TranscriptMarkdown(conversation *store.Conversation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", conversation.Topic)
	fmt.Fprintf(&b, "_Recorded %s_\n\n", time.Unix(conversation.CreatedTs, 0).UTC().Format("2006-01-02 15:04 MST"))
	for _, turn := range conversation.Turns {
		fmt.Fprintf(&b, "**%s**: %s\n\n", turn.Speaker.DisplayName(), turn.Text)
	}
	return b.String()
}

// RenderTranscript returns the conversation transcript as HTML.
func (r *Renderer) RenderTranscript(conversation *store.Conversation) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(TranscriptMarkdown(conversation)), &buf); err != nil {
		return "", errors.Wrap(err, "failed to render transcript")
	}
	return buf.String(), nil
}
