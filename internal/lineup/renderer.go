// Package lineup renders a gig roster for embedding in descriptions and
// email bodies. Both the calendar pipeline and the notifier receive the same
// renderer by injection, so a lineup block looks identical everywhere.
package lineup

import (
	"strings"

	"github.com/gigdesk/gigdesk-api/internal/models"
)

// Renderer turns roster slots into an HTML block.
type Renderer interface {
	RenderHTML(slots []models.LineupSlot) string
}

// HTMLRenderer is the single concrete Renderer.
type HTMLRenderer struct{}

// NewHTMLRenderer constructs the shared renderer.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{}
}

// RenderHTML renders slots as a bulleted list. Names and roles are escaped
// for the three markup metacharacters before insertion.
func (r *HTMLRenderer) RenderHTML(slots []models.LineupSlot) string {
	if len(slots) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("<ul>")
	for _, slot := range slots {
		b.WriteString("<li>")
		b.WriteString(EscapeMarkup(slot.Name))
		if slot.Role != "" {
			b.WriteString(" (")
			b.WriteString(EscapeMarkup(slot.Role))
			b.WriteString(")")
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

// EscapeMarkup escapes the markup metacharacters. The ampersand goes first
// so it never re-escapes entities introduced for the angle brackets.
func EscapeMarkup(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
