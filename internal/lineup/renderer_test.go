package lineup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gigdesk/gigdesk-api/internal/models"
)

func TestRenderHTML(t *testing.T) {
	r := NewHTMLRenderer()

	got := r.RenderHTML([]models.LineupSlot{
		{Name: "Alice", Role: "keys"},
		{Name: "Bob <Bass> & Vox", Role: ""},
	})

	assert.Equal(t, "<ul><li>Alice (keys)</li><li>Bob &lt;Bass&gt; &amp; Vox</li></ul>", got)
}

func TestRenderHTMLEmpty(t *testing.T) {
	assert.Equal(t, "", NewHTMLRenderer().RenderHTML(nil))
}

func TestEscapeMarkupOrder(t *testing.T) {
	assert.Equal(t, "&amp;lt;", EscapeMarkup("&lt;"))
	assert.Equal(t, "a &amp; b &lt;c&gt;", EscapeMarkup("a & b <c>"))
}
