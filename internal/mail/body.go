package mail

import (
	"strings"

	"github.com/gigdesk/gigdesk-api/internal/lineup"
)

// Fact is one labeled row in a confirmation email.
type Fact struct {
	Label string
	Value string
}

// FactsTable renders facts as a two-column HTML table. Rows with an empty
// value are dropped so emails never show blank fields.
func FactsTable(facts []Fact) string {
	var b strings.Builder
	b.WriteString(`<table cellpadding="4" cellspacing="0">`)
	for _, f := range facts {
		if strings.TrimSpace(f.Value) == "" {
			continue
		}
		b.WriteString("<tr><td><b>")
		b.WriteString(lineup.EscapeMarkup(f.Label))
		b.WriteString("</b></td><td>")
		b.WriteString(lineup.EscapeMarkup(f.Value))
		b.WriteString("</td></tr>")
	}
	b.WriteString("</table>")
	return b.String()
}
