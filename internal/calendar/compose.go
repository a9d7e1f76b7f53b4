// Package calendar composes calendar event bodies from gig records and keeps
// them in sync with the Google Calendar collaborator by an identity key
// embedded as a private extended property.
package calendar

import (
	"strings"
	"time"

	"github.com/gigdesk/gigdesk-api/internal/lineup"
	"github.com/gigdesk/gigdesk-api/internal/models"
	"github.com/gigdesk/gigdesk-api/internal/schedule"
)

// identityProperty is the private extended property name correlating a
// remote event back to its gig. Derived from the gig id only, never from
// mutable fields, so edits to a gig keep pointing at the same remote event.
const identityProperty = "gig_id"

// locationDelim joins the non-empty location segments.
const locationDelim = " | "

// EventBody is the composed, ephemeral calendar event payload.
type EventBody struct {
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
	Zone        *time.Location
	IdentityKey string
}

// IdentityKey builds the "gig_id=<id>" correlation key for a gig.
func IdentityKey(gigID string) string {
	return identityProperty + "=" + gigID
}

// Composer builds EventBody values. The lineup renderer is the same one the
// notifier uses, injected rather than looked up.
type Composer struct {
	lineup lineup.Renderer
	zone   *time.Location
}

// NewComposer constructs a Composer. A nil zone falls back to the band's
// home timezone.
func NewComposer(renderer lineup.Renderer, zone *time.Location) *Composer {
	if zone == nil {
		zone = schedule.DefaultZone()
	}
	return &Composer{lineup: renderer, zone: zone}
}

// Compose builds the event body for a gig. It only errors on an unparseable
// event date; every other field degrades to an empty block.
func (c *Composer) Compose(gig models.GigDetail, calendarLabel string) (EventBody, error) {
	start, end, err := schedule.Span(gig.EventDate, deref(gig.StartTime), deref(gig.EndTime), c.zone)
	if err != nil {
		return EventBody{}, err
	}

	return EventBody{
		Summary:     Summary(gig),
		Location:    Location(gig.Venue),
		Description: c.description(gig, calendarLabel),
		Start:       start,
		End:         end,
		Zone:        c.zone,
		IdentityKey: IdentityKey(gig.ID),
	}, nil
}

// Summary picks the display title for a gig: title, then alternate title,
// then a fixed fallback.
func Summary(gig models.GigDetail) string {
	if s := strings.TrimSpace(deref(gig.Title)); s != "" {
		return s
	}
	if s := strings.TrimSpace(deref(gig.AltTitle)); s != "" {
		return s
	}
	return "Gig"
}

// Location joins venue name, street address and "city state" with a fixed
// delimiter, dropping empty segments so no dangling delimiter is emitted.
func Location(venue *models.Venue) string {
	if venue == nil {
		return ""
	}

	cityState := strings.TrimSpace(strings.Join(nonEmpty(deref(venue.City), deref(venue.State)), " "))
	segments := nonEmpty(venue.Name, deref(venue.AddressLine1), cityState)
	return strings.Join(segments, locationDelim)
}

// description assembles up to four optional HTML blocks in fixed order:
// lineup, notes, venue, footer. Empty blocks are skipped entirely.
func (c *Composer) description(gig models.GigDetail, calendarLabel string) string {
	var blocks []string

	if block := c.lineupBlock(gig); block != "" {
		blocks = append(blocks, "<b>Lineup</b><br>"+block)
	}

	if notes := deref(gig.Notes); strings.TrimSpace(notes) != "" {
		escaped := strings.ReplaceAll(lineup.EscapeMarkup(notes), "\n", "<br>")
		blocks = append(blocks, "<b>Notes</b><br>"+escaped)
	}

	if venueBlock := c.venueBlock(gig.Venue); venueBlock != "" {
		blocks = append(blocks, "<b>Venue</b><br>"+venueBlock)
	}

	blocks = append(blocks, "Calendar: "+lineup.EscapeMarkup(calendarLabel)+" | Gig: "+gig.ID)

	return strings.Join(blocks, "<br><br>")
}

// lineupBlock prefers an explicit pre-rendered block, then the structured
// roster, then the legacy free-text field split into bullet lines.
func (c *Composer) lineupBlock(gig models.GigDetail) string {
	if block := strings.TrimSpace(deref(gig.LineupHTML)); block != "" {
		return block
	}
	if len(gig.Lineup) > 0 && c.lineup != nil {
		return c.lineup.RenderHTML(gig.Lineup)
	}
	if text := strings.TrimSpace(deref(gig.LineupText)); text != "" {
		var b strings.Builder
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			b.WriteString("- " + lineup.EscapeMarkup(line) + "<br>")
		}
		return strings.TrimSuffix(b.String(), "<br>")
	}
	return ""
}

func (c *Composer) venueBlock(venue *models.Venue) string {
	if venue == nil {
		return ""
	}

	cityState := strings.TrimSpace(strings.Join(nonEmpty(deref(venue.City), deref(venue.State)), " "))
	lines := nonEmpty(venue.Name, deref(venue.AddressLine1), cityState)
	for i, line := range lines {
		lines[i] = lineup.EscapeMarkup(line)
	}
	return strings.Join(lines, "<br>")
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
