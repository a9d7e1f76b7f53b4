package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigdesk/gigdesk-api/internal/lineup"
	"github.com/gigdesk/gigdesk-api/internal/models"
)

func strptr(s string) *string { return &s }

func sampleDetail() models.GigDetail {
	return models.GigDetail{
		Gig: models.Gig{
			ID:        "g-123",
			Title:     strptr("Summer Festival"),
			EventDate: "2026-06-20",
			StartTime: strptr("7:30 PM"),
			EndTime:   strptr("11:00 PM"),
		},
		Venue: &models.Venue{
			ID:           "v-1",
			Name:         "The Reef",
			AddressLine1: strptr("100 Dock St"),
			City:         strptr("Philadelphia"),
			State:        strptr("PA"),
		},
		Lineup: []models.LineupSlot{
			{Name: "Alice", Role: "keys"},
			{Name: "Bob", Role: "drums"},
		},
	}
}

func newTestComposer(t *testing.T) *Composer {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return NewComposer(lineup.NewHTMLRenderer(), loc)
}

func TestComposeFullGig(t *testing.T) {
	c := newTestComposer(t)

	body, err := c.Compose(sampleDetail(), "Band Public")
	require.NoError(t, err)

	assert.Equal(t, "Summer Festival", body.Summary)
	assert.Equal(t, "The Reef | 100 Dock St | Philadelphia PA", body.Location)
	assert.Equal(t, "gig_id=g-123", body.IdentityKey)
	assert.Equal(t, 19, body.Start.Hour())
	assert.Equal(t, 30, body.Start.Minute())
	assert.Equal(t, 23, body.End.Hour())

	assert.Contains(t, body.Description, "<b>Lineup</b><br><ul><li>Alice (keys)</li><li>Bob (drums)</li></ul>")
	assert.Contains(t, body.Description, "<b>Venue</b><br>The Reef<br>100 Dock St<br>Philadelphia PA")
	assert.Contains(t, body.Description, "Calendar: Band Public | Gig: g-123")
}

func TestComposeSummaryFallbacks(t *testing.T) {
	c := newTestComposer(t)

	detail := sampleDetail()
	detail.Title = strptr("   ")
	detail.AltTitle = strptr("Private Party")
	body, err := c.Compose(detail, "Band Public")
	require.NoError(t, err)
	assert.Equal(t, "Private Party", body.Summary)

	detail.AltTitle = nil
	body, err = c.Compose(detail, "Band Public")
	require.NoError(t, err)
	assert.Equal(t, "Gig", body.Summary)
}

func TestComposeLocationSkipsEmptySegments(t *testing.T) {
	c := newTestComposer(t)

	detail := sampleDetail()
	detail.Venue.AddressLine1 = nil
	body, err := c.Compose(detail, "Band Public")
	require.NoError(t, err)
	assert.Equal(t, "The Reef | Philadelphia PA", body.Location)

	detail.Venue = nil
	body, err = c.Compose(detail, "Band Public")
	require.NoError(t, err)
	assert.Equal(t, "", body.Location)
}

func TestComposeLineupFallbackChain(t *testing.T) {
	c := newTestComposer(t)

	detail := sampleDetail()
	detail.LineupHTML = strptr("<ul><li>Pre-rendered</li></ul>")
	body, err := c.Compose(detail, "Band Public")
	require.NoError(t, err)
	assert.Contains(t, body.Description, "<b>Lineup</b><br><ul><li>Pre-rendered</li></ul>")

	detail.LineupHTML = nil
	detail.Lineup = nil
	detail.LineupText = strptr("Alice & keys\n\nBob <drums>")
	body, err = c.Compose(detail, "Band Public")
	require.NoError(t, err)
	assert.Contains(t, body.Description, "<b>Lineup</b><br>- Alice &amp; keys<br>- Bob &lt;drums&gt;")

	detail.LineupText = nil
	body, err = c.Compose(detail, "Band Public")
	require.NoError(t, err)
	assert.NotContains(t, body.Description, "<b>Lineup</b>")
}

func TestComposeNotesEscapedAndBroken(t *testing.T) {
	c := newTestComposer(t)

	detail := sampleDetail()
	detail.Notes = strptr("Load in at 5\nPA & lights provided")
	body, err := c.Compose(detail, "Band Public")
	require.NoError(t, err)

	assert.Contains(t, body.Description, "<b>Notes</b><br>Load in at 5<br>PA &amp; lights provided")
}

func TestComposeBadDateFails(t *testing.T) {
	c := newTestComposer(t)

	detail := sampleDetail()
	detail.EventDate = "sometime in June"
	_, err := c.Compose(detail, "Band Public")
	assert.Error(t, err)
}
