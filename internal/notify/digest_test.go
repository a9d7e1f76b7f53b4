package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigdesk/gigdesk-api/internal/models"
)

type fakeDigestStore struct {
	gigs []models.Gig
	from string
	to   string
}

func (f *fakeDigestStore) ListBetween(_ context.Context, from, to string) ([]models.Gig, error) {
	f.from, f.to = from, to
	return f.gigs, nil
}

func TestSendWeeklyDigest(t *testing.T) {
	store := &fakeDigestStore{gigs: []models.Gig{
		{ID: "g-1", Title: strptr("Summer Festival"), EventDate: "2026-06-20", StartTime: strptr("19:30"), EndTime: strptr("23:00"), SoundTechID: strptr("st-1")},
		{ID: "g-2", Title: strptr("Club Night"), EventDate: "2026-06-22"},
	}}
	sender := &fakeSender{}
	loc, _ := time.LoadLocation("America/New_York")
	d := NewDigester(store, sender, loc, "The Tides", []string{"ops@tides.example"}, 7, nil)

	err := d.SendWeekly(context.Background())
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"ops@tides.example"}, msg.To)
	assert.Contains(t, msg.Subject, "The Tides schedule")
	assert.Contains(t, msg.HTML, "Summer Festival")
	assert.Contains(t, msg.HTML, "7:30 PM to 11:00 PM")
	assert.Contains(t, msg.HTML, "NEEDED")

	// Window is one week out from today.
	fromDay, err := time.Parse("2006-01-02", store.from)
	require.NoError(t, err)
	toDay, err := time.Parse("2006-01-02", store.to)
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, toDay.Sub(fromDay))
}

func TestSendWeeklyDigestEmptyWeekSendsNothing(t *testing.T) {
	sender := &fakeSender{}
	d := NewDigester(&fakeDigestStore{}, sender, nil, "The Tides", []string{"ops@tides.example"}, 0, nil)

	require.NoError(t, d.SendWeekly(context.Background()))
	assert.Empty(t, sender.sent)
}

func TestSendWeeklyDigestNoRecipients(t *testing.T) {
	store := &fakeDigestStore{gigs: []models.Gig{{ID: "g-1", EventDate: "2026-06-20"}}}
	sender := &fakeSender{}
	d := NewDigester(store, sender, nil, "The Tides", nil, 7, nil)

	require.NoError(t, d.SendWeekly(context.Background()))
	assert.Empty(t, sender.sent)
	assert.Empty(t, store.from)
}
