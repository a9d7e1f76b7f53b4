package calendar

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"

	"github.com/gigdesk/gigdesk-api/internal/lineup"
	"github.com/gigdesk/gigdesk-api/internal/models"
	"github.com/gigdesk/gigdesk-api/pkg/backoff"
)

type fakeSource struct {
	detail models.GigDetail
	err    error
}

func (f *fakeSource) FindDetail(_ context.Context, _ string) (models.GigDetail, error) {
	return f.detail, f.err
}

// fakeProvider is a one-calendar in-memory backend keyed by identity key.
type fakeProvider struct {
	events   map[string]*RemoteEvent
	bodies   map[string]EventBody
	probeErr error
	findErrs []error
	inserts  int
	updates  int
	nextID   int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		events: map[string]*RemoteEvent{},
		bodies: map[string]EventBody{},
	}
}

func (f *fakeProvider) Probe(_ context.Context, _ string) error { return f.probeErr }

func (f *fakeProvider) FindEventByIdentity(_ context.Context, _, identityKey string) (*RemoteEvent, error) {
	if len(f.findErrs) > 0 {
		err := f.findErrs[0]
		f.findErrs = f.findErrs[1:]
		return nil, err
	}
	return f.events[identityKey], nil
}

func (f *fakeProvider) Insert(_ context.Context, _ string, body EventBody) (*RemoteEvent, error) {
	f.inserts++
	f.nextID++
	ev := &RemoteEvent{ID: fmt.Sprintf("ev-%d", f.nextID), HTMLLink: "https://cal.example/ev"}
	f.events[body.IdentityKey] = ev
	f.bodies[body.IdentityKey] = body
	return ev, nil
}

func (f *fakeProvider) Update(_ context.Context, _, eventID string, body EventBody) (*RemoteEvent, error) {
	f.updates++
	f.bodies[body.IdentityKey] = body
	return &RemoteEvent{ID: eventID, HTMLLink: "https://cal.example/ev"}, nil
}

func quickPolicy() backoff.Policy {
	return backoff.Policy{Attempts: 3, Base: time.Millisecond, MaxDelay: time.Millisecond, JitterMax: 0}
}

func newTestEngine(t *testing.T, source GigSource, provider *fakeProvider) *Engine {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	connect := func(context.Context) (Provider, error) { return provider, nil }
	labels := map[string]string{"Band Public": "cal-public@example"}
	return NewEngine(source, NewComposer(lineup.NewHTMLRenderer(), loc), connect, labels, quickPolicy(), zap.NewNop())
}

func TestSyncCreatesThenUpdatesSameEvent(t *testing.T) {
	provider := newFakeProvider()
	source := &fakeSource{detail: sampleDetail()}
	engine := newTestEngine(t, source, provider)

	first := engine.Sync(context.Background(), "g-123", "Band Public")
	require.Equal(t, OutcomeCreated, first.Outcome)
	require.NotEmpty(t, first.EventID)
	assert.Equal(t, "cal-public@example", first.CalendarID)
	assert.Equal(t, "Summer Festival", first.Summary)

	// A retitle and reschedule still lands on the same remote event.
	source.detail.Title = strptr("Renamed Festival")
	source.detail.StartTime = strptr("8:00 PM")

	second := engine.Sync(context.Background(), "g-123", "Band Public")
	assert.Equal(t, OutcomeUpdated, second.Outcome)
	assert.Equal(t, first.EventID, second.EventID)
	assert.Equal(t, 1, provider.inserts)
	assert.Equal(t, 1, provider.updates)
	assert.Equal(t, "Renamed Festival", provider.bodies["gig_id=g-123"].Summary)
}

func TestSyncMissingGigID(t *testing.T) {
	engine := newTestEngine(t, &fakeSource{}, newFakeProvider())

	res := engine.Sync(context.Background(), "", "Band Public")
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, StageArgs, res.Stage)
	assert.Equal(t, "gig_id is required", res.Message)
}

func TestSyncUnknownLabelPassesThroughAsRawID(t *testing.T) {
	provider := newFakeProvider()
	engine := newTestEngine(t, &fakeSource{detail: sampleDetail()}, provider)

	res := engine.Sync(context.Background(), "g-123", "raw-id@group.calendar")
	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.Equal(t, "raw-id@group.calendar", res.CalendarID)
}

func TestSyncProbeFailure(t *testing.T) {
	provider := newFakeProvider()
	provider.probeErr = errors.New("notFound")
	engine := newTestEngine(t, &fakeSource{detail: sampleDetail()}, provider)

	res := engine.Sync(context.Background(), "g-123", "Band Public")
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, StageResolveCalendar, res.Stage)
	assert.Equal(t, "cal-public@example", res.CalendarID)
	assert.Zero(t, provider.inserts)
}

func TestSyncAuthFailureNotCached(t *testing.T) {
	provider := newFakeProvider()
	dialErr := errors.New("invalid_grant")
	connect := func(context.Context) (Provider, error) {
		if dialErr != nil {
			return nil, dialErr
		}
		return provider, nil
	}

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	labels := map[string]string{"Band Public": "cal-public@example"}
	engine := NewEngine(&fakeSource{detail: sampleDetail()}, NewComposer(lineup.NewHTMLRenderer(), loc), connect, labels, quickPolicy(), zap.NewNop())

	res := engine.Sync(context.Background(), "g-123", "Band Public")
	require.Equal(t, OutcomeFailed, res.Outcome)
	require.Equal(t, StageAuth, res.Stage)
	assert.Empty(t, res.CalendarID)

	// Clearing the credential problem lets the next run connect fresh.
	dialErr = nil
	res = engine.Sync(context.Background(), "g-123", "Band Public")
	assert.Equal(t, OutcomeCreated, res.Outcome)
}

func TestSyncFetchSourceFailure(t *testing.T) {
	engine := newTestEngine(t, &fakeSource{err: errors.New("gig not found")}, newFakeProvider())

	res := engine.Sync(context.Background(), "g-missing", "Band Public")
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, StageFetchSource, res.Stage)
}

func TestSyncComposeFailure(t *testing.T) {
	detail := sampleDetail()
	detail.EventDate = "next summer"
	engine := newTestEngine(t, &fakeSource{detail: detail}, newFakeProvider())

	res := engine.Sync(context.Background(), "g-123", "Band Public")
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, StageCompose, res.Stage)
}

func TestSyncRetriesTransientSearchErrors(t *testing.T) {
	provider := newFakeProvider()
	provider.findErrs = []error{
		&googleapi.Error{Code: 429},
		&googleapi.Error{Code: 503},
	}
	engine := newTestEngine(t, &fakeSource{detail: sampleDetail()}, provider)

	res := engine.Sync(context.Background(), "g-123", "Band Public")
	assert.Equal(t, OutcomeCreated, res.Outcome)
}

func TestSyncDoesNotRetryPermanentSearchErrors(t *testing.T) {
	provider := newFakeProvider()
	provider.findErrs = []error{&googleapi.Error{Code: 403}}
	engine := newTestEngine(t, &fakeSource{detail: sampleDetail()}, provider)

	res := engine.Sync(context.Background(), "g-123", "Band Public")
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, StageSearch, res.Stage)
	assert.Zero(t, provider.inserts)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&googleapi.Error{Code: 429}))
	assert.True(t, IsTransient(&googleapi.Error{Code: 500}))
	assert.False(t, IsTransient(&googleapi.Error{Code: 404}))
	assert.False(t, IsTransient(errors.New("plain")))
}
