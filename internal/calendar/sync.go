package calendar

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/gigdesk/gigdesk-api/internal/models"
	"github.com/gigdesk/gigdesk-api/pkg/backoff"
)

// Stage names the pipeline step a sync failure is attributed to.
type Stage string

const (
	StageArgs            Stage = "args"
	StageAuth            Stage = "auth"
	StageResolveCalendar Stage = "resolve_calendar"
	StageFetchSource     Stage = "fetch_source"
	StageCompose         Stage = "compose"
	StageSearch          Stage = "search"
	StageInsert          Stage = "insert"
	StageUpdate          Stage = "update"
)

// Outcome is the terminal state of a sync run.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeFailed  Outcome = "failed"
)

// SyncResult reports one sync run. Failed results carry the stage that broke,
// a message safe to surface to the caller, and the resolved calendar id when
// the pipeline got that far; successes carry the remote event id and link.
type SyncResult struct {
	Outcome    Outcome `json:"outcome"`
	EventID    string  `json:"eventId,omitempty"`
	CalendarID string  `json:"calendarId,omitempty"`
	Summary    string  `json:"summary,omitempty"`
	HTMLLink   string  `json:"htmlLink,omitempty"`
	Stage      Stage   `json:"stage,omitempty"`
	Message    string  `json:"message,omitempty"`
}

func failed(stage Stage, message string) SyncResult {
	return SyncResult{Outcome: OutcomeFailed, Stage: stage, Message: message}
}

func failedIn(stage Stage, message, calendarID string) SyncResult {
	res := failed(stage, message)
	res.CalendarID = calendarID
	return res
}

// RemoteEvent is the slim view of a provider-side event the engine needs.
type RemoteEvent struct {
	ID       string
	HTMLLink string
}

// Provider is the calendar backend. Search is keyed by the private identity
// property, never by summary or time, so renames and reschedules still find
// the same remote event.
type Provider interface {
	Probe(ctx context.Context, calendarID string) error
	FindEventByIdentity(ctx context.Context, calendarID, identityKey string) (*RemoteEvent, error)
	Insert(ctx context.Context, calendarID string, body EventBody) (*RemoteEvent, error)
	Update(ctx context.Context, calendarID, eventID string, body EventBody) (*RemoteEvent, error)
}

// GigSource loads the denormalized gig the composer consumes.
type GigSource interface {
	FindDetail(ctx context.Context, id string) (models.GigDetail, error)
}

// ProviderFactory opens a provider session. Called at most once per Engine;
// the session is cached for subsequent runs.
type ProviderFactory func(ctx context.Context) (Provider, error)

// Engine drives the upsert pipeline: validate args, connect, resolve the
// target calendar, load the gig, compose the body, then search by identity
// key and insert or update. Every run is stateless apart from the cached
// provider session.
type Engine struct {
	source   GigSource
	composer *Composer
	connect  ProviderFactory
	labels   map[string]string
	policy   backoff.Policy
	log      *zap.Logger

	mu       sync.Mutex
	provider Provider
}

// NewEngine constructs an Engine. The labels map translates human calendar
// labels to provider calendar ids; a label with no entry is treated as a raw
// calendar id and passed through unchanged.
func NewEngine(source GigSource, composer *Composer, connect ProviderFactory, labels map[string]string, policy backoff.Policy, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		source:   source,
		composer: composer,
		connect:  connect,
		labels:   labels,
		policy:   policy,
		log:      log,
	}
}

// Sync upserts the calendar event for one gig. Pipeline failures come back
// as a Failed result rather than an error; err is reserved for broken engine
// wiring.
func (e *Engine) Sync(ctx context.Context, gigID, calendarLabel string) SyncResult {
	if gigID == "" {
		return failed(StageArgs, "gig_id is required")
	}
	if calendarLabel == "" {
		return failed(StageArgs, "calendar label is required")
	}

	provider, err := e.session(ctx)
	if err != nil {
		e.log.Warn("calendar auth failed", zap.Error(err))
		return failed(StageAuth, err.Error())
	}

	calendarID, ok := e.labels[calendarLabel]
	if !ok {
		calendarID = calendarLabel
	}
	if err := provider.Probe(ctx, calendarID); err != nil {
		return failedIn(StageResolveCalendar, fmt.Sprintf("calendar %q is not accessible: %v", calendarID, err), calendarID)
	}

	detail, err := e.source.FindDetail(ctx, gigID)
	if err != nil {
		return failedIn(StageFetchSource, err.Error(), calendarID)
	}

	body, err := e.composer.Compose(detail, calendarLabel)
	if err != nil {
		return failedIn(StageCompose, err.Error(), calendarID)
	}

	var existing *RemoteEvent
	err = e.policy.Retry(func() error {
		var ferr error
		existing, ferr = provider.FindEventByIdentity(ctx, calendarID, body.IdentityKey)
		return ferr
	}, IsTransient)
	if err != nil {
		return failedIn(StageSearch, err.Error(), calendarID)
	}

	if existing == nil {
		var created *RemoteEvent
		err = e.policy.Retry(func() error {
			var ierr error
			created, ierr = provider.Insert(ctx, calendarID, body)
			return ierr
		}, IsTransient)
		if err != nil {
			return failedIn(StageInsert, err.Error(), calendarID)
		}
		e.log.Info("calendar event created",
			zap.String("gig_id", gigID),
			zap.String("calendar", calendarLabel),
			zap.String("event_id", created.ID))
		return SyncResult{Outcome: OutcomeCreated, EventID: created.ID, CalendarID: calendarID, Summary: body.Summary, HTMLLink: created.HTMLLink}
	}

	var updated *RemoteEvent
	err = e.policy.Retry(func() error {
		var uerr error
		updated, uerr = provider.Update(ctx, calendarID, existing.ID, body)
		return uerr
	}, IsTransient)
	if err != nil {
		return failedIn(StageUpdate, err.Error(), calendarID)
	}
	e.log.Info("calendar event updated",
		zap.String("gig_id", gigID),
		zap.String("calendar", calendarLabel),
		zap.String("event_id", updated.ID))
	return SyncResult{Outcome: OutcomeUpdated, EventID: updated.ID, CalendarID: calendarID, Summary: body.Summary, HTMLLink: updated.HTMLLink}
}

// session returns the cached provider, dialing it on first use. A failed dial
// is not cached, so a later run can retry with fresh creds.
func (e *Engine) session(ctx context.Context) (Provider, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.provider != nil {
		return e.provider, nil
	}

	provider, err := e.connect(ctx)
	if err != nil {
		return nil, err
	}

	e.provider = provider
	return provider, nil
}
