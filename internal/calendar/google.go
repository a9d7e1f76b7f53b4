package calendar

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/gigdesk/gigdesk-api/pkg/config"
)

// googleTokenURL is the OAuth token endpoint the refresh token is exchanged
// against.
const googleTokenURL = "https://oauth2.googleapis.com/token"

// GoogleProvider implements Provider on the Google Calendar API using an
// offline refresh token, so syncs run without an interactive login.
type GoogleProvider struct {
	svc *gcal.Service
}

// NewGoogleProvider dials the Calendar API with a token source built from
// the configured client credentials and refresh token.
func NewGoogleProvider(ctx context.Context, cfg config.CalendarConfig) (*GoogleProvider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, errors.New("calendar credentials are not configured")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: googleTokenURL},
		Scopes:       []string{gcal.CalendarScope},
	}
	source := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	svc, err := gcal.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("dial calendar service: %w", err)
	}
	return &GoogleProvider{svc: svc}, nil
}

// GoogleFactory adapts NewGoogleProvider to the engine's factory shape.
func GoogleFactory(cfg config.CalendarConfig) ProviderFactory {
	return func(ctx context.Context) (Provider, error) {
		return NewGoogleProvider(ctx, cfg)
	}
}

// Probe lists at most one event from the calendar, a harmless bounded read
// that surfaces permission and not-found problems before anything is written.
func (p *GoogleProvider) Probe(ctx context.Context, calendarID string) error {
	_, err := p.svc.Events.List(calendarID).MaxResults(1).Context(ctx).Do()
	return err
}

// FindEventByIdentity looks the event up by the private extended property
// carrying the identity key. At most one match is ever expected; extras are
// ignored in favor of the first.
func (p *GoogleProvider) FindEventByIdentity(ctx context.Context, calendarID, identityKey string) (*RemoteEvent, error) {
	events, err := p.svc.Events.List(calendarID).
		PrivateExtendedProperty(identityKey).
		MaxResults(1).
		SingleEvents(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	if len(events.Items) == 0 {
		return nil, nil
	}
	item := events.Items[0]
	return &RemoteEvent{ID: item.Id, HTMLLink: item.HtmlLink}, nil
}

// Insert creates a new event carrying the identity property.
func (p *GoogleProvider) Insert(ctx context.Context, calendarID string, body EventBody) (*RemoteEvent, error) {
	created, err := p.svc.Events.Insert(calendarID, toGoogleEvent(body)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return &RemoteEvent{ID: created.Id, HTMLLink: created.HtmlLink}, nil
}

// Update replaces the event wholesale. Full replacement keeps the remote
// copy a pure function of the gig record; fields cleared locally disappear
// remotely too.
func (p *GoogleProvider) Update(ctx context.Context, calendarID, eventID string, body EventBody) (*RemoteEvent, error) {
	updated, err := p.svc.Events.Update(calendarID, eventID, toGoogleEvent(body)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return &RemoteEvent{ID: updated.Id, HTMLLink: updated.HtmlLink}, nil
}

func toGoogleEvent(body EventBody) *gcal.Event {
	zone := body.Zone.String()
	gigID := body.IdentityKey[len(identityProperty)+1:]
	return &gcal.Event{
		Summary:     body.Summary,
		Location:    body.Location,
		Description: body.Description,
		Start: &gcal.EventDateTime{
			DateTime: body.Start.Format("2006-01-02T15:04:05"),
			TimeZone: zone,
		},
		End: &gcal.EventDateTime{
			DateTime: body.End.Format("2006-01-02T15:04:05"),
			TimeZone: zone,
		},
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: map[string]string{identityProperty: gigID},
		},
	}
}

// IsTransient reports whether a provider error is worth retrying: rate
// limits and server-side failures, nothing else.
func IsTransient(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == 429 || apiErr.Code >= 500
}
