package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gigdesk/gigdesk-api/internal/calendar"
	"github.com/gigdesk/gigdesk-api/internal/lineup"
	"github.com/gigdesk/gigdesk-api/internal/mail"
	"github.com/gigdesk/gigdesk-api/internal/models"
	"github.com/gigdesk/gigdesk-api/internal/schedule"
)

// defaultWindowDays is how far ahead the weekly digest looks.
const defaultWindowDays = 7

// DigestGigStore lists the gigs a digest covers.
type DigestGigStore interface {
	ListBetween(ctx context.Context, from, to string) ([]models.Gig, error)
}

// Digester sends the weekly schedule digest to the band ops addresses. It is
// driven by the cron scheduler in the gateway, not by request traffic.
type Digester struct {
	gigs       DigestGigStore
	sender     mail.Sender
	zone       *time.Location
	bandName   string
	recipients []string
	windowDays int
	log        *zap.Logger
}

// NewDigester constructs a Digester. A windowDays of zero or below falls
// back to one week.
func NewDigester(gigs DigestGigStore, sender mail.Sender, zone *time.Location, bandName string, recipients []string, windowDays int, log *zap.Logger) *Digester {
	if zone == nil {
		zone = schedule.DefaultZone()
	}
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Digester{
		gigs:       gigs,
		sender:     sender,
		zone:       zone,
		bandName:   bandName,
		recipients: recipients,
		windowDays: windowDays,
		log:        log,
	}
}

// SendWeekly mails the next seven days of gigs. A week with no gigs sends
// nothing at all.
func (d *Digester) SendWeekly(ctx context.Context) error {
	if len(d.recipients) == 0 {
		return nil
	}

	now := time.Now().In(d.zone)
	from := now.Format("2006-01-02")
	to := now.AddDate(0, 0, d.windowDays).Format("2006-01-02")

	gigs, err := d.gigs.ListBetween(ctx, from, to)
	if err != nil {
		return fmt.Errorf("list digest gigs: %w", err)
	}
	if len(gigs) == 0 {
		d.log.Info("weekly digest skipped, no upcoming gigs")
		return nil
	}

	msg := mail.Message{
		To:      d.recipients,
		Subject: fmt.Sprintf("%s schedule: %s to %s", d.bandName, from, to),
		HTML:    d.body(gigs),
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send weekly digest: %w", err)
	}
	d.log.Info("weekly digest sent", zap.Int("gigs", len(gigs)), zap.Strings("to", d.recipients))
	return nil
}

// body renders one table row per gig, flagging rows still missing a sound
// tech so staffing gaps surface before the week starts.
func (d *Digester) body(gigs []models.Gig) string {
	var b strings.Builder
	b.WriteString("<p>Upcoming gigs for " + lineup.EscapeMarkup(d.bandName) + ":</p>")
	b.WriteString(`<table cellpadding="4" cellspacing="0">`)
	b.WriteString("<tr><th>Date</th><th>Event</th><th>Time</th><th>Sound</th></tr>")
	for _, gig := range gigs {
		detail := models.GigDetail{Gig: gig}
		date := gig.EventDate
		if day, err := schedule.ParseDate(gig.EventDate); err == nil {
			date = day.Format("Mon Jan 2")
		}
		when := ""
		if start, end, err := schedule.Span(gig.EventDate, deref(gig.StartTime), deref(gig.EndTime), d.zone); err == nil {
			when = start.Format("3:04 PM") + " to " + end.Format("3:04 PM")
		}
		sound := "NEEDED"
		if gig.SoundTechID != nil {
			sound = "booked"
		}
		b.WriteString("<tr><td>" + lineup.EscapeMarkup(date) + "</td><td>" +
			lineup.EscapeMarkup(calendar.Summary(detail)) + "</td><td>" +
			when + "</td><td>" + sound + "</td></tr>")
	}
	b.WriteString("</table>")
	return b.String()
}
