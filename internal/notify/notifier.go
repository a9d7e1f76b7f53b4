// Package notify composes and sends the outbound gig emails: player
// invites, venue and sound tech confirmations and agent summaries. Every
// attempt, delivered or skipped, lands in the email audit trail.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gigdesk/gigdesk-api/internal/calendar"
	"github.com/gigdesk/gigdesk-api/internal/ical"
	"github.com/gigdesk/gigdesk-api/internal/lineup"
	"github.com/gigdesk/gigdesk-api/internal/mail"
	"github.com/gigdesk/gigdesk-api/internal/models"
	"github.com/gigdesk/gigdesk-api/internal/schedule"
	"github.com/gigdesk/gigdesk-api/pkg/errors"
)

// Notification kinds written to the audit trail.
const (
	KindPlayerInvite     = "player-invite"
	KindVenueConfirm     = "venue-confirm"
	KindSoundTechConfirm = "soundtech-confirm"
	KindAgentConfirm     = "agent-confirm"
)

// Audience values accepted by Notify.
const (
	AudiencePlayers   = "players"
	AudienceVenue     = "venue"
	AudienceSoundTech = "soundtech"
	AudienceAgent     = "agent"
)

// GigStore loads the gig a notification run is about.
type GigStore interface {
	FindDetail(ctx context.Context, id string) (models.GigDetail, error)
}

// ContactStore resolves the agent and sound tech attached to a gig.
type ContactStore interface {
	FindAgent(ctx context.Context, id string) (*models.Agent, error)
	FindSoundTech(ctx context.Context, id string) (*models.SoundTech, error)
}

// AuditStore appends notification attempt rows.
type AuditStore interface {
	Insert(ctx context.Context, entry *models.EmailAudit) error
}

// Result summarizes one notification run. The token ties the run's audit
// rows together.
type Result struct {
	Token   string `json:"token"`
	Sent    int    `json:"sent"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

// Notifier sends gig notifications. Construct with NewNotifier.
type Notifier struct {
	gigs     GigStore
	contacts ContactStore
	audits   AuditStore
	sender   mail.Sender
	zone     *time.Location
	bandName string
	replyTo  string
	log      *zap.Logger
}

// NewNotifier constructs a Notifier. replyTo is the booking address used as
// the invite organizer and the email reply-to.
func NewNotifier(gigs GigStore, contacts ContactStore, audits AuditStore, sender mail.Sender, zone *time.Location, bandName, replyTo string, log *zap.Logger) *Notifier {
	if zone == nil {
		zone = schedule.DefaultZone()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		gigs:     gigs,
		contacts: contacts,
		audits:   audits,
		sender:   sender,
		zone:     zone,
		bandName: bandName,
		replyTo:  replyTo,
		log:      log,
	}
}

// Notify dispatches a run for one audience. Unknown audiences are a
// validation error; everything else comes back as counted outcomes.
func (n *Notifier) Notify(ctx context.Context, gigID, audience string) (Result, error) {
	switch audience {
	case AudiencePlayers:
		return n.notifyPlayers(ctx, gigID)
	case AudienceVenue:
		return n.notifyVenue(ctx, gigID)
	case AudienceSoundTech:
		return n.notifySoundTech(ctx, gigID)
	case AudienceAgent:
		return n.notifyAgent(ctx, gigID)
	default:
		return Result{}, errors.Clone(errors.ErrValidation, fmt.Sprintf("unknown audience %q", audience))
	}
}

// notifyPlayers sends one invite per lineup slot. Slots without an email on
// file are audited as skips, never silently dropped.
func (n *Notifier) notifyPlayers(ctx context.Context, gigID string) (Result, error) {
	detail, err := n.gigs.FindDetail(ctx, gigID)
	if err != nil {
		return Result{}, err
	}

	res := Result{Token: uuid.NewString()}
	for _, slot := range detail.Lineup {
		email := deref(slot.Email)
		if email == "" {
			n.audit(ctx, &res, gigID, KindPlayerInvite, nil, models.AuditSkippedNoEmail, "no email on file for "+slot.Name)
			continue
		}
		attachment, err := InviteAttachment(detail, n.zone, n.replyTo, email)
		if err != nil {
			return Result{}, err
		}
		msg := mail.Message{
			To:          []string{email},
			Subject:     fmt.Sprintf("You're booked: %s - %s", calendar.Summary(detail), n.datePretty(detail)),
			HTML:        n.playerBody(detail, slot),
			ReplyTo:     n.replyTo,
			Attachments: []mail.Attachment{attachment},
		}
		n.deliver(ctx, &res, gigID, KindPlayerInvite, email, msg)
	}
	return res, nil
}

// notifyVenue sends the venue confirmation. Private gigs and agent-managed
// gigs are skipped by rule, with the skip recorded.
func (n *Notifier) notifyVenue(ctx context.Context, gigID string) (Result, error) {
	detail, err := n.gigs.FindDetail(ctx, gigID)
	if err != nil {
		return Result{}, err
	}

	res := Result{Token: uuid.NewString()}
	if detail.IsPrivate {
		n.audit(ctx, &res, gigID, KindVenueConfirm, nil, models.AuditSkippedPrivate, "")
		return res, nil
	}
	if detail.AgentID != nil {
		n.audit(ctx, &res, gigID, KindVenueConfirm, nil, models.AuditSkippedAgent, "")
		return res, nil
	}

	email := ""
	if detail.Venue != nil {
		email = deref(detail.Venue.ContactEmail)
	}
	if email == "" {
		n.audit(ctx, &res, gigID, KindVenueConfirm, nil, models.AuditSkippedNoEmail, "")
		return res, nil
	}

	attachment, err := InviteAttachment(detail, n.zone, n.replyTo, email)
	if err != nil {
		return Result{}, err
	}
	msg := mail.Message{
		To:          []string{email},
		Subject:     fmt.Sprintf("Booking confirmation: %s - %s", n.bandName, n.datePretty(detail)),
		HTML:        n.confirmBody(detail, false),
		ReplyTo:     n.replyTo,
		Attachments: []mail.Attachment{attachment},
	}
	n.deliver(ctx, &res, gigID, KindVenueConfirm, email, msg)
	return res, nil
}

func (n *Notifier) notifySoundTech(ctx context.Context, gigID string) (Result, error) {
	detail, err := n.gigs.FindDetail(ctx, gigID)
	if err != nil {
		return Result{}, err
	}
	if detail.SoundTechID == nil {
		res := Result{Token: uuid.NewString()}
		n.audit(ctx, &res, gigID, KindSoundTechConfirm, nil, models.AuditSkippedNoContact, "no sound tech assigned")
		return res, nil
	}
	tech, err := n.contacts.FindSoundTech(ctx, *detail.SoundTechID)
	if err != nil {
		return Result{}, err
	}

	res := Result{Token: uuid.NewString()}
	email := deref(tech.Email)
	if email == "" {
		n.audit(ctx, &res, gigID, KindSoundTechConfirm, nil, models.AuditSkippedNoEmail, "no email on file for "+tech.Name)
		return res, nil
	}

	attachment, err := InviteAttachment(detail, n.zone, n.replyTo, email)
	if err != nil {
		return Result{}, err
	}
	msg := mail.Message{
		To:          []string{email},
		Subject:     fmt.Sprintf("Sound: %s - %s", calendar.Summary(detail), n.datePretty(detail)),
		HTML:        n.confirmBody(detail, false),
		ReplyTo:     n.replyTo,
		Attachments: []mail.Attachment{attachment},
	}
	n.deliver(ctx, &res, gigID, KindSoundTechConfirm, email, msg)
	return res, nil
}

// notifyAgent sends the agent summary, fee included.
func (n *Notifier) notifyAgent(ctx context.Context, gigID string) (Result, error) {
	detail, err := n.gigs.FindDetail(ctx, gigID)
	if err != nil {
		return Result{}, err
	}
	if detail.AgentID == nil {
		res := Result{Token: uuid.NewString()}
		n.audit(ctx, &res, gigID, KindAgentConfirm, nil, models.AuditSkippedNoContact, "no agent assigned")
		return res, nil
	}
	agent, err := n.contacts.FindAgent(ctx, *detail.AgentID)
	if err != nil {
		return Result{}, err
	}

	res := Result{Token: uuid.NewString()}
	email := deref(agent.Email)
	if email == "" {
		n.audit(ctx, &res, gigID, KindAgentConfirm, nil, models.AuditSkippedNoEmail, "no email on file for "+agent.Name)
		return res, nil
	}

	// The booking inbox keeps a copy of every agent summary.
	msg := mail.Message{
		To:      []string{email},
		Cc:      []string{n.replyTo},
		Subject: fmt.Sprintf("Gig summary: %s - %s", calendar.Summary(detail), n.datePretty(detail)),
		HTML:    n.confirmBody(detail, true),
		ReplyTo: n.replyTo,
	}
	n.deliver(ctx, &res, gigID, KindAgentConfirm, email, msg)
	return res, nil
}

// deliver sends one message and audits the outcome.
func (n *Notifier) deliver(ctx context.Context, res *Result, gigID, kind, email string, msg mail.Message) {
	if err := n.sender.Send(ctx, msg); err != nil {
		n.log.Warn("notification send failed",
			zap.String("gig_id", gigID),
			zap.String("kind", kind),
			zap.Error(err))
		n.audit(ctx, res, gigID, kind, &email, models.AuditFailed, err.Error())
		return
	}
	n.audit(ctx, res, gigID, kind, &email, models.AuditSent, "")
}

// audit writes one row and bumps the matching counter. Audit failures are
// logged but never abort the run; the send already happened.
func (n *Notifier) audit(ctx context.Context, res *Result, gigID, kind string, email *string, status, detail string) {
	entry := &models.EmailAudit{
		Token:          res.Token,
		GigID:          gigID,
		RecipientEmail: email,
		Kind:           kind,
		Status:         status,
	}
	if detail != "" {
		entry.Detail = &detail
	}
	if err := n.audits.Insert(ctx, entry); err != nil {
		n.log.Error("audit insert failed", zap.String("gig_id", gigID), zap.Error(err))
	}

	switch status {
	case models.AuditSent:
		res.Sent++
	case models.AuditFailed:
		res.Failed++
	default:
		res.Skipped++
	}
}

// InviteAttachment renders a gig's ICS invite. The same bytes back the email
// attachments and the invite download endpoint; attendees are listed when the
// recipient is known.
func InviteAttachment(detail models.GigDetail, zone *time.Location, organizer string, attendees ...string) (mail.Attachment, error) {
	if zone == nil {
		zone = schedule.DefaultZone()
	}
	start, end, err := schedule.Span(detail.EventDate, deref(detail.StartTime), deref(detail.EndTime), zone)
	if err != nil {
		return mail.Attachment{}, err
	}

	var desc strings.Builder
	if len(detail.Lineup) > 0 {
		desc.WriteString("Lineup:")
		for _, slot := range detail.Lineup {
			desc.WriteString("\n- " + slot.Name)
			if slot.Role != "" {
				desc.WriteString(" (" + slot.Role + ")")
			}
		}
	}
	if notes := strings.TrimSpace(deref(detail.Notes)); notes != "" {
		if desc.Len() > 0 {
			desc.WriteString("\n\n")
		}
		desc.WriteString(notes)
	}

	doc := ical.BuildInvite(ical.Event{
		UID:         "gigdesk-" + detail.ID + "@gigdesk",
		Summary:     calendar.Summary(detail),
		Location:    calendar.Location(detail.Venue),
		Description: desc.String(),
		Start:       start,
		End:         end,
		ZoneName:    zone.String(),
		DTStamp:     time.Now().UTC(),
	})
	if organizer != "" {
		doc.SetOrganizer(organizer)
	}
	for _, attendee := range attendees {
		doc.AddAttendee(attendee)
	}
	if desc.Len() > 0 {
		doc.SetAltDescription(strings.ReplaceAll(lineup.EscapeMarkup(desc.String()), "\n", "<br>"))
	}

	return mail.Attachment{
		Filename:    ical.InviteFilename(calendar.Summary(detail), start),
		Content:     doc.Bytes(),
		ContentType: ical.ContentType,
	}, nil
}

func (n *Notifier) playerBody(detail models.GigDetail, slot models.LineupSlot) string {
	var b strings.Builder
	b.WriteString("<p>Hi " + firstName(slot.Name) + ",</p>")
	b.WriteString("<p>You're on the books for the following gig. The calendar invite is attached.</p>")
	b.WriteString(mail.FactsTable(n.facts(detail, false)))
	if slot.Role != "" {
		b.WriteString("<p>Role: " + slot.Role + "</p>")
	}
	b.WriteString("<p>" + n.bandName + "</p>")
	return b.String()
}

func (n *Notifier) confirmBody(detail models.GigDetail, withFee bool) string {
	var b strings.Builder
	b.WriteString("<p>Hello,</p>")
	b.WriteString("<p>Confirming the details below for " + n.bandName + ". Reply to this email with any changes.</p>")
	b.WriteString(mail.FactsTable(n.facts(detail, withFee)))
	b.WriteString("<p>Thanks,<br>" + n.bandName + "</p>")
	return b.String()
}

// facts builds the shared facts table rows. Times that fail to resolve are
// left blank rather than failing the whole email.
func (n *Notifier) facts(detail models.GigDetail, withFee bool) []mail.Fact {
	facts := []mail.Fact{
		{Label: "Event", Value: calendar.Summary(detail)},
		{Label: "Date", Value: n.datePretty(detail)},
	}
	if start, end, err := schedule.Span(detail.EventDate, deref(detail.StartTime), deref(detail.EndTime), n.zone); err == nil {
		facts = append(facts, mail.Fact{
			Label: "Time",
			Value: start.Format("3:04 PM") + " to " + end.Format("3:04 PM"),
		})
	}
	facts = append(facts, mail.Fact{Label: "Location", Value: calendar.Location(detail.Venue)})
	if withFee && detail.Fee != nil {
		facts = append(facts, mail.Fact{Label: "Fee", Value: fmt.Sprintf("$%.2f", *detail.Fee)})
	}
	facts = append(facts, mail.Fact{Label: "Notes", Value: deref(detail.Notes)})
	return facts
}

func (n *Notifier) datePretty(detail models.GigDetail) string {
	day, err := schedule.ParseDate(detail.EventDate)
	if err != nil {
		return detail.EventDate
	}
	return day.Format("Monday, January 2, 2006")
}

func firstName(full string) string {
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	return full
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
