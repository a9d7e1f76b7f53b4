package ical

import (
	"fmt"
	"strings"
	"time"
)

const (
	prodID      = "-//GigDesk//Band Back Office//EN"
	localLayout = "20060102T150405"
	stampLayout = "20060102T150405Z"
)

// Event is the input for a minimal single-event invite.
type Event struct {
	UID         string
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
	ZoneName    string
	// DTStamp defaults to the current UTC instant when zero. Tests pin it
	// for byte-stable output.
	DTStamp time.Time
}

// BuildInvite renders the minimal VCALENDAR/VEVENT envelope. Optional text
// properties are omitted when empty, so the document never carries a dangling
// property, and each singleton property appears at most once.
func BuildInvite(ev Event) *Document {
	stamp := ev.DTStamp
	if stamp.IsZero() {
		stamp = time.Now().UTC()
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"PRODID:" + prodID,
		"VERSION:2.0",
		"CALSCALE:GREGORIAN",
		"METHOD:REQUEST",
		"BEGIN:VEVENT",
		FoldLine("UID:" + ev.UID),
		"DTSTAMP:" + stamp.UTC().Format(stampLayout),
		fmt.Sprintf("DTSTART;TZID=%s:%s", ev.ZoneName, ev.Start.Format(localLayout)),
		fmt.Sprintf("DTEND;TZID=%s:%s", ev.ZoneName, ev.End.Format(localLayout)),
		FoldLine("SUMMARY:" + EscapeText(ev.Summary)),
	}
	if ev.Location != "" {
		lines = append(lines, FoldLine("LOCATION:"+EscapeText(ev.Location)))
	}
	if ev.Description != "" {
		lines = append(lines, FoldLine("DESCRIPTION:"+EscapeText(ev.Description)))
	}
	lines = append(lines,
		"STATUS:CONFIRMED",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	return Parse(strings.Join(lines, CRLF) + CRLF)
}

// SetOrganizer replaces any existing ORGANIZER property.
func (d *Document) SetOrganizer(email string) {
	d.RemovePropertyBlock("ORGANIZER")
	d.EnsureProperty("ORGANIZER:mailto:"+email, "ORGANIZER:")
}

// AddAttendee appends an attendee once; repeated calls for the same address
// are no-ops.
func (d *Document) AddAttendee(email string) {
	line := "ATTENDEE:mailto:" + email
	d.EnsureProperty(line, line)
}

// SetAltDescription replaces the HTML alternate of the description.
func (d *Document) SetAltDescription(html string) {
	d.RemovePropertyBlock("X-ALT-DESC")
	d.EnsureProperty("X-ALT-DESC;FMTTYPE=text/html:"+EscapeText(html), "X-ALT-DESC")
}

// InviteFilename derives the attachment filename from a gig title and start.
func InviteFilename(title string, start time.Time) string {
	if title == "" {
		title = "Gig"
	}
	return fmt.Sprintf("%s-%s.ics", strings.ReplaceAll(title, " ", "_"), start.Format("20060102"))
}
