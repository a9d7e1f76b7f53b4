// Package ical generates and patches RFC 5545-style interchange documents.
// The emitter controls bytes exactly: property escaping, 75-octet line
// folding, and idempotent property-block surgery on already-rendered text.
package ical

import "strings"

// CRLF is the physical line terminator of the interchange format.
const CRLF = "\r\n"

// ContentType is the MIME type used when attaching an invite.
const ContentType = "text/calendar"

// maxContentOctets is the content budget per physical line. Continuation
// lines spend one extra octet on their leading space, keeping every physical
// line within the format's 75-octet ceiling.
const maxContentOctets = 73

// EscapeText escapes a TEXT property value. Backslash must go first so the
// escape sequences introduced for the other characters survive intact; line
// breaks of any flavor become the literal two-character sequence \n.
func EscapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

// UnescapeText reverses EscapeText. Escaped newlines come back as bare LF.
func UnescapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// FoldLine splits one logical content line into physical lines of at most 73
// content octets, every continuation prefixed by a single space and joined
// with CRLF. The split is by octet, not rune; a multi-byte sequence may be
// divided across physical lines and reassembles on unfolding.
func FoldLine(line string) string {
	if len(line) <= maxContentOctets {
		return line
	}

	var parts []string
	for len(line) > maxContentOctets {
		parts = append(parts, line[:maxContentOctets])
		line = line[maxContentOctets:]
	}
	if len(line) > 0 {
		parts = append(parts, line)
	}
	return strings.Join(parts, CRLF+" ")
}

// UnfoldLine rejoins a folded physical-line group into the logical line.
func UnfoldLine(folded string) string {
	parts := strings.Split(folded, CRLF+" ")
	return strings.Join(parts, "")
}
