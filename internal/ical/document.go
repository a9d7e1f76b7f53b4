package ical

import "strings"

// Document models an interchange document as its ordered physical lines with
// an index of logical property names. Patching goes through the index instead
// of repeated full-text scans, but rendering reproduces the exact bytes a
// plain string edit would have produced.
type Document struct {
	lines []string
	index map[string]int
}

// Parse splits rendered interchange text into a Document. Both CRLF and bare
// LF input are accepted; rendering always emits CRLF.
func Parse(text string) *Document {
	normalized := strings.ReplaceAll(text, CRLF, "\n")
	normalized = strings.TrimSuffix(normalized, "\n")

	var lines []string
	if normalized != "" {
		lines = strings.Split(normalized, "\n")
	}

	d := &Document{lines: lines}
	d.reindex()
	return d
}

// Render emits the document as CRLF-terminated text.
func (d *Document) Render() string {
	if len(d.lines) == 0 {
		return ""
	}
	return strings.Join(d.lines, CRLF) + CRLF
}

// Bytes renders the document for use as an attachment body.
func (d *Document) Bytes() []byte {
	return []byte(d.Render())
}

// HasProperty reports whether a logical line for the named property exists.
func (d *Document) HasProperty(name string) bool {
	_, ok := d.index[strings.ToUpper(name)]
	return ok
}

// Contains reports whether the document's unfolded logical text contains the
// marker. Matching against the rendered form would miss any property long
// enough to have been split across continuation lines.
func (d *Document) Contains(marker string) bool {
	return strings.Contains(UnfoldLine(d.Render()), marker)
}

// EnsureProperty inserts the folded form of line immediately before the
// event's closing marker unless marker is already present. Applying it twice
// yields identical bytes.
func (d *Document) EnsureProperty(line, marker string) {
	if d.Contains(marker) {
		return
	}

	at := d.lineIndex("END:VEVENT")
	if at < 0 {
		return
	}

	folded := strings.Split(FoldLine(line), CRLF)
	d.lines = append(d.lines[:at], append(folded, d.lines[at:]...)...)
	d.reindex()
}

// RemovePropertyBlock removes every logical line starting with prefix along
// with its folded continuation lines. A prefix without a trailing delimiter
// only matches at a ':' or ';' boundary, so removing LOCATION leaves
// LOCATION-EXT style properties untouched.
func (d *Document) RemovePropertyBlock(prefix string) {
	var kept []string
	skipping := false
	for _, line := range d.lines {
		if skipping && isContinuation(line) {
			continue
		}
		skipping = false

		if matchesProperty(line, prefix) {
			skipping = true
			continue
		}
		kept = append(kept, line)
	}
	d.lines = kept
	d.reindex()
}

func (d *Document) lineIndex(exact string) int {
	for i, line := range d.lines {
		if line == exact {
			return i
		}
	}
	return -1
}

func (d *Document) reindex() {
	d.index = make(map[string]int, len(d.lines))
	for i, line := range d.lines {
		if isContinuation(line) {
			continue
		}
		name := propertyName(line)
		if name == "" {
			continue
		}
		if _, seen := d.index[name]; !seen {
			d.index[name] = i
		}
	}
}

func isContinuation(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

func propertyName(line string) string {
	end := strings.IndexAny(line, ":;")
	if end <= 0 {
		return ""
	}
	return strings.ToUpper(line[:end])
}

func matchesProperty(line, prefix string) bool {
	if !strings.HasPrefix(line, prefix) {
		return false
	}
	if strings.HasSuffix(prefix, ":") || strings.HasSuffix(prefix, ";") {
		return true
	}
	rest := line[len(prefix):]
	return rest == "" || rest[0] == ':' || rest[0] == ';'
}
