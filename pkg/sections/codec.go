package sections

import (
	"strings"

	"github.com/arthur-debert/drifters/pkg/errors"
)

const (
	StartMarker = "drifters::exclude::start"
	StopMarker  = "drifters::exclude::stop"
)

type tagKind int

const (
	notTag tagKind = iota
	startTag
	stopTag
)

// Span is one contiguous piece of a parsed document.
type Span interface {
	// Text returns the span's lines joined with their original terminators.
	Text() string
	span()
}

// SyncedSpan holds lines owned by replication.
type SyncedSpan struct {
	Lines []string
}

func (s SyncedSpan) Text() string { return strings.Join(s.Lines, "") }
func (SyncedSpan) span()          {}

// LocalOnlySpan is a tagged region owned by the local machine. Start and
// Stop hold the tag lines, Body everything in between.
type LocalOnlySpan struct {
	Start string
	Body  []string
	Stop  string
}

func (s LocalOnlySpan) Text() string {
	var b strings.Builder
	b.WriteString(s.Start)
	for _, line := range s.Body {
		b.WriteString(line)
	}
	b.WriteString(s.Stop)
	return b.String()
}

func (LocalOnlySpan) span() {}

// withoutBody returns the region reduced to its two tag lines.
func (s LocalOnlySpan) withoutBody() LocalOnlySpan {
	return LocalOnlySpan{Start: s.Start, Stop: s.Stop}
}

// Document is content split into spans, in order.
type Document struct {
	Spans []Span
}

// String reassembles the document. For a parsed document this is the
// exact input.
func (d Document) String() string {
	var b strings.Builder
	for _, s := range d.Spans {
		b.WriteString(s.Text())
	}
	return b.String()
}

// Sections returns the local-only regions in document order.
func (d Document) Sections() []LocalOnlySpan {
	var out []LocalOnlySpan
	for _, s := range d.Spans {
		if local, ok := s.(LocalOnlySpan); ok {
			out = append(out, local)
		}
	}
	return out
}

// HasSections reports whether the document contains at least one region.
func (d Document) HasSections() bool {
	for _, s := range d.Spans {
		if _, ok := s.(LocalOnlySpan); ok {
			return true
		}
	}
	return false
}

// Parse splits content into synced and local-only spans.
//
// A stop tag outside a region is kept as a synced line and a start tag inside
// an open region is part of its body. A region still open at end of input is
// a MALFORMED_CONTENT error.
func Parse(content, prefix string) (Document, error) {
	var (
		doc       Document
		synced    []string
		open      *LocalOnlySpan
		openLine  int
		lineCount int
	)

	flushSynced := func() {
		if len(synced) > 0 {
			doc.Spans = append(doc.Spans, SyncedSpan{Lines: synced})
			synced = nil
		}
	}

	for _, line := range splitLines(content) {
		lineCount++
		kind := classify(line, prefix)

		if open != nil {
			if kind == stopTag {
				open.Stop = line
				doc.Spans = append(doc.Spans, *open)
				open = nil
				continue
			}
			open.Body = append(open.Body, line)
			continue
		}

		if kind == startTag {
			flushSynced()
			open = &LocalOnlySpan{Start: line}
			openLine = lineCount
			continue
		}
		synced = append(synced, line)
	}

	if open != nil {
		return Document{}, errors.Newf(errors.ErrMalformedContent,
			"exclude section opened on line %d is never closed", openLine).
			WithDetail("line", openLine).
			WithHint("add a matching stop tag")
	}

	flushSynced()
	return doc, nil
}

// ExtractSyncable returns content with every region body removed and the tag
// lines kept. ok is false when content has no region at all, in which case
// the file is synced verbatim.
func ExtractSyncable(content, prefix string) (syncable string, ok bool, err error) {
	doc, err := Parse(content, prefix)
	if err != nil {
		return "", false, err
	}
	if !doc.HasSections() {
		return content, false, nil
	}

	stripped := Document{Spans: make([]Span, 0, len(doc.Spans))}
	for _, s := range doc.Spans {
		if local, isLocal := s.(LocalOnlySpan); isLocal {
			stripped.Spans = append(stripped.Spans, local.withoutBody())
			continue
		}
		stripped.Spans = append(stripped.Spans, s)
	}
	return stripped.String(), true, nil
}

// MergeLocal applies incoming content while keeping the local file's regions.
// Synced lines come from incoming. The Nth region of incoming is replaced by
// the Nth region of local when local has one, otherwise incoming's own region
// is kept.
func MergeLocal(local, incoming, prefix string) (string, error) {
	localDoc, err := Parse(local, prefix)
	if err != nil {
		return "", err
	}
	incomingDoc, err := Parse(incoming, prefix)
	if err != nil {
		return "", err
	}

	kept := localDoc.Sections()
	merged := Document{Spans: make([]Span, 0, len(incomingDoc.Spans))}
	ordinal := 0
	for i, s := range incomingDoc.Spans {
		region, isLocal := s.(LocalOnlySpan)
		if !isLocal {
			merged.Spans = append(merged.Spans, s)
			continue
		}
		if ordinal < len(kept) {
			replacement := kept[ordinal]
			if i < len(incomingDoc.Spans)-1 {
				replacement.Stop = terminated(replacement.Stop, region.Stop)
			}
			merged.Spans = append(merged.Spans, replacement)
		} else {
			merged.Spans = append(merged.Spans, region)
		}
		ordinal++
	}
	return merged.String(), nil
}

// terminated gives line the terminator of like when line was the unterminated
// last line of its file but is no longer last.
func terminated(line, like string) string {
	if strings.HasSuffix(line, "\n") {
		return line
	}
	if strings.HasSuffix(like, "\r\n") {
		return line + "\r\n"
	}
	return line + "\n"
}

// splitLines splits content after each newline, keeping the terminators.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func classify(line, prefix string) tagKind {
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, prefix) {
		return notTag
	}
	rest := strings.TrimLeft(trimmed[len(prefix):], " \t")
	switch {
	case hasMarker(rest, StartMarker):
		return startTag
	case hasMarker(rest, StopMarker):
		return stopTag
	}
	return notTag
}

// hasMarker reports whether rest starts with marker as a whole word:
// followed by whitespace or the end of the line.
func hasMarker(rest, marker string) bool {
	if !strings.HasPrefix(rest, marker) {
		return false
	}
	tail := rest[len(marker):]
	return tail == "" || strings.ContainsRune(" \t\r\n", rune(tail[0]))
}
