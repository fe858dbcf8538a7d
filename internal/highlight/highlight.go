// Package highlight finds SQL keywords in query text so the presentation
// layer can style them. It runs on every edit of the query buffer and never
// touches the store.
//
// The default scan looks for each keyword as a plain case-insensitive
// substring, one keyword at a time. A keyword inside a longer identifier
// is therefore highlighted too ("IN" in "JOIN", "OR" in "score"). Use
// WithWordBoundaries for matches that respect identifier boundaries.
package highlight

import (
	"sort"

	"github.com/mesh-intelligence/querybench/pkg/types"
)

// keyword is one vocabulary entry and the class its matches get.
type keyword struct {
	text  string
	class string
}

// vocabulary is scanned in this order. All entries are upper-case ASCII.
var vocabulary = []keyword{
	{"SELECT", types.ClassKeyword},
	{"FROM", types.ClassKeyword},
	{"JOIN", types.ClassKeyword},
	{"WHERE", types.ClassKeyword},
	{"AND", types.ClassKeyword},
	{"OR", types.ClassKeyword},
	{"AVG", types.ClassFunction},
	{"COUNT", types.ClassFunction},
	{"DISTINCT", types.ClassKeyword},
	{"ON", types.ClassKeyword},
	{"IN", types.ClassKeyword},
	{"ORDER", types.ClassKeyword},
	{"BY", types.ClassKeyword},
	{"PARTITION", types.ClassKeyword},
	{"WITH", types.ClassKeyword},
	{"DESC", types.ClassKeyword},
	{"ASC", types.ClassKeyword},
	{"GROUP", types.ClassKeyword},
	{"AS", types.ClassKeyword},
	{"LIMIT", types.ClassKeyword},
	{"IS NULL", types.ClassKeyword},
	{"IS", types.ClassKeyword},
	{"LEFT", types.ClassKeyword},
	{"RIGHT", types.ClassKeyword},
}

// Keywords returns the vocabulary in scan order.
func Keywords() []string {
	out := make([]string, len(vocabulary))
	for i, kw := range vocabulary {
		out[i] = kw.text
	}
	return out
}

// Highlighter scans text for vocabulary keywords.
type Highlighter struct {
	wordBoundaries bool
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithWordBoundaries only reports matches that are not preceded or
// followed by a letter, digit, or underscore.
func WithWordBoundaries() Option {
	return func(h *Highlighter) {
		h.wordBoundaries = true
	}
}

// New returns a Highlighter with the given options.
func New(opts ...Option) *Highlighter {
	h := &Highlighter{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var defaultHighlighter = New()

// Highlight returns the keyword spans of text using substring matching.
func Highlight(text string) []types.Span {
	return defaultHighlighter.Highlight(text)
}

// Highlight returns every non-overlapping occurrence of each keyword in
// text, sorted by start offset, then end offset, then class. Occurrences of
// different keywords may overlap ("IS NULL" and "IS"). The result depends
// only on text.
func (h *Highlighter) Highlight(text string) []types.Span {
	var spans []types.Span
	for _, kw := range vocabulary {
		n := len(kw.text)
		for i := 0; i+n <= len(text); {
			idx := indexFold(text[i:], kw.text)
			if idx < 0 {
				break
			}
			start := i + idx
			end := start + n
			if h.wordBoundaries && !atBoundary(text, start, end) {
				i = start + 1
				continue
			}
			spans = append(spans, types.Span{Start: start, End: end, Class: kw.class})
			i = end
		}
	}
	return normalize(spans)
}

// normalize sorts spans and drops exact duplicates.
func normalize(spans []types.Span) []types.Span {
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool {
		a, b := spans[i], spans[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return a.Class < b.Class
	})
	out := spans[:1]
	for _, s := range spans[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}

// indexFold is strings.Index with ASCII case folding. upper must be
// upper-case ASCII.
func indexFold(s, upper string) int {
	n := len(upper)
	for i := 0; i+n <= len(s); i++ {
		match := true
		for j := 0; j < n; j++ {
			if toUpper(s[i+j]) != upper[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func toUpper(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

func atBoundary(text string, start, end int) bool {
	if start > 0 && isIdent(text[start-1]) {
		return false
	}
	if end < len(text) && isIdent(text[end]) {
		return false
	}
	return true
}

func isIdent(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
