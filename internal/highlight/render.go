package highlight

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/mesh-intelligence/querybench/pkg/types"
)

// Style wraps highlighted text per token class.
type Style struct {
	Prefix map[string]string
	Reset  string
}

// ANSI colours keywords blue and functions cyan.
var ANSI = Style{
	Prefix: map[string]string{
		types.ClassKeyword:  "\x1b[34m",
		types.ClassFunction: "\x1b[36m",
	},
	Reset: "\x1b[0m",
}

// Plain leaves text unchanged.
var Plain = Style{}

// StyleFor returns ANSI when w is a terminal and Plain otherwise.
func StyleFor(w io.Writer) Style {
	f, ok := w.(*os.File)
	if !ok {
		return Plain
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return ANSI
	}
	return Plain
}

// Apply returns text with every span wrapped in the style for its class.
// Overlapping spans are merged and take the class of the earliest span.
func Apply(text string, spans []types.Span, style Style) string {
	if len(style.Prefix) == 0 || len(spans) == 0 {
		return text
	}

	var b strings.Builder
	pos := 0
	for _, s := range merge(spans) {
		if s.Start < pos || s.End > len(text) {
			continue
		}
		b.WriteString(text[pos:s.Start])
		b.WriteString(style.Prefix[s.Class])
		b.WriteString(text[s.Start:s.End])
		b.WriteString(style.Reset)
		pos = s.End
	}
	b.WriteString(text[pos:])
	return b.String()
}

// merge collapses overlapping spans. spans must be sorted by Start.
func merge(spans []types.Span) []types.Span {
	out := []types.Span{spans[0]}
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.Start < last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		out = append(out, s)
	}
	return out
}
