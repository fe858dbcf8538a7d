package types

// Token classes reported by the highlighter.
const (
	ClassKeyword  = "keyword"
	ClassFunction = "function"
)

// Span marks a recognized keyword occurrence in query text. Start and End
// are byte offsets; End is exclusive.
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Class string `json:"class"`
}

// Len returns the span width in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}
