package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/querybench/internal/query"
	"github.com/mesh-intelligence/querybench/pkg/types"
)

func kw(start, end int) types.Span {
	return types.Span{Start: start, End: end, Class: types.ClassKeyword}
}

func fn(start, end int) types.Span {
	return types.Span{Start: start, End: end, Class: types.ClassFunction}
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []types.Span
	}{
		{
			name: "empty text",
			text: "",
			want: nil,
		},
		{
			name: "plain select",
			text: "SELECT * FROM t",
			want: []types.Span{kw(0, 6), kw(9, 13)},
		},
		{
			name: "case insensitive with aggregate",
			text: "select avg(score) from t",
			want: []types.Span{kw(0, 6), fn(7, 10), kw(13, 15), kw(18, 22)},
		},
		{
			name: "multi word keyword overlaps its prefix",
			text: "x IS NULL",
			want: []types.Span{kw(2, 4), kw(2, 9)},
		},
		{
			name: "every occurrence of a keyword is reported",
			text: "a and b AND c",
			want: []types.Span{kw(2, 5), kw(8, 11)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Highlight(tt.text))
		})
	}
}

// Substring matching highlights keywords inside identifiers. This is the
// documented behavior of the default scan, not an accident.
func TestHighlight_OverMatchesInsideIdentifiers(t *testing.T) {
	assert.Equal(t, []types.Span{kw(0, 4), kw(2, 4)}, Highlight("JOIN"))
	assert.Equal(t, []types.Span{kw(2, 4)}, Highlight("score"))
}

func TestHighlight_WordBoundaries(t *testing.T) {
	h := New(WithWordBoundaries())

	got := h.Highlight("SELECT score FROM t JOIN u")
	assert.Equal(t, []types.Span{kw(0, 6), kw(13, 17), kw(20, 24)}, got)

	got = h.Highlight("orders_by ORDER BY x")
	assert.Equal(t, []types.Span{kw(10, 15), kw(16, 18)}, got)
}

func TestHighlight_Idempotent(t *testing.T) {
	texts := []string{
		query.BuildFilterQuery("", ""),
		query.BuildFilterQuery("alice", "chess"),
		"SELECT COUNT(DISTINCT game) AS n FROM Activities GROUP BY user_id ORDER BY n DESC LIMIT 5",
		"with x as (select 1) select * from x where a is null or b in (1,2)",
		"",
	}

	for _, text := range texts {
		first := Highlight(text)
		second := Highlight(text)
		assert.Equal(t, first, second)

		seen := make(map[types.Span]bool, len(first))
		for _, s := range first {
			require.False(t, seen[s], "duplicate span %+v in %q", s, text)
			seen[s] = true
		}
	}
}

func TestHighlight_SpansCoverKeywords(t *testing.T) {
	text := query.BuildFilterQuery("alice", "chess")
	for _, s := range Highlight(text) {
		word := strings.ToUpper(text[s.Start:s.End])
		assert.Contains(t, Keywords(), word)
	}
}

func TestHighlight_NonASCIIOffsetsAreBytes(t *testing.T) {
	text := "SELECT 'ß' FROM t"
	spans := Highlight(text)
	require.Len(t, spans, 2)
	assert.Equal(t, "FROM", text[spans[1].Start:spans[1].End])
}

func TestApply(t *testing.T) {
	style := Style{
		Prefix: map[string]string{
			types.ClassKeyword:  "<",
			types.ClassFunction: "{",
		},
		Reset: ">",
	}

	text := "SELECT AVG(x) FROM t JOIN u"
	got := Apply(text, Highlight(text), style)
	assert.Equal(t, "<SELECT> {AVG>(x) <FROM> t <JOIN> u", got)

	assert.Equal(t, text, Apply(text, Highlight(text), Plain))
}

func BenchmarkHighlight(b *testing.B) {
	text := query.BuildFilterQuery("alice", "chess")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Highlight(text)
	}
}
