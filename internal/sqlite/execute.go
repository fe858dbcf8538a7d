package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mesh-intelligence/querybench/pkg/types"
)

// rowKeywords are the leading keywords of statements that return rows.
var rowKeywords = map[string]bool{
	"SELECT":  true,
	"WITH":    true,
	"PRAGMA":  true,
	"VALUES":  true,
	"EXPLAIN": true,
}

var (
	returningRe = regexp.MustCompile(`(?i)\bRETURNING\b`)
	triggerRe   = regexp.MustCompile(`(?i)^\s*CREATE\s+(TEMP\s+|TEMPORARY\s+)?TRIGGER\b`)
)

// Execute runs query text exactly as given. There is no validation beyond
// what SQLite enforces: reads, writes and schema changes are all allowed.
// Statements with a result set (reads and RETURNING writes) return columns
// and rows; other statements return the affected row count. Text must hold
// a single statement. Every failure wraps ErrQueryExecution.
func (b *Backend) Execute(ctx context.Context, text string) (*types.Result, error) {
	if err := checkText(text); err != nil {
		return nil, err
	}
	return b.run(ctx, text, nil)
}

// ExecuteStatement runs a parameterized statement with args bound to its
// ? placeholders. Values never become part of the SQL text.
func (b *Backend) ExecuteStatement(ctx context.Context, query string, args ...any) (*types.Result, error) {
	if err := checkText(query); err != nil {
		return nil, err
	}
	return b.run(ctx, query, args)
}

// checkText rejects blank text and text holding more than one statement.
// Trigger bodies contain semicolons and are accepted whole.
func checkText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: query text is empty", types.ErrQueryExecution)
	}
	code := stripLiterals(text)
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("%w: query text holds no statement", types.ErrQueryExecution)
	}
	if triggerRe.MatchString(code) {
		return nil
	}
	if i := strings.IndexByte(code, ';'); i >= 0 && strings.Trim(code[i:], " \t\r\n;") != "" {
		return fmt.Errorf("%w: only one statement can be executed at a time", types.ErrQueryExecution)
	}
	return nil
}

func (b *Backend) run(ctx context.Context, text string, args []any) (res *types.Result, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	db, err := b.handle()
	if err != nil {
		return nil, err
	}

	qid := newQueryID()
	logger := b.log.With().Str("query_id", qid).Logger()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%w: %v", types.ErrQueryExecution, r)
		}
		if err != nil {
			logger.Debug().Err(err).Msg("query failed")
			return
		}
		logger.Debug().
			Dur("elapsed", time.Since(start)).
			Int("rows", len(res.Rows)).
			Int64("affected", res.RowsAffected).
			Msg("query done")
	}()

	logger.Debug().Str("sql", text).Int("args", len(args)).Msg("executing query")

	keyword := leadingKeyword(text)
	returning := returningRe.MatchString(stripLiterals(text))
	if !returning && !rowKeywords[keyword] {
		out, err := db.ExecContext(ctx, text, args...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrQueryExecution, err)
		}
		res := &types.Result{QueryID: qid}
		res.RowsAffected, _ = out.RowsAffected()
		res.LastInsertID, _ = out.LastInsertId()
		return res, nil
	}

	rows, err := db.QueryContext(ctx, text, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrQueryExecution, err)
	}
	result, err := collect(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrQueryExecution, err)
	}
	result.QueryID = qid

	// A write under WITH has no columns; a RETURNING write has both rows
	// and changes. The pool holds one connection, so changes() below
	// reports this statement.
	if returning || (keyword == "WITH" && len(result.Columns) == 0) {
		err := db.QueryRowContext(ctx, "SELECT changes(), last_insert_rowid()").
			Scan(&result.RowsAffected, &result.LastInsertID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrQueryExecution, err)
		}
	}
	return result, nil
}

// collect reads every row and closes rows.
func collect(rows *sql.Rows) (*types.Result, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &types.Result{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			vals[i] = normalizeValue(v)
		}
		result.Rows = append(result.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, rows.Close()
}

// stripLiterals blanks out string literals, quoted identifiers and comments
// so keyword and semicolon scans see only SQL code. Offsets are preserved.
func stripLiterals(text string) string {
	out := []byte(text)
	blank := func(from, to int) {
		for k := from; k < to && k < len(out); k++ {
			if out[k] != '\n' {
				out[k] = ' '
			}
		}
	}
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c == '\'' || c == '"' || c == '`' || c == '[':
			closer := c
			if c == '[' {
				closer = ']'
			}
			j := i + 1
			for j < len(text) {
				if text[j] == closer {
					// Doubled quotes escape themselves.
					if closer != ']' && j+1 < len(text) && text[j+1] == closer {
						j += 2
						continue
					}
					break
				}
				j++
			}
			blank(i, j+1)
			i = j
		case c == '-' && strings.HasPrefix(text[i:], "--"):
			j := strings.IndexByte(text[i:], '\n')
			if j < 0 {
				j = len(text) - i
			}
			blank(i, i+j)
			i += j
		case c == '/' && strings.HasPrefix(text[i:], "/*"):
			j := strings.Index(text[i+2:], "*/")
			end := len(text)
			if j >= 0 {
				end = i + 2 + j + 2
			}
			blank(i, end)
			i = end - 1
		}
	}
	return string(out)
}

// leadingKeyword returns the first word of text in upper case.
func leadingKeyword(text string) string {
	s := text
	for {
		s = strings.TrimLeft(s, " \t\r\n(")
		switch {
		case strings.HasPrefix(s, "--"):
			nl := strings.IndexByte(s, '\n')
			if nl < 0 {
				return ""
			}
			s = s[nl+1:]
		case strings.HasPrefix(s, "/*"):
			end := strings.Index(s, "*/")
			if end < 0 {
				return ""
			}
			s = s[end+2:]
		default:
			end := strings.IndexFunc(s, func(r rune) bool {
				return !(r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z'))
			})
			if end < 0 {
				end = len(s)
			}
			return strings.ToUpper(s[:end])
		}
	}
}

// normalizeValue converts driver values into display-friendly types.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		u := x.UTC()
		if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
			return u.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}
