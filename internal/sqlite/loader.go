package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/querybench/pkg/types"
)

// loadMapping describes how records map onto one table. Required fields
// must be present in every record; optional fields are inserted only when
// present. Any other field is ignored.
type loadMapping struct {
	table    string
	required []string
	optional []string
}

var (
	usersMapping = loadMapping{
		table:    types.UsersTable,
		required: []string{"username", "email"},
		optional: []string{"user_id"},
	}

	activitiesMapping = loadMapping{
		table:    types.ActivitiesTable,
		required: []string{"user_id", "game", "score", "date"},
		optional: []string{"activity_id"},
	}
)

// queryer is the subset of *sql.DB and *sql.Tx the helpers need.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// LoadUsers appends user records to the Users table. Each record needs
// username and email; user_id is kept when present. Records are inserted
// one statement at a time, so on error the returned count tells how many
// earlier records are already stored.
func (b *Backend) LoadUsers(ctx context.Context, records []types.Record) (int, error) {
	return b.load(ctx, usersMapping, records)
}

// LoadActivities appends activity records to the Activities table. Each
// record needs user_id, game, score and date; activity_id is kept when
// present. A user_id with no matching user fails with ErrStore because the
// foreign key is enforced.
func (b *Backend) LoadActivities(ctx context.Context, records []types.Record) (int, error) {
	return b.load(ctx, activitiesMapping, records)
}

func (b *Backend) load(ctx context.Context, m loadMapping, records []types.Record) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	db, err := b.handle()
	if err != nil {
		return 0, err
	}
	return b.insertRecords(ctx, db, m, records)
}

// insertRecords validates and inserts records in order and stops at the
// first failure. The caller must hold b.mu.
func (b *Backend) insertRecords(ctx context.Context, db queryer, m loadMapping, records []types.Record) (int, error) {
	inserted := 0
	for i, rec := range records {
		for _, field := range m.required {
			if !rec.Has(field) {
				b.log.Warn().Str("table", m.table).Int("record", i+1).Str("field", field).Msg("bulk load stopped")
				return inserted, fmt.Errorf("%w: %s record %d: missing required field %q", types.ErrSourceFormat, m.table, i+1, field)
			}
		}

		cols := make([]string, 0, len(m.optional)+len(m.required))
		args := make([]any, 0, cap(cols))
		for _, field := range m.optional {
			if rec.Has(field) {
				cols = append(cols, field)
				args = append(args, rec[field])
			}
		}
		for _, field := range m.required {
			cols = append(cols, field)
			args = append(args, rec[field])
		}

		stmt := fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s)",
			m.table,
			strings.Join(cols, ", "),
			placeholders(len(cols)),
		)
		if _, err := db.ExecContext(ctx, stmt, args...); err != nil {
			b.log.Warn().Err(err).Str("table", m.table).Int("record", i+1).Msg("bulk load stopped")
			return inserted, fmt.Errorf("%w: inserting %s record %d: %v", types.ErrStore, m.table, i+1, err)
		}
		inserted++
	}

	b.log.Info().Str("table", m.table).Int("rows", inserted).Msg("bulk load complete")
	return inserted, nil
}

// placeholders returns n comma-separated ? markers.
func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
