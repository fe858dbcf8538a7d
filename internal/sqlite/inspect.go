package sqlite

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/querybench/pkg/types"
)

const (
	listTablesSQL = `SELECT name FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY rowid`

	listColumnsSQL = `SELECT name FROM pragma_table_info(?) ORDER BY cid`
)

// ListTables returns every user-defined table in catalog order, including
// tables created later through Execute. SQLite's internal tables are
// excluded.
func (b *Backend) ListTables(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, listTablesSQL)
	if err != nil {
		return nil, fmt.Errorf("%w: listing tables: %v", types.ErrStore, err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scanning table name: %v", types.ErrStore, err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listing tables: %v", types.ErrStore, err)
	}
	return tables, nil
}

// ListColumns returns the columns of table in declaration order.
// Returns ErrNotFound if the table does not exist.
func (b *Backend) ListColumns(ctx context.Context, table string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.handle()
	if err != nil {
		return nil, err
	}
	return listColumns(ctx, db, table)
}

// DescribeSchema returns every table with its columns.
func (b *Backend) DescribeSchema(ctx context.Context) ([]types.TableInfo, error) {
	tables, err := b.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.handle()
	if err != nil {
		return nil, err
	}

	infos := make([]types.TableInfo, 0, len(tables))
	for _, name := range tables {
		cols, err := listColumns(ctx, db, name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, types.TableInfo{Name: name, Columns: cols})
	}
	return infos, nil
}

func listColumns(ctx context.Context, db queryer, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, listColumnsSQL, table)
	if err != nil {
		return nil, fmt.Errorf("%w: reading columns of %s: %v", types.ErrStore, table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scanning column name: %v", types.ErrStore, err)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading columns of %s: %v", types.ErrStore, table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: table %q does not exist", types.ErrNotFound, table)
	}
	return cols, nil
}
