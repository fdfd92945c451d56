package database

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jedib0t/go-pretty/v6/table"
)

// TableFilter narrows a Tables listing.
type TableFilter struct {
	// Const selects constant tables when true, non-constant tables when
	// false, and everything when nil.
	Const *bool
	// Empty selects empty tables when true, tables holding rows when
	// false, and everything when nil.
	Empty *bool
}

const listTablesSQL = `SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' AND table_type = 'BASE TABLE'`

// Tables returns the alphabetically sorted base-table names of the public
// schema, narrowed by filter. With show set, an interactive manager also
// prints the listing together with live row counts.
func (m *Manager) Tables(ctx context.Context, filter TableFilter, show bool) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, listTablesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	sort.Strings(names)

	if filter.Const != nil {
		kept := names[:0]
		for _, n := range names {
			if m.classifier.IsConst(n) == *filter.Const {
				kept = append(kept, n)
			}
		}
		names = kept
	}
	if filter.Empty != nil {
		var kept []string
		for _, n := range names {
			empty, err := m.isEmptyTable(ctx, n)
			if err != nil {
				return nil, err
			}
			if empty == *filter.Empty {
				kept = append(kept, n)
			}
		}
		names = kept
	}

	if show && m.interactive {
		if err := m.printTables(ctx, names); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// isEmptyTable reports whether the table currently holds no rows. The probe
// reads at most one row.
func (m *Manager) isEmptyTable(ctx context.Context, name string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s)", pgx.Identifier{name}.Sanitize())
	var hasRows bool
	if err := m.db.QueryRowContext(ctx, query).Scan(&hasRows); err != nil {
		return false, fmt.Errorf("failed to probe table %s: %w", name, err)
	}
	return !hasRows, nil
}

func (m *Manager) printTables(ctx context.Context, names []string) error {
	t := table.NewWriter()
	t.SetOutputMirror(m.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Rows"})
	for _, n := range names {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", pgx.Identifier{n}.Sanitize())
		var count int64
		if err := m.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
			return fmt.Errorf("failed to count rows in %s: %w", n, err)
		}
		t.AppendRow(table.Row{n, count})
	}
	t.Render()
	return nil
}
