package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// schemaQueries are read in this order inside one transaction so the
// snapshot describes a single point in time.
var schemaQueries = []struct {
	category string
	query    string
}{
	{"columns", `SELECT * FROM information_schema.columns WHERE table_schema = 'public'`},
	{"views", `SELECT * FROM information_schema.views WHERE table_schema = 'public'`},
	{"keys", `SELECT * FROM information_schema.key_column_usage WHERE table_schema = 'public'`},
	{"indexes", `SELECT * FROM pg_catalog.pg_indexes WHERE schemaname = 'public'`},
	{"constraints", `SELECT * FROM information_schema.check_constraints WHERE constraint_schema = 'public'`},
}

// volatileColumns are catalog fields whose values shift under unrelated DDL.
// They are stripped so equivalent schemas hash equally.
var volatileColumns = map[string]struct{}{
	"ordinal_position":              {},
	"position_in_unique_constraint": {},
}

// Snapshot is a normalized description of the public schema. Hash digests
// the normalized content and does not depend on catalog scan order.
type Snapshot struct {
	Schema map[string][]map[string]any `json:"schema"`
	Hash   string                      `json:"hash"`
}

// Schema reads the catalog and returns the normalized snapshot. An
// interactive manager also prints the snapshot as indented JSON.
func (m *Manager) Schema(ctx context.Context) (*Snapshot, error) {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	categories := make(map[string][]map[string]any, len(schemaQueries))
	for _, sq := range schemaQueries {
		rows, err := scanCategory(ctx, tx, sq.query)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", sq.category, err)
		}
		categories[sq.category] = rows
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to finish schema transaction: %w", err)
	}

	for category, rows := range categories {
		sorted, err := sortRows(rows)
		if err != nil {
			return nil, err
		}
		categories[category] = sorted
	}

	hash, err := hashSchema(categories)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Schema: categories, Hash: hash}

	if m.interactive {
		enc := json.NewEncoder(m.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return nil, fmt.Errorf("failed to render schema: %w", err)
		}
	}
	return snap, nil
}

// scanCategory reads every row of query into maps keyed by column name,
// dropping volatile columns.
func scanCategory(ctx context.Context, tx *sql.Tx, query string) ([]map[string]any, error) {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			if _, drop := volatileColumns[col]; drop {
				continue
			}
			row[col] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// normalizeValue maps driver values onto JSON-stable representations.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}

// sortRows orders rows by their canonical serialization, so neither the
// listing nor the hash depends on catalog scan order.
func sortRows(rows []map[string]any) ([]map[string]any, error) {
	type keyedRow struct {
		key string
		row map[string]any
	}
	keyed := make([]keyedRow, len(rows))
	for i, row := range rows {
		b, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("failed to canonicalize schema row: %w", err)
		}
		keyed[i] = keyedRow{key: string(b), row: row}
	}
	sort.Slice(keyed, func(i, j int) bool { return keyed[i].key < keyed[j].key })

	out := make([]map[string]any, len(rows))
	for i, kr := range keyed {
		out[i] = kr.row
	}
	return out, nil
}

// hashSchema digests the canonical serialization of the normalized schema.
func hashSchema(categories map[string][]map[string]any) (string, error) {
	canonical, err := json.Marshal(categories)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize schema: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
