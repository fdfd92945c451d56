package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// fixSequencesSQL realigns every sequence with the maximum value of the
// column it feeds, per the PostgreSQL wiki's Fixing_Sequences recipe.
const fixSequencesSQL = `
DO $$
DECLARE
    stmt text;
BEGIN
    FOR stmt IN
        SELECT 'SELECT SETVAL(' ||
               quote_literal(quote_ident(PGT.schemaname) || '.' || quote_ident(S.relname)) ||
               ', COALESCE(MAX(' || quote_ident(C.attname) || '), 1)) FROM ' ||
               quote_ident(PGT.schemaname) || '.' || quote_ident(T.relname) || ';'
        FROM pg_class AS S,
             pg_depend AS D,
             pg_class AS T,
             pg_attribute AS C,
             pg_tables AS PGT
        WHERE S.relkind = 'S'
          AND S.oid = D.objid
          AND D.refobjid = T.oid
          AND D.refobjid = C.attrelid
          AND D.refobjsubid = C.attnum
          AND T.relname = PGT.tablename
        ORDER BY S.relname
    LOOP
        EXECUTE stmt;
    END LOOP;
END
$$;
`

// ClearOptions controls Clear.
type ClearOptions struct {
	// Confirm decides whether the operator is asked before truncation.
	// When nil, confirmation is required exactly when the manager is
	// interactive.
	Confirm *bool
	// IncludeConst also truncates constant tables.
	IncludeConst bool
}

// Clear truncates every target table and realigns their sequences, all in
// one transaction. Safe mode refuses before any side effect. A declined
// confirmation returns ErrCancelled with nothing modified.
func (m *Manager) Clear(ctx context.Context, opts ClearOptions) error {
	if m.safeMode {
		return ErrSafeMode
	}

	confirm := m.interactive
	if opts.Confirm != nil {
		confirm = *opts.Confirm
	}

	filter := TableFilter{}
	if !opts.IncludeConst {
		nonConst := false
		filter.Const = &nonConst
	}

	announce := confirm && m.interactive
	if announce {
		fmt.Fprintln(m.out, "This action will truncate the following tables:")
	}
	targets, err := m.Tables(ctx, filter, announce)
	if err != nil {
		return err
	}

	if confirm {
		no := false
		proceed, err := m.prompter.YesNo("Do you want to continue?", &no)
		if err != nil {
			return err
		}
		if !proceed {
			fmt.Fprintln(m.out, "Action cancelled. No data was lost.")
			return ErrCancelled
		}
	}

	m.logger.Debug("clearing tables", "count", len(targets))

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin clear transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, name := range targets {
		stmt := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", pgx.Identifier{name}.Sanitize())
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", name, err)
		}
	}
	if _, err := tx.ExecContext(ctx, fixSequencesSQL); err != nil {
		return fmt.Errorf("failed to realign sequences: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clear transaction: %w", err)
	}
	return nil
}
