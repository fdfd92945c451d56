package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// schemaCache memoizes parsed entity schemas across sessions.
var schemaCache = &sync.Map{}

// Clause is a parameterized SQL fragment.
type Clause struct {
	Expr string
	Args []any
}

// Where builds a Clause.
func Where(expr string, args ...any) *Clause {
	return &Clause{Expr: expr, Args: args}
}

// Query narrows Find and All.
type Query struct {
	Where   *Clause
	OrderBy string
	Limit   int
	Offset  int
}

// Session is a unit of work over the manager's engine. The native
// transaction begins lazily on first use; Commit, Rollback, and Close finish
// it, and the next use begins a fresh one. A Session is not safe for
// concurrent use.
type Session struct {
	manager *Manager
	id      string
	logger  *slog.Logger
	tx      *gorm.DB
}

// NewSession returns an unstarted Session.
func (m *Manager) NewSession() *Session {
	id := uuid.NewString()
	return &Session{
		manager: m,
		id:      id,
		logger:  m.logger.With("session", id),
	}
}

// WithSession runs fn with a fresh Session and always closes it afterwards,
// discarding whatever fn left uncommitted.
func (m *Manager) WithSession(fn func(*Session) error) error {
	s := m.NewSession()
	defer func() { _ = s.Close() }()
	return fn(s)
}

// ID returns the session identifier used in debug logs.
func (s *Session) ID() string {
	return s.id
}

// begin returns the live transaction, starting one if needed.
func (s *Session) begin(ctx context.Context) (*gorm.DB, error) {
	if s.tx != nil {
		return s.tx.WithContext(ctx), nil
	}
	tx := s.manager.orm.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	s.logger.Debug("transaction started")
	s.tx = tx
	return tx, nil
}

// Begin starts the native transaction eagerly and fails if one is already
// open. The caller owns the follow-up Commit or Rollback.
func (s *Session) Begin(ctx context.Context) error {
	if s.tx != nil {
		return errors.New("transaction already begun")
	}
	_, err := s.begin(ctx)
	return err
}

// Commit finishes the open transaction. Without one it is a no-op.
func (s *Session) Commit() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit().Error
	s.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	s.logger.Debug("transaction committed")
	return nil
}

// Rollback discards the open transaction. Without one it is a no-op.
func (s *Session) Rollback() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback().Error
	s.tx = nil
	if err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}
	s.logger.Debug("transaction rolled back")
	return nil
}

// Close discards any open transaction. The Session stays usable; the next
// operation begins a fresh transaction.
func (s *Session) Close() error {
	return s.Rollback()
}

// Add inserts instance within the session's transaction.
func (s *Session) Add(ctx context.Context, instance any) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	if err := tx.Create(instance).Error; err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}
	return nil
}

// AddAll inserts every instance within the session's transaction.
func (s *Session) AddAll(ctx context.Context, instances ...any) error {
	for _, instance := range instances {
		if err := s.Add(ctx, instance); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the row identified by instance's primary key.
func (s *Session) Delete(ctx context.Context, instance any) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	if err := tx.Delete(instance).Error; err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	return nil
}

// Refresh re-reads instance in place from its current database row.
func (s *Session) Refresh(ctx context.Context, instance any) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	sch, err := entitySchema(tx, instance)
	if err != nil {
		return err
	}
	pk, err := primaryField(sch)
	if err != nil {
		return err
	}
	if _, zero := pk.ValueOf(ctx, reflect.ValueOf(instance)); zero {
		return fmt.Errorf("cannot refresh %s without a primary key value", sch.Name)
	}
	// The primary key held by instance drives the lookup.
	if err := tx.Take(instance).Error; err != nil {
		return fmt.Errorf("failed to refresh: %w", err)
	}
	return nil
}

// Exec runs a raw statement in the session's transaction and reports the
// affected row count.
func (s *Session) Exec(ctx context.Context, stmt string, args ...any) (int64, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return 0, err
	}
	res := tx.Exec(stmt, args...)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to execute statement: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Query runs a raw query in the session's transaction. The caller owns the
// returned rows.
func (s *Session) Query(ctx context.Context, stmt string, args ...any) (*sql.Rows, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Raw(stmt, args...).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	return rows, nil
}

// Get fetches the E row with the given primary key. A nil key returns nil
// without touching the database, and a key that cannot be coerced to the key
// column's kind also returns nil.
func Get[E any](ctx context.Context, s *Session, key any) (*E, error) {
	if key == nil {
		return nil, nil
	}
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	var entity E
	sch, err := entitySchema(tx, &entity)
	if err != nil {
		return nil, err
	}
	pk, err := primaryField(sch)
	if err != nil {
		return nil, err
	}
	coerced, ok := coerceKey(key, pk.DataType)
	if !ok {
		s.logger.Debug("key does not fit the key column", "entity", sch.Name)
		return nil, nil
	}
	err = tx.Where(map[string]any{pk.DBName: coerced}).Take(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", sch.Name, err)
	}
	return &entity, nil
}

// Find returns the first E matching q, or nil when nothing matches.
func Find[E any](ctx context.Context, s *Session, q Query) (*E, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	var entity E
	err = applyQuery(tx, q).Take(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find: %w", err)
	}
	return &entity, nil
}

// All returns every E matching q, in q's order.
func All[E any](ctx context.Context, s *Session, q Query) ([]E, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	var entities []E
	if err := applyQuery(tx, q).Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to list: %w", err)
	}
	return entities, nil
}

// UpdateAll applies values to every E matching where and reports how many
// rows changed. A nil where deliberately updates the whole table.
func UpdateAll[E any](ctx context.Context, s *Session, values map[string]any, where *Clause) (int64, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return 0, err
	}
	db := tx.Model(new(E))
	if where != nil {
		db = db.Where(where.Expr, where.Args...)
	} else {
		db = db.Session(&gorm.Session{AllowGlobalUpdate: true})
	}
	res := db.Updates(values)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteAll removes every E matching where and reports how many rows went
// away. A nil where deliberately empties the whole table.
func DeleteAll[E any](ctx context.Context, s *Session, where *Clause) (int64, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return 0, err
	}
	db := tx
	if where != nil {
		db = db.Where(where.Expr, where.Args...)
	} else {
		db = db.Session(&gorm.Session{AllowGlobalUpdate: true})
	}
	res := db.Delete(new(E))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func applyQuery(tx *gorm.DB, q Query) *gorm.DB {
	db := tx
	if q.Where != nil {
		db = db.Where(q.Where.Expr, q.Where.Args...)
	}
	if q.OrderBy != "" {
		db = db.Order(q.OrderBy)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	if q.Offset > 0 {
		db = db.Offset(q.Offset)
	}
	return db
}

// entitySchema parses the ORM schema of model, using the shared cache.
func entitySchema(tx *gorm.DB, model any) (*schema.Schema, error) {
	sch, err := schema.Parse(model, schemaCache, tx.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("failed to parse entity schema: %w", err)
	}
	return sch, nil
}

// primaryField returns the single primary-key field of sch. Entities with
// composite or missing primary keys are rejected.
func primaryField(sch *schema.Schema) (*schema.Field, error) {
	if len(sch.PrimaryFields) != 1 {
		return nil, fmt.Errorf("entity %s must have exactly one primary key, has %d", sch.Name, len(sch.PrimaryFields))
	}
	return sch.PrimaryFields[0], nil
}

// coerceKey adapts key to the primary-key column kind. String columns accept
// any key by stringification; integer columns require something that parses
// as an integer.
func coerceKey(key any, kind schema.DataType) (any, bool) {
	switch kind {
	case schema.String:
		if s, ok := key.(string); ok {
			return s, true
		}
		return fmt.Sprint(key), true
	case schema.Int, schema.Uint:
		switch k := key.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return k, true
		case string:
			n, err := strconv.ParseInt(k, 10, 64)
			if err != nil {
				return nil, false
			}
			return n, true
		default:
			return nil, false
		}
	default:
		return key, true
	}
}
