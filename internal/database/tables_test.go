package database

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectTableListing(mock sqlmock.Sqlmock, names ...string) {
	rows := sqlmock.NewRows([]string{"table_name"})
	for _, n := range names {
		rows.AddRow(n)
	}
	mock.ExpectQuery(regexp.QuoteMeta(listTablesSQL)).WillReturnRows(rows)
}

func expectEmptyProbe(mock sqlmock.Sqlmock, name string, hasRows bool) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM "`+name+`")`)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(hasRows))
}

func TestTablesSorted(t *testing.T) {
	m, mock, _ := newTestManager(t)
	expectTableListing(mock, "users", "audit_log", "config")

	names, err := m.Tables(context.Background(), TableFilter{}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"audit_log", "config", "users"}, names)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTablesConstFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter TableFilter
		want   []string
	}{
		{name: "const only", filter: TableFilter{Const: boolPtr(true)}, want: []string{"config"}},
		{name: "non-const only", filter: TableFilter{Const: boolPtr(false)}, want: []string{"audit_log", "users"}},
		{name: "unfiltered", filter: TableFilter{}, want: []string{"audit_log", "config", "users"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, mock, _ := newTestManager(t)
			classifier, err := NewTableClassifier([]string{"config"}, nil)
			require.NoError(t, err)
			m.classifier = classifier

			expectTableListing(mock, "users", "config", "audit_log")

			names, err := m.Tables(context.Background(), tt.filter, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTablesEmptyFilter(t *testing.T) {
	m, mock, _ := newTestManager(t)
	classifier, err := NewTableClassifier([]string{"config"}, nil)
	require.NoError(t, err)
	m.classifier = classifier

	expectTableListing(mock, "users", "config", "audit_log")
	expectEmptyProbe(mock, "audit_log", false)
	expectEmptyProbe(mock, "users", true)

	names, err := m.Tables(context.Background(), TableFilter{Const: boolPtr(false), Empty: boolPtr(true)}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"audit_log"}, names)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTablesShowPrintsCounts(t *testing.T) {
	m, mock, out := newTestManager(t)
	m.SetInteractive(true)

	expectTableListing(mock, "users", "audit_log")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "audit_log"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	names, err := m.Tables(context.Background(), TableFilter{}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"audit_log", "users"}, names)

	rendered := out.String()
	assert.Contains(t, rendered, "TABLE")
	assert.Contains(t, rendered, "audit_log")
	assert.Contains(t, rendered, "42")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTablesShowSuppressedOutsideInteractiveMode(t *testing.T) {
	m, mock, out := newTestManager(t)
	expectTableListing(mock, "users")

	_, err := m.Tables(context.Background(), TableFilter{}, true)
	require.NoError(t, err)
	assert.Empty(t, out.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTablesListingError(t *testing.T) {
	m, mock, _ := newTestManager(t)
	mock.ExpectQuery(regexp.QuoteMeta(listTablesSQL)).WillReturnError(assert.AnError)

	_, err := m.Tables(context.Background(), TableFilter{}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list tables")
}
