package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var schemaColumnHeaders = []string{"table_name", "column_name", "data_type", "ordinal_position"}

func expectSchemaSnapshot(mock sqlmock.Sqlmock, columns *sqlmock.Rows) {
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM information_schema\.columns`).WillReturnRows(columns)
	mock.ExpectQuery(`SELECT \* FROM information_schema\.views`).
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
	mock.ExpectQuery(`SELECT \* FROM information_schema\.key_column_usage`).
		WillReturnRows(sqlmock.NewRows([]string{"constraint_name"}))
	mock.ExpectQuery(`SELECT \* FROM pg_catalog\.pg_indexes`).
		WillReturnRows(sqlmock.NewRows([]string{"indexname"}))
	mock.ExpectQuery(`SELECT \* FROM information_schema\.check_constraints`).
		WillReturnRows(sqlmock.NewRows([]string{"constraint_name"}))
	mock.ExpectCommit()
}

func TestSchemaHashIgnoresScanOrderAndVolatileColumns(t *testing.T) {
	first, firstMock, _ := newTestManager(t)
	expectSchemaSnapshot(firstMock, sqlmock.NewRows(schemaColumnHeaders).
		AddRow("users", "id", "integer", 1).
		AddRow("users", "email", "text", 2))

	second, secondMock, _ := newTestManager(t)
	expectSchemaSnapshot(secondMock, sqlmock.NewRows(schemaColumnHeaders).
		AddRow("users", "email", "text", 7).
		AddRow("users", "id", "integer", 9))

	snapA, err := first.Schema(context.Background())
	require.NoError(t, err)
	snapB, err := second.Schema(context.Background())
	require.NoError(t, err)

	assert.Equal(t, snapA.Hash, snapB.Hash)
	assert.Equal(t, snapA.Schema, snapB.Schema)
	require.NoError(t, firstMock.ExpectationsWereMet())
	require.NoError(t, secondMock.ExpectationsWereMet())
}

func TestSchemaHashReflectsContent(t *testing.T) {
	first, firstMock, _ := newTestManager(t)
	expectSchemaSnapshot(firstMock, sqlmock.NewRows(schemaColumnHeaders).
		AddRow("users", "email", "text", 1))

	second, secondMock, _ := newTestManager(t)
	expectSchemaSnapshot(secondMock, sqlmock.NewRows(schemaColumnHeaders).
		AddRow("users", "email", "varchar", 1))

	snapA, err := first.Schema(context.Background())
	require.NoError(t, err)
	snapB, err := second.Schema(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, snapA.Hash, snapB.Hash)
}

func TestSchemaNormalizesRows(t *testing.T) {
	m, mock, _ := newTestManager(t)
	expectSchemaSnapshot(mock, sqlmock.NewRows(schemaColumnHeaders).
		AddRow("users", "id", []byte("integer"), 4))

	snap, err := m.Schema(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Schema["columns"], 1)
	row := snap.Schema["columns"][0]
	assert.Equal(t, "integer", row["data_type"])
	assert.NotContains(t, row, "ordinal_position")

	assert.NotNil(t, snap.Schema["views"])
	assert.Empty(t, snap.Schema["views"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaInteractivePrint(t *testing.T) {
	t.Run("interactive", func(t *testing.T) {
		m, mock, out := newTestManager(t)
		m.SetInteractive(true)
		expectSchemaSnapshot(mock, sqlmock.NewRows(schemaColumnHeaders).
			AddRow("users", "id", "integer", 1))

		snap, err := m.Schema(context.Background())
		require.NoError(t, err)

		rendered := out.String()
		assert.Contains(t, rendered, `"hash": "`+snap.Hash+`"`)
		assert.Contains(t, rendered, `"users"`)
	})

	t.Run("library mode stays silent", func(t *testing.T) {
		m, mock, out := newTestManager(t)
		expectSchemaSnapshot(mock, sqlmock.NewRows(schemaColumnHeaders).
			AddRow("users", "id", "integer", 1))

		_, err := m.Schema(context.Background())
		require.NoError(t, err)
		assert.Empty(t, out.String())
	})
}

func TestSchemaQueryError(t *testing.T) {
	m, mock, _ := newTestManager(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM information_schema\.columns`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := m.Schema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read columns")
	require.NoError(t, mock.ExpectationsWereMet())
}
