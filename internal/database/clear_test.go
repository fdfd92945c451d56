package database

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectTruncate(mock sqlmock.Sqlmock, name string) {
	mock.ExpectExec(regexp.QuoteMeta(`TRUNCATE TABLE "` + name + `" CASCADE`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func expectSequenceRealign(mock sqlmock.Sqlmock) {
	mock.ExpectExec(`(?s)DO \$\$.*SETVAL\(.*pg_depend.*END.*\$\$`).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestClearSafeMode(t *testing.T) {
	m, mock, out := newTestManager(t)
	m.safeMode = true

	err := m.Clear(context.Background(), ClearOptions{})
	require.ErrorIs(t, err, ErrSafeMode)
	assert.Empty(t, out.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearDeclined(t *testing.T) {
	m, mock, out := newTestManager(t)
	m.SetInteractive(true)

	expectTableListing(mock, "users")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	err := m.Clear(context.Background(), ClearOptions{})
	require.ErrorIs(t, err, ErrCancelled)

	rendered := out.String()
	assert.Contains(t, rendered, "This action will truncate the following tables:")
	assert.Contains(t, rendered, "users")
	assert.Contains(t, rendered, "Action cancelled. No data was lost.")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearAccepted(t *testing.T) {
	m, mock, out := newTestManager(t)
	m.SetInteractive(true)
	m.prompter = &stubPrompter{answers: map[string]bool{"Do you want to continue?": true}}

	expectTableListing(mock, "users", "audit_log")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "audit_log"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	mock.ExpectBegin()
	expectTruncate(mock, "audit_log")
	expectTruncate(mock, "users")
	expectSequenceRealign(mock)
	mock.ExpectCommit()

	require.NoError(t, m.Clear(context.Background(), ClearOptions{}))
	assert.NotContains(t, out.String(), "Action cancelled")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearWithoutConfirmation(t *testing.T) {
	m, mock, out := newTestManager(t)
	prompter := &stubPrompter{}
	m.prompter = prompter

	expectTableListing(mock, "users")
	mock.ExpectBegin()
	expectTruncate(mock, "users")
	expectSequenceRealign(mock)
	mock.ExpectCommit()

	require.NoError(t, m.Clear(context.Background(), ClearOptions{}))
	assert.Empty(t, prompter.asked)
	assert.Empty(t, out.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearExplicitConfirmOverride(t *testing.T) {
	m, mock, _ := newTestManager(t)
	m.SetInteractive(true)
	prompter := &stubPrompter{}
	m.prompter = prompter

	expectTableListing(mock, "users")
	mock.ExpectBegin()
	expectTruncate(mock, "users")
	expectSequenceRealign(mock)
	mock.ExpectCommit()

	require.NoError(t, m.Clear(context.Background(), ClearOptions{Confirm: boolPtr(false)}))
	assert.Empty(t, prompter.asked)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearSparesConstTables(t *testing.T) {
	m, mock, _ := newTestManager(t)
	classifier, err := NewTableClassifier([]string{"config"}, nil)
	require.NoError(t, err)
	m.classifier = classifier

	expectTableListing(mock, "config", "users")
	mock.ExpectBegin()
	expectTruncate(mock, "users")
	expectSequenceRealign(mock)
	mock.ExpectCommit()

	require.NoError(t, m.Clear(context.Background(), ClearOptions{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearIncludeConst(t *testing.T) {
	m, mock, _ := newTestManager(t)
	classifier, err := NewTableClassifier([]string{"config"}, nil)
	require.NoError(t, err)
	m.classifier = classifier

	expectTableListing(mock, "config", "users")
	mock.ExpectBegin()
	expectTruncate(mock, "config")
	expectTruncate(mock, "users")
	expectSequenceRealign(mock)
	mock.ExpectCommit()

	require.NoError(t, m.Clear(context.Background(), ClearOptions{IncludeConst: true}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearTruncateError(t *testing.T) {
	m, mock, _ := newTestManager(t)

	expectTableListing(mock, "users")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`TRUNCATE TABLE "users" CASCADE`)).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := m.Clear(context.Background(), ClearOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to truncate users")
	require.NoError(t, mock.ExpectationsWereMet())
}
