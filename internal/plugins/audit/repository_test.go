package audit

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, AuditRepository) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, NewAuditRepository(db)
}

func TestRepoLog(t *testing.T) {
	mock, repo := setupMockDB(t)
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs("Анна М.", ActionProductTagAdded, "product", "p3", `{"tagId":"1"}`, at).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs("system", ActionTagCreated, "tag", "", nil, at).
		WillReturnResult(sqlmock.NewResult(43, 1))

	e := &Entry{
		Actor: "Анна М.", Action: ActionProductTagAdded, ResourceType: "product",
		ResourceID: "p3", Details: map[string]string{"tagId": "1"}, CreatedAt: at,
	}
	require.NoError(t, repo.Log(context.Background(), e))
	assert.Equal(t, int64(42), e.ID)

	require.NoError(t, repo.Log(context.Background(), &Entry{
		Actor: "system", Action: ActionTagCreated, ResourceType: "tag", CreatedAt: at,
	}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoList_Filtered(t *testing.T) {
	mock, repo := setupMockDB(t)
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM audit_log WHERE resource_type = \? AND resource_id = \?`).
		WithArgs("collection", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`FROM audit_log WHERE resource_type = \? AND resource_id = \? ORDER BY created_at DESC, id DESC LIMIT \? OFFSET \?`).
		WithArgs("collection", "c1", 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "actor", "action", "resource_type", "resource_id", "details", "created_at"}).
			AddRow(9, "Иван К.", "collection.reordered", "collection", "c1", nil, at).
			AddRow(8, "Иван К.", "collection.updated", "collection", "c1", []byte(`not json`), at))

	entries, total, err := repo.List(context.Background(), ListFilter{ResourceType: "collection", ResourceID: "c1"}, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, entries, 2)
	assert.Nil(t, entries[0].Details)
	assert.Equal(t, "invalid JSON", entries[1].Details["_parse_error"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoList_EmptyIsNotNil(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM audit_log$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM audit_log ORDER BY`).
		WithArgs(50, 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "actor", "action", "resource_type", "resource_id", "details", "created_at"}))

	entries, total, err := repo.List(context.Background(), ListFilter{}, 50, 50)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, entries)
}
