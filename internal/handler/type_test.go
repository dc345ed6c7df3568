package handler

import (
	"database/sql"
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachlog/coachlog-api/internal/repository"
)

func newTypeHandler(db *sql.DB) *TypeHandler {
	return NewTypeHandler(repository.NewTypeRepo(db), repository.NewActivityRepo(db))
}

func TestCreateTypeDuplicateLabel(t *testing.T) {
	db, mock := newDB(t)
	h := newTypeHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM activity_types WHERE type = ? AND user_id = ?")).
		WithArgs("run", "ath-1").
		WillReturnRows(typeRow("type-1", "ath-1", "run"))

	c, rec := newContext(t, http.MethodPost, "/v1/types", map[string]any{
		"type": "run",
	}, testAthlete())
	require.NoError(t, h.CreateType(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Type already exist")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTypeSameLabelDifferentUser(t *testing.T) {
	db, mock := newDB(t)
	h := newTypeHandler(db)

	// Uniqueness is per user: another user owning "run" does not block
	// this one, so the scoped lookup comes back empty and the insert runs.
	mock.ExpectQuery(regexp.QuoteMeta("FROM activity_types WHERE type = ? AND user_id = ?")).
		WithArgs("run", "ath-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activity_types (id, user_id, type, description) VALUES (?,?,?,?)")).
		WithArgs(sqlmock.AnyArg(), "ath-1", "run", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM activity_types WHERE id = ? AND user_id = ?")).
		WithArgs(sqlmock.AnyArg(), "ath-1").
		WillReturnRows(typeRow("type-1", "ath-1", "run"))

	c, rec := newContext(t, http.MethodPost, "/v1/types", map[string]any{
		"type": " run ",
	}, testAthlete())
	require.NoError(t, h.CreateType(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "run", decodeBody(t, rec)["type"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTypeNotFound(t *testing.T) {
	db, mock := newDB(t)
	h := newTypeHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM activity_types WHERE id = ? AND user_id = ?")).
		WithArgs("type-9", "ath-1").
		WillReturnError(sql.ErrNoRows)

	c, rec := newContext(t, http.MethodPut, "/v1/types/type-9", map[string]any{
		"type": "ride",
	}, testAthlete())
	c.SetParamNames("id")
	c.SetParamValues("type-9")
	require.NoError(t, h.UpdateType(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Type not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTypeInUse(t *testing.T) {
	db, mock := newDB(t)
	h := newTypeHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM activity_types WHERE id = ? AND user_id = ?")).
		WithArgs("type-1", "ath-1").
		WillReturnRows(typeRow("type-1", "ath-1", "run"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM activities WHERE type_id = ? AND user_id = ?")).
		WithArgs("type-1", "ath-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	c, rec := newContext(t, http.MethodDelete, "/v1/types/type-1", nil, testAthlete())
	c.SetParamNames("id")
	c.SetParamValues("type-1")
	require.NoError(t, h.DeleteType(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Type is being used by activities")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTypeMissingIsNoOp(t *testing.T) {
	db, mock := newDB(t)
	h := newTypeHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM activity_types WHERE id = ? AND user_id = ?")).
		WithArgs("type-9", "ath-1").
		WillReturnError(sql.ErrNoRows)

	c, rec := newContext(t, http.MethodDelete, "/v1/types/type-9", nil, testAthlete())
	c.SetParamNames("id")
	c.SetParamValues("type-9")
	require.NoError(t, h.DeleteType(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "type-9", decodeBody(t, rec)["id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTypeUnused(t *testing.T) {
	db, mock := newDB(t)
	h := newTypeHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM activity_types WHERE id = ? AND user_id = ?")).
		WithArgs("type-1", "ath-1").
		WillReturnRows(typeRow("type-1", "ath-1", "run"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM activities WHERE type_id = ? AND user_id = ?")).
		WithArgs("type-1", "ath-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM activity_types WHERE id = ? AND user_id = ?")).
		WithArgs("type-1", "ath-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := newContext(t, http.MethodDelete, "/v1/types/type-1", nil, testAthlete())
	c.SetParamNames("id")
	c.SetParamValues("type-1")
	require.NoError(t, h.DeleteType(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "type-1", decodeBody(t, rec)["id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTypeScopedToOwner(t *testing.T) {
	db, mock := newDB(t)
	h := newTypeHandler(db)

	// Another user's type is indistinguishable from a missing one.
	mock.ExpectQuery(regexp.QuoteMeta("FROM activity_types WHERE id = ? AND user_id = ?")).
		WithArgs("type-1", "ath-1").
		WillReturnError(sql.ErrNoRows)

	c, rec := newContext(t, http.MethodGet, "/v1/types/type-1", nil, testAthlete())
	c.SetParamNames("id")
	c.SetParamValues("type-1")
	require.NoError(t, h.GetType(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Type not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
