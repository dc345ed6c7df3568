package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachlog/coachlog-api/internal/repository"
)

func newActivityHandler(db *sql.DB) *ActivityHandler {
	return NewActivityHandler(
		repository.NewActivityRepo(db),
		repository.NewTypeRepo(db),
		repository.NewMemberRepo(db),
	)
}

func TestCreateActivityDelegationWrongCoach(t *testing.T) {
	db, mock := newDB(t)
	h := newActivityHandler(db)

	// The membership exists but belongs to another coach's team; no write
	// may happen and the response must not reveal the difference from a
	// missing membership.
	mock.ExpectQuery(regexp.QuoteMeta(memberFindQuery)).
		WithArgs("m-1").
		WillReturnRows(memberRow("m-1", "team-9", "alex@example.com", "ath-1", "Alex", time.Now().UTC(), "coach-other", "Rivals"))

	c, rec := newContext(t, http.MethodPost, "/v1/activities", map[string]any{
		"datetime":  "2026-03-05T10:00:00Z",
		"status":    "planned",
		"type_id":   "type-1",
		"member_id": "m-1",
	}, testCoach())
	require.NoError(t, h.CreateActivity(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Team member not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateActivityDelegationPendingInvitation(t *testing.T) {
	db, mock := newDB(t)
	h := newActivityHandler(db)

	// Correct coach, but the invitation was never accepted: there is no
	// user to act for.
	mock.ExpectQuery(regexp.QuoteMeta(memberFindQuery)).
		WithArgs("m-1").
		WillReturnRows(memberRow("m-1", "team-1", "alex@example.com", nil, nil, nil, "coach-1", "Squad"))

	c, rec := newContext(t, http.MethodPost, "/v1/activities", map[string]any{
		"datetime":  "2026-03-05T10:00:00Z",
		"status":    "planned",
		"type_id":   "type-1",
		"member_id": "m-1",
	}, testCoach())
	require.NoError(t, h.CreateActivity(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Team member not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateActivityDelegationSuccess(t *testing.T) {
	db, mock := newDB(t)
	h := newActivityHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta(memberFindQuery)).
		WithArgs("m-1").
		WillReturnRows(memberRow("m-1", "team-1", "alex@example.com", "ath-1", "Alex", time.Now().UTC(), "coach-1", "Squad"))
	// Type ownership and the insert are both under the athlete's id, not
	// the requesting coach's.
	mock.ExpectQuery(regexp.QuoteMeta("FROM activity_types WHERE id = ? AND user_id = ?")).
		WithArgs("type-1", "ath-1").
		WillReturnRows(typeRow("type-1", "ath-1", "run"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activities")).
		WithArgs(sqlmock.AnyArg(), "ath-1", sqlmock.AnyArg(), "planned", "type-1", nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM activities WHERE id = ? AND user_id = ?")).
		WithArgs(sqlmock.AnyArg(), "ath-1").
		WillReturnRows(activityRow("act-1", "ath-1", "type-1"))

	c, rec := newContext(t, http.MethodPost, "/v1/activities", map[string]any{
		"datetime":  "2026-03-05T10:00:00Z",
		"status":    "planned",
		"type_id":   "type-1",
		"member_id": "m-1",
	}, testCoach())
	require.NoError(t, h.CreateActivity(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ath-1", body["user_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateActivityUnknownType(t *testing.T) {
	db, mock := newDB(t)
	h := newActivityHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM activity_types WHERE id = ? AND user_id = ?")).
		WithArgs("type-9", "ath-1").
		WillReturnError(sql.ErrNoRows)

	c, rec := newContext(t, http.MethodPost, "/v1/activities", map[string]any{
		"datetime": "2026-03-05T10:00:00Z",
		"status":   "planned",
		"type_id":  "type-9",
	}, testAthlete())
	require.NoError(t, h.CreateActivity(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Type not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateActivityNotFound(t *testing.T) {
	db, mock := newDB(t)
	h := newActivityHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM activities WHERE id = ? AND user_id = ?")).
		WithArgs("act-9", "ath-1").
		WillReturnError(sql.ErrNoRows)

	c, rec := newContext(t, http.MethodPut, "/v1/activities/act-9", map[string]any{
		"status": "done",
	}, testAthlete())
	c.SetParamNames("id")
	c.SetParamValues("act-9")
	require.NoError(t, h.UpdateActivity(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Activity not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteActivityIdempotent(t *testing.T) {
	db, mock := newDB(t)
	h := newActivityHandler(db)

	// Already gone (or never owned): zero rows affected, still a success
	// response carrying the id.
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM activities WHERE id = ? AND user_id = ?")).
		WithArgs("act-9", "ath-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	c, rec := newContext(t, http.MethodDelete, "/v1/activities/act-9", nil, testAthlete())
	c.SetParamNames("id")
	c.SetParamValues("act-9")
	require.NoError(t, h.DeleteActivity(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "act-9", decodeBody(t, rec)["id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActivitiesDelegationUsesMemberIdentity(t *testing.T) {
	db, mock := newDB(t)
	h := newActivityHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta(memberFindQuery)).
		WithArgs("m-1").
		WillReturnRows(memberRow("m-1", "team-1", "alex@example.com", "ath-1", "Alex", time.Now().UTC(), "coach-1", "Squad"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM activities WHERE user_id = ? ORDER BY datetime")).
		WithArgs("ath-1").
		WillReturnRows(sqlmock.NewRows(activityColumnNames()))

	c, rec := newContext(t, http.MethodGet, "/v1/activities?member_id=m-1", nil, testCoach())
	require.NoError(t, h.ListActivities(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Alex", body["user"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWeekActivitiesBucketsByDay(t *testing.T) {
	db, mock := newDB(t)
	h := newActivityHandler(db)

	from := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	inWeek := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(activityColumnNames()).
		AddRow("act-1", "ath-1", inWeek, "done", "type-1", nil, nil, nil, nil, inWeek, inWeek)
	mock.ExpectQuery(regexp.QuoteMeta("FROM activities")).
		WithArgs("ath-1", from, to).
		WillReturnRows(rows)

	c, rec := newContext(t, http.MethodGet, "/v1/activities/week?start_at=2026-03-05", nil, testAthlete())
	require.NoError(t, h.ListWeekActivities(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var week []struct {
		Day        string           `json:"day"`
		Activities []map[string]any `json:"activities"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &week))
	require.Len(t, week, 7)
	assert.Equal(t, "2026-03-05", week[0].Day)
	assert.Empty(t, week[0].Activities)
	assert.Equal(t, "2026-03-07", week[2].Day)
	require.Len(t, week[2].Activities, 1)
	assert.Equal(t, "act-1", week[2].Activities[0]["id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
