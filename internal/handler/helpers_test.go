package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/coachlog/coachlog-api/internal/middleware"
	"github.com/coachlog/coachlog-api/internal/model"
	"github.com/coachlog/coachlog-api/internal/queue"
)

// mailRecorder captures mail events instead of touching a broker.
type mailRecorder struct {
	events []queue.MailEvent
}

func (m *mailRecorder) Send(_ context.Context, ev queue.MailEvent) error {
	m.events = append(m.events, ev)
	return nil
}

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// newContext builds an echo context with an optional JSON body and, when
// auth is non-nil, the principal attached the way the guard would.
func newContext(t *testing.T, method, target string, body any, auth *model.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if auth != nil {
		middleware.SetAuthUser(c, auth)
	}
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func testCoach() *model.User {
	return &model.User{ID: "coach-1", Name: "Dana", Email: "dana@example.com", Profile: model.RoleCoach}
}

func testAthlete() *model.User {
	return &model.User{ID: "ath-1", Name: "Alex", Email: "alex@example.com", Profile: model.RoleAthlete}
}

const memberFindQuery = "SELECT m.id, m.team_id, m.email, m.user_id, u.name, m.accepted_at,"

func memberColumns() []string {
	return []string{"id", "team_id", "email", "user_id", "name", "accepted_at",
		"created_at", "updated_at", "t_id", "t_coach_id", "t_name"}
}

// memberRow returns a FindByID result row. userID/userName may be nil for a
// pending invitation; acceptedAt may be nil likewise.
func memberRow(id, teamID, email string, userID, userName any, acceptedAt any, coachID, teamName string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(memberColumns()).
		AddRow(id, teamID, email, userID, userName, acceptedAt, now, now, teamID, coachID, teamName)
}

func activityColumnNames() []string {
	return []string{"id", "user_id", "datetime", "status", "type_id",
		"goal_distance", "distance", "goal_duration", "duration", "created_at", "updated_at"}
}

func activityRow(id, userID, typeID string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(activityColumnNames()).
		AddRow(id, userID, now, "planned", typeID, nil, nil, nil, nil, now, now)
}

func typeRow(id, userID, label string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "type", "description"}).
		AddRow(id, userID, label, nil)
}

func teamRow(id, coachID, name string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "coach_id", "name", "description", "created_at", "updated_at"}).
		AddRow(id, coachID, name, nil, now, now)
}

func userRow(u *model.User) *sqlmock.Rows {
	return userRowWithHash(u, nil)
}

func userRowWithHash(u *model.User, hash any) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "profile", "created_at", "updated_at"}).
		AddRow(u.ID, u.Name, u.Email, hash, u.Profile, now, now)
}
