package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/coachlog/coachlog-api/internal/model"
	"github.com/coachlog/coachlog-api/internal/repository"
	"github.com/coachlog/coachlog-api/internal/utils"
)

// ActivityHandler bundles dependencies for workout endpoints. Every
// operation accepts an optional member id so a coach can act for an
// athlete; resolveActingUser decides whose data is touched.
type ActivityHandler struct {
	Activities *repository.ActivityRepo
	Types      *repository.TypeRepo
	Members    *repository.MemberRepo
}

func NewActivityHandler(a *repository.ActivityRepo, t *repository.TypeRepo, m *repository.MemberRepo) *ActivityHandler {
	return &ActivityHandler{Activities: a, Types: t, Members: m}
}

type createActivityReq struct {
	Datetime     time.Time `json:"datetime"`
	Status       string    `json:"status"`
	TypeID       string    `json:"type_id"`
	GoalDistance *float64  `json:"goal_distance"`
	Distance     *float64  `json:"distance"`
	GoalDuration string    `json:"goal_duration"`
	Duration     string    `json:"duration"`
	MemberID     string    `json:"member_id"`
}

type updateActivityReq struct {
	Datetime     *time.Time `json:"datetime"`
	Status       *string    `json:"status"`
	TypeID       *string    `json:"type_id"`
	GoalDistance *float64   `json:"goal_distance"`
	Distance     *float64   `json:"distance"`
	GoalDuration *string    `json:"goal_duration"`
	Duration     *string    `json:"duration"`
	MemberID     string     `json:"member_id"`
}

type deleteActivityReq struct {
	MemberID string `json:"member_id"`
}

// CreateActivity records a workout for the acting user. The referenced
// type must belong to the acting user, not to the requesting coach.
func (h *ActivityHandler) CreateActivity(c echo.Context) error {
	auth := authUser(c)
	var req createActivityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Datetime.IsZero() || req.Status == "" || req.TypeID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "datetime/status/type_id required"})
	}
	ctx := c.Request().Context()

	acting, err := resolveActingUser(ctx, h.Members, req.MemberID, auth)
	if err != nil {
		if errors.Is(err, errDelegation) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Team member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	if _, err := h.Types.FindByID(ctx, req.TypeID, acting.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	created, err := h.Activities.Create(ctx, acting.ID, &model.Activity{
		Datetime:     req.Datetime,
		Status:       req.Status,
		TypeID:       req.TypeID,
		GoalDistance: req.GoalDistance,
		Distance:     req.Distance,
		GoalDuration: req.GoalDuration,
		Duration:     req.Duration,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateActivity merges the provided fields into an activity owned by the
// acting user.
func (h *ActivityHandler) UpdateActivity(c echo.Context) error {
	auth := authUser(c)
	id := c.Param("id")
	var req updateActivityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx := c.Request().Context()

	acting, err := resolveActingUser(ctx, h.Members, req.MemberID, auth)
	if err != nil {
		if errors.Is(err, errDelegation) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Team member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	activity, err := h.Activities.FindByID(ctx, id, acting.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Activity not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	if req.Datetime != nil {
		activity.Datetime = *req.Datetime
	}
	if req.Status != nil {
		activity.Status = *req.Status
	}
	if req.TypeID != nil {
		if _, err := h.Types.FindByID(ctx, *req.TypeID, acting.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "Type not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		activity.TypeID = *req.TypeID
	}
	if req.GoalDistance != nil {
		activity.GoalDistance = req.GoalDistance
	}
	if req.Distance != nil {
		activity.Distance = req.Distance
	}
	if req.GoalDuration != nil {
		activity.GoalDuration = *req.GoalDuration
	}
	if req.Duration != nil {
		activity.Duration = *req.Duration
	}

	updated, err := h.Activities.Update(ctx, activity)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteActivity removes an activity owned by the acting user. Deleting an
// activity that does not exist under that scope is a no-op; the id is
// returned either way.
func (h *ActivityHandler) DeleteActivity(c echo.Context) error {
	auth := authUser(c)
	id := c.Param("id")
	var req deleteActivityReq
	_ = c.Bind(&req) // body is optional for deletes
	ctx := c.Request().Context()

	acting, err := resolveActingUser(ctx, h.Members, req.MemberID, auth)
	if err != nil {
		if errors.Is(err, errDelegation) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Team member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	if err := h.Activities.Delete(ctx, id, acting.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id})
}

// ListActivities returns the acting user's activities together with the
// acting user's display name, so a coach's client can label whose log it
// is showing.
func (h *ActivityHandler) ListActivities(c echo.Context) error {
	auth := authUser(c)
	ctx := c.Request().Context()

	acting, err := resolveActingUser(ctx, h.Members, c.QueryParam("member_id"), auth)
	if err != nil {
		if errors.Is(err, errDelegation) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Team member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	rows, err := h.Activities.List(ctx, acting.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"rows": rows, "user": acting.Name})
}

// ListWeekActivities buckets the requester's activities into seven
// consecutive days starting at start_at (default: today).
func (h *ActivityHandler) ListWeekActivities(c echo.Context) error {
	auth := authUser(c)
	start := time.Now()
	if raw := c.QueryParam("start_at"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_at"})
		}
		start = parsed
	}

	days := utils.Days(start, 7)
	from := days[0]
	to := days[6].AddDate(0, 0, 1)

	list, err := h.Activities.ListBetween(c.Request().Context(), auth.ID, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	type weekDay struct {
		Day        string            `json:"day"`
		Activities []*model.Activity `json:"activities"`
	}
	week := make([]*weekDay, len(days))
	index := make(map[string]*weekDay, len(days))
	for i, d := range days {
		wd := &weekDay{Day: d.Format("2006-01-02"), Activities: []*model.Activity{}}
		week[i] = wd
		index[wd.Day] = wd
	}
	for _, a := range list {
		if wd, ok := index[utils.Midnight(a.Datetime).Format("2006-01-02")]; ok {
			wd.Activities = append(wd.Activities, a)
		}
	}
	return c.JSON(http.StatusOK, week)
}
