package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/coachlog/coachlog-api/internal/repository"
)

// TypeHandler bundles dependencies for activity-type endpoints. Deletion
// consults the activity repository because a type still referenced by
// activities must not be removed.
type TypeHandler struct {
	Types      *repository.TypeRepo
	Activities *repository.ActivityRepo
}

func NewTypeHandler(t *repository.TypeRepo, a *repository.ActivityRepo) *TypeHandler {
	return &TypeHandler{Types: t, Activities: a}
}

type createTypeReq struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}
type updateTypeReq struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// CreateType creates an activity type with a label unique within the
// authenticated user's types. The existence check and the insert are two
// round-trips; concurrent identical requests can race, which is accepted
// for this domain.
func (h *TypeHandler) CreateType(c echo.Context) error {
	auth := authUser(c)
	var req createTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	label := strings.TrimSpace(req.Type)
	if label == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type is required"})
	}
	ctx := c.Request().Context()

	if _, err := h.Types.FindByLabel(ctx, label, auth.ID); err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Type already exist"})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	created, err := h.Types.Create(ctx, auth.ID, label, strings.TrimSpace(req.Description))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateType changes label/description of a type the user owns.
func (h *TypeHandler) UpdateType(c echo.Context) error {
	auth := authUser(c)
	var req updateTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx := c.Request().Context()

	if _, err := h.Types.FindByID(ctx, c.Param("id"), auth.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	updated, err := h.Types.Update(ctx, c.Param("id"), auth.ID,
		strings.TrimSpace(req.Type), strings.TrimSpace(req.Description))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteType removes a type the user owns, unless activities still
// reference it. A type absent under the user's scope is a no-op; the id is
// returned either way.
func (h *TypeHandler) DeleteType(c echo.Context) error {
	auth := authUser(c)
	id := c.Param("id")
	ctx := c.Request().Context()

	if _, err := h.Types.FindByID(ctx, id, auth.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"id": id})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	inUse, err := h.Activities.CountByType(ctx, id, auth.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if inUse > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Type is being used by activities"})
	}

	if err := h.Types.Delete(ctx, id, auth.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id})
}

// GetType returns one of the user's types.
func (h *TypeHandler) GetType(c echo.Context) error {
	auth := authUser(c)
	t, err := h.Types.FindByID(c.Request().Context(), c.Param("id"), auth.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, t)
}

// ListTypes returns all of the user's types.
func (h *TypeHandler) ListTypes(c echo.Context) error {
	auth := authUser(c)
	items, err := h.Types.List(c.Request().Context(), auth.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
