package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/coachlog/coachlog-api/internal/config"
	"github.com/coachlog/coachlog-api/internal/model"
	"github.com/coachlog/coachlog-api/internal/repository"
	"github.com/coachlog/coachlog-api/internal/utils"
)

// UserHandler bundles dependencies for account endpoints.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u}
}

type createUserReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type updateUserReq struct {
	Name    string `json:"name"`
	Profile string `json:"profile"`
}

// CreateUser handles public sign-up.
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/password required"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	u, err := h.Users.Create(ctx, req.Name, req.Email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, u)
}

// Me returns the authenticated user.
func (h *UserHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, authUser(c))
}

// UpdateUser changes the authenticated user's name and/or profile role.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	auth := authUser(c)
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	profile := strings.ToUpper(strings.TrimSpace(req.Profile))
	if profile != "" && profile != model.RoleCoach && profile != model.RoleAthlete {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid profile"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	u, err := h.Users.Update(ctx, auth.ID, strings.TrimSpace(req.Name), profile)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, u)
}

// DeleteUser removes the authenticated user's account and everything it
// owns: activities, types, coached teams with their memberships, and the
// user's own memberships.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	auth := authUser(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()
	if err := h.Users.Delete(ctx, auth.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": auth.ID})
}
