package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/coachlog/coachlog-api/internal/config"
	"github.com/coachlog/coachlog-api/internal/identity"
	"github.com/coachlog/coachlog-api/internal/model"
	"github.com/coachlog/coachlog-api/internal/queue"
	"github.com/coachlog/coachlog-api/internal/repository"
	"github.com/coachlog/coachlog-api/internal/utils"
)

// AuthHandler bundles dependencies for sign-in, password and recovery
// endpoints. Verifier may be nil when no OIDC provider is configured.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Recovery *repository.RecoveryRepo
	Mailer   queue.Mailer
	Verifier identity.Verifier
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, rec *repository.RecoveryRepo, m queue.Mailer, v identity.Verifier) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Recovery: rec, Mailer: m, Verifier: v}
}

// ----- DTOs -----

type signInReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type signInOIDCReq struct {
	Token string `json:"token"`
}
type updatePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}
type requestRecoveryReq struct {
	Email string `json:"email"`
}
type resetPasswordReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}
type signInResp struct {
	AccessToken string      `json:"access_token"`
	User        *model.User `json:"user"`
}

// SignIn verifies email/password credentials and returns an access token.
// Unknown email, wrong password and password-less external accounts all
// collapse into the same "Wrong email or password" response.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Wrong email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if u.PasswordHash == "" || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Wrong email or password"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, signInResp{AccessToken: access.Token, User: u})
}

// SignInOIDC exchanges an externally issued ID token for a local access
// token, creating the account on first sign-in. External accounts carry no
// password hash.
func (h *AuthHandler) SignInOIDC(c echo.Context) error {
	var req signInOIDCReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}
	if h.Verifier == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	claims, err := h.Verifier.Verify(ctx, strings.TrimSpace(req.Token))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid token"})
	}

	u, err := h.Users.GetByEmail(ctx, claims.Email)
	if errors.Is(err, repository.ErrNotFound) {
		name := claims.Name
		if name == "" {
			name = claims.Email
		}
		u, err = h.Users.Create(ctx, name, claims.Email, "")
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, signInResp{AccessToken: access.Token, User: u})
}

// UpdatePassword changes the authenticated user's password after verifying
// the old one.
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	auth := authUser(c)
	var req updatePasswordReq
	if err := c.Bind(&req); err != nil || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	// External accounts have no password to verify against.
	if auth.PasswordHash == "" || !utils.VerifyPassword(auth.PasswordHash, req.OldPassword) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Wrong password"})
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Users.UpdatePassword(ctx, auth.ID, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": auth.ID})
}

// RequestRecovery mails a single-use reset token to the given address when
// an account exists. The response is identical either way so the endpoint
// cannot be used to probe registered emails.
func (h *AuthHandler) RequestRecovery(c echo.Context) error {
	var req requestRecoveryReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err == nil {
		raw, tokenErr := utils.NewRecoveryToken()
		if tokenErr != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token failed"})
		}
		exp := time.Now().UTC().Add(time.Duration(h.Cfg.RecoveryTTLMin) * time.Minute)
		if storeErr := h.Recovery.Store(ctx, u.ID, utils.HashRecoveryToken(raw), exp); storeErr != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store failed"})
		}
		// Mail delivery is best-effort; the token row already exists.
		_ = h.Mailer.Send(ctx, queue.MailEvent{
			Kind:  queue.MailRecovery,
			To:    u.Email,
			Token: raw,
		})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// ResetPassword consumes a recovery token and sets a new password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil || req.Token == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Recovery.Consume(ctx, utils.HashRecoveryToken(req.Token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}
	if err := h.Users.UpdatePassword(ctx, userID, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
