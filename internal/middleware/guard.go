package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/coachlog/coachlog-api/internal/model"
	"github.com/coachlog/coachlog-api/internal/repository"
	"github.com/coachlog/coachlog-api/internal/utils"
)

// authUserKey is the context key under which Guard stores the resolved
// principal for downstream handlers.
const authUserKey = "auth_user"

// Guard returns the authorization gate for one named operation. It looks
// the operation up in Operations and enforces, in order:
//
//  1. public bypass — no token is read at all;
//  2. authentication — a valid bearer token whose subject resolves to an
//     existing user, otherwise 401 "Invalid access token";
//  3. role check — the principal's profile must be one of the operation's
//     declared roles, otherwise 403 "Unauthorized access".
//
// On success the full user row is attached to the request context; the
// token itself carries nothing but the subject.
func Guard(operation, secret string, users *repository.UserRepo) echo.MiddlewareFunc {
	op := Operations[operation]
	allowed := make(map[string]bool, len(op.Roles))
	for _, r := range op.Roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if op.Public {
				return next(c)
			}

			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid access token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			sub, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid access token"})
			}
			user, err := users.GetByID(c.Request().Context(), sub)
			if err != nil {
				// Deleted users keep a syntactically valid token; treat it
				// the same as a bad one.
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid access token"})
			}

			if len(allowed) > 0 && !allowed[user.Profile] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Unauthorized access"})
			}

			c.Set(authUserKey, user)
			return next(c)
		}
	}
}

// AuthUser returns the principal attached by Guard, or nil on public routes.
func AuthUser(c echo.Context) *model.User {
	u, _ := c.Get(authUserKey).(*model.User)
	return u
}

// SetAuthUser attaches a principal to the context the same way Guard does.
// Handler tests use it to exercise protected endpoints without a token.
func SetAuthUser(c echo.Context, u *model.User) {
	c.Set(authUserKey, u)
}
