package router // router defines how HTTP routes are registered for the API

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/coachlog/coachlog-api/internal/handler"
	"github.com/coachlog/coachlog-api/internal/middleware"
	"github.com/coachlog/coachlog-api/internal/repository"
)

// Handlers collects everything the router wires up.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Activity *handler.ActivityHandler
	Team     *handler.TeamHandler
	Member   *handler.MemberHandler
	Type     *handler.TypeHandler
}

// Register sets up every route. Each route is wrapped in the guard for its
// operation name so the declarative metadata in middleware.Operations is
// the single place deciding who may call what. The Redis client may be nil;
// rate limiting then disables itself.
func Register(e *echo.Echo, h Handlers, jwtSecret string, users *repository.UserRepo, rdb *redis.Client) {
	guard := func(op string) echo.MiddlewareFunc {
		return middleware.Guard(op, jwtSecret, users)
	}

	e.GET("/healthz", handler.Health, guard("health"))

	// Public auth surface, rate limited to slow down credential stuffing
	// and recovery-token fishing.
	limited := middleware.RateLimit(rdb, 10, time.Minute)
	e.POST("/v1/users", h.Users.CreateUser, guard("createUser"), limited)
	e.POST("/v1/auth/sign-in", h.Auth.SignIn, guard("signIn"), limited)
	e.POST("/v1/auth/sign-in-oidc", h.Auth.SignInOIDC, guard("signInOIDC"), limited)
	e.POST("/v1/auth/recovery", h.Auth.RequestRecovery, guard("requestRecovery"), limited)
	e.POST("/v1/auth/reset-password", h.Auth.ResetPassword, guard("resetPassword"), limited)

	// Account endpoints: any authenticated principal.
	e.GET("/v1/me", h.Users.Me, guard("me"))
	e.PUT("/v1/users", h.Users.UpdateUser, guard("updateUser"))
	e.DELETE("/v1/users", h.Users.DeleteUser, guard("deleteUser"))
	e.POST("/v1/auth/password", h.Auth.UpdatePassword, guard("updatePassword"))

	// Activities: any authenticated principal; coach delegation happens
	// inside the handlers via member_id.
	e.POST("/v1/activities", h.Activity.CreateActivity, guard("createActivity"))
	e.PUT("/v1/activities/:id", h.Activity.UpdateActivity, guard("updateActivity"))
	e.DELETE("/v1/activities/:id", h.Activity.DeleteActivity, guard("deleteActivity"))
	e.GET("/v1/activities", h.Activity.ListActivities, guard("listActivities"))
	e.GET("/v1/activities/week", h.Activity.ListWeekActivities, guard("listWeekActivities"))

	// Activity types.
	e.POST("/v1/types", h.Type.CreateType, guard("createType"))
	e.PUT("/v1/types/:id", h.Type.UpdateType, guard("updateType"))
	e.DELETE("/v1/types/:id", h.Type.DeleteType, guard("deleteType"))
	e.GET("/v1/types/:id", h.Type.GetType, guard("getType"))
	e.GET("/v1/types", h.Type.ListTypes, guard("listTypes"))

	// Teams: COACH only.
	e.POST("/v1/teams", h.Team.CreateTeam, guard("createTeam"))
	e.PUT("/v1/teams/:id", h.Team.UpdateTeam, guard("updateTeam"))
	e.DELETE("/v1/teams/:id", h.Team.DeleteTeam, guard("deleteTeam"))
	e.GET("/v1/teams/:id", h.Team.GetTeam, guard("getTeam"))
	e.GET("/v1/teams", h.Team.ListCoachTeams, guard("listCoachTeams"))
	e.POST("/v1/teams/:id/members", h.Member.CreateMembers, guard("createMembers"))

	// Memberships.
	e.POST("/v1/members/:id/accept", h.Member.AcceptInvitation, guard("acceptInvitation"))
	e.DELETE("/v1/members/:id", h.Member.DeleteMember, guard("deleteMember"))
	e.GET("/v1/members/teams", h.Member.ListAthleteTeams, guard("listAthleteTeams"))
}
