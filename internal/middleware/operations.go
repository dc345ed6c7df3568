package middleware

import "github.com/coachlog/coachlog-api/internal/model"

// Operation describes the authorization requirement of one API operation.
// Public operations skip identity resolution entirely. A non-public
// operation with no roles accepts any authenticated principal.
type Operation struct {
	Public bool
	Roles  []string
}

// Operations is the declarative route metadata consulted by Guard before
// dispatch, keyed by operation name. Adding an endpoint without an entry
// here makes it authenticated-only by default, never public.
var Operations = map[string]Operation{
	"health":          {Public: true},
	"createUser":      {Public: true},
	"signIn":          {Public: true},
	"signInOIDC":      {Public: true},
	"requestRecovery": {Public: true},
	"resetPassword":   {Public: true},

	"me":             {},
	"updateUser":     {},
	"deleteUser":     {},
	"updatePassword": {},

	"createActivity":     {},
	"updateActivity":     {},
	"deleteActivity":     {},
	"listActivities":     {},
	"listWeekActivities": {},

	"createType": {},
	"updateType": {},
	"deleteType": {},
	"getType":    {},
	"listTypes":  {},

	"createTeam":     {Roles: []string{model.RoleCoach}},
	"updateTeam":     {Roles: []string{model.RoleCoach}},
	"deleteTeam":     {Roles: []string{model.RoleCoach}},
	"getTeam":        {Roles: []string{model.RoleCoach}},
	"listCoachTeams": {Roles: []string{model.RoleCoach}},
	"createMembers":  {Roles: []string{model.RoleCoach}},

	"acceptInvitation": {Roles: []string{model.RoleAthlete}},
	"listAthleteTeams": {Roles: []string{model.RoleAthlete}},

	// deleteMember has its own guard: the team's coach or the invited
	// user may delete, so the gate only authenticates.
	"deleteMember": {},
}
