package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/coachlog/coachlog-api/internal/queue"
	"github.com/coachlog/coachlog-api/internal/repository"
)

// TeamHandler bundles dependencies for coach-scoped team endpoints. The
// guard has already enforced the COACH role before these run; the handlers
// still scope every lookup by coach id.
type TeamHandler struct {
	Teams   *repository.TeamRepo
	Members *repository.MemberRepo
	Mailer  queue.Mailer
}

func NewTeamHandler(t *repository.TeamRepo, m *repository.MemberRepo, mail queue.Mailer) *TeamHandler {
	return &TeamHandler{Teams: t, Members: m, Mailer: mail}
}

type createTeamReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
}
type updateTeamReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// dedupeEmails lowercases, trims and deduplicates an email list while
// preserving input order.
func dedupeEmails(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, e := range in {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

// inviteMembers creates a pending membership per email and queues an
// invitation mail for each. Creation is a best-effort per-row loop: a
// failed row is skipped and the rest still go through, so a partial
// failure leaves some invitations created and others not.
func (h *TeamHandler) inviteMembers(c echo.Context, teamID, teamName, coachName string, emails []string) {
	ctx := c.Request().Context()
	for _, email := range emails {
		if _, err := h.Members.Create(ctx, teamID, email); err != nil {
			continue
		}
		_ = h.Mailer.Send(ctx, queue.MailEvent{
			Kind:      queue.MailInvitation,
			To:        email,
			TeamName:  teamName,
			CoachName: coachName,
		})
	}
}

// CreateTeam creates a team owned by the authenticated coach and invites
// the listed emails.
func (h *TeamHandler) CreateTeam(c echo.Context) error {
	auth := authUser(c)
	var req createTeamReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	team, err := h.Teams.Create(c.Request().Context(), auth.ID, name, strings.TrimSpace(req.Description))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}

	h.inviteMembers(c, team.ID, team.Name, auth.Name, dedupeEmails(req.Members))

	return c.JSON(http.StatusCreated, team)
}

// UpdateTeam changes name/description of a team the coach owns.
func (h *TeamHandler) UpdateTeam(c echo.Context) error {
	auth := authUser(c)
	var req updateTeamReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	team, err := h.Teams.Update(c.Request().Context(), c.Param("id"), auth.ID,
		strings.TrimSpace(req.Name), strings.TrimSpace(req.Description))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Team not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, team)
}

// DeleteTeam removes a team the coach owns. Deleting a team that does not
// exist under the coach's scope is a no-op; the id is returned either way.
func (h *TeamHandler) DeleteTeam(c echo.Context) error {
	auth := authUser(c)
	id := c.Param("id")
	if err := h.Teams.Delete(c.Request().Context(), id, auth.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id})
}

// GetTeam returns one of the coach's teams with its membership rows.
func (h *TeamHandler) GetTeam(c echo.Context) error {
	auth := authUser(c)
	team, err := h.Teams.GetByIDAndCoach(c.Request().Context(), c.Param("id"), auth.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Team not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, team)
}

// ListCoachTeams returns all teams the coach owns.
func (h *TeamHandler) ListCoachTeams(c echo.Context) error {
	auth := authUser(c)
	teams, err := h.Teams.ListByCoach(c.Request().Context(), auth.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": teams})
}
