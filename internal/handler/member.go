package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/coachlog/coachlog-api/internal/queue"
	"github.com/coachlog/coachlog-api/internal/repository"
)

// MemberHandler bundles dependencies for invitation/membership endpoints.
type MemberHandler struct {
	Teams   *repository.TeamRepo
	Members *repository.MemberRepo
	Mailer  queue.Mailer
}

func NewMemberHandler(t *repository.TeamRepo, m *repository.MemberRepo, mail queue.Mailer) *MemberHandler {
	return &MemberHandler{Teams: t, Members: m, Mailer: mail}
}

type createMembersReq struct {
	Members []string `json:"members"`
}

// CreateMembers invites additional emails to a team the coach owns.
// Emails already present among the team's members are skipped; duplicates
// in the input are collapsed first. Creation is the same best-effort
// per-row loop as team creation.
func (h *MemberHandler) CreateMembers(c echo.Context) error {
	auth := authUser(c)
	var req createMembersReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx := c.Request().Context()

	team, err := h.Teams.GetByIDAndCoach(ctx, c.Param("id"), auth.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Team not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	existing := make(map[string]bool, len(team.Members))
	for _, m := range team.Members {
		existing[m.Email] = true
	}
	for _, email := range dedupeEmails(req.Members) {
		if existing[email] {
			continue
		}
		if _, err := h.Members.Create(ctx, team.ID, email); err != nil {
			continue
		}
		_ = h.Mailer.Send(ctx, queue.MailEvent{
			Kind:      queue.MailInvitation,
			To:        email,
			TeamName:  team.Name,
			CoachName: auth.Name,
		})
	}

	team, err = h.Teams.GetByIDAndCoach(ctx, team.ID, auth.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, team)
}

// AcceptInvitation transitions a pending membership to accepted. Only the
// principal whose email matches the invitation may accept; anyone else
// gets the same "Team not found" as a missing membership so existence is
// not leaked. Accepting an already-accepted membership changes nothing.
func (h *MemberHandler) AcceptInvitation(c echo.Context) error {
	auth := authUser(c)
	ctx := c.Request().Context()

	m, err := h.Members.FindByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Team not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if m.Email != auth.Email {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Team not found"})
	}
	if m.Accepted() {
		return c.JSON(http.StatusOK, m)
	}

	now := time.Now().UTC()
	if err := h.Members.Accept(ctx, m.ID, auth.ID, now); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	m.UserID = auth.ID
	m.UserName = auth.Name
	m.AcceptedAt = &now
	return c.JSON(http.StatusOK, m)
}

// DeleteMember removes a membership when the caller is the team's coach or
// the invited user (accepted or not). Any other caller — and a missing
// membership — results in a no-op; the id is returned either way.
func (h *MemberHandler) DeleteMember(c echo.Context) error {
	auth := authUser(c)
	id := c.Param("id")
	ctx := c.Request().Context()

	m, err := h.Members.FindByID(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if m != nil && (m.Team.CoachID == auth.ID || m.Email == auth.Email) {
		if err := h.Members.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id})
}

// ListAthleteTeams returns the athlete's pending invitations and accepted
// team memberships in one payload.
func (h *MemberHandler) ListAthleteTeams(c echo.Context) error {
	auth := authUser(c)
	ctx := c.Request().Context()

	invitations, err := h.Members.ListInvitations(ctx, auth.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	teams, err := h.Members.ListByUser(ctx, auth.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"invitations": invitations, "teams": teams})
}
