package handler // handler defines http handlers

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/coachlog/coachlog-api/internal/middleware"
	"github.com/coachlog/coachlog-api/internal/model"
	"github.com/coachlog/coachlog-api/internal/repository"
)

// errDelegation is returned by resolveActingUser whenever delegation cannot
// be granted. Callers surface it as 404 "Team member not found" without
// distinguishing "no such membership" from "not your athlete" — the
// collapsed message intentionally leaks nothing.
var errDelegation = errors.New("team member not found")

// actingUser is the effective identity an activity operation applies to:
// the requester themselves, or a team member the requester coaches.
type actingUser struct {
	ID   string
	Name string
}

// resolveActingUser implements coach-for-athlete delegation. With no
// memberID the requester acts for themselves and no lookup happens. With a
// memberID, the membership must exist, its team's coach must be the
// requester, and it must have a linked user (a pending invitation has
// nobody to act for), otherwise errDelegation.
func resolveActingUser(ctx context.Context, members *repository.MemberRepo, memberID string, auth *model.User) (actingUser, error) {
	if memberID == "" {
		return actingUser{ID: auth.ID, Name: auth.Name}, nil
	}
	m, err := members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return actingUser{}, errDelegation
		}
		return actingUser{}, err
	}
	if m.Team == nil || m.Team.CoachID != auth.ID || m.UserID == "" {
		return actingUser{}, errDelegation
	}
	return actingUser{ID: m.UserID, Name: m.UserName}, nil
}

// authUser returns the principal the guard attached to the context.
func authUser(c echo.Context) *model.User { return middleware.AuthUser(c) }
