package models

import (
	"errors"
	"testing"
	"time"
)

func TestTransitionLegalEdges(t *testing.T) {
	cases := []struct {
		from   Status
		action Action
		role   Role
		want   Status
	}{
		{StatusDraft, ActionForm, RoleUser, StatusFormed},
		{StatusDraft, ActionForm, RoleModerator, StatusFormed},
		{StatusFormed, ActionApprove, RoleModerator, StatusApproved},
		{StatusApproved, ActionStart, RoleModerator, StatusInProgress},
		{StatusInProgress, ActionComplete, RoleModerator, StatusCompleted},
		{StatusFormed, ActionComplete, RoleModerator, StatusCompleted},
		{StatusFormed, ActionReject, RoleModerator, StatusCancelled},
	}
	for _, tt := range cases {
		got, err := Transition(tt.from, tt.action, tt.role)
		if err != nil {
			t.Errorf("Transition(%s, %s, %s) error: %v", tt.from, tt.action, tt.role, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Transition(%s, %s, %s) = %s; want %s", tt.from, tt.action, tt.role, got, tt.want)
		}
	}
}

func TestTransitionIllegalEdges(t *testing.T) {
	cases := []struct {
		from   Status
		action Action
	}{
		{StatusFormed, ActionForm},
		{StatusCompleted, ActionForm},
		{StatusDraft, ActionComplete},
		{StatusDraft, ActionReject},
		{StatusApproved, ActionReject},
		{StatusCompleted, ActionComplete},
		{StatusCancelled, ActionComplete},
		{StatusCompleted, ActionReject},
		{StatusCancelled, ActionReject},
		{StatusInProgress, ActionApprove},
	}
	for _, tt := range cases {
		got, err := Transition(tt.from, tt.action, RoleModerator)
		if !errors.Is(err, ErrStatusConflict) {
			t.Errorf("Transition(%s, %s) error = %v; want ErrStatusConflict", tt.from, tt.action, err)
		}
		if got != tt.from {
			t.Errorf("Transition(%s, %s) moved status to %s on failure", tt.from, tt.action, got)
		}
	}
}

func TestTransitionRoleViolations(t *testing.T) {
	for _, action := range []Action{ActionApprove, ActionStart, ActionComplete, ActionReject} {
		got, err := Transition(StatusFormed, action, RoleUser)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Transition(formed, %s, user) error = %v; want ErrForbidden", action, err)
		}
		if got != StatusFormed {
			t.Errorf("Transition(formed, %s, user) moved status to %s on failure", action, got)
		}
	}

	// Role check must win over state check: probing a terminal route as a
	// plain user is still a permission error, not a state hint.
	if _, err := Transition(StatusCompleted, ActionReject, RoleUser); !errors.Is(err, ErrForbidden) {
		t.Errorf("Transition(completed, reject, user) error = %v; want ErrForbidden", err)
	}
}

func TestTransitionUnknownAction(t *testing.T) {
	if _, err := Transition(StatusDraft, Action("teleport"), RoleModerator); !errors.Is(err, ErrStatusConflict) {
		t.Errorf("unknown action error = %v; want ErrStatusConflict", err)
	}
}

func TestTimestampsFor(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	ts := TimestampsFor(StatusFormed, now)
	if ts.FormedAt == nil || !ts.FormedAt.Equal(now) {
		t.Errorf("TimestampsFor(formed).FormedAt = %v; want %v", ts.FormedAt, now)
	}
	if ts.EndedAt != nil {
		t.Errorf("TimestampsFor(formed).EndedAt = %v; want nil", ts.EndedAt)
	}

	for _, s := range []Status{StatusCompleted, StatusCancelled} {
		ts := TimestampsFor(s, now)
		if ts.EndedAt == nil || !ts.EndedAt.Equal(now) {
			t.Errorf("TimestampsFor(%s).EndedAt = %v; want %v", s, ts.EndedAt, now)
		}
		if ts.FormedAt != nil {
			t.Errorf("TimestampsFor(%s).FormedAt = %v; want nil", s, ts.FormedAt)
		}
	}

	ts = TimestampsFor(StatusApproved, now)
	if ts.FormedAt != nil || ts.EndedAt != nil {
		t.Errorf("TimestampsFor(approved) = %+v; want no timestamps", ts)
	}
}

func TestTerminalStatesAreSinks(t *testing.T) {
	actions := []Action{ActionForm, ActionApprove, ActionStart, ActionComplete, ActionReject}
	for _, s := range []Status{StatusCompleted, StatusCancelled} {
		if !IsTerminal(s) {
			t.Errorf("IsTerminal(%s) = false", s)
		}
		for _, a := range actions {
			if _, err := Transition(s, a, RoleModerator); err == nil {
				t.Errorf("Transition(%s, %s) succeeded; terminal states must be sinks", s, a)
			}
		}
	}
}
