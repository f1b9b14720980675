package models

import "time"

// Status is the closed set of route lifecycle states.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusFormed     Status = "formed"
	StatusApproved   Status = "approved"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Action is a lifecycle transition request.
type Action string

const (
	ActionForm     Action = "form"
	ActionApprove  Action = "approve"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionReject   Action = "reject"
)

// Role of the caller attempting a transition.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusFormed, StatusApproved, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether s is a sink state.
func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled
}

// transitions is the legal edge set of the lifecycle graph:
// draft -> formed -> {approved -> in_progress -> completed} | cancelled.
var transitions = map[Action]struct {
	from []Status
	to   Status
	role Role
}{
	ActionForm:     {from: []Status{StatusDraft}, to: StatusFormed, role: RoleUser},
	ActionApprove:  {from: []Status{StatusFormed}, to: StatusApproved, role: RoleModerator},
	ActionStart:    {from: []Status{StatusApproved}, to: StatusInProgress, role: RoleModerator},
	ActionComplete: {from: []Status{StatusFormed, StatusInProgress}, to: StatusCompleted, role: RoleModerator},
	ActionReject:   {from: []Status{StatusFormed}, to: StatusCancelled, role: RoleModerator},
}

// Transition is the total transition function of the lifecycle machine.
// It decides, without touching storage, whether role may apply action to a
// route currently in current, and what the resulting status is.
// Role violations win over state violations so that a non-moderator probing
// a terminal transition always gets ErrForbidden, never a state hint.
func Transition(current Status, action Action, role Role) (Status, error) {
	t, ok := transitions[action]
	if !ok {
		return current, ErrStatusConflict
	}
	if t.role == RoleModerator && role != RoleModerator {
		return current, ErrForbidden
	}
	for _, from := range t.from {
		if current == from {
			return t.to, nil
		}
	}
	return current, ErrStatusConflict
}

// TransitionTimestamps captures which route timestamps a successful
// transition must set. Zero fields are left untouched.
type TransitionTimestamps struct {
	FormedAt *time.Time
	EndedAt  *time.Time
}

// TimestampsFor returns the timestamps to write when a route enters next.
// formed_at is written exactly once, on draft->formed; ended_at exactly once,
// on entry into a terminal state.
func TimestampsFor(next Status, now time.Time) TransitionTimestamps {
	var ts TransitionTimestamps
	if next == StatusFormed {
		ts.FormedAt = &now
	}
	if IsTerminal(next) {
		ts.EndedAt = &now
	}
	return ts
}
