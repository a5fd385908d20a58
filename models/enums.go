package models

import "fmt"

// Role is the access level of a user account.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// ParseRole converts raw input into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q", s)
	}
	return r, nil
}

// Status is the progress state shared by projects and events.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q", s)
	}
	return st, nil
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q", s)
	}
	return p, nil
}

// EventType classifies calendar entries.
type EventType string

const (
	EventMeeting  EventType = "meeting"
	EventTask     EventType = "task"
	EventReminder EventType = "reminder"
	EventVacation EventType = "vacation"
)

func (t EventType) Valid() bool {
	switch t {
	case EventMeeting, EventTask, EventReminder, EventVacation:
		return true
	}
	return false
}

func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid event type %q", s)
	}
	return t, nil
}

// ResponseStatus tracks a user's answer to an event, either as a
// participant row or as an invitation.
type ResponseStatus string

const (
	ResponsePending  ResponseStatus = "pending"
	ResponseAccepted ResponseStatus = "accepted"
	ResponseDeclined ResponseStatus = "declined"
)

func (s ResponseStatus) Valid() bool {
	switch s {
	case ResponsePending, ResponseAccepted, ResponseDeclined:
		return true
	}
	return false
}

// Terminal reports whether no further response is expected.
func (s ResponseStatus) Terminal() bool {
	return s == ResponseAccepted || s == ResponseDeclined
}

func ParseResponseStatus(s string) (ResponseStatus, error) {
	st := ResponseStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid response status %q", s)
	}
	return st, nil
}
