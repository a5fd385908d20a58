// Package policy decides who may do what to users, projects, events and
// invitations. Every function here is pure: the caller loads the target
// resource (with its participants or members) and passes it in.
package policy

import "teamcal/models"

// Principal is the authenticated caller.
type Principal struct {
	ID   uint
	Role models.Role
}

// SeesAll reports whether the principal bypasses row-level filtering on
// list endpoints.
func (p Principal) SeesAll() bool {
	return p.Role == models.RoleAdmin || p.Role == models.RoleManager
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

type Action string

const (
	ActionRead      Action = "read"
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionDelete    Action = "delete"
	ActionSetActive Action = "set_active"
	ActionSetRole   Action = "set_role"
	ActionRespond   Action = "respond"
)

// CanAccess is the single decision point. resource is one of *models.User,
// *models.Project, *models.Event or *models.Invitation; a typed nil pointer
// stands for the collection (used for create). Unknown combinations are
// denied.
func CanAccess(p Principal, action Action, resource interface{}) bool {
	switch r := resource.(type) {
	case *models.User:
		return canAccessUser(p, action, r)
	case *models.Project:
		return canAccessProject(p, action, r)
	case *models.Event:
		return canAccessEvent(p, action, r)
	case *models.Invitation:
		return canAccessInvitation(p, action, r)
	}
	return false
}

func canAccessUser(p Principal, action Action, target *models.User) bool {
	switch action {
	case ActionRead:
		return true
	case ActionCreate:
		return CanCreateUser(p)
	case ActionUpdate:
		return target != nil && CanUpdateUser(p, target)
	case ActionSetActive, ActionSetRole:
		return target != nil && CanSetActive(p)
	case ActionDelete:
		return target != nil && CanDeleteUser(p)
	}
	return false
}

func canAccessProject(p Principal, action Action, target *models.Project) bool {
	switch action {
	case ActionRead:
		return target != nil && CanReadProject(p, target)
	case ActionCreate:
		return CanEditProject(p)
	case ActionUpdate:
		return target != nil && CanEditProject(p)
	case ActionDelete:
		return target != nil && CanDeleteProject(p)
	}
	return false
}

func canAccessEvent(p Principal, action Action, target *models.Event) bool {
	switch action {
	case ActionRead:
		return target != nil && CanReadEvent(p, target)
	case ActionCreate:
		return true
	case ActionUpdate:
		return target != nil && CanUpdateEvent(p, target)
	case ActionDelete:
		return target != nil && CanDeleteEvent(p, target)
	}
	return false
}

func canAccessInvitation(p Principal, action Action, target *models.Invitation) bool {
	switch action {
	case ActionCreate:
		return true
	case ActionRespond:
		return target != nil && CanRespondInvitation(p, target)
	}
	return false
}

func CanCreateUser(p Principal) bool {
	return p.SeesAll()
}

// CanUpdateUser covers profile fields. The active flag and role need
// CanSetActive on top.
func CanUpdateUser(p Principal, target *models.User) bool {
	return p.ID == target.ID || p.SeesAll()
}

func CanSetActive(p Principal) bool {
	return p.IsAdmin()
}

func CanDeleteUser(p Principal) bool {
	return p.IsAdmin()
}

func CanReadEvent(p Principal, e *models.Event) bool {
	return p.SeesAll() || e.CreatedByID == p.ID || e.HasParticipant(p.ID)
}

func CanUpdateEvent(p Principal, e *models.Event) bool {
	return p.SeesAll() || e.CreatedByID == p.ID
}

func CanDeleteEvent(p Principal, e *models.Event) bool {
	return p.IsAdmin() || e.CreatedByID == p.ID
}

func CanReadProject(p Principal, pr *models.Project) bool {
	return p.SeesAll() || pr.CreatedByID == p.ID || pr.HasMember(p.ID)
}

// CanEditProject covers both create and update.
func CanEditProject(p Principal) bool {
	return p.SeesAll()
}

func CanDeleteProject(p Principal) bool {
	return p.IsAdmin()
}

func CanRespondInvitation(p Principal, inv *models.Invitation) bool {
	return inv.UserID == p.ID
}
