package roles

import "strings"

// Role is one of the closed set of authorization labels governing feature
// and route access.
type Role string

const (
	RoleEducator   Role = "educator"   // Delivers lessons, owns planners
	RoleSupervisor Role = "supervisor" // Approves and signs off planners
	RoleOpsAdmin   Role = "opsadmin"   // Manages users and role assignments
	RoleSysAdmin   Role = "sysadmin"   // Full configuration access
)

// AllRoles enumerates the closed role set.
var AllRoles = []Role{RoleEducator, RoleSupervisor, RoleOpsAdmin, RoleSysAdmin}

// ParseRole maps a raw role string onto the closed set, case-insensitively.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleEducator:
		return RoleEducator, true
	case RoleSupervisor:
		return RoleSupervisor, true
	case RoleOpsAdmin:
		return RoleOpsAdmin, true
	case RoleSysAdmin:
		return RoleSysAdmin, true
	}
	return "", false
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

func (r Role) String() string {
	return string(r)
}

// Assignment is one role assignment row from the role list. A subject may
// hold several; at most one should be marked default, though the store does
// not enforce that (see Resolver.SetDefaultRole).
type Assignment struct {
	// RecordID is the role list row identifier; "local" for synthesized
	// fallback assignments that exist only in memory.
	RecordID    string
	Role        Role
	Subject     string
	DisplayName string
	IsDefault   bool
}

// Synthesized reports whether this assignment was created locally rather
// than read from the role list.
func (a Assignment) Synthesized() bool {
	return a.RecordID == localRecordID
}

const localRecordID = "local"

// Session is the per-visit authorization state. It is created by
// Resolver.Resolve, mutated only through SwitchRole, and treated as
// read-only by every other consumer. The active role does not survive a
// reload unless pinned via Resolver.SetDefaultRole.
type Session struct {
	Subject     string
	DisplayName string
	Available   []Assignment

	active *Assignment
}

// Active returns the currently active assignment, or nil for an empty
// session.
func (s *Session) Active() *Assignment {
	return s.active
}

// ActiveRole returns the active role, or "" for an empty session.
func (s *Session) ActiveRole() Role {
	if s.active == nil {
		return ""
	}
	return s.active.Role
}

// SwitchRole activates another of the session's available roles. The switch
// is purely client-local and never contacts the remote store; a role outside
// Available is a silent no-op.
func (s *Session) SwitchRole(role Role) {
	for i := range s.Available {
		if s.Available[i].Role == role {
			s.active = &s.Available[i]
			return
		}
	}
}

// HasRole reports whether the session has the role among its available
// assignments.
func (s *Session) HasRole(role Role) bool {
	for _, a := range s.Available {
		if a.Role == role {
			return true
		}
	}
	return false
}
