// Package policy decides which roster roles may perform which mutations.
// It is pure: the answer depends only on the role claim and the action.
//
// Writes only accept the enumerated roles. Role strings stored before
// validation existed ("Vice Chairperson", "Joint Secretary") are mapped by
// the execom title they contain.
package policy

import (
	"fmt"
	"strings"

	"github.com/ISTE-SCTCE/Admin/internal/common"
)

// Role is one of the enumerated organisation roles.
type Role string

const (
	RoleUnknown   Role = ""
	RoleMember    Role = "Member"
	RoleSecretary Role = "Secretary"
	RoleViceChair Role = "Vice Chair"
	RoleChair     Role = "Chair"
	RoleAdmin     Role = "Admin"
)

var roles = []Role{RoleMember, RoleSecretary, RoleViceChair, RoleChair, RoleAdmin}

// Roles returns every known role, least privileged first.
func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// ParseRole maps s to a Role ignoring case, surrounding space and the
// separator used between words ("vice_chair", "Vice-Chair"). Unknown strings
// yield RoleUnknown.
func ParseRole(s string) Role {
	n := normalize(s)
	for _, r := range roles {
		if normalize(string(r)) == n {
			return r
		}
	}
	return RoleUnknown
}

// legacyTitles maps role titles to roles, longest first so "vice chair"
// wins over "chair".
var legacyTitles = []struct {
	title string
	role  Role
}{
	{"vice chair", RoleViceChair},
	{"secretary", RoleSecretary},
	{"chair", RoleChair},
	{"admin", RoleAdmin},
}

// ParseLegacyRole is ParseRole that also accepts free-form titles containing
// an execom title, such as "Branch Chair" or "Joint Secretary".
func ParseLegacyRole(s string) Role {
	if r := ParseRole(s); r != RoleUnknown {
		return r
	}
	n := normalize(s)
	for _, t := range legacyTitles {
		if strings.Contains(n, t.title) {
			return t.role
		}
	}
	return RoleUnknown
}

// ValidateRole is ParseRole for writes: unknown roles are a validation error.
func ValidateRole(s string) (Role, error) {
	r := ParseRole(s)
	if r == RoleUnknown {
		return RoleUnknown, fmt.Errorf("%w: unknown role %q", common.ErrValidation, s)
	}
	return r, nil
}

func (r Role) String() string { return string(r) }

// IsExecom reports whether r belongs to the executive committee.
func (r Role) IsExecom() bool {
	switch r {
	case RoleSecretary, RoleViceChair, RoleChair, RoleAdmin:
		return true
	}
	return false
}

// Action is a guarded roster mutation.
type Action string

const (
	ActionCreateMember  Action = "member:create"
	ActionEditMember    Action = "member:edit"
	ActionAppointMember Action = "member:appoint"
)

var verbs = map[Action]string{
	ActionCreateMember:  "add members",
	ActionEditMember:    "edit members",
	ActionAppointMember: "appoint members",
}

// IsAuthorized reports whether a caller holding role may perform action.
// Every guarded action is open to the executive committee only.
func IsAuthorized(role string, action Action) bool {
	if _, ok := verbs[action]; !ok {
		return false
	}
	return ParseLegacyRole(role).IsExecom()
}

// Authorize is IsAuthorized returning a common.ErrForbidden error on denial.
func Authorize(role string, action Action) error {
	if IsAuthorized(role, action) {
		return nil
	}
	verb, ok := verbs[action]
	if !ok {
		verb = string(action)
	}
	return fmt.Errorf("%w: only Chair, Vice Chair, Secretary and Admin can %s", common.ErrForbidden, verb)
}
