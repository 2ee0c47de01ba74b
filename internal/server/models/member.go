package models

import "time"

// PresenceStatus is the liveness shown next to a member. It is never stored.
type PresenceStatus string

const (
	StatusActive  PresenceStatus = "active"
	StatusOffline PresenceStatus = "offline"
	// StatusBusy is accepted by clients but never derived by the server.
	StatusBusy PresenceStatus = "busy"
)

// Member is a roster entry. It is paired with a User by email.
type Member struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	Phone            string    `json:"phone,omitempty"`
	Avatar           string    `json:"avatar,omitempty"`
	Year             string    `json:"year,omitempty"`
	Department       string    `json:"department,omitempty"`
	Plan             string    `json:"plan,omitempty"`
	Forum            string    `json:"forum,omitempty"`
	JoinedDate       string    `json:"joined_date,omitempty"`
	MembershipExpiry string    `json:"membership_expiry,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func (m *Member) SetID(id int64) { m.ID = id }

func (m *Member) Stamp(now time.Time) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
}

// MemberView is a member as returned by the directory listing.
type MemberView struct {
	Member
	// UserID is the paired user, the party messages are addressed to.
	// Zero when no user shares the member's email.
	UserID int64          `json:"user_id,omitempty"`
	Status PresenceStatus `json:"status"`
}

// MemberPatch is a partial member update; nil fields are left untouched.
// Password is never stored on the member, only synced to the paired user.
type MemberPatch struct {
	Name             *string `json:"name,omitempty"`
	Email            *string `json:"email,omitempty"`
	Role             *string `json:"role,omitempty"`
	Password         *string `json:"password,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Avatar           *string `json:"avatar,omitempty"`
	Year             *string `json:"year,omitempty"`
	Department       *string `json:"department,omitempty"`
	Plan             *string `json:"plan,omitempty"`
	Forum            *string `json:"forum,omitempty"`
	JoinedDate       *string `json:"joined_date,omitempty"`
	MembershipExpiry *string `json:"membership_expiry,omitempty"`
}

// Apply copies the set fields of p onto m.
func (p MemberPatch) Apply(m *Member) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	set(&m.Name, p.Name)
	set(&m.Email, p.Email)
	set(&m.Role, p.Role)
	set(&m.Phone, p.Phone)
	set(&m.Avatar, p.Avatar)
	set(&m.Year, p.Year)
	set(&m.Department, p.Department)
	set(&m.Plan, p.Plan)
	set(&m.Forum, p.Forum)
	set(&m.JoinedDate, p.JoinedDate)
	set(&m.MembershipExpiry, p.MembershipExpiry)
}
