// Package models holds the records persisted by the roster hub and the
// read-side views derived from them.
package models

import "time"

// User is an account that can log in. Password holds an argon2id hash, or a
// legacy plaintext value until the owner's next successful login.
type User struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Password  string     `json:"password"`
	Role      string     `json:"role"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (u *User) SetID(id int64) { u.ID = id }

func (u *User) Stamp(now time.Time) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
}
