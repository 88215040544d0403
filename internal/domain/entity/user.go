package entity

import "time"

// User is an account in the local user directory.
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Roles        []string  `json:"roles" db:"roles"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// HasRole returns true if the user carries the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Actor is the authenticated identity performing an operation, as carried
// in the session token.
type Actor struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// HasRole returns true if the actor carries the given role.
func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole returns true if the actor carries at least one of the roles.
func (a Actor) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if a.HasRole(role) {
			return true
		}
	}
	return false
}

// CanReview reports whether the actor may act on the reviewer queue.
// Administrators can act wherever reviewers can.
func (a Actor) CanReview() bool {
	return a.HasAnyRole(RoleReviewer, RoleAdmin)
}

// Department is an organisational unit applications are filed under.
type Department struct {
	Code      string `json:"code" db:"code"`
	Name      string `json:"name" db:"name"`
	LocalName string `json:"local_name" db:"local_name"`
	HODEmail  string `json:"hod_email" db:"hod_email"`
}
