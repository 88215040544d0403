package entity

import "time"

// ApprovalLogEntry is one line of the audit trail of an application. The
// actor identity is snapshotted at decision time so the log stays accurate
// even if the user record changes later.
type ApprovalLogEntry struct {
	ID            int64     `json:"id" db:"id"`
	ApplicationID string    `json:"application_id" db:"application_id"`
	Action        string    `json:"action" db:"action"`
	ActorID       string    `json:"actor_id" db:"actor_id"`
	ActorName     string    `json:"actor_name" db:"actor_name"`
	ActorEmail    string    `json:"actor_email" db:"actor_email"`
	Note          string    `json:"note,omitempty" db:"note"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
