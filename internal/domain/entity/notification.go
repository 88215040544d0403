package entity

import "time"

// NotificationRecord is an outbox row produced when a workflow transition
// fans out to a recipient. Rows start PENDING and are picked up by the
// delivery worker, which marks them SENT or, after the retry budget is
// spent, FAILED.
type NotificationRecord struct {
	ID            string     `json:"id" db:"id"`
	ApplicationID string     `json:"application_id" db:"application_id"`
	RecipientKind string     `json:"recipient_kind" db:"recipient_kind"`
	TemplateKey   string     `json:"template_key" db:"template_key"`
	EventTitle    string     `json:"event_title" db:"event_title"`
	ActorName     string     `json:"actor_name" db:"actor_name"`
	ActorEmail    string     `json:"actor_email" db:"actor_email"`
	Note          string     `json:"note,omitempty" db:"note"`
	Status        string     `json:"status" db:"status"`
	Attempts      int        `json:"attempts" db:"attempts"`
	NextRetryAt   time.Time  `json:"next_retry_at" db:"next_retry_at"`
	LastError     string     `json:"last_error,omitempty" db:"last_error"`
	SentAt        *time.Time `json:"sent_at,omitempty" db:"sent_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// IsDue returns true if the record should be attempted at the given time.
func (n *NotificationRecord) IsDue(now time.Time) bool {
	return n.Status == NotificationStatusPending && !n.NextRetryAt.After(now)
}
