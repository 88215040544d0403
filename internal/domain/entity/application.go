package entity

import "time"

// Application is a travel expense application moving through the approval
// workflow. Monetary amounts are kept in the expense rows and TotalCost is
// always recomputed from them, never trusted from client input.
type Application struct {
	ID                  string             `json:"id" db:"id"`
	RequesterID         string             `json:"requester_id" db:"requester_id"`
	RequesterName       string             `json:"requester_name" db:"requester_name"`
	RequesterEmail      string             `json:"requester_email" db:"requester_email"`
	DepartmentCode      string             `json:"department_code" db:"department_code"`
	EventTitle          string             `json:"event_title" db:"event_title"`
	EventReason         string             `json:"event_reason" db:"event_reason"`
	StartDate           time.Time          `json:"start_date" db:"start_date"`
	EndDate             time.Time          `json:"end_date" db:"end_date"`
	TravellerCount      int                `json:"traveller_count" db:"traveller_count"`
	MinisterEmail       string             `json:"minister_email" db:"minister_email"`
	HODEmail            string             `json:"hod_email" db:"hod_email"`
	Travellers          []Traveller        `json:"travellers" db:"travellers"`
	Expenses            []ExpenseRow       `json:"expenses" db:"expenses"`
	AttachmentsProvided []string           `json:"attachments_provided" db:"attachments_provided"`
	TotalCost           float64            `json:"total_cost" db:"total_cost"`
	Status              string             `json:"status" db:"status"`
	CurrentReviewerID   *string            `json:"current_reviewer_id,omitempty" db:"current_reviewer_id"`
	SubmittedAt         *time.Time         `json:"submitted_at,omitempty" db:"submitted_at"`
	DecidedAt           *time.Time         `json:"decided_at,omitempty" db:"decided_at"`
	ArchivedAt          *time.Time         `json:"archived_at,omitempty" db:"archived_at"`
	Version             int64              `json:"version" db:"version"`
	ApprovalLog         []ApprovalLogEntry `json:"approval_log,omitempty" db:"-"`
	CreatedAt           time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at" db:"updated_at"`
}

// Traveller is one person covered by an application.
type Traveller struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	Unit     string `json:"unit"`
}

// ExpenseRow is one line of the cost breakdown. Total and GovernmentCost
// are derived fields, see Normalize.
type ExpenseRow struct {
	Label          string  `json:"label"`
	PerPersonCost  float64 `json:"per_person_cost"`
	Count          int     `json:"count"`
	Total          float64 `json:"total"`
	DonorFunded    bool    `json:"donor_funded"`
	GovernmentCost float64 `json:"government_cost"`
}

// Normalize recomputes the derived fields of the row.
func (r *ExpenseRow) Normalize() {
	r.Total = r.PerPersonCost * float64(r.Count)
	if r.DonorFunded {
		r.GovernmentCost = 0
	} else {
		r.GovernmentCost = r.Total
	}
}

// RecomputeTotals normalizes every expense row and refreshes TotalCost as
// the sum of government-funded costs.
func (a *Application) RecomputeTotals() {
	var total float64
	for i := range a.Expenses {
		a.Expenses[i].Normalize()
		total += a.Expenses[i].GovernmentCost
	}
	a.TotalCost = total
}

// IsEditable returns true if the application content can still be changed
// by the requester.
func (a *Application) IsEditable() bool {
	switch a.Status {
	case StatusDraft, StatusSubmitted, StatusInReview, StatusRejected:
		return true
	}
	return false
}

// IsDecided returns true once a final decision has been recorded.
func (a *Application) IsDecided() bool {
	return a.DecidedAt != nil
}

// AppendLog adds an entry to the approval log. The log is append-only,
// entries are never modified or removed.
func (a *Application) AppendLog(entry ApprovalLogEntry) {
	a.ApprovalLog = append(a.ApprovalLog, entry)
}

// Clone returns a deep copy of the application. Slices are copied so the
// clone can be mutated without touching the original.
func (a *Application) Clone() *Application {
	clone := *a
	if a.Travellers != nil {
		clone.Travellers = make([]Traveller, len(a.Travellers))
		copy(clone.Travellers, a.Travellers)
	}
	if a.Expenses != nil {
		clone.Expenses = make([]ExpenseRow, len(a.Expenses))
		copy(clone.Expenses, a.Expenses)
	}
	if a.AttachmentsProvided != nil {
		clone.AttachmentsProvided = make([]string, len(a.AttachmentsProvided))
		copy(clone.AttachmentsProvided, a.AttachmentsProvided)
	}
	if a.ApprovalLog != nil {
		clone.ApprovalLog = make([]ApprovalLogEntry, len(a.ApprovalLog))
		copy(clone.ApprovalLog, a.ApprovalLog)
	}
	if a.CurrentReviewerID != nil {
		v := *a.CurrentReviewerID
		clone.CurrentReviewerID = &v
	}
	if a.SubmittedAt != nil {
		t := *a.SubmittedAt
		clone.SubmittedAt = &t
	}
	if a.DecidedAt != nil {
		t := *a.DecidedAt
		clone.DecidedAt = &t
	}
	if a.ArchivedAt != nil {
		t := *a.ArchivedAt
		clone.ArchivedAt = &t
	}
	return &clone
}
