package entity

// Status constants for Application. PENDING_MINISTER_APPROVAL is an older
// alias of REFERRED_TO_MINISTER still present in stored rows, APPROVED is a
// legacy parking status swept into ARCHIVED by the maintenance job.
const (
	StatusDraft                   = "DRAFT"
	StatusSubmitted               = "SUBMITTED"
	StatusInReview                = "IN_REVIEW"
	StatusRejected                = "REJECTED"
	StatusReferredToMinister      = "REFERRED_TO_MINISTER"
	StatusPendingMinisterApproval = "PENDING_MINISTER_APPROVAL"
	StatusApproved                = "APPROVED"
	StatusArchived                = "ARCHIVED"
)

// Action constants for ApprovalLogEntry
const (
	LogActionSubmitted        = "SUBMITTED"
	LogActionRejected         = "REJECTED"
	LogActionRequestInfo      = "REQUEST_INFO"
	LogActionReferred         = "REFERRED_TO_MINISTER"
	LogActionApproved         = "APPROVED"
	LogActionMinisterApproved = "MINISTER_APPROVED"
	LogActionMinisterRejected = "MINISTER_REJECTED"
)

// Role constants for User
const (
	RoleUser     = "USER"
	RoleReviewer = "REVIEWER"
	RoleMinister = "MINISTER"
	RoleAdmin    = "ADMIN"
)

// Notification status constants
const (
	NotificationStatusPending = "PENDING"
	NotificationStatusSent    = "SENT"
	NotificationStatusFailed  = "FAILED"
)

// Recipient kind constants for NotificationRecord. Concrete addresses are
// resolved at send time, not when the notification is queued.
const (
	RecipientRequester = "REQUESTER"
	RecipientReviewers = "REVIEWERS"
	RecipientMinister  = "MINISTER"
)

// Template key constants for NotificationRecord
const (
	TemplateApplicationSubmitted         = "application_submitted"
	TemplateApplicationSubmittedReviewer = "application_submitted_reviewer"
	TemplateApplicationReferred          = "application_referred"
	TemplateApplicationApproved          = "application_approved"
	TemplateApplicationRejected          = "application_rejected"
	TemplateInformationRequested         = "information_requested"
)

// ReviewQueueStatuses are the statuses shown in the reviewer work queue.
var ReviewQueueStatuses = []string{StatusSubmitted, StatusInReview}

// MinisterQueueStatuses are the statuses shown in the minister work queue.
// Both spellings of the referred status appear in stored data.
var MinisterQueueStatuses = []string{StatusReferredToMinister, StatusPendingMinisterApproval}
