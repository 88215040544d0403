package entity

import "time"

// Attachment kind constants
const (
	AttachmentKindInvitation = "INVITATION" // invitation letter or agenda
	AttachmentKindQuote      = "QUOTE"      // airfare or accommodation quote
	AttachmentKindOther      = "OTHER"      // any other supporting document
)

// Attachment represents metadata of a file uploaded in support of an
// application. The file content itself lives in the attachment store,
// FilePath is relative to the store root.
type Attachment struct {
	ID            string    `json:"id" db:"id"`
	ApplicationID string    `json:"application_id" db:"application_id"`
	Kind          string    `json:"kind" db:"kind"`
	FileName      string    `json:"file_name" db:"file_name"`
	FilePath      string    `json:"file_path" db:"file_path"`
	MimeType      string    `json:"mime_type" db:"mime_type"`
	SizeBytes     int64     `json:"size_bytes" db:"size_bytes"`
	UploaderID    string    `json:"uploader_id" db:"uploader_id"`
	UploadedAt    time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// AttachmentFile represents uploaded file content on its way to the store.
type AttachmentFile struct {
	Content  []byte
	FileName string
	MimeType string
	Size     int64
}
