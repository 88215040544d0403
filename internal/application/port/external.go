package port

import (
	"context"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
)

// MailMessage is one outbound email on its way to the mail relay.
type MailMessage struct {
	To      []string
	Subject string
	Body    string
}

// Mailer defines outbound email operations
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// Authenticator verifies login credentials against a user directory. The
// shipped implementation checks the local directory, a directory-service
// backed implementation can satisfy the same contract.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*entity.User, error)
}
