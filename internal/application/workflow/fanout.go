package workflow

import (
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
)

// Fanout is one notification demand produced by a transition. It names a
// recipient kind and a template, never a concrete address: addresses are
// resolved when the notification is actually sent.
type Fanout struct {
	Recipient   string
	TemplateKey string
	Note        string
}

// computeFanout derives the notification demands of a command. Submissions
// always notify the reviewer group and, when the applicant notice is
// enabled, the requester as well.
func (e *Engine) computeFanout(cmd Command) []Fanout {
	note := payloadNote(cmd)

	switch cmd.Action {
	case ActionSubmit, ActionResubmit:
		var out []Fanout
		if e.applicantSubmitNotice {
			out = append(out, Fanout{
				Recipient:   entity.RecipientRequester,
				TemplateKey: entity.TemplateApplicationSubmitted,
				Note:        note,
			})
		}
		out = append(out, Fanout{
			Recipient:   entity.RecipientReviewers,
			TemplateKey: entity.TemplateApplicationSubmittedReviewer,
			Note:        note,
		})
		return out

	case ActionRefer:
		return []Fanout{{
			Recipient:   entity.RecipientMinister,
			TemplateKey: entity.TemplateApplicationReferred,
			Note:        note,
		}}

	case ActionApproveDirect, ActionMinisterApprove:
		return []Fanout{{
			Recipient:   entity.RecipientRequester,
			TemplateKey: entity.TemplateApplicationApproved,
			Note:        note,
		}}

	case ActionReject, ActionMinisterReject:
		return []Fanout{{
			Recipient:   entity.RecipientRequester,
			TemplateKey: entity.TemplateApplicationRejected,
			Note:        note,
		}}

	case ActionRequestInfo:
		return []Fanout{{
			Recipient:   entity.RecipientRequester,
			TemplateKey: entity.TemplateInformationRequested,
			Note:        note,
		}}
	}

	return nil
}
