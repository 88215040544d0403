package notify

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
)

// templateData is the context available to subject and body templates
type templateData struct {
	EventTitle    string
	ActorName     string
	ActorEmail    string
	Note          string
	ApplicationID string
	ReviewLink    string
}

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

func mustTemplate(key, subject, body string) messageTemplate {
	return messageTemplate{
		subject: template.Must(template.New(key + "_subject").Parse(subject)),
		body:    template.Must(template.New(key + "_body").Parse(body)),
	}
}

var messageTemplates = map[string]messageTemplate{
	entity.TemplateApplicationSubmitted: mustTemplate(
		entity.TemplateApplicationSubmitted,
		`Travel application submitted: {{.EventTitle}}`,
		`Talofa,

Your travel application "{{.EventTitle}}" has been submitted and is now
waiting for review. You will be notified once a decision is made.

Application reference: {{.ApplicationID}}
`,
	),
	entity.TemplateApplicationSubmittedReviewer: mustTemplate(
		entity.TemplateApplicationSubmittedReviewer,
		`Travel application awaiting review: {{.EventTitle}}`,
		`Talofa,

{{.ActorName}} has submitted the travel application "{{.EventTitle}}"
for review.

Application reference: {{.ApplicationID}}
`,
	),
	entity.TemplateApplicationReferred: mustTemplate(
		entity.TemplateApplicationReferred,
		`Travel application referred for your approval: {{.EventTitle}}`,
		`Talofa,

The travel application "{{.EventTitle}}" has been referred to you for
ministerial approval by {{.ActorName}}.

You can review the application here: {{.ReviewLink}}

Application reference: {{.ApplicationID}}
`,
	),
	entity.TemplateApplicationApproved: mustTemplate(
		entity.TemplateApplicationApproved,
		`Travel application approved: {{.EventTitle}}`,
		`Talofa,

Your travel application "{{.EventTitle}}" has been approved by
{{.ActorName}}.
{{- if .Note}}

Note from the decider: {{.Note}}
{{- end}}

Application reference: {{.ApplicationID}}
`,
	),
	entity.TemplateApplicationRejected: mustTemplate(
		entity.TemplateApplicationRejected,
		`Travel application rejected: {{.EventTitle}}`,
		`Talofa,

Your travel application "{{.EventTitle}}" has been rejected by
{{.ActorName}}.
{{- if .Note}}

Reason: {{.Note}}
{{- end}}

Application reference: {{.ApplicationID}}
`,
	),
	entity.TemplateInformationRequested: mustTemplate(
		entity.TemplateInformationRequested,
		`More information needed: {{.EventTitle}}`,
		`Talofa,

{{.ActorName}} has asked for more information on your travel application
"{{.EventTitle}}".
{{- if .Note}}

Question: {{.Note}}
{{- end}}

Please update the application and resubmit it.

Application reference: {{.ApplicationID}}
`,
	),
}

// Renderer renders outbox rows into email subjects and bodies
type Renderer struct {
	baseURL string
}

// NewRenderer creates a renderer. baseURL is the public address of the web
// application, used for review links.
func NewRenderer(baseURL string) *Renderer {
	return &Renderer{baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Render produces the subject and body for an outbox row
func (r *Renderer) Render(rec *entity.NotificationRecord) (string, string, error) {
	tmpl, ok := messageTemplates[rec.TemplateKey]
	if !ok {
		return "", "", fmt.Errorf("unknown template key %q", rec.TemplateKey)
	}

	data := templateData{
		EventTitle:    rec.EventTitle,
		ActorName:     rec.ActorName,
		ActorEmail:    rec.ActorEmail,
		Note:          rec.Note,
		ApplicationID: rec.ApplicationID,
		ReviewLink:    fmt.Sprintf("%s/applications/%s", r.baseURL, rec.ApplicationID),
	}

	var subject bytes.Buffer
	if err := tmpl.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}

	return subject.String(), body.String(), nil
}
