package mail

import (
	"context"
	"time"

	"surveyhub/internal/logger"
	. "surveyhub/internal/models"
	"surveyhub/internal/render"
)

// Kind selects which message the Dispatcher delivers.
type Kind string

const (
	KindWelcome    Kind = "welcome"
	KindAssignment Kind = "assignment"
	KindReminder   Kind = "reminder"
)

const (
	MethodPrimary   = "primary"
	MethodSecondary = "secondary"

	surveyCodeNotAssigned = "Not assigned"
)

// TemplateStore is the slice of email-template persistence the Dispatcher
// needs: direct lookup by id and best-match by (kind, organization).
type TemplateStore interface {
	GetByID(ctx context.Context, id string) (*EmailTemplate, error)
	GetBest(ctx context.Context, name string, organizationID *string) (*EmailTemplate, error)
}

// Request carries the recipient data for one dispatch.
type Request struct {
	Kind             Kind
	Email            string
	Username         string
	FirstName        string
	Password         string
	SurveyCode       string
	OrganizationName string
	OrganizationID   *string
	AssignedBy       string
	Deadline         *time.Time
	TemplateID       *string
}

// Result is always returned, success or not; delivery failure never surfaces
// as an error to the caller.
type Result struct {
	Success   bool   `json:"success"`
	Method    string `json:"method,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type Dispatcher struct {
	templates TemplateStore
	primary   Transport
	secondary Transport
	from      string
	log       logger.Logger
}

func NewDispatcher(templates TemplateStore, primary, secondary Transport, from string) *Dispatcher {
	return &Dispatcher{
		templates: templates,
		primary:   primary,
		secondary: secondary,
		from:      from,
		log:       logger.New("mail").File("dispatcher"),
	}
}

// Dispatch resolves a template, renders it and delivers through the primary
// transport, falling back to the secondary on any primary failure.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Result {
	log := d.log.Function("Dispatch")

	subject, textBody, htmlBody := d.resolveTemplate(ctx, req)

	vars := buildVariables(req)
	msg := Message{
		From:    d.from,
		To:      req.Email,
		Subject: render.Render(subject, vars),
		Text:    render.Render(textBody, vars),
		HTML:    render.Render(htmlBody, vars),
	}

	messageID, err := d.primary.Send(ctx, msg)
	if err == nil {
		return Result{Success: true, Method: MethodPrimary, MessageID: messageID}
	}
	log.Warn("primary transport failed, trying secondary", "kind", req.Kind, "to", req.Email, "error", err)

	if _, err := d.secondary.Send(ctx, msg); err != nil {
		log.Er("secondary transport failed", err, "kind", req.Kind, "to", req.Email)
		return Result{Success: false, Error: err.Error()}
	}

	return Result{Success: true, Method: MethodSecondary}
}

// resolveTemplate applies the resolution order: explicit id, best match for
// (kind, organization), then the hardcoded fallback.
func (d *Dispatcher) resolveTemplate(ctx context.Context, req Request) (subject, textBody, htmlBody string) {
	log := d.log.Function("resolveTemplate")

	if req.TemplateID != nil && *req.TemplateID != "" {
		tmpl, err := d.templates.GetByID(ctx, *req.TemplateID)
		if err == nil && tmpl != nil {
			return tmpl.Subject, tmpl.TextBody, tmpl.HTMLBody
		}
		log.Warn("explicit template not found, falling through", "templateID", *req.TemplateID)
	}

	tmpl, err := d.templates.GetBest(ctx, string(req.Kind), req.OrganizationID)
	if err == nil && tmpl != nil {
		return tmpl.Subject, tmpl.TextBody, tmpl.HTMLBody
	}

	fallback := fallbackTemplates[req.Kind]
	return fallback.Subject, fallback.TextBody, fallback.HTMLBody
}

// buildVariables assembles the substitution map. The optional *_text entries
// are either empty or a clause with a leading space so the surrounding
// sentence stays grammatical either way.
func buildVariables(req Request) map[string]string {
	greeting := "Dear " + req.Username
	if req.FirstName != "" {
		greeting = "Dear " + req.FirstName
	}

	surveyCode := req.SurveyCode
	if surveyCode == "" {
		surveyCode = surveyCodeNotAssigned
	}

	orgText := ""
	if req.OrganizationName != "" {
		orgText = " at " + req.OrganizationName
	}

	deadlineText := ""
	if req.Deadline != nil {
		deadlineText = " by " + req.Deadline.Format("January 2, 2006")
	}

	assignedByText := ""
	if req.AssignedBy != "" {
		assignedByText = " by " + req.AssignedBy
	}

	return map[string]string{
		"greeting":         greeting,
		"username":         req.Username,
		"email":            req.Email,
		"password":         req.Password,
		"survey_code":      surveyCode,
		"org_text":         orgText,
		"deadline_text":    deadlineText,
		"assigned_by_text": assignedByText,
	}
}
