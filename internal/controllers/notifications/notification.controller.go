package notificationController

import (
	"context"
	"errors"

	"surveyhub/internal/logger"
	"surveyhub/internal/mail"
	. "surveyhub/internal/models"
	"surveyhub/internal/repositories"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrMissingTemplateFields = errors.New("template name and subject are required")
	ErrTemplateExists        = errors.New("an email template with that name already exists for the organization")
	ErrTemplateNotFound      = errors.New("email template not found")
)

// NotificationController exposes manual dispatch (resend) of the three
// message kinds plus email template management.
type NotificationController struct {
	dispatcher        *mail.Dispatcher
	userRepo          repositories.UserRepository
	orgRepo           repositories.OrganizationRepository
	emailTemplateRepo repositories.EmailTemplateRepository
	log               logger.Logger
}

func New(
	dispatcher *mail.Dispatcher,
	userRepo repositories.UserRepository,
	orgRepo repositories.OrganizationRepository,
	emailTemplateRepo repositories.EmailTemplateRepository,
) *NotificationController {
	return &NotificationController{
		dispatcher:        dispatcher,
		userRepo:          userRepo,
		orgRepo:           orgRepo,
		emailTemplateRepo: emailTemplateRepo,
		log:               logger.New("NotificationController"),
	}
}

// SendToUser dispatches the given message kind to an existing user. Welcome
// resends include the stored plaintext password, matching the original
// welcome delivery.
func (nc *NotificationController) SendToUser(ctx context.Context, kind mail.Kind, userID string, templateID *string) (mail.Result, error) {
	user, err := nc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return mail.Result{}, ErrUserNotFound
	}

	req := mail.Request{
		Kind:           kind,
		Email:          user.Email,
		Username:       user.Username,
		FirstName:      user.FirstName,
		SurveyCode:     user.SurveyCode,
		OrganizationID: user.OrganizationID,
		TemplateID:     templateID,
	}

	if kind == mail.KindWelcome {
		req.Password = user.Password
	}

	if user.OrganizationID != nil {
		if org, err := nc.orgRepo.GetByID(ctx, *user.OrganizationID); err == nil {
			req.OrganizationName = org.Name
		}
	}

	return nc.dispatcher.Dispatch(ctx, req), nil
}

func (nc *NotificationController) CreateEmailTemplate(ctx context.Context, req *CreateEmailTemplateRequest) (*EmailTemplate, error) {
	if req.Name == "" || req.Subject == "" {
		return nil, ErrMissingTemplateFields
	}

	if existing, _ := nc.emailTemplateRepo.GetByName(ctx, req.Name, req.OrganizationID); existing != nil {
		return nil, ErrTemplateExists
	}

	template := &EmailTemplate{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Subject:        req.Subject,
		HTMLBody:       req.HTMLBody,
		TextBody:       req.TextBody,
	}
	if err := nc.emailTemplateRepo.Create(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

func (nc *NotificationController) GetEmailTemplates(ctx context.Context) ([]*EmailTemplate, error) {
	return nc.emailTemplateRepo.GetAll(ctx)
}

func (nc *NotificationController) DeleteEmailTemplate(ctx context.Context, id string) error {
	if _, err := nc.emailTemplateRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	return nc.emailTemplateRepo.Delete(ctx, id)
}
