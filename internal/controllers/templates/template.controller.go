package templateController

import (
	"context"
	"errors"

	"surveyhub/internal/logger"
	. "surveyhub/internal/models"
	"surveyhub/internal/repositories"
	"surveyhub/internal/services"

	"github.com/google/uuid"
)

var (
	ErrMissingFields       = errors.New("template name and version are required")
	ErrVersionNotFound     = errors.New("template version not found")
	ErrTemplateNotFound    = errors.New("template not found")
	ErrTemplateExists      = errors.New("a template with that survey code already exists")
	ErrQuestionTypeUnknown = errors.New("unknown question type")
)

type TemplateController struct {
	templateRepo       repositories.TemplateRepository
	transactionService *services.TransactionService
	log                logger.Logger
}

func New(templateRepo repositories.TemplateRepository, transactionService *services.TransactionService) *TemplateController {
	return &TemplateController{
		templateRepo:       templateRepo,
		transactionService: transactionService,
		log:                logger.New("TemplateController"),
	}
}

func (tc *TemplateController) CreateVersion(ctx context.Context, name string, organizationID *string) (*SurveyTemplateVersion, error) {
	if name == "" {
		return nil, ErrMissingFields
	}

	version := &SurveyTemplateVersion{Name: name, OrganizationID: organizationID}
	if err := tc.templateRepo.CreateVersion(ctx, version); err != nil {
		return nil, err
	}
	return version, nil
}

func (tc *TemplateController) GetVersions(ctx context.Context, organizationID *string) ([]*SurveyTemplateVersion, error) {
	return tc.templateRepo.GetVersions(ctx, organizationID)
}

func (tc *TemplateController) CreateTemplate(ctx context.Context, req *CreateTemplateRequest) (*SurveyTemplate, error) {
	if req.Name == "" || req.VersionID == "" {
		return nil, ErrMissingFields
	}

	if _, err := tc.templateRepo.GetVersionByID(ctx, req.VersionID); err != nil {
		return nil, ErrVersionNotFound
	}

	surveyCode := req.SurveyCode
	if surveyCode == "" {
		surveyCode = uuid.NewString()
	} else if existing, _ := tc.templateRepo.GetBySurveyCode(ctx, surveyCode); existing != nil {
		return nil, ErrTemplateExists
	}

	template := &SurveyTemplate{
		VersionID:  req.VersionID,
		Name:       req.Name,
		SurveyCode: surveyCode,
		Sections:   req.Sections,
	}
	if err := tc.templateRepo.Create(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

func (tc *TemplateController) GetTemplate(ctx context.Context, id string) (*SurveyTemplate, error) {
	template, err := tc.templateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return template, nil
}

func (tc *TemplateController) GetAllTemplates(ctx context.Context) ([]*SurveyTemplate, error) {
	return tc.templateRepo.GetAll(ctx)
}

func (tc *TemplateController) DeleteTemplate(ctx context.Context, id string) error {
	if _, err := tc.templateRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	return tc.templateRepo.Delete(ctx, id)
}

// AddQuestion appends a question to a template after validating its type
// against the reference table.
func (tc *TemplateController) AddQuestion(ctx context.Context, templateID string, req *CreateQuestionRequest) (*Question, error) {
	if _, err := tc.templateRepo.GetByID(ctx, templateID); err != nil {
		return nil, ErrTemplateNotFound
	}

	if _, err := tc.templateRepo.GetQuestionType(ctx, req.QuestionTypeID); err != nil {
		return nil, ErrQuestionTypeUnknown
	}

	question := &Question{
		TemplateID:     templateID,
		QuestionTypeID: req.QuestionTypeID,
		Text:           req.Text,
		Order:          req.Order,
		IsRequired:     req.IsRequired,
		Config:         req.Config,
	}
	if err := tc.templateRepo.CreateQuestion(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

func (tc *TemplateController) GetQuestions(ctx context.Context, templateID string) ([]*Question, error) {
	if _, err := tc.templateRepo.GetByID(ctx, templateID); err != nil {
		return nil, ErrTemplateNotFound
	}
	return tc.templateRepo.GetQuestions(ctx, templateID)
}

func (tc *TemplateController) ListQuestionTypes(ctx context.Context) ([]*QuestionType, error) {
	return tc.templateRepo.ListQuestionTypes(ctx)
}
