package repositories

import (
	"context"

	"surveyhub/internal/database"
	"surveyhub/internal/logger"
	. "surveyhub/internal/models"
	"surveyhub/internal/services"

	"gorm.io/gorm"
)

type TemplateRepository interface {
	GetVersionByID(ctx context.Context, id string) (*SurveyTemplateVersion, error)
	GetVersions(ctx context.Context, organizationID *string) ([]*SurveyTemplateVersion, error)
	CreateVersion(ctx context.Context, version *SurveyTemplateVersion) error
	DeleteVersion(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (*SurveyTemplate, error)
	GetBySurveyCode(ctx context.Context, surveyCode string) (*SurveyTemplate, error)
	GetFirst(ctx context.Context, organizationID *string) (*SurveyTemplate, error)
	GetAll(ctx context.Context) ([]*SurveyTemplate, error)
	Create(ctx context.Context, template *SurveyTemplate) error
	Update(ctx context.Context, template *SurveyTemplate) error
	Delete(ctx context.Context, id string) error

	CreateQuestion(ctx context.Context, question *Question) error
	GetQuestions(ctx context.Context, templateID string) ([]*Question, error)
	DeleteQuestion(ctx context.Context, id string) error
	ListQuestionTypes(ctx context.Context) ([]*QuestionType, error)
	GetQuestionType(ctx context.Context, id int) (*QuestionType, error)
}

type templateRepository struct {
	db  database.DB
	log logger.Logger
}

func NewTemplate(db database.DB) TemplateRepository {
	return &templateRepository{
		db:  db,
		log: logger.New("templateRepository"),
	}
}

func (r *templateRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *templateRepository) GetVersionByID(ctx context.Context, id string) (*SurveyTemplateVersion, error) {
	var version SurveyTemplateVersion
	if err := r.getDB(ctx).Preload("Templates").First(&version, "id = ?", id).Error; err != nil {
		return nil, normalizeErr(err)
	}
	return &version, nil
}

func (r *templateRepository) GetVersions(ctx context.Context, organizationID *string) ([]*SurveyTemplateVersion, error) {
	log := r.log.Function("GetVersions")

	query := r.getDB(ctx)
	if organizationID != nil {
		query = query.Where("organization_id = ?", *organizationID)
	}

	var versions []*SurveyTemplateVersion
	if err := query.Order("created_at DESC").Find(&versions).Error; err != nil {
		return nil, log.Err("failed to get template versions", err)
	}
	return versions, nil
}

func (r *templateRepository) CreateVersion(ctx context.Context, version *SurveyTemplateVersion) error {
	log := r.log.Function("CreateVersion")

	if err := r.getDB(ctx).Create(version).Error; err != nil {
		return log.Err("failed to create template version", err, "name", version.Name)
	}
	return nil
}

func (r *templateRepository) DeleteVersion(ctx context.Context, id string) error {
	log := r.log.Function("DeleteVersion")

	if err := r.getDB(ctx).Delete(&SurveyTemplateVersion{}, "id = ?", id).Error; err != nil {
		return log.Err("failed to delete template version", err, "id", id)
	}
	return nil
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*SurveyTemplate, error) {
	var template SurveyTemplate
	err := r.getDB(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("questions.\"order\" ASC") }).
		Preload("Questions.Options").
		First(&template, "id = ?", id).Error
	if err != nil {
		return nil, normalizeErr(err)
	}
	return &template, nil
}

func (r *templateRepository) GetBySurveyCode(ctx context.Context, surveyCode string) (*SurveyTemplate, error) {
	var template SurveyTemplate
	if err := r.getDB(ctx).First(&template, "survey_code = ?", surveyCode).Error; err != nil {
		return nil, normalizeErr(err)
	}
	return &template, nil
}

// GetFirst returns the oldest template scoped to the organization's versions,
// else the oldest template overall. Used when provisioning has no explicit
// template id.
func (r *templateRepository) GetFirst(ctx context.Context, organizationID *string) (*SurveyTemplate, error) {
	var template SurveyTemplate

	if organizationID != nil {
		err := r.getDB(ctx).
			Joins("JOIN survey_template_versions ON survey_template_versions.id = survey_templates.version_id").
			Where("survey_template_versions.organization_id = ?", *organizationID).
			Order("survey_templates.created_at ASC").
			First(&template).Error
		if err == nil {
			return &template, nil
		}
		if normalizeErr(err) != ErrNotFound {
			return nil, err
		}
	}

	if err := r.getDB(ctx).Order("created_at ASC").First(&template).Error; err != nil {
		return nil, normalizeErr(err)
	}
	return &template, nil
}

func (r *templateRepository) GetAll(ctx context.Context) ([]*SurveyTemplate, error) {
	log := r.log.Function("GetAll")

	var templates []*SurveyTemplate
	if err := r.getDB(ctx).Order("created_at DESC").Find(&templates).Error; err != nil {
		return nil, log.Err("failed to get templates", err)
	}
	return templates, nil
}

func (r *templateRepository) Create(ctx context.Context, template *SurveyTemplate) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(template).Error; err != nil {
		return log.Err("failed to create template", err, "name", template.Name)
	}
	return nil
}

func (r *templateRepository) Update(ctx context.Context, template *SurveyTemplate) error {
	log := r.log.Function("Update")

	if err := r.getDB(ctx).Save(template).Error; err != nil {
		return log.Err("failed to update template", err, "id", template.ID)
	}
	return nil
}

func (r *templateRepository) Delete(ctx context.Context, id string) error {
	log := r.log.Function("Delete")

	if err := r.getDB(ctx).Delete(&SurveyTemplate{}, "id = ?", id).Error; err != nil {
		return log.Err("failed to delete template", err, "id", id)
	}
	return nil
}

func (r *templateRepository) CreateQuestion(ctx context.Context, question *Question) error {
	log := r.log.Function("CreateQuestion")

	if err := r.getDB(ctx).Create(question).Error; err != nil {
		return log.Err("failed to create question", err, "templateID", question.TemplateID)
	}
	return nil
}

func (r *templateRepository) GetQuestions(ctx context.Context, templateID string) ([]*Question, error) {
	log := r.log.Function("GetQuestions")

	var questions []*Question
	err := r.getDB(ctx).
		Preload("Options").
		Where("template_id = ?", templateID).
		Order("\"order\" ASC").
		Find(&questions).Error
	if err != nil {
		return nil, log.Err("failed to get questions", err, "templateID", templateID)
	}
	return questions, nil
}

func (r *templateRepository) DeleteQuestion(ctx context.Context, id string) error {
	log := r.log.Function("DeleteQuestion")

	if err := r.getDB(ctx).Delete(&Question{}, "id = ?", id).Error; err != nil {
		return log.Err("failed to delete question", err, "id", id)
	}
	return nil
}

func (r *templateRepository) ListQuestionTypes(ctx context.Context) ([]*QuestionType, error) {
	log := r.log.Function("ListQuestionTypes")

	var types []*QuestionType
	if err := r.getDB(ctx).Order("id ASC").Find(&types).Error; err != nil {
		return nil, log.Err("failed to list question types", err)
	}
	return types, nil
}

func (r *templateRepository) GetQuestionType(ctx context.Context, id int) (*QuestionType, error) {
	var questionType QuestionType
	if err := r.getDB(ctx).First(&questionType, "id = ?", id).Error; err != nil {
		return nil, normalizeErr(err)
	}
	return &questionType, nil
}
