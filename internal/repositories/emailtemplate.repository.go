package repositories

import (
	"context"

	"surveyhub/internal/database"
	"surveyhub/internal/logger"
	. "surveyhub/internal/models"
	"surveyhub/internal/services"

	"gorm.io/gorm"
)

type EmailTemplateRepository interface {
	GetByID(ctx context.Context, id string) (*EmailTemplate, error)
	GetBest(ctx context.Context, name string, organizationID *string) (*EmailTemplate, error)
	GetByName(ctx context.Context, name string, organizationID *string) (*EmailTemplate, error)
	GetAll(ctx context.Context) ([]*EmailTemplate, error)
	Create(ctx context.Context, template *EmailTemplate) error
	Update(ctx context.Context, template *EmailTemplate) error
	Delete(ctx context.Context, id string) error
}

type emailTemplateRepository struct {
	db  database.DB
	log logger.Logger
}

func NewEmailTemplate(db database.DB) EmailTemplateRepository {
	return &emailTemplateRepository{
		db:  db,
		log: logger.New("emailTemplateRepository"),
	}
}

func (r *emailTemplateRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *emailTemplateRepository) GetByID(ctx context.Context, id string) (*EmailTemplate, error) {
	var template EmailTemplate
	if err := r.getDB(ctx).First(&template, "id = ?", id).Error; err != nil {
		return nil, normalizeErr(err)
	}
	return &template, nil
}

// GetBest prefers an exact organization match for the named template, then a
// public (organization-less) one.
func (r *emailTemplateRepository) GetBest(ctx context.Context, name string, organizationID *string) (*EmailTemplate, error) {
	var template EmailTemplate

	if organizationID != nil {
		err := r.getDB(ctx).
			First(&template, "name = ? AND organization_id = ?", name, *organizationID).Error
		if err == nil {
			return &template, nil
		}
		if normalizeErr(err) != ErrNotFound {
			return nil, err
		}
	}

	err := r.getDB(ctx).First(&template, "name = ? AND organization_id IS NULL", name).Error
	if err != nil {
		return nil, normalizeErr(err)
	}
	return &template, nil
}

func (r *emailTemplateRepository) GetByName(ctx context.Context, name string, organizationID *string) (*EmailTemplate, error) {
	var template EmailTemplate
	query := r.getDB(ctx).Where("name = ?", name)
	if organizationID != nil {
		query = query.Where("organization_id = ?", *organizationID)
	} else {
		query = query.Where("organization_id IS NULL")
	}
	if err := query.First(&template).Error; err != nil {
		return nil, normalizeErr(err)
	}
	return &template, nil
}

func (r *emailTemplateRepository) GetAll(ctx context.Context) ([]*EmailTemplate, error) {
	log := r.log.Function("GetAll")

	var templates []*EmailTemplate
	if err := r.getDB(ctx).Order("name ASC").Find(&templates).Error; err != nil {
		return nil, log.Err("failed to get email templates", err)
	}
	return templates, nil
}

func (r *emailTemplateRepository) Create(ctx context.Context, template *EmailTemplate) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(template).Error; err != nil {
		return log.Err("failed to create email template", err, "name", template.Name)
	}
	return nil
}

func (r *emailTemplateRepository) Update(ctx context.Context, template *EmailTemplate) error {
	log := r.log.Function("Update")

	if err := r.getDB(ctx).Save(template).Error; err != nil {
		return log.Err("failed to update email template", err, "id", template.ID)
	}
	return nil
}

func (r *emailTemplateRepository) Delete(ctx context.Context, id string) error {
	log := r.log.Function("Delete")

	if err := r.getDB(ctx).Delete(&EmailTemplate{}, "id = ?", id).Error; err != nil {
		return log.Err("failed to delete email template", err, "id", id)
	}
	return nil
}
