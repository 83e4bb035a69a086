package repositories

import (
	"context"

	"surveyhub/internal/database"
	"surveyhub/internal/logger"
	. "surveyhub/internal/models"
	"surveyhub/internal/services"

	"gorm.io/gorm"
)

type OrganizationRepository interface {
	GetByID(ctx context.Context, id string) (*Organization, error)
	GetByName(ctx context.Context, name string) (*Organization, error)
	GetAll(ctx context.Context) ([]*Organization, error)
	Create(ctx context.Context, org *Organization) error
	Update(ctx context.Context, org *Organization) error
	Delete(ctx context.Context, id string) error
	ClearUserReferences(ctx context.Context, userID string) error

	GetType(ctx context.Context, id int) (*OrganizationType, error)
	GetTypeByName(ctx context.Context, name string) (*OrganizationType, error)
	ListTypes(ctx context.Context) ([]*OrganizationType, error)
	CreateType(ctx context.Context, orgType *OrganizationType) error
}

type organizationRepository struct {
	db  database.DB
	log logger.Logger
}

func NewOrganization(db database.DB) OrganizationRepository {
	return &organizationRepository{
		db:  db,
		log: logger.New("organizationRepository"),
	}
}

func (r *organizationRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*Organization, error) {
	var org Organization
	if err := r.getDB(ctx).Preload("OrganizationType").Preload("GeoLocation").
		First(&org, "id = ?", id).Error; err != nil {
		return nil, normalizeErr(err)
	}
	return &org, nil
}

func (r *organizationRepository) GetByName(ctx context.Context, name string) (*Organization, error) {
	var org Organization
	if err := r.getDB(ctx).First(&org, "name = ?", name).Error; err != nil {
		return nil, normalizeErr(err)
	}
	return &org, nil
}

func (r *organizationRepository) GetAll(ctx context.Context) ([]*Organization, error) {
	log := r.log.Function("GetAll")

	var orgs []*Organization
	if err := r.getDB(ctx).Preload("OrganizationType").Order("name ASC").Find(&orgs).Error; err != nil {
		return nil, log.Err("failed to get organizations", err)
	}
	return orgs, nil
}

func (r *organizationRepository) Create(ctx context.Context, org *Organization) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(org).Error; err != nil {
		return log.Err("failed to create organization", err, "name", org.Name)
	}
	return nil
}

func (r *organizationRepository) Update(ctx context.Context, org *Organization) error {
	log := r.log.Function("Update")

	if err := r.getDB(ctx).Save(org).Error; err != nil {
		return log.Err("failed to update organization", err, "organizationID", org.ID)
	}
	return nil
}

func (r *organizationRepository) Delete(ctx context.Context, id string) error {
	log := r.log.Function("Delete")

	if err := r.getDB(ctx).Delete(&Organization{}, "id = ?", id).Error; err != nil {
		return log.Err("failed to delete organization", err, "id", id)
	}
	return nil
}

// ClearUserReferences nulls any primary/secondary/head link pointing at the
// given user. Called when a user is deleted so organizations never hold
// dangling contact references.
func (r *organizationRepository) ClearUserReferences(ctx context.Context, userID string) error {
	log := r.log.Function("ClearUserReferences")

	updates := []struct {
		column string
	}{
		{"primary_contact_id"},
		{"secondary_contact_id"},
		{"head_id"},
	}

	for _, u := range updates {
		if err := r.getDB(ctx).Model(&Organization{}).
			Where(u.column+" = ?", userID).
			Update(u.column, nil).Error; err != nil {
			return log.Err("failed to clear organization user reference", err, "column", u.column, "userID", userID)
		}
	}
	return nil
}

func (r *organizationRepository) GetType(ctx context.Context, id int) (*OrganizationType, error) {
	var orgType OrganizationType
	if err := r.getDB(ctx).First(&orgType, "id = ?", id).Error; err != nil {
		return nil, normalizeErr(err)
	}
	return &orgType, nil
}

func (r *organizationRepository) GetTypeByName(ctx context.Context, name string) (*OrganizationType, error) {
	var orgType OrganizationType
	if err := r.getDB(ctx).First(&orgType, "name = ?", name).Error; err != nil {
		return nil, normalizeErr(err)
	}
	return &orgType, nil
}

func (r *organizationRepository) ListTypes(ctx context.Context) ([]*OrganizationType, error) {
	log := r.log.Function("ListTypes")

	var types []*OrganizationType
	if err := r.getDB(ctx).Order("name ASC").Find(&types).Error; err != nil {
		return nil, log.Err("failed to list organization types", err)
	}
	return types, nil
}

func (r *organizationRepository) CreateType(ctx context.Context, orgType *OrganizationType) error {
	log := r.log.Function("CreateType")

	if err := r.getDB(ctx).Create(orgType).Error; err != nil {
		return log.Err("failed to create organization type", err, "name", orgType.Name)
	}
	return nil
}
