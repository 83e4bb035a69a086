package repositories

import (
	"context"
	"errors"

	"surveyhub/internal/database"
	"surveyhub/internal/logger"
	. "surveyhub/internal/models"
	"surveyhub/internal/services"

	"gorm.io/gorm"
)

// ErrNotFound normalizes gorm.ErrRecordNotFound across repositories so
// handlers can map it to a 404 without importing gorm.
var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetAll(ctx context.Context) ([]*User, error)
	GetByOrganization(ctx context.Context, organizationID string) ([]*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	ClearOrganization(ctx context.Context, organizationID string) error

	GetTitle(ctx context.Context, userID, organizationID, title string) (*UserOrganizationTitle, error)
	CreateTitle(ctx context.Context, title *UserOrganizationTitle) error

	GetDetails(ctx context.Context, userID string) (*UserDetails, error)
	SaveDetails(ctx context.Context, details *UserDetails) error
	DeleteDetails(ctx context.Context, userID string) error
}

type userRepository struct {
	db  database.DB
	log logger.Logger
}

func NewUser(db database.DB) UserRepository {
	return &userRepository{
		db:  db,
		log: logger.New("userRepository"),
	}
}

func (r *userRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func normalizeErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*User, error) {
	var user User
	if err := r.getDB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, normalizeErr(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	if err := r.getDB(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, normalizeErr(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := r.getDB(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, normalizeErr(err)
	}
	return &user, nil
}

func (r *userRepository) GetAll(ctx context.Context) ([]*User, error) {
	log := r.log.Function("GetAll")

	var users []*User
	if err := r.getDB(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, log.Err("failed to get users", err)
	}
	return users, nil
}

func (r *userRepository) GetByOrganization(ctx context.Context, organizationID string) ([]*User, error) {
	log := r.log.Function("GetByOrganization")

	var users []*User
	if err := r.getDB(ctx).Where("organization_id = ?", organizationID).Find(&users).Error; err != nil {
		return nil, log.Err("failed to get users by organization", err, "organizationID", organizationID)
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *User) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(user).Error; err != nil {
		return log.Err("failed to create user", err, "username", user.Username)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *User) error {
	log := r.log.Function("Update")

	if err := r.getDB(ctx).Save(user).Error; err != nil {
		return log.Err("failed to update user", err, "userID", user.ID)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	log := r.log.Function("Delete")

	if err := r.getDB(ctx).Delete(&User{}, "id = ?", id).Error; err != nil {
		return log.Err("failed to delete user", err, "id", id)
	}
	return nil
}

// ClearOrganization nulls the organization reference of every member of the
// given organization. Used when an organization is deleted; members are never
// cascade-deleted.
func (r *userRepository) ClearOrganization(ctx context.Context, organizationID string) error {
	log := r.log.Function("ClearOrganization")

	if err := r.getDB(ctx).Model(&User{}).
		Where("organization_id = ?", organizationID).
		Update("organization_id", nil).Error; err != nil {
		return log.Err("failed to clear organization from users", err, "organizationID", organizationID)
	}
	return nil
}

func (r *userRepository) GetTitle(ctx context.Context, userID, organizationID, title string) (*UserOrganizationTitle, error) {
	var record UserOrganizationTitle
	err := r.getDB(ctx).
		First(&record, "user_id = ? AND organization_id = ? AND title = ?", userID, organizationID, title).Error
	if err != nil {
		return nil, normalizeErr(err)
	}
	return &record, nil
}

func (r *userRepository) CreateTitle(ctx context.Context, title *UserOrganizationTitle) error {
	log := r.log.Function("CreateTitle")

	if err := r.getDB(ctx).Create(title).Error; err != nil {
		return log.Err("failed to create organization title", err, "userID", title.UserID, "title", title.Title)
	}
	return nil
}

func (r *userRepository) GetDetails(ctx context.Context, userID string) (*UserDetails, error) {
	var details UserDetails
	if err := r.getDB(ctx).First(&details, "user_id = ?", userID).Error; err != nil {
		return nil, normalizeErr(err)
	}
	return &details, nil
}

func (r *userRepository) SaveDetails(ctx context.Context, details *UserDetails) error {
	log := r.log.Function("SaveDetails")

	if err := r.getDB(ctx).Save(details).Error; err != nil {
		return log.Err("failed to save user details", err, "userID", details.UserID)
	}
	return nil
}

func (r *userRepository) DeleteDetails(ctx context.Context, userID string) error {
	log := r.log.Function("DeleteDetails")

	if err := r.getDB(ctx).Delete(&UserDetails{}, "user_id = ?", userID).Error; err != nil {
		return log.Err("failed to delete user details", err, "userID", userID)
	}
	return nil
}
