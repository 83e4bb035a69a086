package repositories

import (
	"context"
	"time"

	"surveyhub/internal/database"
	"surveyhub/internal/logger"
	. "surveyhub/internal/models"
	"surveyhub/internal/services"

	"gorm.io/gorm"
)

const RESPONSE_CACHE_EXPIRY = 1 * time.Hour

type ResponseRepository interface {
	GetByID(ctx context.Context, id string) (*SurveyResponse, error)
	GetByUserAndTemplate(ctx context.Context, userID, templateID string) (*SurveyResponse, error)
	GetMostRelevantForUser(ctx context.Context, userID string) (*SurveyResponse, error)
	GetByTemplate(ctx context.Context, templateID string) ([]*SurveyResponse, error)
	GetAll(ctx context.Context) ([]*SurveyResponse, error)
	GetByStatus(ctx context.Context, status string) ([]*SurveyResponse, error)
	Create(ctx context.Context, response *SurveyResponse) error
	Update(ctx context.Context, response *SurveyResponse) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

type responseRepository struct {
	db  database.DB
	log logger.Logger
}

func NewResponse(db database.DB) ResponseRepository {
	return &responseRepository{
		db:  db,
		log: logger.New("responseRepository"),
	}
}

func (r *responseRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *responseRepository) GetByID(ctx context.Context, id string) (*SurveyResponse, error) {
	log := r.log.Function("GetByID")

	var response SurveyResponse
	if found, err := database.NewCacheBuilder(r.db.Cache.Response, id).
		WithContext(ctx).Get(&response); err == nil && found {
		return &response, nil
	}

	if err := r.getDB(ctx).First(&response, "id = ?", id).Error; err != nil {
		return nil, normalizeErr(err)
	}

	if err := r.addToCache(ctx, &response); err != nil {
		log.Warn("failed to add response to cache", "responseID", id, "error", err)
	}

	return &response, nil
}

func (r *responseRepository) GetByUserAndTemplate(ctx context.Context, userID, templateID string) (*SurveyResponse, error) {
	var response SurveyResponse
	err := r.getDB(ctx).
		First(&response, "user_id = ? AND template_id = ?", userID, templateID).Error
	if err != nil {
		return nil, normalizeErr(err)
	}
	return &response, nil
}

// GetMostRelevantForUser prefers an open (pending or in_progress) response
// over a completed one, most recent first within each group.
func (r *responseRepository) GetMostRelevantForUser(ctx context.Context, userID string) (*SurveyResponse, error) {
	var response SurveyResponse

	err := r.getDB(ctx).
		Where("user_id = ? AND status IN ?", userID, []string{ResponseStatusPending, ResponseStatusInProgress}).
		Order("created_at DESC").
		First(&response).Error
	if err == nil {
		return &response, nil
	}
	if normalizeErr(err) != ErrNotFound {
		return nil, err
	}

	err = r.getDB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&response).Error
	if err != nil {
		return nil, normalizeErr(err)
	}
	return &response, nil
}

func (r *responseRepository) GetByTemplate(ctx context.Context, templateID string) ([]*SurveyResponse, error) {
	log := r.log.Function("GetByTemplate")

	var responses []*SurveyResponse
	if err := r.getDB(ctx).Where("template_id = ?", templateID).Find(&responses).Error; err != nil {
		return nil, log.Err("failed to get responses by template", err, "templateID", templateID)
	}
	return responses, nil
}

func (r *responseRepository) GetAll(ctx context.Context) ([]*SurveyResponse, error) {
	log := r.log.Function("GetAll")

	var responses []*SurveyResponse
	if err := r.getDB(ctx).Order("created_at DESC").Find(&responses).Error; err != nil {
		return nil, log.Err("failed to get responses", err)
	}
	return responses, nil
}

func (r *responseRepository) GetByStatus(ctx context.Context, status string) ([]*SurveyResponse, error) {
	log := r.log.Function("GetByStatus")

	var responses []*SurveyResponse
	if err := r.getDB(ctx).Where("status = ?", status).Find(&responses).Error; err != nil {
		return nil, log.Err("failed to get responses by status", err, "status", status)
	}
	return responses, nil
}

func (r *responseRepository) Create(ctx context.Context, response *SurveyResponse) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(response).Error; err != nil {
		return log.Err("failed to create response", err, "userID", response.UserID, "templateID", response.TemplateID)
	}

	if err := r.addToCache(ctx, response); err != nil {
		log.Warn("failed to add response to cache", "responseID", response.ID, "error", err)
	}

	return nil
}

func (r *responseRepository) Update(ctx context.Context, response *SurveyResponse) error {
	log := r.log.Function("Update")

	if err := r.getDB(ctx).Save(response).Error; err != nil {
		return log.Err("failed to update response", err, "responseID", response.ID)
	}

	if err := r.addToCache(ctx, response); err != nil {
		log.Warn("failed to update response in cache", "responseID", response.ID, "error", err)
	}

	return nil
}

func (r *responseRepository) Delete(ctx context.Context, id string) error {
	log := r.log.Function("Delete")

	if err := r.getDB(ctx).Delete(&SurveyResponse{}, "id = ?", id).Error; err != nil {
		return log.Err("failed to delete response", err, "id", id)
	}

	if err := database.NewCacheBuilder(r.db.Cache.Response, id).Delete(); err != nil {
		log.Warn("failed to remove response from cache", "responseID", id, "error", err)
	}

	return nil
}

// DeleteByUser removes every response owned by the user; used when the user
// itself is deleted.
func (r *responseRepository) DeleteByUser(ctx context.Context, userID string) error {
	log := r.log.Function("DeleteByUser")

	if err := r.getDB(ctx).Delete(&SurveyResponse{}, "user_id = ?", userID).Error; err != nil {
		return log.Err("failed to delete responses for user", err, "userID", userID)
	}
	return nil
}

func (r *responseRepository) addToCache(ctx context.Context, response *SurveyResponse) error {
	// Inside a transaction the row is not visible to other readers yet, so
	// caching would leak uncommitted state.
	if _, ok := services.GetTransaction(ctx); ok {
		return nil
	}

	return database.NewCacheBuilder(r.db.Cache.Response, response.ID).
		WithStruct(response).
		WithTTL(RESPONSE_CACHE_EXPIRY).
		WithContext(ctx).
		Set()
}
