package responseController

import (
	"context"
	"testing"
	"time"

	"surveyhub/config"
	"surveyhub/internal/database"
	"surveyhub/internal/events"
	. "surveyhub/internal/models"
	"surveyhub/internal/repositories"
	"surveyhub/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	controller   *ResponseController
	db           *gorm.DB
	userRepo     repositories.UserRepository
	templateRepo repositories.TemplateRepository
	responseRepo repositories.ResponseRepository
	ctx          context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gormDB.AutoMigrate(
		&User{},
		&SurveyTemplateVersion{},
		&SurveyTemplate{},
		&QuestionType{},
		&Question{},
		&QuestionOption{},
		&SurveyResponse{},
	))

	db := database.DB{SQL: gormDB}
	userRepo := repositories.NewUser(db)
	templateRepo := repositories.NewTemplate(db)
	responseRepo := repositories.NewResponse(db)
	transactionService := services.NewTransactionService(db)
	eventBus := events.New(nil, config.Config{})

	controller := New(responseRepo, templateRepo, userRepo, transactionService, eventBus)
	controller.now = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}

	return &testEnv{
		controller:   controller,
		db:           gormDB,
		userRepo:     userRepo,
		templateRepo: templateRepo,
		responseRepo: responseRepo,
		ctx:          context.Background(),
	}
}

func (e *testEnv) createUser(t *testing.T, username, role string) *User {
	t.Helper()
	user := &User{
		Username:   username,
		Email:      username + "@example.com",
		Password:   "password",
		Role:       role,
		SurveyCode: "code-" + username,
	}
	require.NoError(t, e.userRepo.Create(e.ctx, user))
	return user
}

func (e *testEnv) createTemplate(t *testing.T, name string) *SurveyTemplate {
	t.Helper()
	version := &SurveyTemplateVersion{Name: name + " version"}
	require.NoError(t, e.templateRepo.CreateVersion(e.ctx, version))

	template := &SurveyTemplate{
		VersionID:  version.ID,
		Name:       name,
		SurveyCode: "tmpl-" + name,
		Sections:   JSONMap{},
	}
	require.NoError(t, e.templateRepo.Create(e.ctx, template))
	return template
}

func TestSaveDraft_CreatesThenUpdatesSingleResponse(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", RoleUser)
	template := env.createTemplate(t, "intake")

	first, created, err := env.controller.SaveDraft(env.ctx, template.ID, &SaveDraftRequest{
		UserID:  user.ID,
		Answers: JSONMap{"q1": "yes", "q2": "no"},
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, ResponseStatusPending, first.Status)
	assert.NotEmpty(t, first.SurveyCode)

	second, created, err := env.controller.SaveDraft(env.ctx, template.ID, &SaveDraftRequest{
		UserID:  user.ID,
		Answers: JSONMap{"q3": "maybe"},
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	// Answers are replaced wholesale, never merged.
	stored, err := env.responseRepo.GetByUserAndTemplate(env.ctx, user.ID, template.ID)
	require.NoError(t, err)
	assert.Equal(t, JSONMap{"q3": "maybe"}, stored.Answers)
	assert.NotContains(t, stored.Answers, "q1")

	var count int64
	require.NoError(t, env.controller.transactionService.Execute(env.ctx, func(txCtx context.Context) error {
		tx, _ := services.GetTransaction(txCtx)
		return tx.Model(&SurveyResponse{}).
			Where("user_id = ? AND template_id = ?", user.ID, template.ID).
			Count(&count).Error
	}))
	assert.EqualValues(t, 1, count)
}

func TestSaveDraft_StatusAndDates(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "bob", RoleUser)
	template := env.createTemplate(t, "annual")

	status := ResponseStatusInProgress
	start := "2026-03-01"
	response, _, err := env.controller.SaveDraft(env.ctx, template.ID, &SaveDraftRequest{
		UserID:    user.ID,
		Answers:   JSONMap{},
		Status:    &status,
		StartDate: &start,
	})
	require.NoError(t, err)
	assert.Equal(t, ResponseStatusInProgress, response.Status)
	require.NotNil(t, response.StartDate)
	assert.Equal(t, 2026, response.StartDate.Year())
}

func TestSaveDraft_RejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "carol", RoleUser)
	template := env.createTemplate(t, "intake")

	status := "archived"
	_, _, err := env.controller.SaveDraft(env.ctx, template.ID, &SaveDraftRequest{
		UserID: user.ID,
		Status: &status,
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSaveDraft_UnknownTemplateAndUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "dave", RoleUser)
	template := env.createTemplate(t, "intake")

	_, _, err := env.controller.SaveDraft(env.ctx, "missing", &SaveDraftRequest{UserID: user.ID})
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	_, _, err = env.controller.SaveDraft(env.ctx, template.ID, &SaveDraftRequest{UserID: "missing"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSaveDraft_StorageFailureIsNotReportedAsNotFound(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "dina", RoleUser)
	template := env.createTemplate(t, "intake")

	// A broken schema makes the template lookup fail with a query error, which
	// must surface as-is rather than as a missing template.
	require.NoError(t, env.db.Migrator().DropTable(&Question{}))

	_, _, err := env.controller.SaveDraft(env.ctx, template.ID, &SaveDraftRequest{
		UserID:  user.ID,
		Answers: JSONMap{},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTemplateNotFound)
}

func TestUpdateResponse_ReplacesAnswersAndCompletes(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "erin", RoleUser)
	template := env.createTemplate(t, "intake")

	response, _, err := env.controller.SaveDraft(env.ctx, template.ID, &SaveDraftRequest{
		UserID:  user.ID,
		Answers: JSONMap{"q1": "draft"},
	})
	require.NoError(t, err)

	status := ResponseStatusCompleted
	updated, err := env.controller.UpdateResponse(env.ctx, response.ID, &UpdateResponseRequest{
		Answers: JSONMap{"q1": "final"},
		Status:  &status,
	})
	require.NoError(t, err)
	assert.Equal(t, ResponseStatusCompleted, updated.Status)
	assert.Equal(t, JSONMap{"q1": "final"}, updated.Answers)
}

func TestUpdateResponse_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.controller.UpdateResponse(env.ctx, "missing", &UpdateResponseRequest{})
	assert.ErrorIs(t, err, ErrResponseNotFound)
}

func TestReassignTemplate_ChangeResetsAnswersAndStatus(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "frank", RoleUser)
	oldTemplate := env.createTemplate(t, "old")
	newTemplate := env.createTemplate(t, "new")

	status := ResponseStatusInProgress
	original, _, err := env.controller.SaveDraft(env.ctx, oldTemplate.ID, &SaveDraftRequest{
		UserID:  user.ID,
		Answers: JSONMap{"q1": "kept?"},
		Status:  &status,
	})
	require.NoError(t, err)

	reassigned, err := env.controller.ReassignTemplate(env.ctx, user, newTemplate.ID)
	require.NoError(t, err)

	assert.Equal(t, original.ID, reassigned.ID)
	assert.Equal(t, newTemplate.ID, reassigned.TemplateID)
	assert.Empty(t, reassigned.Answers)
	assert.Equal(t, ResponseStatusPending, reassigned.Status)
}

func TestReassignTemplate_SameTemplateKeepsAnswers(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "grace", RoleUser)
	template := env.createTemplate(t, "intake")

	status := ResponseStatusInProgress
	_, _, err := env.controller.SaveDraft(env.ctx, template.ID, &SaveDraftRequest{
		UserID:  user.ID,
		Answers: JSONMap{"q1": "kept"},
		Status:  &status,
	})
	require.NoError(t, err)

	reassigned, err := env.controller.ReassignTemplate(env.ctx, user, template.ID)
	require.NoError(t, err)

	assert.Equal(t, JSONMap{"q1": "kept"}, reassigned.Answers)
	assert.Equal(t, ResponseStatusInProgress, reassigned.Status)
}

func TestReassignTemplate_UnknownTemplate(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "heidi", RoleUser)

	_, err := env.controller.ReassignTemplate(env.ctx, user, "missing")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestAutoProvision_ExcludedRolesGetNoResponse(t *testing.T) {
	env := newTestEnv(t)

	for _, role := range []string{RoleAdmin, RoleRoot, RolePrimaryContact, RoleSecondaryContact} {
		user := env.createUser(t, "excluded-"+role, role)

		response, err := env.controller.AutoProvision(env.ctx, user, nil)
		require.NoError(t, err)
		assert.Nil(t, response, "role %s should not be provisioned", role)
	}
}

func TestAutoProvision_UsesFirstAvailableTemplate(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "ivan", RoleUser)
	template := env.createTemplate(t, "existing")

	response, err := env.controller.AutoProvision(env.ctx, user, nil)
	require.NoError(t, err)

	require.NotNil(t, response)
	assert.Equal(t, template.ID, response.TemplateID)
	assert.Equal(t, ResponseStatusPending, response.Status)
	assert.Empty(t, response.Answers)
	assert.NotEmpty(t, response.SurveyCode)

	require.NotNil(t, response.StartDate)
	require.NotNil(t, response.EndDate)
	assert.Equal(t, 15*24*time.Hour, response.EndDate.Sub(*response.StartDate))
}

func TestAutoProvision_CreatesDefaultTemplateWhenNoneExist(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "judy", RoleUser)

	response, err := env.controller.AutoProvision(env.ctx, user, nil)
	require.NoError(t, err)
	require.NotNil(t, response)

	template, err := env.templateRepo.GetByID(env.ctx, response.TemplateID)
	require.NoError(t, err)
	assert.Equal(t, "Default Survey", template.Name)
}

func TestAutoProvision_ExplicitTemplateWins(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "kim", RoleUser)
	env.createTemplate(t, "first")
	explicit := env.createTemplate(t, "explicit")

	response, err := env.controller.AutoProvision(env.ctx, user, &explicit.ID)
	require.NoError(t, err)

	require.NotNil(t, response)
	assert.Equal(t, explicit.ID, response.TemplateID)
}
