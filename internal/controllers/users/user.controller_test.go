package userController

import (
	"context"
	"testing"

	"surveyhub/config"
	"surveyhub/internal/database"
	"surveyhub/internal/events"
	"surveyhub/internal/mail"
	. "surveyhub/internal/models"
	"surveyhub/internal/repositories"
	"surveyhub/internal/services"
	"surveyhub/internal/utils"

	responseController "surveyhub/internal/controllers/responses"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubTransport struct {
	messages []mail.Message
	err      error
}

func (s *stubTransport) Send(ctx context.Context, msg mail.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.messages = append(s.messages, msg)
	return "stub-id", nil
}

type testEnv struct {
	controller *UserController
	userRepo   repositories.UserRepository
	orgRepo    repositories.OrganizationRepository
	geoRepo    repositories.GeoLocationRepository
	transport  *stubTransport
	ctx        context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gormDB.AutoMigrate(
		&User{},
		&UserDetails{},
		&UserOrganizationTitle{},
		&Organization{},
		&GeoLocation{},
		&SurveyTemplateVersion{},
		&SurveyTemplate{},
		&QuestionType{},
		&Question{},
		&QuestionOption{},
		&SurveyResponse{},
		&EmailTemplate{},
	))

	db := database.DB{SQL: gormDB}
	userRepo := repositories.NewUser(db)
	orgRepo := repositories.NewOrganization(db)
	geoRepo := repositories.NewGeoLocation(db)
	templateRepo := repositories.NewTemplate(db)
	responseRepo := repositories.NewResponse(db)
	emailTemplateRepo := repositories.NewEmailTemplate(db)
	transactionService := services.NewTransactionService(db)
	eventBus := events.New(nil, config.Config{})

	transport := &stubTransport{}
	dispatcher := mail.NewDispatcher(emailTemplateRepo, transport, &stubTransport{err: mail.ErrTransportUnavailable}, "noreply@surveyhub.example.com")

	respController := responseController.New(responseRepo, templateRepo, userRepo, transactionService, eventBus)
	controller := New(userRepo, orgRepo, geoRepo, responseRepo, respController, transactionService, dispatcher, eventBus)

	return &testEnv{
		controller: controller,
		userRepo:   userRepo,
		orgRepo:    orgRepo,
		geoRepo:    geoRepo,
		transport:  transport,
		ctx:        context.Background(),
	}
}

func (e *testEnv) createOrganization(t *testing.T, name string) *Organization {
	t.Helper()
	org := &Organization{Name: name}
	require.NoError(t, e.orgRepo.Create(e.ctx, org))
	return org
}

func TestCreateUser_FullProvisioning(t *testing.T) {
	env := newTestEnv(t)
	org := env.createOrganization(t, "Northbrook")

	result, err := env.controller.CreateUser(env.ctx, &CreateUserRequest{
		Username:       "mwallace",
		Email:          "m.wallace@example.com",
		FirstName:      "Margaret",
		Role:           RoleUser,
		OrganizationID: &org.ID,
		GeoLocation: &GeoLocationFields{
			AddressLine1: "1 Main St",
			City:         "Springfield",
			Country:      "USA",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, RoleUser, result.User.Role)
	assert.Len(t, result.Password, utils.PasswordLength)
	assert.NotEmpty(t, result.SurveyCode)
	assert.Equal(t, result.SurveyCode, result.User.SurveyCode)

	require.NotNil(t, result.SurveyResponse)
	assert.Equal(t, ResponseStatusPending, result.SurveyResponse.Status)
	assert.Equal(t, result.User.ID, result.SurveyResponse.UserID)

	require.NotNil(t, result.User.GeoLocationID)
	location, err := env.geoRepo.GetByID(env.ctx, *result.User.GeoLocationID)
	require.NoError(t, err)
	assert.Equal(t, GeoOwnerUser, location.Which)
	assert.Zero(t, location.Latitude)

	assert.True(t, result.EmailResult.Success)
	assert.Equal(t, mail.MethodPrimary, result.EmailResult.Method)
	require.Len(t, env.transport.messages, 1)
	assert.Equal(t, "m.wallace@example.com", env.transport.messages[0].To)
	assert.Contains(t, env.transport.messages[0].Text, result.Password)
}

func TestCreateUser_ProvidedPasswordKept(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.controller.CreateUser(env.ctx, &CreateUserRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "chosen-password",
	})
	require.NoError(t, err)

	assert.Equal(t, "chosen-password", result.Password)

	login, err := env.controller.Login(env.ctx, &LoginRequest{Username: "bob", Password: "chosen-password"})
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.ID)
}

func TestCreateUser_UnknownRolePreservedAsTitle(t *testing.T) {
	env := newTestEnv(t)
	org := env.createOrganization(t, "Lakeside")

	result, err := env.controller.CreateUser(env.ctx, &CreateUserRequest{
		Username:       "dokafor",
		Email:          "d.okafor@example.com",
		Role:           "Regional Coordinator",
		OrganizationID: &org.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, RoleOther, result.User.Role)

	title, err := env.userRepo.GetTitle(env.ctx, result.User.ID, org.ID, "Regional Coordinator")
	require.NoError(t, err)
	require.NotNil(t, title)
}

func TestCreateUser_ExcludedRolesSkipProvisioning(t *testing.T) {
	env := newTestEnv(t)

	for _, role := range []string{RoleAdmin, RoleRoot, RolePrimaryContact, RoleSecondaryContact} {
		result, err := env.controller.CreateUser(env.ctx, &CreateUserRequest{
			Username: "user-" + role,
			Email:    role + "@example.com",
			Role:     role,
		})
		require.NoError(t, err)
		assert.Nil(t, result.SurveyResponse, "role %s should not get a response", role)
		assert.NotEmpty(t, result.SurveyCode, "survey code is still assigned for role %s", role)
	}
}

func TestCreateUser_DuplicateRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.controller.CreateUser(env.ctx, &CreateUserRequest{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	_, err = env.controller.CreateUser(env.ctx, &CreateUserRequest{Username: "alice", Email: "other@example.com"})
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = env.controller.CreateUser(env.ctx, &CreateUserRequest{Username: "alice2", Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestCreateUser_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.controller.CreateUser(env.ctx, &CreateUserRequest{Username: "nomail"})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = env.controller.CreateUser(env.ctx, &CreateUserRequest{Email: "noname@example.com"})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.controller.CreateUser(env.ctx, &CreateUserRequest{
		Username: "carol",
		Email:    "carol@example.com",
		Password: "secret",
	})
	require.NoError(t, err)

	_, err = env.controller.Login(env.ctx, &LoginRequest{Username: "carol", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.controller.Login(env.ctx, &LoginRequest{Username: "nobody", Password: "secret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateUser_TemplateChangeReassignsResponse(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.controller.CreateUser(env.ctx, &CreateUserRequest{
		Username: "erin",
		Email:    "erin@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, result.SurveyResponse)

	newTemplate := &SurveyTemplate{
		VersionID:  result.SurveyResponse.TemplateID,
		Name:       "Replacement",
		SurveyCode: "tmpl-replacement",
	}
	// Reuse the provisioned default version for the new template.
	tx := env.controller.transactionService
	require.NoError(t, tx.Execute(env.ctx, func(txCtx context.Context) error {
		txDB, _ := services.GetTransaction(txCtx)
		var template SurveyTemplate
		if err := txDB.First(&template, "id = ?", result.SurveyResponse.TemplateID).Error; err != nil {
			return err
		}
		newTemplate.VersionID = template.VersionID
		return txDB.Create(newTemplate).Error
	}))

	updated, err := env.controller.UpdateUser(env.ctx, result.User.ID, &UpdateUserRequest{
		TemplateID: &newTemplate.ID,
	})
	require.NoError(t, err)

	response, err := env.controller.responseController.GetForUserAndTemplate(env.ctx, updated.ID, newTemplate.ID)
	require.NoError(t, err)
	assert.Equal(t, ResponseStatusPending, response.Status)
	assert.Empty(t, response.Answers)
}

func TestDeleteUser_RemovesResponses(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.controller.CreateUser(env.ctx, &CreateUserRequest{
		Username: "frank",
		Email:    "frank@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, result.SurveyResponse)

	require.NoError(t, env.controller.DeleteUser(env.ctx, result.User.ID))

	_, err = env.userRepo.GetByID(env.ctx, result.User.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = env.controller.responseController.GetForUserAndTemplate(env.ctx, result.User.ID, result.SurveyResponse.TemplateID)
	assert.Error(t, err)
}

func TestDeleteUser_ClearsOrganizationReferencesAndDetails(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.controller.CreateUser(env.ctx, &CreateUserRequest{
		Username: "grace",
		Email:    "grace@example.com",
	})
	require.NoError(t, err)
	userID := result.User.ID

	org := &Organization{
		Name:             "Harborview",
		PrimaryContactID: &userID,
		HeadID:           &userID,
	}
	require.NoError(t, env.orgRepo.Create(env.ctx, org))

	_, err = env.controller.SaveUserDetails(env.ctx, userID, JSONMap{"phone": "555-0101"}, false)
	require.NoError(t, err)

	require.NoError(t, env.controller.DeleteUser(env.ctx, userID))

	stored, err := env.orgRepo.GetByID(env.ctx, org.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.PrimaryContactID)
	assert.Nil(t, stored.HeadID)

	_, err = env.userRepo.GetDetails(env.ctx, userID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
