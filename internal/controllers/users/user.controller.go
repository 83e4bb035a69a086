package userController

import (
	"context"
	"errors"

	responseController "surveyhub/internal/controllers/responses"
	"surveyhub/internal/events"
	"surveyhub/internal/logger"
	"surveyhub/internal/mail"
	. "surveyhub/internal/models"
	"surveyhub/internal/repositories"
	"surveyhub/internal/services"
	"surveyhub/internal/utils"

	"github.com/google/uuid"
)

var (
	ErrMissingFields      = errors.New("username and email are required")
	ErrUserExists         = errors.New("a user with that username or email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// CreateUserResult is the provisioning outcome returned to the handler. The
// plaintext password is part of the documented response contract.
type CreateUserResult struct {
	User           *User           `json:"user"`
	Password       string          `json:"password"`
	SurveyCode     string          `json:"survey_code"`
	SurveyResponse *SurveyResponse `json:"survey_response,omitempty"`
	EmailResult    mail.Result     `json:"email_result"`
}

type UserController struct {
	userRepo           repositories.UserRepository
	orgRepo            repositories.OrganizationRepository
	geoRepo            repositories.GeoLocationRepository
	responseRepo       repositories.ResponseRepository
	responseController *responseController.ResponseController
	transactionService *services.TransactionService
	dispatcher         *mail.Dispatcher
	eventBus           *events.EventBus
	log                logger.Logger
}

func New(
	userRepo repositories.UserRepository,
	orgRepo repositories.OrganizationRepository,
	geoRepo repositories.GeoLocationRepository,
	responseRepo repositories.ResponseRepository,
	respController *responseController.ResponseController,
	transactionService *services.TransactionService,
	dispatcher *mail.Dispatcher,
	eventBus *events.EventBus,
) *UserController {
	return &UserController{
		userRepo:           userRepo,
		orgRepo:            orgRepo,
		geoRepo:            geoRepo,
		responseRepo:       responseRepo,
		responseController: respController,
		transactionService: transactionService,
		dispatcher:         dispatcher,
		eventBus:           eventBus,
		log:                logger.New("UserController"),
	}
}

// CreateUser provisions a new user: role validation, credential and survey
// code generation, optional geo location, the auto-provisioned survey
// response, and the welcome email. Response provisioning and email delivery
// are non-fatal; the user row is the only thing that can fail the call.
func (uc *UserController) CreateUser(ctx context.Context, req *CreateUserRequest) (*CreateUserResult, error) {
	log := uc.log.Function("CreateUser")

	if req.Username == "" || req.Email == "" {
		return nil, ErrMissingFields
	}

	if existing, _ := uc.userRepo.GetByUsername(ctx, req.Username); existing != nil {
		return nil, ErrUserExists
	}
	if existing, _ := uc.userRepo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, ErrUserExists
	}

	role, requestedRole := validateRole(req.Role)

	password := req.Password
	if password == "" {
		password = utils.GeneratePassword()
	}

	user := &User{
		Username:       req.Username,
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Password:       password,
		Role:           role,
		SurveyCode:     uuid.NewString(),
		OrganizationID: req.OrganizationID,
	}

	err := uc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		if req.GeoLocation != nil {
			location := &GeoLocation{
				AddressLine1: req.GeoLocation.AddressLine1,
				AddressLine2: req.GeoLocation.AddressLine2,
				City:         req.GeoLocation.City,
				Town:         req.GeoLocation.Town,
				Province:     req.GeoLocation.Province,
				Country:      req.GeoLocation.Country,
				PostalCode:   req.GeoLocation.PostalCode,
				Which:        GeoOwnerUser,
			}
			if err := uc.geoRepo.Create(txCtx, location); err != nil {
				return err
			}
			user.GeoLocationID = &location.ID
		}

		if err := uc.userRepo.Create(txCtx, user); err != nil {
			return err
		}

		// Preserve the originally requested label as an organizational
		// title when it was coerced to the generic role.
		if requestedRole != "" && req.OrganizationID != nil {
			return uc.ensureTitle(txCtx, user.ID, *req.OrganizationID, requestedRole)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Side effects below run outside the transaction and never fail the
	// creation. Contact pseudo-roles are stored as RoleOther, so the
	// exclusion check has to look at the requested label as well.
	var surveyResponse *SurveyResponse
	if !RoleExcludedFromProvisioning(req.Role) {
		surveyResponse, err = uc.responseController.AutoProvision(ctx, user, req.TemplateID)
		if err != nil {
			log.Warn("survey response provisioning failed, continuing", "userID", user.ID, "error", err)
		}
	}

	emailResult := uc.sendWelcome(ctx, user, password, req.EmailTemplateID)

	if uc.eventBus != nil {
		uc.eventBus.PublishUserCreated(user.ID, user.Username)
	}

	return &CreateUserResult{
		User:           user,
		Password:       password,
		SurveyCode:     user.SurveyCode,
		SurveyResponse: surveyResponse,
		EmailResult:    emailResult,
	}, nil
}

// validateRole coerces unknown roles to RoleOther, returning the original
// label so it can be preserved as an organizational title. Known excluded
// pseudo-roles (primary/secondary contact) are coerced the same way.
func validateRole(requested string) (role, originalLabel string) {
	if requested == "" {
		return RoleUser, ""
	}
	if ValidRole(requested) {
		return requested, ""
	}
	return RoleOther, requested
}

func (uc *UserController) ensureTitle(ctx context.Context, userID, organizationID, title string) error {
	if existing, _ := uc.userRepo.GetTitle(ctx, userID, organizationID, title); existing != nil {
		return nil
	}
	return uc.userRepo.CreateTitle(ctx, &UserOrganizationTitle{
		UserID:         userID,
		OrganizationID: organizationID,
		Title:          title,
	})
}

func (uc *UserController) sendWelcome(ctx context.Context, user *User, password string, templateID *string) mail.Result {
	req := mail.Request{
		Kind:           mail.KindWelcome,
		Email:          user.Email,
		Username:       user.Username,
		FirstName:      user.FirstName,
		Password:       password,
		SurveyCode:     user.SurveyCode,
		OrganizationID: user.OrganizationID,
		TemplateID:     templateID,
	}

	if user.OrganizationID != nil {
		if org, err := uc.orgRepo.GetByID(ctx, *user.OrganizationID); err == nil {
			req.OrganizationName = org.Name
		}
	}

	return uc.dispatcher.Dispatch(ctx, req)
}

func (uc *UserController) GetUser(ctx context.Context, id string) (*User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (uc *UserController) GetAllUsers(ctx context.Context) ([]*User, error) {
	return uc.userRepo.GetAll(ctx)
}

// UpdateUser applies a partial update. A template_id in the request triggers
// the reassignment path in the response controller.
func (uc *UserController) UpdateUser(ctx context.Context, id string, req *UpdateUserRequest) (*User, error) {
	log := uc.log.Function("UpdateUser")

	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var requestedRole string
	err = uc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		if req.Email != nil {
			user.Email = *req.Email
		}
		if req.FirstName != nil {
			user.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			user.LastName = *req.LastName
		}
		if req.Role != nil {
			user.Role, requestedRole = validateRole(*req.Role)
		}

		if err := uc.userRepo.Update(txCtx, user); err != nil {
			return err
		}

		if requestedRole != "" && user.OrganizationID != nil {
			return uc.ensureTitle(txCtx, user.ID, *user.OrganizationID, requestedRole)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.TemplateID != nil && *req.TemplateID != "" {
		if _, err := uc.responseController.ReassignTemplate(ctx, user, *req.TemplateID); err != nil {
			return nil, log.Err("failed to reassign template", err, "userID", user.ID)
		}
	}

	return user, nil
}

// DeleteUser removes the user, their responses and details, and nulls any
// organization contact references pointing at them.
func (uc *UserController) DeleteUser(ctx context.Context, id string) error {
	if _, err := uc.userRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return uc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		if err := uc.orgRepo.ClearUserReferences(txCtx, id); err != nil {
			return err
		}
		if err := uc.responseRepo.DeleteByUser(txCtx, id); err != nil {
			return err
		}
		if err := uc.userRepo.DeleteDetails(txCtx, id); err != nil {
			return err
		}
		return uc.userRepo.Delete(txCtx, id)
	})
}

// Login performs the credential check. Passwords are stored and compared in
// plaintext; changing that is an explicit non-goal of this service.
func (uc *UserController) Login(ctx context.Context, req *LoginRequest) (*User, error) {
	user, err := uc.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Password != req.Password {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// SaveUserDetails upserts the general profile form. This progress record is
// independent of the survey response lifecycle.
func (uc *UserController) SaveUserDetails(ctx context.Context, userID string, formData JSONMap, submit bool) (*UserDetails, error) {
	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var details *UserDetails
	err := uc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		existing, err := uc.userRepo.GetDetails(txCtx, userID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return err
		}

		if existing == nil {
			existing = &UserDetails{UserID: userID}
		}

		existing.FormData = formData
		if submit {
			existing.IsSubmitted = true
		}

		details = existing
		return uc.userRepo.SaveDetails(txCtx, existing)
	})
	if err != nil {
		return nil, err
	}

	return details, nil
}
