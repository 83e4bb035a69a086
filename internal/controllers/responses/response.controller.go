package responseController

import (
	"context"
	"errors"
	"time"

	"surveyhub/internal/events"
	"surveyhub/internal/logger"
	. "surveyhub/internal/models"
	"surveyhub/internal/repositories"
	"surveyhub/internal/services"
	"surveyhub/internal/utils"

	"github.com/google/uuid"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrResponseNotFound = errors.New("response not found")
	ErrInvalidStatus    = errors.New("invalid response status")
	ErrInvalidDate      = errors.New("invalid date value")
)

const defaultResponseWindow = 15 * 24 * time.Hour

// ResponseController owns the survey response lifecycle: draft saves, final
// submits, template reassignment and provisioning-time auto-creation. The
// one-response-per-(user,template) invariant is enforced here by
// look-up-before-insert inside a transaction.
type ResponseController struct {
	responseRepo       repositories.ResponseRepository
	templateRepo       repositories.TemplateRepository
	userRepo           repositories.UserRepository
	transactionService *services.TransactionService
	eventBus           *events.EventBus
	now                func() time.Time
	log                logger.Logger
}

func New(
	responseRepo repositories.ResponseRepository,
	templateRepo repositories.TemplateRepository,
	userRepo repositories.UserRepository,
	transactionService *services.TransactionService,
	eventBus *events.EventBus,
) *ResponseController {
	return &ResponseController{
		responseRepo:       responseRepo,
		templateRepo:       templateRepo,
		userRepo:           userRepo,
		transactionService: transactionService,
		eventBus:           eventBus,
		now:                func() time.Time { return time.Now().UTC() },
		log:                logger.New("ResponseController"),
	}
}

// SaveDraft creates or updates the single response for (user, template).
// Answers are replaced wholesale, never merged. The returned bool reports
// whether a new row was created.
func (rc *ResponseController) SaveDraft(ctx context.Context, templateID string, req *SaveDraftRequest) (*SurveyResponse, bool, error) {
	log := rc.log.Function("SaveDraft")

	if req.Status != nil && !ValidResponseStatus(*req.Status) {
		return nil, false, ErrInvalidStatus
	}

	startDate, endDate, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, false, err
	}

	if _, err := rc.templateRepo.GetByID(ctx, templateID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, false, ErrTemplateNotFound
		}
		return nil, false, err
	}
	if _, err := rc.userRepo.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, false, ErrUserNotFound
		}
		return nil, false, err
	}

	var response *SurveyResponse
	var created bool

	err = rc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		existing, err := rc.responseRepo.GetByUserAndTemplate(txCtx, req.UserID, templateID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return log.Err("failed to look up existing response", err, "userID", req.UserID)
		}

		if existing != nil {
			existing.Answers = req.Answers
			if req.Status != nil {
				existing.Status = *req.Status
			}
			if startDate != nil {
				existing.StartDate = startDate
			}
			if endDate != nil {
				existing.EndDate = endDate
			}
			if err := rc.responseRepo.Update(txCtx, existing); err != nil {
				return err
			}
			response = existing
			return nil
		}

		status := ResponseStatusPending
		if req.Status != nil {
			status = *req.Status
		}

		response = &SurveyResponse{
			TemplateID: templateID,
			UserID:     req.UserID,
			Answers:    req.Answers,
			Status:     status,
			SurveyCode: uuid.NewString(),
			StartDate:  startDate,
			EndDate:    endDate,
		}
		created = true
		return rc.responseRepo.Create(txCtx, response)
	})
	if err != nil {
		return nil, false, err
	}

	rc.publishSaved(response)

	return response, created, nil
}

// GetForUserAndTemplate fetches the unique response for the pair.
func (rc *ResponseController) GetForUserAndTemplate(ctx context.Context, userID, templateID string) (*SurveyResponse, error) {
	response, err := rc.responseRepo.GetByUserAndTemplate(ctx, userID, templateID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrResponseNotFound
		}
		return nil, err
	}
	return response, nil
}

// ExportCSV renders every stored response as a CSV document for reporting.
func (rc *ResponseController) ExportCSV(ctx context.Context) ([]byte, error) {
	responses, err := rc.responseRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return utils.ResponsesToCSV(responses)
}

// UpdateResponse replaces answers and optionally the status of an existing
// response. Setting status "completed" here is the final-submit path; moving
// a completed response back is deliberately not prevented.
func (rc *ResponseController) UpdateResponse(ctx context.Context, id string, req *UpdateResponseRequest) (*SurveyResponse, error) {
	if req.Status != nil && !ValidResponseStatus(*req.Status) {
		return nil, ErrInvalidStatus
	}

	var response *SurveyResponse
	err := rc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		existing, err := rc.responseRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrResponseNotFound
			}
			return err
		}

		if req.Answers != nil {
			existing.Answers = req.Answers
		}
		if req.Status != nil {
			existing.Status = *req.Status
		}

		response = existing
		return rc.responseRepo.Update(txCtx, existing)
	})
	if err != nil {
		return nil, err
	}

	rc.publishSaved(response)

	return response, nil
}

// UpdateDates adjusts the response window without touching answers.
func (rc *ResponseController) UpdateDates(ctx context.Context, id string, req *UpdateResponseDatesRequest) (*SurveyResponse, error) {
	startDate, endDate, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	var response *SurveyResponse
	err = rc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		existing, err := rc.responseRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrResponseNotFound
			}
			return err
		}

		if startDate != nil {
			existing.StartDate = startDate
		}
		if endDate != nil {
			existing.EndDate = endDate
		}

		response = existing
		return rc.responseRepo.Update(txCtx, existing)
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

// ReassignTemplate repoints the user's most relevant response at a new
// template. A template change invalidates prior answers, so they are reset
// along with the status; reassigning the same template is a no-op on both.
// When the user has no response at all and the role allows it, a fresh one is
// provisioned.
func (rc *ResponseController) ReassignTemplate(ctx context.Context, user *User, templateID string) (*SurveyResponse, error) {
	log := rc.log.Function("ReassignTemplate")

	if _, err := rc.templateRepo.GetByID(ctx, templateID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	var response *SurveyResponse
	err := rc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		existing, err := rc.responseRepo.GetMostRelevantForUser(txCtx, user.ID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return log.Err("failed to find response for reassignment", err, "userID", user.ID)
		}

		if existing == nil {
			if RoleExcludedFromProvisioning(user.Role) {
				return nil
			}
			response = rc.newProvisionedResponse(user.ID, templateID)
			return rc.responseRepo.Create(txCtx, response)
		}

		if existing.TemplateID != templateID {
			existing.TemplateID = templateID
			existing.Answers = JSONMap{}
			existing.Status = ResponseStatusPending
		}

		response = existing
		return rc.responseRepo.Update(txCtx, existing)
	})
	if err != nil {
		return nil, err
	}

	rc.publishSaved(response)

	return response, nil
}

// AutoProvision creates the initial response for a newly created user. The
// caller treats any error as non-fatal; user creation proceeds regardless.
func (rc *ResponseController) AutoProvision(ctx context.Context, user *User, explicitTemplateID *string) (*SurveyResponse, error) {
	log := rc.log.Function("AutoProvision")

	if RoleExcludedFromProvisioning(user.Role) {
		return nil, nil
	}

	var response *SurveyResponse
	err := rc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		templateID, err := rc.resolveTemplateID(txCtx, user, explicitTemplateID)
		if err != nil {
			return err
		}

		response = rc.newProvisionedResponse(user.ID, templateID)
		return rc.responseRepo.Create(txCtx, response)
	})
	if err != nil {
		return nil, log.Err("failed to auto-provision response", err, "userID", user.ID)
	}

	return response, nil
}

// resolveTemplateID picks the template for auto-provisioning: the explicit
// request value, else the first available template, else a freshly created
// minimal default version+template pair.
func (rc *ResponseController) resolveTemplateID(ctx context.Context, user *User, explicitTemplateID *string) (string, error) {
	log := rc.log.Function("resolveTemplateID")

	if explicitTemplateID != nil && *explicitTemplateID != "" {
		if template, err := rc.templateRepo.GetByID(ctx, *explicitTemplateID); err == nil {
			return template.ID, nil
		}
		log.Warn("explicit template not found, falling back", "templateID", *explicitTemplateID)
	}

	if template, err := rc.templateRepo.GetFirst(ctx, user.OrganizationID); err == nil {
		return template.ID, nil
	}

	version := &SurveyTemplateVersion{
		Name:           "Default Version",
		OrganizationID: user.OrganizationID,
	}
	if err := rc.templateRepo.CreateVersion(ctx, version); err != nil {
		return "", err
	}

	template := &SurveyTemplate{
		VersionID:  version.ID,
		Name:       "Default Survey",
		SurveyCode: uuid.NewString(),
		Sections:   JSONMap{},
	}
	if err := rc.templateRepo.Create(ctx, template); err != nil {
		return "", err
	}

	return template.ID, nil
}

func (rc *ResponseController) newProvisionedResponse(userID, templateID string) *SurveyResponse {
	now := rc.now()
	end := now.Add(defaultResponseWindow)
	return &SurveyResponse{
		TemplateID: templateID,
		UserID:     userID,
		Answers:    JSONMap{},
		Status:     ResponseStatusPending,
		SurveyCode: uuid.NewString(),
		StartDate:  &now,
		EndDate:    &end,
	}
}

func (rc *ResponseController) publishSaved(response *SurveyResponse) {
	if rc.eventBus == nil || response == nil {
		return
	}
	rc.eventBus.PublishResponseSaved(response.ID, response.UserID, response.TemplateID, response.Status)
}

func parseDates(start, end *string) (*time.Time, *time.Time, error) {
	parse := func(value *string) (*time.Time, error) {
		if value == nil || *value == "" {
			return nil, nil
		}
		result := utils.NewDateValidator().ValidateAndConvert(*value)
		if !result.IsValid {
			return nil, ErrInvalidDate
		}
		parsed := result.ParsedTime
		return &parsed, nil
	}

	startDate, err := parse(start)
	if err != nil {
		return nil, nil, err
	}
	endDate, err := parse(end)
	if err != nil {
		return nil, nil, err
	}
	return startDate, endDate, nil
}
