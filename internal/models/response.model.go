package models

import "time"

// SurveyResponse statuses. Transitions are not enforced as monotonic: a later
// draft save carrying a status can move a completed response back to pending.
// Known looseness, kept for compatibility with existing callers.
const (
	ResponseStatusPending    = "pending"
	ResponseStatusInProgress = "in_progress"
	ResponseStatusCompleted  = "completed"
)

func ValidResponseStatus(status string) bool {
	switch status {
	case ResponseStatusPending, ResponseStatusInProgress, ResponseStatusCompleted:
		return true
	}
	return false
}

// SurveyResponse is the single mutable survey record for a (user, template)
// pair. Uniqueness of the pair is enforced by look-up-before-insert in the
// response controller, not by a database constraint.
type SurveyResponse struct {
	BaseUUIDModel
	TemplateID string     `gorm:"type:varchar(64);not null;index"       json:"templateId"`
	UserID     string     `gorm:"type:varchar(64);not null;index"       json:"userId"`
	Answers    JSONMap    `gorm:"type:text"                             json:"answers"`
	Status     string     `gorm:"type:varchar(20);not null"             json:"status"`
	SurveyCode string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"surveyCode"`
	StartDate  *time.Time `json:"startDate"`
	EndDate    *time.Time `json:"endDate"`

	Template *SurveyTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	User     *User           `gorm:"foreignKey:UserID"     json:"user,omitempty"`
}

type SaveDraftRequest struct {
	UserID    string  `json:"user_id"`
	Answers   JSONMap `json:"answers"`
	Status    *string `json:"status"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

type UpdateResponseRequest struct {
	Answers JSONMap `json:"answers"`
	Status  *string `json:"status"`
}

type UpdateResponseDatesRequest struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}
