package models

// Platform-wide roles. Anything outside this set is coerced to RoleOther and
// the requested label is preserved as a UserOrganizationTitle.
const (
	RoleAdmin   = "admin"
	RoleUser    = "user"
	RoleManager = "manager"
	RoleOther   = "other"
	RoleHead    = "head"
	RoleRoot    = "root"
)

// Requested roles that never get a survey response auto-provisioned.
const (
	RolePrimaryContact   = "primary_contact"
	RoleSecondaryContact = "secondary_contact"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleUser, RoleManager, RoleOther, RoleHead, RoleRoot:
		return true
	}
	return false
}

func RoleExcludedFromProvisioning(role string) bool {
	switch role {
	case RoleAdmin, RoleRoot, RolePrimaryContact, RoleSecondaryContact:
		return true
	}
	return false
}

type User struct {
	BaseUUIDModel
	Username       string  `gorm:"type:varchar(120);uniqueIndex;not null" json:"username"`
	Email          string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FirstName      string  `gorm:"type:varchar(120)"                      json:"firstName"`
	LastName       string  `gorm:"type:varchar(120)"                      json:"lastName"`
	Password       string  `gorm:"type:varchar(120);not null"             json:"-"`
	Role           string  `gorm:"type:varchar(30);not null"              json:"role"`
	SurveyCode     string  `gorm:"type:varchar(64);uniqueIndex"           json:"surveyCode"`
	OrganizationID *string `gorm:"type:varchar(64);index"                 json:"organizationId"`
	GeoLocationID  *string `gorm:"type:varchar(64)"                       json:"geoLocationId"`

	Organization *Organization           `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	GeoLocation  *GeoLocation            `gorm:"foreignKey:GeoLocationID"  json:"geoLocation,omitempty"`
	Titles       []UserOrganizationTitle `gorm:"foreignKey:UserID"         json:"titles,omitempty"`
}

// UserDetails tracks general profile form progress, independent of the survey
// response proper. The two completion concepts are deliberately separate.
type UserDetails struct {
	BaseUUIDModel
	UserID      string  `gorm:"type:varchar(64);uniqueIndex;not null" json:"userId"`
	FormData    JSONMap `gorm:"type:text"                             json:"formData"`
	IsSubmitted bool    `gorm:"not null;default:false"                json:"isSubmitted"`
}

type UserOrganizationTitle struct {
	BaseUUIDModel
	UserID         string `gorm:"type:varchar(64);not null;uniqueIndex:idx_user_org_title" json:"userId"`
	OrganizationID string `gorm:"type:varchar(64);not null;uniqueIndex:idx_user_org_title" json:"organizationId"`
	Title          string `gorm:"type:varchar(120);not null;uniqueIndex:idx_user_org_title" json:"title"`
}

type CreateUserRequest struct {
	Username        string             `json:"username"`
	Email           string             `json:"email"`
	Password        string             `json:"password"`
	FirstName       string             `json:"firstName"`
	LastName        string             `json:"lastName"`
	Role            string             `json:"role"`
	OrganizationID  *string            `json:"organization_id"`
	GeoLocation     *GeoLocationFields `json:"geo_location"`
	TemplateID      *string            `json:"template_id"`
	EmailTemplateID *string            `json:"email_template_id"`
}

type UpdateUserRequest struct {
	Email      *string `json:"email"`
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Role       *string `json:"role"`
	TemplateID *string `json:"template_id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
