package models

// Owner discriminator for GeoLocation.Which.
const (
	GeoOwnerUser         = "user"
	GeoOwnerOrganization = "organization"
)

// GeoLocation holds postal address components. Zero latitude and longitude
// mean "not yet geocoded"; the geocoding flow never overwrites a nonzero
// coordinate.
type GeoLocation struct {
	BaseUUIDModel
	AddressLine1 string  `gorm:"type:varchar(255)" json:"addressLine1"`
	AddressLine2 string  `gorm:"type:varchar(255)" json:"addressLine2"`
	City         string  `gorm:"type:varchar(120)" json:"city"`
	Town         string  `gorm:"type:varchar(120)" json:"town"`
	Province     string  `gorm:"type:varchar(120)" json:"province"`
	Country      string  `gorm:"type:varchar(120)" json:"country"`
	PostalCode   string  `gorm:"type:varchar(30)"  json:"postalCode"`
	Latitude     float64 `gorm:"default:0"         json:"latitude"`
	Longitude    float64 `gorm:"default:0"         json:"longitude"`
	Which        string  `gorm:"type:varchar(20)"  json:"which"`
}

type GeoLocationFields struct {
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Province     string `json:"province"`
	Country      string `json:"country"`
	PostalCode   string `json:"postal_code"`
}
