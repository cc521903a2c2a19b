package models

// Client is a billable party. Clients are seed data: loaded at startup and
// read-only through the API.
type Client struct {
	ID                    uint   `gorm:"primaryKey"`
	Name                  string `gorm:"not null"`
	Address               string `gorm:"size:500;not null"`
	CompanyRegistrationNo string `gorm:"size:60;not null"`
}
