package models

import (
	"errors"
	"strings"
	"time"

	"github.com/ttacon/libphonenumber"
)

type Customer struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Code      string    `gorm:"size:20;index" json:"code"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Phone     string    `gorm:"size:20;not null" json:"phone"`
	Address   string    `gorm:"size:255" json:"address"`
	Email     string    `gorm:"size:100" json:"email"`
	TaxCode   string    `gorm:"size:50" json:"tax_code"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address"`
	Email   string `json:"email"`
	TaxCode string `json:"tax_code"`
	Notes   string `json:"notes"`
}

// DefaultCountryCode is used when validating customer phone numbers
// entered without an international prefix.
var DefaultCountryCode = "VN"

func (input *NewCustomer) Validate() error {
	if strings.TrimSpace(input.Name) == "" {
		return errors.New("customer name is required")
	}
	if err := ValidatePhoneNumber(input.Phone, DefaultCountryCode); err != nil {
		return err
	}
	return nil
}

func ValidatePhoneNumber(phoneNumber, countryCode string) error {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return err
	}
	if !libphonenumber.IsValidNumber(p) {
		return errors.New("phone number is not valid")
	}
	return nil
}
