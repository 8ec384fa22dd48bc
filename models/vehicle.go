package models

import (
	"errors"
	"strings"
	"time"
)

type Vehicle struct {
	ID           int       `gorm:"primary_key" json:"id"`
	Code         string    `gorm:"size:20;index" json:"code"`
	CustomerId   int       `gorm:"index;not null" json:"customer_id"`
	LicensePlate string    `gorm:"size:20;not null" json:"license_plate"`
	Brand        string    `gorm:"size:50;not null" json:"brand"`
	Model        string    `gorm:"size:50;not null" json:"model"`
	Vin          string    `gorm:"size:64" json:"vin"`
	Year         int       `json:"year"`
	Color        string    `gorm:"size:30" json:"color"`
	LastOdometer int       `gorm:"default:0" json:"last_odometer"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewVehicle struct {
	CustomerId   int    `json:"customer_id" binding:"required"`
	LicensePlate string `json:"license_plate" binding:"required"`
	Brand        string `json:"brand" binding:"required"`
	Model        string `json:"model" binding:"required"`
	Vin          string `json:"vin"`
	Year         int    `json:"year"`
	Color        string `json:"color"`
	LastOdometer int    `json:"last_odometer"`
}

func (input *NewVehicle) Validate() error {
	if input.CustomerId <= 0 {
		return errors.New("customer id is required")
	}
	if strings.TrimSpace(input.LicensePlate) == "" {
		return errors.New("license plate is required")
	}
	return nil
}
