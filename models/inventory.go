package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type InventoryCategory struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Code      string    `gorm:"size:20;index" json:"code"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInventoryCategory struct {
	Name string `json:"name" binding:"required"`
}

type InventoryItem struct {
	ID           int             `gorm:"primary_key" json:"id"`
	Sku          string          `gorm:"size:50;index" json:"sku"`
	Name         string          `gorm:"size:100;not null" json:"name"`
	CategoryId   int             `gorm:"index;not null" json:"category_id"`
	Unit         string          `gorm:"size:20;not null" json:"unit"`
	Quantity     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_price"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"selling_price"`
	Supplier     string          `gorm:"size:100" json:"supplier"`
	Location     string          `gorm:"size:100" json:"location"`
	MinQuantity  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"min_quantity"`
	Notes        string          `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInventoryItem struct {
	Sku          string          `json:"sku"`
	Name         string          `json:"name" binding:"required"`
	CategoryId   int             `json:"category_id" binding:"required"`
	Unit         string          `json:"unit" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Supplier     string          `json:"supplier"`
	Location     string          `json:"location"`
	MinQuantity  decimal.Decimal `json:"min_quantity"`
	Notes        string          `json:"notes"`
}

func (input *NewInventoryItem) Validate() error {
	if strings.TrimSpace(input.Name) == "" {
		return errors.New("item name is required")
	}
	if input.CategoryId <= 0 {
		return errors.New("category id is required")
	}
	if input.Quantity.IsNegative() {
		return errors.New("quantity cannot be negative")
	}
	return nil
}
