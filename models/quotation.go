package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Quotation struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Code        string          `gorm:"size:20;index" json:"code"`
	DateCreated time.Time       `gorm:"not null" json:"date_created"`
	CustomerId  int             `gorm:"index;not null" json:"customer_id"`
	VehicleId   int             `gorm:"index;not null" json:"vehicle_id"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"subtotal"`
	Tax         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax"`
	Total       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`
	Notes       string          `gorm:"type:text" json:"notes"`
	Status      QuotationStatus `gorm:"size:20;not null;default:'new'" json:"status"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type QuotationItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	QuotationId int             `gorm:"index;not null" json:"quotation_id"`
	Type        LineItemType    `gorm:"size:10;not null" json:"type"`
	ItemId      int             `gorm:"not null" json:"item_id"`
	Name        string          `gorm:"size:100;not null" json:"name"`
	Quantity    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	Total       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewQuotation struct {
	CustomerId int                `json:"customer_id" binding:"required"`
	VehicleId  int                `json:"vehicle_id" binding:"required"`
	Tax        decimal.Decimal    `json:"tax"`
	Notes      string             `json:"notes"`
	Status     QuotationStatus    `json:"status"`
	Items      []NewQuotationItem `json:"items"`
}

type NewQuotationItem struct {
	Type      LineItemType    `json:"type" binding:"required"`
	ItemId    int             `json:"item_id" binding:"required"`
	Name      string          `json:"name" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (input *NewQuotation) Validate() error {
	if input.CustomerId <= 0 || input.VehicleId <= 0 {
		return errors.New("customer id and vehicle id are required")
	}
	for _, item := range input.Items {
		if item.Type != LineItemTypePart && item.Type != LineItemTypeService {
			return errors.New("item type must be part or service")
		}
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return errors.New("item quantity must be positive")
		}
	}
	return nil
}

// Totals returns subtotal and grand total derived from the line items.
func (input *NewQuotation) Totals() (decimal.Decimal, decimal.Decimal) {
	subtotal := decimal.Zero
	for _, item := range input.Items {
		subtotal = subtotal.Add(item.Quantity.Mul(item.UnitPrice))
	}
	return subtotal, subtotal.Add(input.Tax)
}
