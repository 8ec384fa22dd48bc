package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Invoice struct {
	ID            int             `gorm:"primary_key" json:"id"`
	Code          string          `gorm:"size:20;index" json:"code"`
	DateCreated   time.Time       `gorm:"not null" json:"date_created"`
	RepairOrderId int             `gorm:"index;not null" json:"repair_order_id"`
	CustomerId    int             `gorm:"index;not null" json:"customer_id"`
	VehicleId     int             `gorm:"index;not null" json:"vehicle_id"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"subtotal"`
	Discount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount"`
	Tax           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax"`
	Total         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount_paid"`
	PaymentMethod PaymentMethod   `gorm:"size:20" json:"payment_method"`
	Status        InvoiceStatus   `gorm:"size:20;not null;default:'unpaid'" json:"status"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInvoice struct {
	RepairOrderId int             `json:"repair_order_id" binding:"required"`
	CustomerId    int             `json:"customer_id" binding:"required"`
	VehicleId     int             `json:"vehicle_id" binding:"required"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Tax           decimal.Decimal `json:"tax"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
}

func (input *NewInvoice) Validate() error {
	if input.RepairOrderId <= 0 || input.CustomerId <= 0 || input.VehicleId <= 0 {
		return errors.New("repair order id, customer id and vehicle id are required")
	}
	switch input.PaymentMethod {
	case "", PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCard:
	default:
		return errors.New("invalid payment method")
	}
	return nil
}

// Total returns subtotal - discount + tax.
func (input *NewInvoice) TotalAmount() decimal.Decimal {
	return input.Subtotal.Sub(input.Discount).Add(input.Tax)
}

// PaymentStatus derives the invoice status from the paid amount.
func PaymentStatus(total, paid decimal.Decimal) InvoiceStatus {
	switch {
	case paid.LessThanOrEqual(decimal.Zero):
		return InvoiceStatusUnpaid
	case paid.GreaterThanOrEqual(total):
		return InvoiceStatusPaid
	default:
		return InvoiceStatusPartial
	}
}
