package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Service struct {
	ID            int             `gorm:"primary_key" json:"id"`
	Code          string          `gorm:"size:20;index" json:"code"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price"`
	EstimatedTime string          `gorm:"size:50" json:"estimated_time"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewService struct {
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	EstimatedTime string          `json:"estimated_time"`
}
