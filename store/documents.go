package store

import (
	"context"

	"github.com/mmdatafocus/garage_backend/models"
	"gorm.io/gorm"
)

// CreateQuotation inserts a quotation together with its line items. The
// writes share one transaction so a failed line insert never leaves an
// orphan parent behind.
func (s *Store) CreateQuotation(ctx context.Context, quotation *models.Quotation, items []models.QuotationItem) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quotation).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].QuotationId = quotation.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// CreateRepairOrder inserts a repair order and its line items in one
// transaction, same contract as CreateQuotation.
func (s *Store) CreateRepairOrder(ctx context.Context, order *models.RepairOrder, items []models.RepairOrderItem) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].RepairOrderId = order.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return err
	}
	s.notify()
	return nil
}
