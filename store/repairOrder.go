package store

import (
	"context"
	"errors"

	"github.com/mmdatafocus/garage_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CompleteRepairOrder marks the order completed and deducts every part
// line's quantity from inventory exactly once. Stock never goes negative:
// a deduction past zero clamps at zero.
func (s *Store) CompleteRepairOrder(ctx context.Context, id int) (*models.RepairOrder, error) {
	var order models.RepairOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			return err
		}
		if order.Status == models.RepairOrderStatusCancelled {
			return errors.New("cannot complete a cancelled repair order")
		}

		if !order.StockApplied {
			var items []models.RepairOrderItem
			if err := tx.Where("repair_order_id = ?", id).Find(&items).Error; err != nil {
				return err
			}
			for _, item := range items {
				if item.Type != models.LineItemTypePart {
					continue
				}
				var part models.InventoryItem
				if err := tx.First(&part, item.ItemId).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						continue
					}
					return err
				}
				remaining := part.Quantity.Sub(item.Quantity)
				if remaining.IsNegative() {
					remaining = decimal.Zero
				}
				if err := tx.Model(&models.InventoryItem{}).Where("id = ?", part.ID).
					Update("quantity", remaining).Error; err != nil {
					return err
				}
			}
		}

		return tx.Model(&order).Updates(map[string]any{
			"status":        models.RepairOrderStatusCompleted,
			"stock_applied": true,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	s.notify()
	order.Status = models.RepairOrderStatusCompleted
	order.StockApplied = true
	return &order, nil
}

// AdjustStock adds delta to an inventory item's quantity (stock entry).
// Negative results clamp at zero.
func (s *Store) AdjustStock(ctx context.Context, itemId int, delta decimal.Decimal) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var part models.InventoryItem
		if err := tx.First(&part, itemId).Error; err != nil {
			return err
		}
		next := part.Quantity.Add(delta)
		if next.IsNegative() {
			next = decimal.Zero
		}
		return tx.Model(&models.InventoryItem{}).Where("id = ?", itemId).
			Update("quantity", next).Error
	})
	if err != nil {
		return err
	}
	s.notify()
	return nil
}
