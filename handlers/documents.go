package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/garage_backend/models"
	"github.com/mmdatafocus/garage_backend/store"
	"gorm.io/gorm"
)

/* Quotations */

func (h *Handler) ListQuotations() gin.HandlerFunc  { return list[models.Quotation](h) }
func (h *Handler) UpdateQuotation() gin.HandlerFunc { return updateByID[models.Quotation](h) }

func (h *Handler) CreateQuotation() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewQuotation
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
		if err := input.Validate(); err != nil {
			badRequest(c, err)
			return
		}
		ctx := c.Request.Context()
		now := time.Now()
		code, err := store.NextStampedCode[models.Quotation](ctx, h.store, store.CodePrefixQuotation, now)
		if err != nil {
			internalError(c, err)
			return
		}
		status := input.Status
		if status == "" {
			status = models.QuotationStatusNew
		}
		subtotal, total := input.Totals()
		record := &models.Quotation{
			Code:        code,
			DateCreated: now,
			CustomerId:  input.CustomerId,
			VehicleId:   input.VehicleId,
			Subtotal:    subtotal,
			Tax:         input.Tax,
			Total:       total,
			Notes:       input.Notes,
			Status:      status,
		}
		items := make([]models.QuotationItem, 0, len(input.Items))
		for _, item := range input.Items {
			items = append(items, models.QuotationItem{
				Type:      item.Type,
				ItemId:    item.ItemId,
				Name:      item.Name,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Total:     item.Quantity.Mul(item.UnitPrice),
			})
		}
		if err := h.store.CreateQuotation(ctx, record, items); err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"quotation": record, "items": items})
	}
}

func (h *Handler) GetQuotation() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		record, err := store.Get[models.Quotation](ctx, h.store, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			internalError(c, err)
			return
		}
		var items []models.QuotationItem
		if err := h.store.DB().WithContext(ctx).Where("quotation_id = ?", id).Order("id").Find(&items).Error; err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"quotation": record, "items": items})
	}
}

// DeleteQuotation removes the quotation and its line items.
func (h *Handler) DeleteQuotation() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if err := h.store.DB().WithContext(ctx).Where("quotation_id = ?", id).Delete(&models.QuotationItem{}).Error; err != nil {
			internalError(c, err)
			return
		}
		if err := store.Delete[models.Quotation](ctx, h.store, id); err != nil {
			internalError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

/* Repair orders */

func (h *Handler) ListRepairOrders() gin.HandlerFunc  { return list[models.RepairOrder](h) }
func (h *Handler) UpdateRepairOrder() gin.HandlerFunc { return updateByID[models.RepairOrder](h) }

func (h *Handler) CreateRepairOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewRepairOrder
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
		if err := input.Validate(); err != nil {
			badRequest(c, err)
			return
		}
		ctx := c.Request.Context()
		now := time.Now()
		code, err := store.NextStampedCode[models.RepairOrder](ctx, h.store, store.CodePrefixRepairOrder, now)
		if err != nil {
			internalError(c, err)
			return
		}
		status := input.Status
		if status == "" {
			status = models.RepairOrderStatusNew
		}
		subtotal, total := input.Totals()
		record := &models.RepairOrder{
			Code:            code,
			DateCreated:     now,
			DateExpected:    input.DateExpected,
			QuotationId:     input.QuotationId,
			CustomerId:      input.CustomerId,
			VehicleId:       input.VehicleId,
			Odometer:        input.Odometer,
			CustomerRequest: input.CustomerRequest,
			TechnicianNotes: input.TechnicianNotes,
			TechnicianId:    input.TechnicianId,
			Subtotal:        subtotal,
			Tax:             input.Tax,
			Total:           total,
			Status:          status,
		}
		items := make([]models.RepairOrderItem, 0, len(input.Items))
		for _, item := range input.Items {
			items = append(items, models.RepairOrderItem{
				Type:      item.Type,
				ItemId:    item.ItemId,
				Name:      item.Name,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Total:     item.Quantity.Mul(item.UnitPrice),
			})
		}
		if err := h.store.CreateRepairOrder(ctx, record, items); err != nil {
			internalError(c, err)
			return
		}

		// Creating an order with a running odometer also advances the
		// vehicle's last known reading.
		if input.Odometer > 0 {
			if err := store.Update[models.Vehicle](ctx, h.store, input.VehicleId, map[string]any{
				"last_odometer": input.Odometer,
			}); err != nil {
				internalError(c, err)
				return
			}
		}
		c.JSON(http.StatusCreated, gin.H{"repair_order": record, "items": items})
	}
}

func (h *Handler) GetRepairOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		record, err := store.Get[models.RepairOrder](ctx, h.store, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			internalError(c, err)
			return
		}
		var items []models.RepairOrderItem
		if err := h.store.DB().WithContext(ctx).Where("repair_order_id = ?", id).Order("id").Find(&items).Error; err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"repair_order": record, "items": items})
	}
}

func (h *Handler) CompleteRepairOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		record, err := h.store.CompleteRepairOrder(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

/* Invoices */

func (h *Handler) ListInvoices() gin.HandlerFunc  { return list[models.Invoice](h) }
func (h *Handler) GetInvoice() gin.HandlerFunc    { return getByID[models.Invoice](h) }
func (h *Handler) UpdateInvoice() gin.HandlerFunc { return updateByID[models.Invoice](h) }

func (h *Handler) CreateInvoice() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewInvoice
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
		if err := input.Validate(); err != nil {
			badRequest(c, err)
			return
		}
		ctx := c.Request.Context()
		now := time.Now()
		code, err := store.NextStampedCode[models.Invoice](ctx, h.store, store.CodePrefixInvoice, now)
		if err != nil {
			internalError(c, err)
			return
		}
		total := input.TotalAmount()
		record := &models.Invoice{
			Code:          code,
			DateCreated:   now,
			RepairOrderId: input.RepairOrderId,
			CustomerId:    input.CustomerId,
			VehicleId:     input.VehicleId,
			Subtotal:      input.Subtotal,
			Discount:      input.Discount,
			Tax:           input.Tax,
			Total:         total,
			AmountPaid:    input.AmountPaid,
			PaymentMethod: input.PaymentMethod,
			Status:        models.PaymentStatus(total, input.AmountPaid),
		}
		if err := store.Add(ctx, h.store, record); err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusCreated, record)
	}
}
