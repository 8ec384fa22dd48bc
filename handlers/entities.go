package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/garage_backend/models"
	"github.com/mmdatafocus/garage_backend/store"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

/* Generic list/get/update/delete handlers shared by every entity type. */

func list[T any](h *Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := store.ToArray[T](c.Request.Context(), h.store)
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

func getByID[T any](h *Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		record, err := store.Get[T](c.Request.Context(), h.store, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

func updateByID[T any](h *Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var patch map[string]any
		if err := c.ShouldBindJSON(&patch); err != nil {
			badRequest(c, err)
			return
		}
		// id, code and timestamps are assigned by the server.
		delete(patch, "id")
		delete(patch, "code")
		delete(patch, "created_at")
		delete(patch, "updated_at")
		if len(patch) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty update"})
			return
		}
		if err := store.Update[T](c.Request.Context(), h.store, id, patch); err != nil {
			internalError(c, err)
			return
		}
		record, err := store.Get[T](c.Request.Context(), h.store, id)
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

func deleteByID[T any](h *Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := store.Delete[T](c.Request.Context(), h.store, id); err != nil {
			internalError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

/* Customers */

func (h *Handler) ListCustomers() gin.HandlerFunc  { return list[models.Customer](h) }
func (h *Handler) GetCustomer() gin.HandlerFunc    { return getByID[models.Customer](h) }
func (h *Handler) UpdateCustomer() gin.HandlerFunc { return updateByID[models.Customer](h) }
func (h *Handler) DeleteCustomer() gin.HandlerFunc { return deleteByID[models.Customer](h) }

func (h *Handler) CreateCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCustomer
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
		if err := input.Validate(); err != nil {
			badRequest(c, err)
			return
		}
		ctx := c.Request.Context()
		code, err := store.NextCode[models.Customer](ctx, h.store, store.CodePrefixCustomer)
		if err != nil {
			internalError(c, err)
			return
		}
		record := &models.Customer{
			Code:    code,
			Name:    input.Name,
			Phone:   input.Phone,
			Address: input.Address,
			Email:   input.Email,
			TaxCode: input.TaxCode,
			Notes:   input.Notes,
		}
		if err := store.Add(ctx, h.store, record); err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusCreated, record)
	}
}

/* Vehicles */

func (h *Handler) ListVehicles() gin.HandlerFunc  { return list[models.Vehicle](h) }
func (h *Handler) GetVehicle() gin.HandlerFunc    { return getByID[models.Vehicle](h) }
func (h *Handler) UpdateVehicle() gin.HandlerFunc { return updateByID[models.Vehicle](h) }
func (h *Handler) DeleteVehicle() gin.HandlerFunc { return deleteByID[models.Vehicle](h) }

func (h *Handler) CreateVehicle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewVehicle
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
		if err := input.Validate(); err != nil {
			badRequest(c, err)
			return
		}
		ctx := c.Request.Context()
		code, err := store.NextCode[models.Vehicle](ctx, h.store, store.CodePrefixVehicle)
		if err != nil {
			internalError(c, err)
			return
		}
		record := &models.Vehicle{
			Code:         code,
			CustomerId:   input.CustomerId,
			LicensePlate: input.LicensePlate,
			Brand:        input.Brand,
			Model:        input.Model,
			Vin:          input.Vin,
			Year:         input.Year,
			Color:        input.Color,
			LastOdometer: input.LastOdometer,
		}
		if err := store.Add(ctx, h.store, record); err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusCreated, record)
	}
}

/* Inventory categories */

func (h *Handler) ListCategories() gin.HandlerFunc { return list[models.InventoryCategory](h) }
func (h *Handler) GetCategory() gin.HandlerFunc    { return getByID[models.InventoryCategory](h) }
func (h *Handler) UpdateCategory() gin.HandlerFunc { return updateByID[models.InventoryCategory](h) }
func (h *Handler) DeleteCategory() gin.HandlerFunc { return deleteByID[models.InventoryCategory](h) }

func (h *Handler) CreateCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewInventoryCategory
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
		ctx := c.Request.Context()
		code, err := store.NextCode[models.InventoryCategory](ctx, h.store, store.CodePrefixCategory)
		if err != nil {
			internalError(c, err)
			return
		}
		record := &models.InventoryCategory{Code: code, Name: input.Name}
		if err := store.Add(ctx, h.store, record); err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusCreated, record)
	}
}

/* Inventory items */

func (h *Handler) ListItems() gin.HandlerFunc  { return list[models.InventoryItem](h) }
func (h *Handler) GetItem() gin.HandlerFunc    { return getByID[models.InventoryItem](h) }
func (h *Handler) UpdateItem() gin.HandlerFunc { return updateByID[models.InventoryItem](h) }
func (h *Handler) DeleteItem() gin.HandlerFunc { return deleteByID[models.InventoryItem](h) }

func (h *Handler) CreateItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewInventoryItem
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
		if err := input.Validate(); err != nil {
			badRequest(c, err)
			return
		}
		ctx := c.Request.Context()
		sku := input.Sku
		if sku == "" {
			generated, err := store.NextCode[models.InventoryItem](ctx, h.store, store.CodePrefixItem)
			if err != nil {
				internalError(c, err)
				return
			}
			sku = generated
		}
		record := &models.InventoryItem{
			Sku:          sku,
			Name:         input.Name,
			CategoryId:   input.CategoryId,
			Unit:         input.Unit,
			Quantity:     input.Quantity,
			CostPrice:    input.CostPrice,
			SellingPrice: input.SellingPrice,
			Supplier:     input.Supplier,
			Location:     input.Location,
			MinQuantity:  input.MinQuantity,
			Notes:        input.Notes,
		}
		if err := store.Add(ctx, h.store, record); err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusCreated, record)
	}
}

// AdjustItemStock applies a signed quantity delta (a stock entry or manual
// correction). The store clamps the result at zero.
func (h *Handler) AdjustItemStock() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input struct {
			Delta decimal.Decimal `json:"delta" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
		ctx := c.Request.Context()
		if err := h.store.AdjustStock(ctx, id, input.Delta); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
				return
			}
			internalError(c, err)
			return
		}
		record, err := store.Get[models.InventoryItem](ctx, h.store, id)
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

/* Services */

func (h *Handler) ListServices() gin.HandlerFunc  { return list[models.Service](h) }
func (h *Handler) GetService() gin.HandlerFunc    { return getByID[models.Service](h) }
func (h *Handler) UpdateService() gin.HandlerFunc { return updateByID[models.Service](h) }
func (h *Handler) DeleteService() gin.HandlerFunc { return deleteByID[models.Service](h) }

func (h *Handler) CreateService() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewService
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
		ctx := c.Request.Context()
		code, err := store.NextCode[models.Service](ctx, h.store, store.CodePrefixService)
		if err != nil {
			internalError(c, err)
			return
		}
		record := &models.Service{
			Code:          code,
			Name:          input.Name,
			Description:   input.Description,
			Price:         input.Price,
			EstimatedTime: input.EstimatedTime,
		}
		if err := store.Add(ctx, h.store, record); err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusCreated, record)
	}
}
