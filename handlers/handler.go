// Package handlers exposes the local application API over HTTP. Every
// handler method returns a gin.HandlerFunc so routes read as a flat table
// in Register.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/garage_backend/backup"
	"github.com/mmdatafocus/garage_backend/config"
	"github.com/mmdatafocus/garage_backend/settings"
	"github.com/mmdatafocus/garage_backend/store"
	"github.com/mmdatafocus/garage_backend/syncer"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	store    *store.Store
	settings *settings.Store
	sync     *syncer.Manager
	backup   *backup.Manager
	logger   *logrus.Logger
}

func New(st *store.Store, cfg *settings.Store, sync *syncer.Manager, bk *backup.Manager) *Handler {
	return &Handler{
		store:    st,
		settings: cfg,
		sync:     sync,
		backup:   bk,
		logger:   config.GetLogger(),
	}
}

func (h *Handler) Register(r *gin.Engine) {
	api := r.Group("/api")

	api.GET("/customers", h.ListCustomers())
	api.POST("/customers", h.CreateCustomer())
	api.GET("/customers/:id", h.GetCustomer())
	api.PUT("/customers/:id", h.UpdateCustomer())
	api.DELETE("/customers/:id", h.DeleteCustomer())

	api.GET("/vehicles", h.ListVehicles())
	api.POST("/vehicles", h.CreateVehicle())
	api.GET("/vehicles/:id", h.GetVehicle())
	api.PUT("/vehicles/:id", h.UpdateVehicle())
	api.DELETE("/vehicles/:id", h.DeleteVehicle())

	api.GET("/categories", h.ListCategories())
	api.POST("/categories", h.CreateCategory())
	api.GET("/categories/:id", h.GetCategory())
	api.PUT("/categories/:id", h.UpdateCategory())
	api.DELETE("/categories/:id", h.DeleteCategory())

	api.GET("/items", h.ListItems())
	api.POST("/items", h.CreateItem())
	api.GET("/items/:id", h.GetItem())
	api.PUT("/items/:id", h.UpdateItem())
	api.DELETE("/items/:id", h.DeleteItem())
	api.POST("/items/:id/adjust", h.AdjustItemStock())

	api.GET("/services", h.ListServices())
	api.POST("/services", h.CreateService())
	api.GET("/services/:id", h.GetService())
	api.PUT("/services/:id", h.UpdateService())
	api.DELETE("/services/:id", h.DeleteService())

	api.GET("/quotations", h.ListQuotations())
	api.POST("/quotations", h.CreateQuotation())
	api.GET("/quotations/:id", h.GetQuotation())
	api.PUT("/quotations/:id", h.UpdateQuotation())
	api.DELETE("/quotations/:id", h.DeleteQuotation())

	api.GET("/repair-orders", h.ListRepairOrders())
	api.POST("/repair-orders", h.CreateRepairOrder())
	api.GET("/repair-orders/:id", h.GetRepairOrder())
	api.PUT("/repair-orders/:id", h.UpdateRepairOrder())
	api.POST("/repair-orders/:id/complete", h.CompleteRepairOrder())

	api.GET("/invoices", h.ListInvoices())
	api.POST("/invoices", h.CreateInvoice())
	api.GET("/invoices/:id", h.GetInvoice())
	api.PUT("/invoices/:id", h.UpdateInvoice())

	api.GET("/settings", h.GetSettings())
	api.PUT("/settings", h.UpdateSettings())

	api.GET("/sync/status", h.SyncStatus())
	api.POST("/sync/test", h.SyncTest())
	api.POST("/sync/push", h.SyncPush())
	api.POST("/sync/pull", h.SyncPull())
	api.GET("/sync/runs", h.SyncRuns())
	api.GET("/sync/runs/:id", h.SyncRunDetail())

	api.GET("/backup/export", h.BackupExport())
	api.POST("/backup/import", h.BackupImport())
	api.GET("/reports/inventory.xlsx", h.InventoryReport())
}

func badRequest(c *gin.Context, err error) {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		// report the first missing/invalid field instead of the full chain
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request",
			"field": fieldErrors[0].Field(),
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func internalError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
