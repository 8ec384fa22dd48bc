package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) BackupExport() gin.HandlerFunc {
	return func(c *gin.Context) {
		filename := fmt.Sprintf("garage-backup-%s.json", time.Now().Format("2006-01-02"))
		c.Header("Content-Type", "application/json")
		c.Header("Content-Disposition", "attachment; filename="+filename)
		if err := h.backup.Export(c.Request.Context(), c.Writer); err != nil {
			internalError(c, err)
		}
	}
}

func (h *Handler) BackupImport() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.backup.Import(c.Request.Context(), c.Request.Body); err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func (h *Handler) InventoryReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=inventory.xlsx")
		if err := h.backup.ExportInventoryExcel(c.Request.Context(), c.Writer); err != nil {
			internalError(c, err)
		}
	}
}
