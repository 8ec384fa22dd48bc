package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/garage_backend/models"
	"github.com/mmdatafocus/garage_backend/syncer"
	"gorm.io/gorm"
)

const testConnectionTimeout = 15 * time.Second

func (h *Handler) SyncStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := h.settings.Get(c.Request.Context())
		if err != nil {
			internalError(c, err)
			return
		}
		backend, enabled, syncing := h.sync.Status()
		c.JSON(http.StatusOK, gin.H{
			"sync_enabled":   cfg.SyncEnabled,
			"backend":        backend,
			"driver_enabled": enabled,
			"syncing":        syncing,
			"last_sync_time": cfg.LastSyncTime,
		})
	}
}

func (h *Handler) SyncTest() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), testConnectionTimeout)
		defer cancel()
		if err := h.sync.TestConnection(ctx); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{
				"ok":    false,
				"class": string(syncer.ClassOf(err)),
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func (h *Handler) SyncPush() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.runSync(c, h.sync.Push)
	}
}

func (h *Handler) SyncPull() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.runSync(c, h.sync.Pull)
	}
}

// runSync executes a manual cycle and maps the sync sentinels onto HTTP
// statuses. Unlike scheduler-triggered cycles, manual ones surface their
// errors to the caller.
func (h *Handler) runSync(c *gin.Context, cycle func(context.Context, string) error) {
	err := cycle(c.Request.Context(), models.SyncTriggeredManual)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, syncer.ErrSyncInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "a sync cycle is already running"})
	case errors.Is(err, syncer.ErrSyncDisabled):
		c.JSON(http.StatusBadRequest, gin.H{"error": "sync is not enabled; select a backend in settings first"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{
			"class": string(syncer.ClassOf(err)),
			"error": err.Error(),
		})
	}
}

func (h *Handler) SyncRuns() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 50
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}
		var runs []models.SyncRun
		err := h.store.DB().WithContext(c.Request.Context()).
			Order("id desc").Limit(limit).Find(&runs).Error
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, runs)
	}
}

func (h *Handler) SyncRunDetail() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		var run models.SyncRun
		if err := h.store.DB().WithContext(ctx).First(&run, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			internalError(c, err)
			return
		}
		var tableErrors []models.SyncError
		if err := h.store.DB().WithContext(ctx).Where("sync_run_id = ?", id).Order("id").Find(&tableErrors).Error; err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"run": run, "errors": tableErrors})
	}
}
