package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/garage_backend/config"
	"github.com/mmdatafocus/garage_backend/models"
)

func (h *Handler) GetSettings() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := h.settings.Get(c.Request.Context())
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, cfg)
	}
}

// UpdateSettings merges the patch and, when it touches any sync field,
// rebuilds the sync stack so the new backend or credentials take effect
// without a restart.
func (h *Handler) UpdateSettings() gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch models.SettingsPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			badRequest(c, err)
			return
		}
		// The synchronizer owns this field.
		patch.LastSyncTime = nil

		ctx := c.Request.Context()
		cfg, err := h.settings.Update(ctx, &patch)
		if err != nil {
			internalError(c, err)
			return
		}

		if patchTouchesSync(&patch) {
			if err := h.sync.Reload(ctx); err != nil {
				config.LogError(h.logger, "handlers", "UpdateSettings", "settings saved but sync reload failed", nil, err)
			}
		}
		c.JSON(http.StatusOK, cfg)
	}
}

func patchTouchesSync(p *models.SettingsPatch) bool {
	return p.SyncEnabled != nil || p.SyncBackend != nil ||
		p.FirestoreProjectId != nil || p.FirestoreAPIKey != nil ||
		p.SupabaseURL != nil || p.SupabaseAPIKey != nil ||
		p.SheetId != nil || p.SheetAPIKey != nil || p.SheetWriteURL != nil ||
		p.MongoDataURL != nil || p.MongoAPIKey != nil ||
		p.MongoDataSource != nil || p.MongoDatabase != nil
}
