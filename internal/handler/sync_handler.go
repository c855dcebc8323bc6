package handler

import (
	"net/http"

	"backend/internal/catalog"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	syncService service.SyncService
}

func NewSyncHandler(syncService service.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

func (h *SyncHandler) RegisterRoutes(router *gin.RouterGroup) {
	sync := router.Group("/api/permissions/sync")
	sync.Use(middleware.RequirePermission(string(catalog.SystemConfigManage)))
	{
		sync.POST("", h.TriggerSync)
		sync.GET("/status", h.GetSyncStatus)
	}
}

// TriggerSync handles POST /api/permissions/sync
// @Summary      Synchronize the permission catalog
// @Description  Diffs declared permission keys against the database mirror and applies inserts, reactivations and soft deletes in one transaction
// @Tags         sync
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.SyncReport}
// @Failure      500  {object}  response.Response
// @Router       /api/permissions/sync [post]
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	actor, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	report, err := h.syncService.Sync(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// GetSyncStatus handles GET /api/permissions/sync/status
// @Summary      Get catalog sync status
// @Description  Reports the drift between declared permission keys and the database mirror without changing anything
// @Tags         sync
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.SyncStatus}
// @Failure      500  {object}  response.Response
// @Router       /api/permissions/sync/status [get]
func (h *SyncHandler) GetSyncStatus(c *gin.Context) {
	status, err := h.syncService.Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to compute sync status"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, status))
}
