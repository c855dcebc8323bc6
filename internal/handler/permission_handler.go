package handler

import (
	"net/http"

	"backend/internal/catalog"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PermissionHandler struct {
	permissionService service.PermissionService
}

func NewPermissionHandler(permissionService service.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

// RegisterRoutes binds the read-only permission catalog endpoints. There are
// deliberately no write routes here; the mirror is maintained by the sync.
func (h *PermissionHandler) RegisterRoutes(router *gin.RouterGroup) {
	perms := router.Group("/api/permissions")
	perms.Use(middleware.RequirePermission(string(catalog.PermissionView)))
	{
		perms.GET("", h.ListPermissions)
		perms.GET("/grouped", h.GetGroupedPermissions)
		perms.GET("/key/:key", h.GetPermissionByKey)
		perms.GET("/:id", h.GetPermission)
	}
}

// ListPermissions handles GET /api/permissions
// @Summary      List permissions
// @Description  Retrieves the permission catalog, optionally filtered by a search term
// @Tags         permissions
// @Security     BearerAuth
// @Produce      json
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Param        search       query     string  false  "Match against key or description"
// @Param        active_only  query     bool    false  "Exclude soft-deleted permissions"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /api/permissions [get]
func (h *PermissionHandler) ListPermissions(c *gin.Context) {
	params := pagination.Parse(c)
	activeOnly := c.DefaultQuery("active_only", "false") == "true"
	search := c.Query("search")

	var (
		perms []service.PermissionResponse
		total int64
		err   error
	)
	if search != "" {
		perms, total, err = h.permissionService.Search(c.Request.Context(), search, activeOnly, params.Page, params.Limit)
	} else {
		perms, total, err = h.permissionService.List(c.Request.Context(), params.Page, params.Limit, activeOnly)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch permissions"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"permissions": perms,
		"total":       total,
		"page":        params.Page,
		"limit":       params.Limit,
	}))
}

// GetGroupedPermissions handles GET /api/permissions/grouped
// @Summary      List permissions grouped by module
// @Description  Buckets the catalog by module prefix for permission matrix UIs
// @Tags         permissions
// @Security     BearerAuth
// @Produce      json
// @Param        active_only  query     bool  false  "Exclude soft-deleted permissions"
// @Success      200  {object}  response.Response{data=[]service.PermissionGroupResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/permissions/grouped [get]
func (h *PermissionHandler) GetGroupedPermissions(c *gin.Context) {
	activeOnly := c.DefaultQuery("active_only", "true") == "true"

	groups, err := h.permissionService.GroupedByModule(c.Request.Context(), activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch permissions"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, groups))
}

// GetPermission handles GET /api/permissions/:id
// @Summary      Get permission by ID
// @Tags         permissions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Permission ID"
// @Success      200  {object}  response.Response{data=service.PermissionResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/permissions/{id} [get]
func (h *PermissionHandler) GetPermission(c *gin.Context) {
	perm, err := h.permissionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, perm))
}

// GetPermissionByKey handles GET /api/permissions/key/:key
// @Summary      Get permission by key
// @Tags         permissions
// @Security     BearerAuth
// @Produce      json
// @Param        key  path      string  true  "Permission key, e.g. user.create"
// @Success      200  {object}  response.Response{data=service.PermissionResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/permissions/key/{key} [get]
func (h *PermissionHandler) GetPermissionByKey(c *gin.Context) {
	perm, err := h.permissionService.GetByKey(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, perm))
}
