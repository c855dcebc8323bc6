package handler

import (
	"net/http"

	"backend/internal/catalog"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AssignRolePermissionRequest struct {
	RoleID       string `json:"role_id" binding:"required,uuid"`
	PermissionID string `json:"permission_id" binding:"required,uuid"`
}

type BulkAssignRolePermissionsRequest struct {
	RoleIDs       []string `json:"role_ids" binding:"required,min=1"`
	PermissionIDs []string `json:"permission_ids" binding:"required,min=1"`
}

type RolePermissionHandler struct {
	rpService service.RolePermissionService
}

func NewRolePermissionHandler(rpService service.RolePermissionService) *RolePermissionHandler {
	return &RolePermissionHandler{rpService: rpService}
}

func (h *RolePermissionHandler) RegisterRoutes(router *gin.RouterGroup) {
	rp := router.Group("/api/role-permissions")
	{
		rp.POST("", middleware.RequirePermission(string(catalog.RoleAssign)), h.Assign)
		rp.POST("/bulk", middleware.RequirePermission(string(catalog.RoleAssign)), h.BulkAssign)
		rp.DELETE("", middleware.RequirePermission(string(catalog.RoleRevoke)), h.Remove)
		rp.DELETE("/:id", middleware.RequirePermission(string(catalog.RoleRevoke)), h.RemoveByID)
		rp.GET("/role/:id", middleware.RequirePermission(string(catalog.RoleView)), h.ListForRole)
		rp.GET("/permission/:id", middleware.RequirePermission(string(catalog.PermissionView)), h.ListRolesForPermission)
	}
}

// Assign handles POST /api/role-permissions
// @Summary      Assign a permission to a role
// @Description  Creates the role-permission association. Re-assigning an existing pair refreshes its audit fields instead of failing.
// @Tags         role-permissions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      AssignRolePermissionRequest  true  "Assignment Payload"
// @Success      200      {object}  response.Response{data=service.RolePermissionResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/role-permissions [post]
func (h *RolePermissionHandler) Assign(c *gin.Context) {
	var req AssignRolePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actor, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	rp, err := h.rpService.Assign(c.Request.Context(), req.RoleID, req.PermissionID, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rp))
}

// BulkAssign handles POST /api/role-permissions/bulk
// @Summary      Assign permissions to roles in bulk
// @Description  Assigns the cartesian product of role_ids x permission_ids. Existing pairs are counted as skipped, not errors.
// @Tags         role-permissions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      BulkAssignRolePermissionsRequest  true  "Bulk Assignment Payload"
// @Success      200      {object}  response.Response{data=service.BulkReport}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/role-permissions/bulk [post]
func (h *RolePermissionHandler) BulkAssign(c *gin.Context) {
	var req BulkAssignRolePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actor, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	report, err := h.rpService.BulkAssign(c.Request.Context(), req.RoleIDs, req.PermissionIDs, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// Remove handles DELETE /api/role-permissions
// @Summary      Remove a permission from a role
// @Description  Deletes the association by role and permission id. Removing a pair that does not exist reports removed=false.
// @Tags         role-permissions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      AssignRolePermissionRequest  true  "Removal Payload"
// @Success      200      {object}  response.Response{data=object}
// @Failure      400      {object}  response.Response
// @Router       /api/role-permissions [delete]
func (h *RolePermissionHandler) Remove(c *gin.Context) {
	var req AssignRolePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	removed, err := h.rpService.Remove(c.Request.Context(), req.RoleID, req.PermissionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"removed": removed}))
}

// RemoveByID handles DELETE /api/role-permissions/:id
// @Summary      Remove an assignment by ID
// @Tags         role-permissions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Assignment ID"
// @Success      200  {object}  response.Response{data=object}
// @Failure      400  {object}  response.Response
// @Router       /api/role-permissions/{id} [delete]
func (h *RolePermissionHandler) RemoveByID(c *gin.Context) {
	removed, err := h.rpService.RemoveByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"removed": removed}))
}

// ListForRole handles GET /api/role-permissions/role/:id
// @Summary      List a role's permission assignments
// @Tags         role-permissions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Role ID"
// @Success      200  {object}  response.Response{data=[]service.RolePermissionResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/role-permissions/role/{id} [get]
func (h *RolePermissionHandler) ListForRole(c *gin.Context) {
	rps, err := h.rpService.ListForRole(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rps))
}

// ListRolesForPermission handles GET /api/role-permissions/permission/:id
// @Summary      List roles holding a permission
// @Tags         role-permissions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Permission ID"
// @Success      200  {object}  response.Response{data=[]service.RolePermissionResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/role-permissions/permission/{id} [get]
func (h *RolePermissionHandler) ListRolesForPermission(c *gin.Context) {
	rps, err := h.rpService.ListRolesForPermission(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rps))
}
