package handler

import (
	"net/http"

	"backend/internal/catalog"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleService service.RoleService
}

func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

func (h *RoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	roles := router.Group("/api/roles")
	{
		roles.GET("", middleware.RequirePermission(string(catalog.RoleView)), h.ListRoles)
		roles.GET("/:id", middleware.RequirePermission(string(catalog.RoleView)), h.GetRole)
		roles.POST("", middleware.RequirePermission(string(catalog.RoleCreate)), h.CreateRole)
		roles.PUT("/:id", middleware.RequirePermission(string(catalog.RoleUpdate)), h.UpdateRole)
		roles.DELETE("/:id", middleware.RequirePermission(string(catalog.RoleDelete)), h.DeleteRole)
	}
}

// ListRoles handles GET /api/roles
// @Summary      List roles
// @Description  Retrieves all roles with their active permission keys
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.RoleResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.roleService.ListRoles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch roles"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, roles))
}

// GetRole handles GET /api/roles/:id
// @Summary      Get role by ID
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Role ID"
// @Success      200  {object}  response.Response{data=service.RoleResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/roles/{id} [get]
func (h *RoleHandler) GetRole(c *gin.Context) {
	role, err := h.roleService.GetRole(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, role))
}

// CreateRole handles POST /api/roles
// @Summary      Create a role
// @Tags         roles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateRoleRequest  true  "Create Role Payload"
// @Success      201      {object}  response.Response{data=service.RoleResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/roles [post]
func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req service.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actor, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	role, err := h.roleService.CreateRole(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, role))
}

// UpdateRole handles PUT /api/roles/:id
// @Summary      Update a role
// @Tags         roles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Role ID"
// @Param        payload  body      service.UpdateRoleRequest  true  "Update Role Payload"
// @Success      200      {object}  response.Response{data=service.RoleResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/roles/{id} [put]
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	var req service.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actor, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	role, err := h.roleService.UpdateRole(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, role))
}

// DeleteRole handles DELETE /api/roles/:id
// @Summary      Delete a role
// @Description  Deletes a non-system role with no users assigned
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Role ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/roles/{id} [delete]
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	actor, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	if err := h.roleService.DeleteRole(c.Request.Context(), c.Param("id"), actor); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Role deleted successfully"))
}
