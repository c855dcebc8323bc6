package handler

import (
	"net/http"

	"backend/internal/catalog"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserPermissionRequest struct {
	UserID       string `json:"user_id" binding:"required,uuid"`
	PermissionID string `json:"permission_id" binding:"required,uuid"`
}

type BulkGrantUserPermissionsRequest struct {
	UserIDs       []string `json:"user_ids" binding:"required,min=1"`
	PermissionIDs []string `json:"permission_ids" binding:"required,min=1"`
}

type UserPermissionHandler struct {
	upService service.UserPermissionService
}

func NewUserPermissionHandler(upService service.UserPermissionService) *UserPermissionHandler {
	return &UserPermissionHandler{upService: upService}
}

func (h *UserPermissionHandler) RegisterRoutes(router *gin.RouterGroup) {
	up := router.Group("/api/user-permissions")
	{
		up.POST("/grant", middleware.RequirePermission(string(catalog.UserPermissionGrant)), h.Grant)
		up.POST("/bulk-grant", middleware.RequirePermission(string(catalog.UserPermissionGrant)), h.BulkGrant)
		up.POST("/revoke", middleware.RequirePermission(string(catalog.UserPermissionRevoke)), h.Revoke)
		up.DELETE("", middleware.RequirePermission(string(catalog.UserPermissionRevoke)), h.Remove)
		up.GET("/user/:id", middleware.RequirePermission(string(catalog.UserPermissionView)), h.ListForUser)
		up.GET("/permission/:id", middleware.RequirePermission(string(catalog.UserPermissionView)), h.ListUsersForPermission)
	}
}

// Grant handles POST /api/user-permissions/grant
// @Summary      Grant a permission directly to a user
// @Description  Creates or flips the user's override to granted, on top of whatever their role provides. Granting an already granted override is a conflict.
// @Tags         user-permissions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      UserPermissionRequest  true  "Override Payload"
// @Success      200      {object}  response.Response{data=service.UserPermissionResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/user-permissions/grant [post]
func (h *UserPermissionHandler) Grant(c *gin.Context) {
	var req UserPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actor, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	up, err := h.upService.GrantExtra(c.Request.Context(), req.UserID, req.PermissionID, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, up))
}

// Revoke handles POST /api/user-permissions/revoke
// @Summary      Revoke a role-derived permission from a user
// @Description  Creates or flips the user's override to revoked, masking the role grant. Revoking an already revoked override is a conflict.
// @Tags         user-permissions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      UserPermissionRequest  true  "Override Payload"
// @Success      200      {object}  response.Response{data=service.UserPermissionResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/user-permissions/revoke [post]
func (h *UserPermissionHandler) Revoke(c *gin.Context) {
	var req UserPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actor, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	up, err := h.upService.RevokeFromRole(c.Request.Context(), req.UserID, req.PermissionID, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, up))
}

// Remove handles DELETE /api/user-permissions
// @Summary      Remove a user's override entirely
// @Description  Deletes the override row so the role decides again. Removing a missing override reports removed=false.
// @Tags         user-permissions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      UserPermissionRequest  true  "Override Payload"
// @Success      200      {object}  response.Response{data=object}
// @Failure      400      {object}  response.Response
// @Router       /api/user-permissions [delete]
func (h *UserPermissionHandler) Remove(c *gin.Context) {
	var req UserPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	removed, err := h.upService.Remove(c.Request.Context(), req.UserID, req.PermissionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"removed": removed}))
}

// BulkGrant handles POST /api/user-permissions/bulk-grant
// @Summary      Grant permissions to users in bulk
// @Description  Grants the cartesian product of user_ids x permission_ids. Already granted overrides are counted as skipped.
// @Tags         user-permissions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      BulkGrantUserPermissionsRequest  true  "Bulk Grant Payload"
// @Success      200      {object}  response.Response{data=service.BulkReport}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/user-permissions/bulk-grant [post]
func (h *UserPermissionHandler) BulkGrant(c *gin.Context) {
	var req BulkGrantUserPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actor, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	report, err := h.upService.BulkGrant(c.Request.Context(), req.UserIDs, req.PermissionIDs, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// ListForUser handles GET /api/user-permissions/user/:id
// @Summary      List a user's overrides
// @Tags         user-permissions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=[]service.UserPermissionResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/user-permissions/user/{id} [get]
func (h *UserPermissionHandler) ListForUser(c *gin.Context) {
	ups, err := h.upService.ListForUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ups))
}

// ListUsersForPermission handles GET /api/user-permissions/permission/:id
// @Summary      List users holding an override on a permission
// @Tags         user-permissions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Permission ID"
// @Success      200  {object}  response.Response{data=[]service.UserPermissionResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/user-permissions/permission/{id} [get]
func (h *UserPermissionHandler) ListUsersForPermission(c *gin.Context) {
	ups, err := h.upService.ListUsersForPermission(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ups))
}
