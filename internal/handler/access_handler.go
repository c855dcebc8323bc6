package handler

import (
	"net/http"

	"backend/internal/catalog"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccessHandler exposes the authorization gate itself: effective permission
// breakdowns for administrators and self-service checks for any caller.
type AccessHandler struct {
	accessService service.AccessService
}

func NewAccessHandler(accessService service.AccessService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

func (h *AccessHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/users/:id/effective-permissions",
		middleware.RequirePermission(string(catalog.UserPermissionView)), h.GetEffectivePermissions)

	access := router.Group("/api/access")
	access.Use(middleware.Authenticate())
	{
		access.GET("/check", h.Check)
		access.GET("/me", h.GetOwnPermissions)
	}
}

// GetEffectivePermissions handles GET /api/users/:id/effective-permissions
// @Summary      Get a user's effective permissions
// @Description  Returns the full breakdown: role permissions, extra grants, revocations and the resulting effective set
// @Tags         access
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=service.EffectivePermissions}
// @Failure      400  {object}  response.Response
// @Router       /api/users/{id}/effective-permissions [get]
func (h *AccessHandler) GetEffectivePermissions(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid user id"))
		return
	}

	eff, err := h.accessService.EffectivePermissions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, eff))
}

// Check handles GET /api/access/check
// @Summary      Check one of the caller's permissions
// @Description  Resolves a single permission key for the authenticated caller. Unknown or inactive keys resolve to allowed=false, never an error.
// @Tags         access
// @Security     BearerAuth
// @Produce      json
// @Param        key  query     string  true  "Permission key, e.g. leave.approve"
// @Success      200  {object}  response.Response{data=object}
// @Failure      400  {object}  response.Response
// @Router       /api/access/check [get]
func (h *AccessHandler) Check(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Query parameter 'key' is required"))
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	allowed, err := h.accessService.HasPermission(c.Request.Context(), userID, key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to resolve permission"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"key":     key,
		"allowed": allowed,
	}))
}

// GetOwnPermissions handles GET /api/access/me
// @Summary      Get the caller's effective permissions
// @Tags         access
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.EffectivePermissions}
// @Failure      401  {object}  response.Response
// @Router       /api/access/me [get]
func (h *AccessHandler) GetOwnPermissions(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	eff, err := h.accessService.EffectivePermissions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, eff))
}
