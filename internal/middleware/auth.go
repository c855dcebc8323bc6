package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/apperror"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// SetTokenCookie sets access_token as an HttpOnly cookie
func SetTokenCookie(c *gin.Context, accessToken string) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" || os.Getenv("RENDER") != "" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
}

// ClearTokenCookie removes the access_token cookie
func ClearTokenCookie(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" || os.Getenv("RENDER") != "" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
}

// accessService and userRepo are set via InitAccessMiddleware
var (
	accessService service.AccessService
	userRepo      repository.UserRepository
)

// InitAccessMiddleware wires the permission resolver and user directory into
// the middleware package
func InitAccessMiddleware(access service.AccessService, users repository.UserRepository) {
	accessService = access
	userRepo = users
}

// CurrentUserID returns the authenticated caller's id from the Gin context
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// Authenticate validates the JWT (cookie first, Bearer header fallback),
// resolves the subject to an existing active user and stores the id in the
// context. It does NOT check any permission.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticate(c); !ok {
			return
		}
		c.Next()
	}
}

// RequirePermission authenticates the caller and requires a single permission
// key. Missing or inactive permissions deny with 403.
func RequirePermission(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authenticate(c)
		if !ok {
			return
		}

		if err := accessService.Verify(c.Request.Context(), userID, key); err != nil {
			abortOnAccessError(c, err)
			return
		}

		c.Next()
	}
}

// RequireAnyPermission authenticates the caller and passes if the caller holds
// at least one of the given permission keys.
func RequireAnyPermission(keys ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authenticate(c)
		if !ok {
			return
		}

		if err := accessService.VerifyAny(c.Request.Context(), userID, keys); err != nil {
			abortOnAccessError(c, err)
			return
		}

		c.Next()
	}
}

func authenticate(c *gin.Context) (uuid.UUID, bool) {
	// Try cookie first, fallback to Authorization header
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return uuid.Nil, false
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
			return uuid.Nil, false
		}
		tokenString = parts[1]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return uuid.Nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
		return uuid.Nil, false
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token subject"))
		return uuid.Nil, false
	}

	// Token alone is not enough: the account must still exist and be active.
	active, err := userRepo.ExistsActive(c.Request.Context(), userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to verify user"))
		return uuid.Nil, false
	}
	if !active {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Account not found or deactivated"))
		return uuid.Nil, false
	}

	c.Set("userID", userID)
	return userID, true
}

func abortOnAccessError(c *gin.Context, err error) {
	if errors.Is(err, apperror.ErrForbidden) {
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, err.Error()))
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to verify permissions"))
}
