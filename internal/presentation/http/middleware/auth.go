package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	infraRepo "github.com/sangkips/tailorbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tailorbook-api/internal/presentation/http/dto/response"
	"github.com/sangkips/tailorbook-api/pkg/apperror"
	"github.com/sangkips/tailorbook-api/pkg/utils"
)

// Gin context keys set by AuthMiddleware
const (
	ContextUserID    = "user_id"
	ContextShopID    = "shop_id"
	ContextUserRoles = "user_roles"
)

// AuthMiddleware validates the bearer token and scopes the request to the
// token's shop.
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}
		if claims.ShopID == uuid.Nil {
			response.Error(c, apperror.ErrMissingShop)
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextShopID, claims.ShopID)
		c.Set(ContextUserRoles, claims.Roles)

		// Repositories read the shop from the request context
		ctx := infraRepo.WithShop(c.Request.Context(), claims.ShopID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole creates a middleware that requires one of the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRoles, exists := c.Get(ContextUserRoles)
		if !exists {
			response.Forbidden(c, "Access denied")
			c.Abort()
			return
		}

		userRolesList, ok := userRoles.([]string)
		if !ok {
			response.Forbidden(c, "Access denied")
			c.Abort()
			return
		}

		hasRole := false
		for _, userRole := range userRolesList {
			for _, requiredRole := range roles {
				if userRole == requiredRole {
					hasRole = true
					break
				}
			}
			if hasRole {
				break
			}
		}

		if !hasRole {
			response.Forbidden(c, "Insufficient role privileges")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetShopID retrieves the shop ID from gin context
func GetShopID(c *gin.Context) uuid.UUID {
	shopID, exists := c.Get(ContextShopID)
	if !exists {
		return uuid.Nil
	}
	id, ok := shopID.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

// GetUserID retrieves the user ID from gin context
func GetUserID(c *gin.Context) uuid.UUID {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil
	}
	id, ok := userID.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
