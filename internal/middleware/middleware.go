package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Logger logs every request with latency and caller identity.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.String("user-agent", c.Request.UserAgent()),
			zap.Duration("latency", latency),
			zap.String("request_id", c.GetString("request_id")),
		}

		if userID, exists := c.Get("user_id"); exists {
			fields = append(fields, zap.String("user_id", userID.(string)))
		}

		if status >= 500 {
			logger.Error("Server error", fields...)
		} else if status >= 400 {
			logger.Warn("Client error", fields...)
		} else {
			logger.Info("Request", fields...)
		}
	}
}

// CORS allows cross-origin requests from the admin frontend and forms.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID, X-API-Key")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestID tags every request, honoring an inbound X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Request.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// JWTClaims carries the admin user's identity and roles.
type JWTClaims struct {
	UserID string   `json:"uid"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// JWTAuth guards the admin API.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// fall back to query param for download links
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    40100,
				"message": "Authorization is required",
			})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})

		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    40102,
				"message": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
			c.Set("user_id", claims.UserID)
			c.Set("user_name", claims.Name)
			c.Set("user_email", claims.Email)
			c.Set("roles", claims.Roles)
			c.Set("claims", claims)
			c.Next()
		} else {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    40103,
				"message": "Invalid token claims",
			})
			c.Abort()
			return
		}
	}
}

// RequireRole guards admin-only routes. datahub_admin always passes.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, exists := c.Get("roles")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    40310,
				"message": "No roles found",
			})
			c.Abort()
			return
		}

		userRoles, ok := roles.([]string)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    40311,
				"message": "Invalid roles format",
			})
			c.Abort()
			return
		}

		for _, r := range userRoles {
			if r == role || r == "datahub_admin" {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"code":    40312,
			"message": "Role required: " + role,
		})
		c.Abort()
	}
}

// KeyAuthorizer resolves an API key against a dataset and permission. It is
// an interface here to keep the middleware free of service imports.
type KeyAuthorizer interface {
	Authorize(ctx context.Context, datasetID, rawKey, perm string) (keyID string, err error)
}

// KeyAuthorizerFunc adapts a function to KeyAuthorizer.
type KeyAuthorizerFunc func(ctx context.Context, datasetID, rawKey, perm string) (string, error)

func (f KeyAuthorizerFunc) Authorize(ctx context.Context, datasetID, rawKey, perm string) (string, error) {
	return f(ctx, datasetID, rawKey, perm)
}

// Sentinel errors the authorizer may return; anything else maps to 401.
var (
	ErrKeyForbidden   = errors.New("forbidden")
	ErrKeyRateLimited = errors.New("rate limited")
)

// APIKeyAuth guards the public record endpoints. The key comes from the
// X-API-Key header or a Bearer token.
func APIKeyAuth(auth KeyAuthorizer, perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawKey := c.GetHeader("X-API-Key")
		if rawKey == "" {
			authHeader := c.GetHeader("Authorization")
			if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
				rawKey = parts[1]
			}
		}
		if rawKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "API key is required"})
			c.Abort()
			return
		}

		keyID, err := auth.Authorize(c.Request.Context(), c.Param("datasetId"), rawKey, perm)
		if err != nil {
			switch {
			case errors.Is(err, ErrKeyForbidden):
				c.JSON(http.StatusForbidden, gin.H{"error": "API key does not permit this operation"})
			case errors.Is(err, ErrKeyRateLimited):
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			default:
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			}
			c.Abort()
			return
		}

		c.Set("api_key_id", keyID)
		c.Next()
	}
}
