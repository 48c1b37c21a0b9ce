package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rentledger/backend/internal/domain/identity"
	"github.com/rentledger/backend/internal/infrastructure/auth"
	"github.com/rentledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Auth context keys
const (
	JWTClaimsKey   = "jwt_claims"
	AccessScopeKey = "access_scope"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// AuthMiddlewareConfig holds configuration for the auth middleware
type AuthMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultAuthConfig returns default auth middleware configuration
func DefaultAuthConfig(jwtService *auth.JWTService) AuthMiddlewareConfig {
	return AuthMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/api/v1/health",
			"/api/v1/organizations",
		},
		SkipPathPrefixes: []string{
			"/swagger",
		},
	}
}

// AuthMiddleware creates JWT authentication middleware with defaults
func AuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return AuthMiddlewareWithConfig(DefaultAuthConfig(jwtService))
}

// AuthMiddlewareWithConfig validates the bearer token, resolves the
// caller's access scope from its claims and injects the scope into the
// request context. Everything downstream reads authorization from the
// scope, never from raw claims.
func AuthMiddlewareWithConfig(cfg AuthMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing token")
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}

		scope, err := claims.AccessScope()
		if err != nil {
			handleAuthError(c, cfg, err, "Claims do not resolve to a valid scope")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(AccessScopeKey, scope)

		ctx := identity.WithScope(c.Request.Context(), scope)
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithOrgID(ctx, log, claims.OrgID)
		ctx, _ = logger.WithUserID(ctx, log, claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("Authentication successful",
				zap.String("org_id", claims.OrgID),
				zap.String("user_id", claims.UserID),
				zap.String("role", string(claims.Role)),
			)
		}

		c.Next()
	}
}

// RequireCapability aborts with 403 unless the caller's scope carries
// the capability. It must run after the auth middleware.
func RequireCapability(capability identity.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := GetAccessScope(c)
		if !ok {
			abortWithAuthJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		if !scope.Has(capability) {
			abortWithAuthJSON(c, http.StatusForbidden, "FORBIDDEN", "Missing required permission")
			return
		}
		c.Next()
	}
}

func handleAuthError(c *gin.Context, cfg AuthMiddlewareConfig, err error, message string) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("Authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	errorCode := "UNAUTHORIZED"
	errorMessage := "Authentication required"

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		errorCode = "TOKEN_EXPIRED"
		errorMessage = "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		errorCode = "TOKEN_NOT_VALID"
		errorMessage = "Token is not yet valid"
	case errors.Is(err, auth.ErrInvalidToken):
		errorCode = "INVALID_TOKEN"
		errorMessage = "Invalid token"
	case errors.Is(err, auth.ErrMissingOrgID), errors.Is(err, auth.ErrMissingUserID), errors.Is(err, auth.ErrInvalidClaims):
		errorCode = "INVALID_CLAIMS"
		errorMessage = "Token claims are invalid"
	}

	abortWithAuthJSON(c, http.StatusUnauthorized, errorCode, errorMessage)
}

func abortWithAuthJSON(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetAccessScope retrieves the resolved access scope from gin.Context
func GetAccessScope(c *gin.Context) (identity.AccessScope, bool) {
	if value, exists := c.Get(AccessScopeKey); exists {
		if scope, ok := value.(identity.AccessScope); ok {
			return scope, true
		}
	}
	return identity.AccessScope{}, false
}
