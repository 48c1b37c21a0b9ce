package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/identity"
	"github.com/rentledger/backend/internal/infrastructure/auth"
	"github.com/rentledger/backend/internal/interfaces/http/middleware"
)

// AuthHandler issues access tokens for users of an organization.
// Only an org admin can mint tokens; capabilities are resolved from
// the role on every request, so a role change takes effect as soon as
// a new token is issued.
type AuthHandler struct {
	BaseHandler
	jwtService *auth.JWTService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{jwtService: jwtService}
}

// IssueTokenRequest represents a token minting request
type IssueTokenRequest struct {
	UserID      string   `json:"user_id" binding:"required,uuid"`
	Username    string   `json:"username" binding:"required,max=100" example:"mary.manager"`
	Role        string   `json:"role" binding:"required,oneof=ADMIN PROPERTY_MANAGER TENANT"`
	TenantID    string   `json:"tenant_id" binding:"omitempty,uuid"`
	PropertyIDs []string `json:"property_ids" binding:"omitempty,dive,uuid"`
}

// TokenResponse represents an issued token
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type" example:"Bearer"`
	ExpiresAt string `json:"expires_at"`
}

// IssueToken godoc
// @ID           issueToken
// @Summary      Issue an access token for an org user
// @Description  Mints a token scoped to the caller's organization. TENANT role requires tenant_id.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body IssueTokenRequest true "Token subject"
// @Success      201 {object} APIResponse[TokenResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /auth/tokens [post]
func (h *AuthHandler) IssueToken(c *gin.Context) {
	scope, ok := middleware.GetAccessScope(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if !scope.IsAdmin() {
		h.Forbidden(c, "Only organization admins can issue tokens")
		return
	}

	var req IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.BadRequest(c, "Invalid user_id")
		return
	}

	input := auth.GenerateTokenInput{
		OrgID:    scope.OrgID,
		UserID:   userID,
		Username: req.Username,
		Role:     identity.Role(req.Role),
	}

	if req.TenantID != "" {
		tenantID, err := uuid.Parse(req.TenantID)
		if err != nil {
			h.BadRequest(c, "Invalid tenant_id")
			return
		}
		input.TenantID = &tenantID
	}
	if input.Role == identity.RoleTenant && input.TenantID == nil {
		h.BadRequest(c, "TENANT role requires tenant_id")
		return
	}

	for _, raw := range req.PropertyIDs {
		propertyID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid property_ids entry: "+raw)
			return
		}
		input.PropertyIDs = append(input.PropertyIDs, propertyID)
	}

	token, err := h.jwtService.GenerateToken(input)
	if err != nil {
		h.InternalError(c, "Failed to issue token")
		return
	}

	h.Created(c, TokenResponse{
		Token:     token.Token,
		TokenType: token.TokenType,
		ExpiresAt: token.ExpiresAt.Format(time.RFC3339),
	})
}
