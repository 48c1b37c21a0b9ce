package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/rentledger/backend/internal/application/identity"
	"github.com/rentledger/backend/internal/domain/identity"
	"github.com/rentledger/backend/internal/infrastructure/auth"
)

// OrganizationHandler handles organization provisioning and settings
type OrganizationHandler struct {
	BaseHandler
	orgService *appidentity.OrganizationService
	jwtService *auth.JWTService
}

// NewOrganizationHandler creates a new OrganizationHandler
func NewOrganizationHandler(orgService *appidentity.OrganizationService, jwtService *auth.JWTService) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: orgService,
		jwtService: jwtService,
	}
}

// CreateOrganizationRequest represents an organization signup request
type CreateOrganizationRequest struct {
	Code string `json:"code" binding:"required,min=2,max=20" example:"ACME"`
	Name string `json:"name" binding:"required,max=200" example:"Acme Rentals Ltd"`
}

// OrganizationResponse represents an organization in responses
type OrganizationResponse struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	ContactName  string `json:"contact_name,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	Currency     string `json:"currency"`
	Timezone     string `json:"timezone"`
	CreatedAt    string `json:"created_at"`
}

// SignupResponse bundles the new organization with its first admin token
type SignupResponse struct {
	Organization OrganizationResponse `json:"organization"`
	AdminUserID  string               `json:"admin_user_id"`
	Token        string               `json:"token"`
	TokenType    string               `json:"token_type"`
	ExpiresAt    string               `json:"expires_at"`
}

func toOrganizationResponse(org *identity.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:           org.ID.String(),
		Code:         org.Code,
		Name:         org.Name,
		Status:       string(org.Status),
		ContactName:  org.ContactName,
		ContactPhone: org.ContactPhone,
		ContactEmail: org.ContactEmail,
		Currency:     org.Currency,
		Timezone:     org.Timezone,
		CreatedAt:    org.CreatedAt.Format(time.RFC3339),
	}
}

// CreateOrganization godoc
// @ID           createOrganization
// @Summary      Provision a new organization
// @Description  Creates an organization and issues its first admin token
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Param        request body CreateOrganizationRequest true "Organization details"
// @Success      201 {object} APIResponse[SignupResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /organizations [post]
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	org, err := h.orgService.CreateOrganization(c.Request.Context(), req.Code, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	adminUserID := uuid.New()
	token, err := h.jwtService.GenerateToken(auth.GenerateTokenInput{
		OrgID:    org.ID,
		UserID:   adminUserID,
		Username: "admin@" + org.Code,
		Role:     identity.RoleAdmin,
	})
	if err != nil {
		h.InternalError(c, "Failed to issue admin token")
		return
	}

	h.Created(c, SignupResponse{
		Organization: toOrganizationResponse(org),
		AdminUserID:  adminUserID.String(),
		Token:        token.Token,
		TokenType:    token.TokenType,
		ExpiresAt:    token.ExpiresAt.Format(time.RFC3339),
	})
}

// GetCurrentOrganization godoc
// @ID           getCurrentOrganization
// @Summary      Get the caller's organization
// @Tags         organizations
// @Produce      json
// @Success      200 {object} APIResponse[OrganizationResponse]
// @Failure      401 {object} ErrorResponse
// @Router       /organizations/current [get]
func (h *OrganizationHandler) GetCurrentOrganization(c *gin.Context) {
	org, err := h.orgService.GetCurrentOrganization(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrganizationResponse(org))
}

// UpdateContactRequest represents a contact update request
type UpdateContactRequest struct {
	ContactName  string `json:"contact_name" binding:"required,max=100" example:"John Kamau"`
	ContactPhone string `json:"contact_phone" binding:"omitempty,max=20" example:"+254700000000"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email" example:"ops@acme.example"`
}

// UpdateContact godoc
// @ID           updateOrganizationContact
// @Summary      Update organization contact details
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Param        request body UpdateContactRequest true "Contact details"
// @Success      200 {object} APIResponse[OrganizationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /organizations/current/contact [put]
func (h *OrganizationHandler) UpdateContact(c *gin.Context) {
	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	org, err := h.orgService.UpdateContact(c.Request.Context(), req.ContactName, req.ContactPhone, req.ContactEmail)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrganizationResponse(org))
}
