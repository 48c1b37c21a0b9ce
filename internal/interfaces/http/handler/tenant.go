package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appleasing "github.com/rentledger/backend/internal/application/leasing"
	"github.com/rentledger/backend/internal/domain/leasing"
	"github.com/shopspring/decimal"
)

// TenantHandler handles tenancy lifecycle endpoints
type TenantHandler struct {
	BaseHandler
	tenantService *appleasing.TenantService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService *appleasing.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// AssignTenantRequest represents a tenancy creation request
type AssignTenantRequest struct {
	UnitID      string `json:"unit_id" binding:"required,uuid"`
	FullName    string `json:"full_name" binding:"required,max=200" example:"Jane Wanjiku"`
	Phone       string `json:"phone" binding:"omitempty,max=20" example:"+254700000001"`
	MonthlyRent string `json:"monthly_rent" binding:"required" example:"25000.00"`
	RentDueDay  int    `json:"rent_due_day" binding:"required,min=1,max=31" example:"5"`
	LeaseStart  string `json:"lease_start" binding:"required" example:"2024-01-01"`
}

// TenantResponse represents a tenant in responses
type TenantResponse struct {
	ID          string  `json:"id"`
	UnitID      string  `json:"unit_id"`
	PropertyID  string  `json:"property_id"`
	FullName    string  `json:"full_name"`
	Phone       string  `json:"phone,omitempty"`
	MonthlyRent string  `json:"monthly_rent"`
	RentDueDay  int     `json:"rent_due_day"`
	Status      string  `json:"status"`
	LeaseStart  string  `json:"lease_start"`
	LeaseEnd    *string `json:"lease_end,omitempty"`
}

func toTenantResponse(t *leasing.Tenant) TenantResponse {
	resp := TenantResponse{
		ID:          t.ID.String(),
		UnitID:      t.UnitID.String(),
		PropertyID:  t.PropertyID.String(),
		FullName:    t.FullName,
		Phone:       t.Phone,
		MonthlyRent: t.MonthlyRent.StringFixed(2),
		RentDueDay:  t.RentDueDay,
		Status:      t.Status.String(),
		LeaseStart:  t.LeaseStart.Format("2006-01-02"),
	}
	if t.LeaseEnd != nil {
		end := t.LeaseEnd.Format("2006-01-02")
		resp.LeaseEnd = &end
	}
	return resp
}

// AssignTenant godoc
// @ID           assignTenant
// @Summary      Assign a tenant to a unit
// @Description  Starts a tenancy on a vacant unit. A unit holds at most one active tenant.
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AssignTenantRequest true "Tenancy details"
// @Success      201 {object} APIResponse[TenantResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /tenants [post]
func (h *TenantHandler) AssignTenant(c *gin.Context) {
	var req AssignTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	unitID, err := uuid.Parse(req.UnitID)
	if err != nil {
		h.BadRequest(c, "Invalid unit_id")
		return
	}
	rent, err := decimal.NewFromString(req.MonthlyRent)
	if err != nil {
		h.BadRequest(c, "Invalid monthly_rent")
		return
	}
	leaseStart, err := time.Parse("2006-01-02", req.LeaseStart)
	if err != nil {
		h.BadRequest(c, "Invalid lease_start, expected YYYY-MM-DD")
		return
	}

	tenant, err := h.tenantService.AssignTenant(c.Request.Context(), appleasing.AssignTenantInput{
		UnitID:      unitID,
		FullName:    req.FullName,
		Phone:       req.Phone,
		MonthlyRent: rent,
		RentDueDay:  req.RentDueDay,
		LeaseStart:  leaseStart,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toTenantResponse(tenant))
}

// GetTenant godoc
// @ID           getTenant
// @Summary      Get a tenant by ID
// @Tags         tenants
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Tenant ID"
// @Success      200 {object} APIResponse[TenantResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /tenants/{id} [get]
func (h *TenantHandler) GetTenant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	tenant, err := h.tenantService.GetTenant(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTenantResponse(tenant))
}

// TerminateTenancyRequest represents a termination request
type TerminateTenancyRequest struct {
	AsOf string `json:"as_of" binding:"required" example:"2024-06-30"`
}

// TerminateTenancy godoc
// @ID           terminateTenancy
// @Summary      End a tenancy
// @Description  Terminates the tenancy as of the given date and frees the unit. Invoice history is kept.
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Tenant ID"
// @Param        request body TerminateTenancyRequest true "Termination date"
// @Success      200 {object} APIResponse[TenantResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /tenants/{id}/terminate [post]
func (h *TenantHandler) TerminateTenancy(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req TerminateTenancyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	asOf, err := time.Parse("2006-01-02", req.AsOf)
	if err != nil {
		h.BadRequest(c, "Invalid as_of, expected YYYY-MM-DD")
		return
	}

	tenant, err := h.tenantService.TerminateTenancy(c.Request.Context(), id, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTenantResponse(tenant))
}
