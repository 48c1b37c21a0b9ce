package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appleasing "github.com/rentledger/backend/internal/application/leasing"
	"github.com/rentledger/backend/internal/domain/leasing"
)

// PropertyHandler handles property and unit endpoints
type PropertyHandler struct {
	BaseHandler
	propertyService *appleasing.PropertyService
	tenantService   *appleasing.TenantService
}

// NewPropertyHandler creates a new PropertyHandler
func NewPropertyHandler(propertyService *appleasing.PropertyService, tenantService *appleasing.TenantService) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		tenantService:   tenantService,
	}
}

// CreatePropertyRequest represents a property creation request
type CreatePropertyRequest struct {
	Name       string `json:"name" binding:"required,max=200" example:"Sunrise Apartments"`
	Address    string `json:"address" binding:"omitempty,max=500" example:"12 Riverside Drive, Nairobi"`
	LandlordID string `json:"landlord_id" binding:"required,uuid"`
}

// PropertyResponse represents a property in responses
type PropertyResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	LandlordID string `json:"landlord_id"`
	CreatedAt  string `json:"created_at"`
}

// UnitResponse represents a unit in responses
type UnitResponse struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`
	Number     string `json:"number"`
	IsOccupied bool   `json:"is_occupied"`
}

func toPropertyResponse(p *leasing.Property) PropertyResponse {
	return PropertyResponse{
		ID:         p.ID.String(),
		Name:       p.Name,
		Address:    p.Address,
		LandlordID: p.LandlordID.String(),
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
}

func toUnitResponse(u *leasing.Unit) UnitResponse {
	return UnitResponse{
		ID:         u.ID.String(),
		PropertyID: u.PropertyID.String(),
		Number:     u.Number,
		IsOccupied: u.IsOccupied,
	}
}

// CreateProperty godoc
// @ID           createProperty
// @Summary      Register a property
// @Tags         properties
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreatePropertyRequest true "Property details"
// @Success      201 {object} APIResponse[PropertyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /properties [post]
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	landlordID, err := uuid.Parse(req.LandlordID)
	if err != nil {
		h.BadRequest(c, "Invalid landlord_id")
		return
	}

	property, err := h.propertyService.CreateProperty(c.Request.Context(), appleasing.CreatePropertyInput{
		Name:       req.Name,
		Address:    req.Address,
		LandlordID: landlordID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPropertyResponse(property))
}

// ListProperties godoc
// @ID           listProperties
// @Summary      List properties visible to the caller
// @Tags         properties
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[[]PropertyResponse]
// @Failure      403 {object} ErrorResponse
// @Router       /properties [get]
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	properties, err := h.propertyService.ListProperties(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]PropertyResponse, 0, len(properties))
	for i := range properties {
		out = append(out, toPropertyResponse(&properties[i]))
	}
	h.Success(c, out)
}

// GetProperty godoc
// @ID           getProperty
// @Summary      Get a property by ID
// @Tags         properties
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Property ID"
// @Success      200 {object} APIResponse[PropertyResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /properties/{id} [get]
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid property ID")
		return
	}

	property, err := h.propertyService.GetProperty(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPropertyResponse(property))
}

// AddUnitRequest represents a unit creation request
type AddUnitRequest struct {
	Number string `json:"number" binding:"required,max=50" example:"A-101"`
}

// AddUnit godoc
// @ID           addUnit
// @Summary      Add a unit to a property
// @Tags         properties
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Property ID"
// @Param        request body AddUnitRequest true "Unit details"
// @Success      201 {object} APIResponse[UnitResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /properties/{id}/units [post]
func (h *PropertyHandler) AddUnit(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid property ID")
		return
	}

	var req AddUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	unit, err := h.propertyService.AddUnit(c.Request.Context(), propertyID, req.Number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toUnitResponse(unit))
}

// ListUnits godoc
// @ID           listUnits
// @Summary      List units of a property
// @Tags         properties
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Property ID"
// @Success      200 {object} APIResponse[[]UnitResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /properties/{id}/units [get]
func (h *PropertyHandler) ListUnits(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid property ID")
		return
	}

	units, err := h.propertyService.ListUnits(c.Request.Context(), propertyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]UnitResponse, 0, len(units))
	for i := range units {
		out = append(out, toUnitResponse(&units[i]))
	}
	h.Success(c, out)
}

// GetUnitTenant godoc
// @ID           getUnitTenant
// @Summary      Get the active tenant of a unit
// @Tags         units
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Unit ID"
// @Success      200 {object} APIResponse[TenantResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /units/{id}/tenant [get]
func (h *PropertyHandler) GetUnitTenant(c *gin.Context) {
	unitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid unit ID")
		return
	}

	tenant, err := h.tenantService.GetActiveTenantForUnit(c.Request.Context(), unitID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTenantResponse(tenant))
}
