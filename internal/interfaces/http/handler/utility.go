package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/rentledger/backend/internal/application/billing"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// UtilityHandler handles utility types, configs and meter readings
type UtilityHandler struct {
	BaseHandler
	utilityService *appbilling.UtilityService
}

// NewUtilityHandler creates a new UtilityHandler
func NewUtilityHandler(utilityService *appbilling.UtilityService) *UtilityHandler {
	return &UtilityHandler{utilityService: utilityService}
}

// CreateUtilityTypeRequest represents a utility type creation request
type CreateUtilityTypeRequest struct {
	Name          string `json:"name" binding:"required,max=100" example:"Water"`
	Mode          string `json:"mode" binding:"required,oneof=FIXED METERED SHARED"`
	UnitOfMeasure string `json:"unit_of_measure" binding:"omitempty,max=20" example:"m3"`
}

// UtilityTypeResponse represents a utility type in responses
type UtilityTypeResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Mode          string `json:"mode"`
	UnitOfMeasure string `json:"unit_of_measure,omitempty"`
}

func toUtilityTypeResponse(ut *billing.UtilityType) UtilityTypeResponse {
	return UtilityTypeResponse{
		ID:            ut.ID.String(),
		Name:          ut.Name,
		Mode:          ut.Mode.String(),
		UnitOfMeasure: ut.UnitOfMeasure,
	}
}

// CreateUtilityType godoc
// @ID           createUtilityType
// @Summary      Register a billable utility
// @Tags         utilities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateUtilityTypeRequest true "Utility type details"
// @Success      201 {object} APIResponse[UtilityTypeResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /utility-types [post]
func (h *UtilityHandler) CreateUtilityType(c *gin.Context) {
	var req CreateUtilityTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	utilityType, err := h.utilityService.CreateUtilityType(c.Request.Context(),
		req.Name, billing.BillingMode(req.Mode), req.UnitOfMeasure)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toUtilityTypeResponse(utilityType))
}

// ListUtilityTypes godoc
// @ID           listUtilityTypes
// @Summary      List the organization's utility types
// @Tags         utilities
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[[]UtilityTypeResponse]
// @Router       /utility-types [get]
func (h *UtilityHandler) ListUtilityTypes(c *gin.Context) {
	types, err := h.utilityService.ListUtilityTypes(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]UtilityTypeResponse, 0, len(types))
	for i := range types {
		out = append(out, toUtilityTypeResponse(&types[i]))
	}
	h.Success(c, out)
}

// CreateUtilityConfigRequest represents a utility config creation request
type CreateUtilityConfigRequest struct {
	UtilityTypeID string `json:"utility_type_id" binding:"required,uuid"`
	PropertyID    string `json:"property_id" binding:"required,uuid"`
	UnitID        string `json:"unit_id" binding:"omitempty,uuid"`
	EffectiveFrom string `json:"effective_from" binding:"required" example:"2024-01-01"`
	EffectiveTo   string `json:"effective_to" binding:"omitempty" example:"2024-12-31"`
	Amount        string `json:"amount" binding:"required" example:"500.00"`
}

// UtilityConfigResponse represents a utility config in responses
type UtilityConfigResponse struct {
	ID            string  `json:"id"`
	UtilityTypeID string  `json:"utility_type_id"`
	TypeName      string  `json:"type_name"`
	Mode          string  `json:"mode"`
	PropertyID    string  `json:"property_id"`
	UnitID        *string `json:"unit_id,omitempty"`
	EffectiveFrom string  `json:"effective_from"`
	EffectiveTo   *string `json:"effective_to,omitempty"`
	FixedAmount   string  `json:"fixed_amount"`
	Rate          string  `json:"rate"`
	SharedAmount  string  `json:"shared_amount"`
}

func toUtilityConfigResponse(cfg *billing.UtilityConfig) UtilityConfigResponse {
	resp := UtilityConfigResponse{
		ID:            cfg.ID.String(),
		UtilityTypeID: cfg.UtilityTypeID.String(),
		TypeName:      cfg.TypeName,
		Mode:          cfg.Mode.String(),
		PropertyID:    cfg.PropertyID.String(),
		EffectiveFrom: cfg.EffectiveFrom.Format("2006-01-02"),
		FixedAmount:   cfg.FixedAmount.StringFixed(2),
		Rate:          cfg.Rate.StringFixed(2),
		SharedAmount:  cfg.SharedAmount.StringFixed(2),
	}
	if cfg.UnitID != nil {
		unitID := cfg.UnitID.String()
		resp.UnitID = &unitID
	}
	if cfg.EffectiveTo != nil {
		to := cfg.EffectiveTo.Format("2006-01-02")
		resp.EffectiveTo = &to
	}
	return resp
}

// CreateUtilityConfig godoc
// @ID           createUtilityConfig
// @Summary      Bind a utility to a property or unit
// @Description  Unit-scoped configs override property-wide configs of the same type.
// @Tags         utilities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateUtilityConfigRequest true "Config details"
// @Success      201 {object} APIResponse[UtilityConfigResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /utility-configs [post]
func (h *UtilityHandler) CreateUtilityConfig(c *gin.Context) {
	var req CreateUtilityConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := appbilling.CreateConfigInput{}

	utilityTypeID, err := uuid.Parse(req.UtilityTypeID)
	if err != nil {
		h.BadRequest(c, "Invalid utility_type_id")
		return
	}
	input.UtilityTypeID = utilityTypeID

	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		h.BadRequest(c, "Invalid property_id")
		return
	}
	input.PropertyID = propertyID

	if req.UnitID != "" {
		unitID, err := uuid.Parse(req.UnitID)
		if err != nil {
			h.BadRequest(c, "Invalid unit_id")
			return
		}
		input.UnitID = &unitID
	}

	input.EffectiveFrom, err = time.Parse("2006-01-02", req.EffectiveFrom)
	if err != nil {
		h.BadRequest(c, "Invalid effective_from, expected YYYY-MM-DD")
		return
	}
	if req.EffectiveTo != "" {
		to, err := time.Parse("2006-01-02", req.EffectiveTo)
		if err != nil {
			h.BadRequest(c, "Invalid effective_to, expected YYYY-MM-DD")
			return
		}
		input.EffectiveTo = &to
	}

	input.Amount, err = decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	config, err := h.utilityService.CreateUtilityConfig(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toUtilityConfigResponse(config))
}

// ListPropertyConfigs godoc
// @ID           listPropertyConfigs
// @Summary      List utility configs of a property
// @Tags         utilities
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Property ID"
// @Success      200 {object} APIResponse[[]UtilityConfigResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /properties/{id}/utility-configs [get]
func (h *UtilityHandler) ListPropertyConfigs(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid property ID")
		return
	}

	configs, err := h.utilityService.ListConfigsForProperty(c.Request.Context(), propertyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]UtilityConfigResponse, 0, len(configs))
	for i := range configs {
		out = append(out, toUtilityConfigResponse(&configs[i]))
	}
	h.Success(c, out)
}

// RecordReadingRequest represents a meter reading submission
type RecordReadingRequest struct {
	UtilityConfigID string `json:"utility_config_id" binding:"required,uuid"`
	UnitID          string `json:"unit_id" binding:"required,uuid"`
	Value           string `json:"value" binding:"required" example:"1234.50"`
	ReadingDate     string `json:"reading_date" binding:"required" example:"2024-03-31"`
}

// MeterReadingResponse represents a meter reading in responses
type MeterReadingResponse struct {
	ID              string `json:"id"`
	UtilityConfigID string `json:"utility_config_id"`
	UnitID          string `json:"unit_id"`
	Value           string `json:"value"`
	ReadingDate     string `json:"reading_date"`
}

// RecordReading godoc
// @ID           recordMeterReading
// @Summary      Record a meter reading
// @Description  Readings must not decrease; a value below the previous reading is rejected.
// @Tags         utilities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body RecordReadingRequest true "Reading details"
// @Success      201 {object} APIResponse[MeterReadingResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /meter-readings [post]
func (h *UtilityHandler) RecordReading(c *gin.Context) {
	var req RecordReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	configID, err := uuid.Parse(req.UtilityConfigID)
	if err != nil {
		h.BadRequest(c, "Invalid utility_config_id")
		return
	}
	unitID, err := uuid.Parse(req.UnitID)
	if err != nil {
		h.BadRequest(c, "Invalid unit_id")
		return
	}
	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		h.BadRequest(c, "Invalid value")
		return
	}
	readingDate, err := time.Parse("2006-01-02", req.ReadingDate)
	if err != nil {
		h.BadRequest(c, "Invalid reading_date, expected YYYY-MM-DD")
		return
	}

	reading, err := h.utilityService.RecordReading(c.Request.Context(), configID, unitID, value, readingDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, MeterReadingResponse{
		ID:              reading.ID.String(),
		UtilityConfigID: reading.UtilityConfigID.String(),
		UnitID:          reading.UnitID.String(),
		Value:           reading.Value.String(),
		ReadingDate:     reading.ReadingDate.Format("2006-01-02"),
	})
}
