package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	appinvoicing "github.com/rentledger/backend/internal/application/invoicing"
	"github.com/rentledger/backend/internal/domain/identity"
	"github.com/rentledger/backend/internal/infrastructure/scheduler"
	"github.com/rentledger/backend/internal/interfaces/http/middleware"
)

// BillingHandler handles invoice generation and billing operations
type BillingHandler struct {
	BaseHandler
	generationService *appinvoicing.GenerationService
	invoiceService    *appinvoicing.InvoiceService
	cronScheduler     *scheduler.BillingCronScheduler
}

// NewBillingHandler creates a new BillingHandler. The cron scheduler
// is optional; when nil the status endpoint reports it disabled.
func NewBillingHandler(
	generationService *appinvoicing.GenerationService,
	invoiceService *appinvoicing.InvoiceService,
	cronScheduler *scheduler.BillingCronScheduler,
) *BillingHandler {
	return &BillingHandler{
		generationService: generationService,
		invoiceService:    invoiceService,
		cronScheduler:     cronScheduler,
	}
}

// GenerateInvoicesRequest represents an invoice generation request
type GenerateInvoicesRequest struct {
	Year  int `json:"year" binding:"required,min=2000,max=2100" example:"2024"`
	Month int `json:"month" binding:"required,min=1,max=12" example:"3"`
}

// GenerateInvoices godoc
// @ID           generateInvoices
// @Summary      Generate invoices for a billing period
// @Description  Runs invoice generation for every active tenant in the caller's scope. The run is idempotent per tenant and period; tenants already invoiced are reported as skipped.
// @Tags         billing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body GenerateInvoicesRequest true "Billing period"
// @Success      200 {object} APIResponse[appinvoicing.GenerationResult]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /billing/generation [post]
func (h *BillingHandler) GenerateInvoices(c *gin.Context) {
	var req GenerateInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.generationService.GenerateForPeriod(c.Request.Context(), req.Year, time.Month(req.Month))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RecalculateOverdue godoc
// @ID           recalculateOverdue
// @Summary      Mark unpaid invoices past due date as overdue
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[CountData]
// @Failure      403 {object} ErrorResponse
// @Router       /billing/overdue/recalculate [post]
func (h *BillingHandler) RecalculateOverdue(c *gin.Context) {
	scope, ok := middleware.GetAccessScope(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if !scope.Has(identity.CapManageBilling) {
		h.Forbidden(c, "Billing permission required")
		return
	}

	count, err := h.invoiceService.RecalculateOverdue(c.Request.Context(), scope.OrgID, time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountData{Count: count})
}

// GetSchedulerStatus godoc
// @ID           getSchedulerStatus
// @Summary      Get billing scheduler status
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[map[string]any]
// @Router       /billing/scheduler/status [get]
func (h *BillingHandler) GetSchedulerStatus(c *gin.Context) {
	if h.cronScheduler == nil {
		h.Success(c, gin.H{"enabled": false, "running": false})
		return
	}
	h.Success(c, h.cronScheduler.GetStatus())
}
