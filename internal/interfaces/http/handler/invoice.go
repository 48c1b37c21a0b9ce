package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinvoicing "github.com/rentledger/backend/internal/application/invoicing"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/rentledger/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// InvoiceHandler handles invoice query and payment endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *appinvoicing.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *appinvoicing.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// ListInvoicesRequest represents invoice list query parameters
type ListInvoicesRequest struct {
	dto.ListRequest
	TenantID   string `form:"tenant_id" binding:"omitempty,uuid"`
	PropertyID string `form:"property_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=OPEN PARTIALLY_PAID PAID OVERDUE"`
	Overdue    *bool  `form:"overdue"`
}

// LineItemResponse represents an invoice line item
type LineItemResponse struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Rate        string `json:"rate"`
	Amount      string `json:"amount"`
}

// PaymentRecordResponse represents a recorded payment
type PaymentRecordResponse struct {
	Amount    string `json:"amount"`
	Method    string `json:"method,omitempty"`
	Reference string `json:"reference,omitempty"`
	AppliedAt string `json:"applied_at"`
}

// InvoiceResponse represents an invoice in responses
type InvoiceResponse struct {
	ID             string                  `json:"id"`
	InvoiceNumber  string                  `json:"invoice_number"`
	TenantID       string                  `json:"tenant_id"`
	UnitID         string                  `json:"unit_id"`
	PropertyID     string                  `json:"property_id"`
	PeriodStart    string                  `json:"period_start"`
	PeriodEnd      string                  `json:"period_end"`
	DueDate        string                  `json:"due_date"`
	Amount         string                  `json:"amount"`
	OpeningBalance string                  `json:"opening_balance"`
	PaidAmount     string                  `json:"paid_amount"`
	Balance        string                  `json:"balance"`
	Status         string                  `json:"status"`
	LineItems      []LineItemResponse      `json:"line_items"`
	Payments       []PaymentRecordResponse `json:"payments,omitempty"`
	PaidAt         *string                 `json:"paid_at,omitempty"`
}

func toInvoiceResponse(inv *invoicing.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:             inv.ID.String(),
		InvoiceNumber:  inv.InvoiceNumber,
		TenantID:       inv.TenantID.String(),
		UnitID:         inv.UnitID.String(),
		PropertyID:     inv.PropertyID.String(),
		PeriodStart:    inv.PeriodStart.Format("2006-01-02"),
		PeriodEnd:      inv.PeriodEnd.Format("2006-01-02"),
		DueDate:        inv.DueDate.Format("2006-01-02"),
		Amount:         inv.Amount.StringFixed(2),
		OpeningBalance: inv.OpeningBalance.StringFixed(2),
		PaidAmount:     inv.PaidAmount.StringFixed(2),
		Balance:        inv.Balance.StringFixed(2),
		Status:         inv.Status.String(),
	}
	for _, item := range inv.LineItems {
		resp.LineItems = append(resp.LineItems, LineItemResponse{
			Type:        string(item.Type),
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			Rate:        item.Rate.StringFixed(2),
			Amount:      item.Amount.StringFixed(2),
		})
	}
	for _, payment := range inv.PaymentRecords {
		resp.Payments = append(resp.Payments, PaymentRecordResponse{
			Amount:    payment.Amount.StringFixed(2),
			Method:    payment.Method,
			Reference: payment.Reference,
			AppliedAt: payment.AppliedAt.Format(time.RFC3339),
		})
	}
	if inv.PaidAt != nil {
		paidAt := inv.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &paidAt
	}
	return resp
}

// ListInvoices godoc
// @ID           listInvoices
// @Summary      List invoices
// @Description  Returns invoices within the caller's scope. Tenant-role callers see only their own invoices.
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        tenant_id query string false "Filter by tenant"
// @Param        property_id query string false "Filter by property"
// @Param        status query string false "Filter by status"
// @Param        overdue query bool false "Only invoices past due date"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]InvoiceResponse]
// @Failure      403 {object} ErrorResponse
// @Router       /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	req := ListInvoicesRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := invoicing.InvoiceFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
		},
		Overdue: req.Overdue,
	}
	if req.TenantID != "" {
		tenantID, err := uuid.Parse(req.TenantID)
		if err != nil {
			h.BadRequest(c, "Invalid tenant_id")
			return
		}
		filter.TenantID = &tenantID
	}
	if req.PropertyID != "" {
		propertyID, err := uuid.Parse(req.PropertyID)
		if err != nil {
			h.BadRequest(c, "Invalid property_id")
			return
		}
		filter.PropertyID = &propertyID
	}
	if req.Status != "" {
		status := invoicing.InvoiceStatus(req.Status)
		filter.Status = &status
	}

	page, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]InvoiceResponse, 0, len(page.Items))
	for i := range page.Items {
		out = append(out, toInvoiceResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, out, page.Total, page.Page, page.PageSize)
}

// GetInvoice godoc
// @ID           getInvoice
// @Summary      Get an invoice by ID
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Invoice ID"
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceResponse(invoice))
}

// RecordPaymentRequest represents a payment application request
type RecordPaymentRequest struct {
	Amount    string `json:"amount" binding:"required" example:"15000.00"`
	Method    string `json:"method" binding:"omitempty,max=50" example:"MPESA"`
	Reference string `json:"reference" binding:"omitempty,max=100" example:"QA12BC34DE"`
}

// RecordPayment godoc
// @ID           recordInvoicePayment
// @Summary      Record a payment against an invoice
// @Description  Applies a payment received through an external channel. Payments above the outstanding balance are rejected.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Invoice ID"
// @Param        request body RecordPaymentRequest true "Payment details"
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	invoice, err := h.invoiceService.RecordPayment(c.Request.Context(), id,
		valueobject.NewMoneyKES(amount), req.Method, req.Reference)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceResponse(invoice))
}
