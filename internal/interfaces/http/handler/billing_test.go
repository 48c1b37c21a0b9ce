package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinvoicing "github.com/rentledger/backend/internal/application/invoicing"
	"github.com/rentledger/backend/internal/domain/identity"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
)

func newBillingRouter(repo *fakeInvoiceRepo, scope identity.AccessScope) *gin.Engine {
	h := NewBillingHandler(nil, appinvoicing.NewInvoiceService(repo, nil), nil)
	r := gin.New()
	r.Use(withScope(scope))
	r.POST("/billing/overdue/recalculate", h.RecalculateOverdue)
	r.GET("/billing/scheduler/status", h.GetSchedulerStatus)
	return r
}

func TestBillingHandler_RecalculateOverdue(t *testing.T) {
	orgID := uuid.New()
	repo := newFakeInvoiceRepo()

	period := valueobject.MonthPeriod(2024, time.March)
	items := invoicing.LineItems{
		invoicing.NewLineItem(invoicing.LineItemTypeRent, "Rent March 2024", decimal.NewFromInt(1), decimal.NewFromInt(20000)),
	}
	inv, err := invoicing.NewInvoice(orgID, "INV-2024-03-0001", uuid.New(), uuid.New(), uuid.New(),
		period, period.Start().AddDate(0, 0, 5), items, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), inv))

	t.Run("transitions unpaid invoices past due date", func(t *testing.T) {
		router := newBillingRouter(repo, managerScope(orgID))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/billing/overdue/recalculate", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp APIResponse[CountData]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Data.Count)

		stored := repo.invoices[inv.ID]
		assert.Equal(t, invoicing.InvoiceStatusOverdue, stored.Status)
	})

	t.Run("second run transitions nothing", func(t *testing.T) {
		router := newBillingRouter(repo, managerScope(orgID))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/billing/overdue/recalculate", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp APIResponse[CountData]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Data.Count)
	})

	t.Run("tenant-role caller is forbidden", func(t *testing.T) {
		router := newBillingRouter(repo, tenantScope(orgID, uuid.New()))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/billing/overdue/recalculate", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestBillingHandler_GetSchedulerStatus(t *testing.T) {
	router := newBillingRouter(newFakeInvoiceRepo(), managerScope(uuid.New()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/billing/scheduler/status", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp APIResponse[map[string]any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp.Data["enabled"])
	assert.Equal(t, false, resp.Data["running"])
}
