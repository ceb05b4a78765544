package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"invoiceflow/internal/dto"
	"invoiceflow/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func historyInvoices(userID uuid.UUID, n int) []*models.Invoice {
	invoices := make([]*models.Invoice, n)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		issue := base.AddDate(0, 0, i*7)
		invoices[i] = &models.Invoice{
			ID:        uuid.New(),
			UserID:    userID,
			Vendor:    fmt.Sprintf("Vendor %d", i+1),
			IssueDate: issue,
			DueDate:   issue.AddDate(0, 0, 30),
			Amount:    100 + float64(i),
			Currency:  "USD",
			CreatedAt: issue,
		}
	}
	return invoices
}

func candidateInvoice() *dto.ExtractedInvoiceData {
	return &dto.ExtractedInvoiceData{
		Vendor:    "New Vendor",
		IssueDate: "2024-06-01",
		DueDate:   "2024-07-01",
		Amount:    9999.99,
		Currency:  "USD",
	}
}

func TestDetectAnomaliesShortHistory(t *testing.T) {
	userID := uuid.New()
	store := &fakeInvoiceStore{invoices: historyInvoices(userID, 4)}
	llmFake := &fakeLLM{}

	svc := NewAnomalyService(store, llmFake, zap.NewNop())
	isAnomaly, err := svc.DetectAnomalies(context.Background(), userID, candidateInvoice())
	require.NoError(t, err)

	assert.False(t, isAnomaly)
	assert.Zero(t, llmFake.calls, "the model must not be consulted below the history baseline")
}

func TestDetectAnomaliesSendsNewestWindow(t *testing.T) {
	userID := uuid.New()
	store := &fakeInvoiceStore{invoices: historyInvoices(userID, 12)}
	llmFake := &fakeLLM{responses: []string{`{"anomaly": false, "reason": "amount in line with history"}`}}

	svc := NewAnomalyService(store, llmFake, zap.NewNop())
	isAnomaly, err := svc.DetectAnomalies(context.Background(), userID, candidateInvoice())
	require.NoError(t, err)
	assert.False(t, isAnomaly)

	require.Len(t, llmFake.users, 1)
	payloadJSON := strings.TrimPrefix(llmFake.users[0], "Analyze this invoice data: ")

	var payload struct {
		NewInvoice     dto.ExtractedInvoiceData `json:"newInvoice"`
		InvoiceHistory []invoiceSnapshot        `json:"invoiceHistory"`
	}
	require.NoError(t, json.Unmarshal([]byte(payloadJSON), &payload))

	assert.Equal(t, "New Vendor", payload.NewInvoice.Vendor)
	require.Len(t, payload.InvoiceHistory, 10, "only the newest ten invoices go to the model")
	assert.Equal(t, "Vendor 3", payload.InvoiceHistory[0].Vendor)
	assert.Equal(t, "Vendor 12", payload.InvoiceHistory[9].Vendor)
}

func TestDetectAnomaliesPositiveVerdict(t *testing.T) {
	userID := uuid.New()
	store := &fakeInvoiceStore{invoices: historyInvoices(userID, 6)}
	llmFake := &fakeLLM{responses: []string{"```json\n{\"anomaly\": true, \"reason\": \"amount far above history\"}\n```"}}

	svc := NewAnomalyService(store, llmFake, zap.NewNop())
	isAnomaly, err := svc.DetectAnomalies(context.Background(), userID, candidateInvoice())
	require.NoError(t, err)
	assert.True(t, isAnomaly)
}

func TestDetectAnomaliesRejectsChatter(t *testing.T) {
	userID := uuid.New()
	store := &fakeInvoiceStore{invoices: historyInvoices(userID, 6)}
	llmFake := &fakeLLM{responses: []string{"This invoice looks fine to me, nothing unusual."}}

	svc := NewAnomalyService(store, llmFake, zap.NewNop())
	_, err := svc.DetectAnomalies(context.Background(), userID, candidateInvoice())
	require.Error(t, err, "a non-JSON answer must be an error, never a silent false")
}

func TestDetectAnomaliesRejectsMissingVerdictField(t *testing.T) {
	userID := uuid.New()
	store := &fakeInvoiceStore{invoices: historyInvoices(userID, 6)}
	llmFake := &fakeLLM{responses: []string{`{"reason": "no verdict given"}`}}

	svc := NewAnomalyService(store, llmFake, zap.NewNop())
	_, err := svc.DetectAnomalies(context.Background(), userID, candidateInvoice())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anomaly")
}
