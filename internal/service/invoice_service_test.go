package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"invoiceflow/internal/dto"
	"invoiceflow/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newInvoiceService(t *testing.T, llmFake *fakeLLM) (*InvoiceService, *fakeInvoiceStore) {
	t.Helper()
	store := &fakeInvoiceStore{}
	extraction := NewExtractionService(llmFake, zap.NewNop())
	return NewInvoiceService(store, extraction, t.TempDir(), zap.NewNop()), store
}

func TestProcessUpload(t *testing.T) {
	llmFake := &fakeLLM{responses: []string{
		`{"vendor": "Acme Corp", "invoiceNumber": "INV-9", "issueDate": "2024-04-01", "dueDate": "2024-05-01", "amount": 500, "currency": "USD"}`,
		"Office Supplies",
	}}
	svc, store := newInvoiceService(t, llmFake)
	userID := uuid.New()

	resp, err := svc.ProcessUpload(context.Background(), userID, "invoice.txt", []byte("Invoice #9 from Acme Corp, total 500 USD"))
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "Acme Corp", resp.ExtractedData.Vendor)
	assert.Equal(t, "Office Supplies", resp.SuggestedCategory)
	assert.Equal(t, "pending", resp.Invoice.Status)

	require.Len(t, store.invoices, 1)
	saved := store.invoices[0]
	assert.Equal(t, userID, saved.UserID)
	assert.Equal(t, "Acme Corp", saved.Vendor)
	assert.Equal(t, 500.0, saved.Amount)
	assert.Equal(t, "Office Supplies", saved.Category)
	assert.NotEmpty(t, saved.FilePath, "the uploaded document is kept for later export")
}

func TestProcessUploadExcerptKeepsRunesIntact(t *testing.T) {
	llmFake := &fakeLLM{responses: []string{
		`{"vendor": "Café Münster"}`,
		"Meals",
	}}
	svc, _ := newInvoiceService(t, llmFake)

	// Two-byte runes at odd offsets put the excerpt cutoff mid-character.
	content := "a" + strings.Repeat("é", 400)
	_, err := svc.ProcessUpload(context.Background(), uuid.New(), "invoice.txt", []byte(content))
	require.NoError(t, err)

	require.Len(t, llmFake.users, 2)
	assert.True(t, utf8.ValidString(llmFake.users[1]), "category prompt must stay valid UTF-8")
}

func TestProcessUploadExtractionFailure(t *testing.T) {
	llmFake := &fakeLLM{responses: []string{"not json at all"}}
	svc, store := newInvoiceService(t, llmFake)

	_, err := svc.ProcessUpload(context.Background(), uuid.New(), "invoice.txt", []byte("doc"))
	require.Error(t, err)
	assert.Empty(t, store.invoices, "nothing persisted when extraction fails")
}

func TestCreateManualValidation(t *testing.T) {
	svc, _ := newInvoiceService(t, &fakeLLM{})
	userID := uuid.New()

	valid := dto.CreateInvoiceRequest{
		Vendor:    "Acme Corp",
		IssueDate: "2024-04-01",
		DueDate:   "2024-05-01",
		Amount:    100,
		Currency:  "USD",
	}

	tests := []struct {
		name   string
		mutate func(r *dto.CreateInvoiceRequest)
	}{
		{"missing vendor", func(r *dto.CreateInvoiceRequest) { r.Vendor = "" }},
		{"negative amount", func(r *dto.CreateInvoiceRequest) { r.Amount = -1 }},
		{"negative tax", func(r *dto.CreateInvoiceRequest) { r.Tax = -0.5 }},
		{"bad currency", func(r *dto.CreateInvoiceRequest) { r.Currency = "DOLLARS" }},
		{"due before issue", func(r *dto.CreateInvoiceRequest) { r.DueDate = "2024-03-01" }},
		{"unparseable date", func(r *dto.CreateInvoiceRequest) { r.IssueDate = "April first" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := svc.CreateManual(context.Background(), userID, &req)
			require.ErrorIs(t, err, ErrValidation)
		})
	}

	resp, err := svc.CreateManual(context.Background(), userID, &valid)
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
}

func TestGetEnforcesOwnership(t *testing.T) {
	svc, store := newInvoiceService(t, &fakeLLM{})
	owner := uuid.New()
	inv := &models.Invoice{ID: uuid.New(), UserID: owner, Vendor: "Acme Corp"}
	store.invoices = append(store.invoices, inv)

	_, err := svc.Get(context.Background(), owner, inv.ID)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New(), inv.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	svc, store := newInvoiceService(t, &fakeLLM{})
	owner := uuid.New()
	inv := &models.Invoice{ID: uuid.New(), UserID: owner, Status: models.InvoiceStatusPending}
	store.invoices = append(store.invoices, inv)

	require.NoError(t, svc.UpdateStatus(context.Background(), owner, inv.ID, "paid"))
	assert.Equal(t, models.InvoiceStatusPaid, inv.Status)

	err := svc.UpdateStatus(context.Background(), owner, inv.ID, "cancelled")
	require.ErrorIs(t, err, ErrValidation)

	err = svc.UpdateStatus(context.Background(), uuid.New(), inv.ID, "paid")
	require.ErrorIs(t, err, ErrNotFound)
}
