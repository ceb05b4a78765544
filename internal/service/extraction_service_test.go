package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExtractInvoiceData(t *testing.T) {
	llmFake := &fakeLLM{responses: []string{"```json\n" + `{
		"vendor": "Acme Corp",
		"invoiceNumber": "INV-2024-001",
		"issueDate": "2024-03-01",
		"dueDate": "2024-03-31",
		"amount": 1250.00,
		"tax": 100.00,
		"currency": "USD",
		"category": "Software/SaaS"
	}` + "\n```"}}

	svc := NewExtractionService(llmFake, zap.NewNop())
	extracted, err := svc.ExtractInvoiceData(context.Background(), "Invoice from Acme Corp ...")
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", extracted.Vendor)
	assert.Equal(t, "INV-2024-001", extracted.InvoiceNumber)
	assert.Equal(t, "2024-03-01", extracted.IssueDate)
	assert.Equal(t, "2024-03-31", extracted.DueDate)
	assert.Equal(t, 1250.00, extracted.Amount)
	assert.Equal(t, 100.00, extracted.Tax)
	assert.Equal(t, "USD", extracted.Currency)
}

func TestExtractInvoiceDataPartialFields(t *testing.T) {
	// Fields the model omits stay at their zero value without an error.
	llmFake := &fakeLLM{responses: []string{`{"vendor": "Acme Corp", "amount": 99.5}`}}

	svc := NewExtractionService(llmFake, zap.NewNop())
	extracted, err := svc.ExtractInvoiceData(context.Background(), "partial document")
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", extracted.Vendor)
	assert.Equal(t, 99.5, extracted.Amount)
	assert.Empty(t, extracted.InvoiceNumber)
	assert.Empty(t, extracted.Currency)
	assert.Zero(t, extracted.Tax)
}

func TestExtractInvoiceDataNotJSON(t *testing.T) {
	llmFake := &fakeLLM{responses: []string{"I could not find any invoice fields in this text."}}

	svc := NewExtractionService(llmFake, zap.NewNop())
	_, err := svc.ExtractInvoiceData(context.Background(), "garbage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse extraction response")
}

func TestSuggestCategory(t *testing.T) {
	llmFake := &fakeLLM{responses: []string{"  Software/SaaS\n"}}

	svc := NewExtractionService(llmFake, zap.NewNop())
	category, err := svc.SuggestCategory(context.Background(), "Cloudline Hosting monthly plan")
	require.NoError(t, err)
	assert.Equal(t, "Software/SaaS", category)
}

func TestDocumentTextPlainFile(t *testing.T) {
	svc := NewExtractionService(&fakeLLM{}, zap.NewNop())

	text, err := svc.DocumentText("invoice.txt", []byte("Invoice #42 from Acme Corp"))
	require.NoError(t, err)
	assert.Equal(t, "Invoice #42 from Acme Corp", text)
}
