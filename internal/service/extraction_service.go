package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"invoiceflow/internal/dto"
	"invoiceflow/internal/encoding"
	"invoiceflow/internal/llm"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

const extractionSystemPrompt = "You are an AI assistant that extracts invoice data from text. " +
	"Extract the following fields: vendor, invoice number, issue date, due date, amount, tax (if available), currency, and category. " +
	"Respond with a JSON object using the keys vendor, invoiceNumber, issueDate, dueDate, amount, tax, currency, category. " +
	"Dates use the YYYY-MM-DD format, amount and tax are numbers, currency is a 3-letter ISO code. " +
	"Omit keys you cannot determine."

const categorySystemPrompt = "You are an AI assistant that categorizes business expenses. " +
	"Categories include: Office Supplies, Software/SaaS, Marketing, Travel, Utilities, Professional Services, Equipment, and Other."

// ExtractionService turns uploaded invoice documents into structured fields
// using the language model. The model is treated as ground truth: there is no
// retry, no confidence scoring and no OCR fallback.
type ExtractionService struct {
	llm    llm.Client
	logger *zap.Logger
}

func NewExtractionService(llmClient llm.Client, logger *zap.Logger) *ExtractionService {
	return &ExtractionService{
		llm:    llmClient,
		logger: logger,
	}
}

// DocumentText converts an uploaded file to plain text. PDF content is
// extracted page by page; everything else is decoded to UTF-8 best effort.
func (s *ExtractionService) DocumentText(fileName string, data []byte) (string, error) {
	if strings.ToLower(filepath.Ext(fileName)) == ".pdf" {
		return s.pdfText(data)
	}

	text, err := encoding.DecodeText(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode document: %w", err)
	}
	return text, nil
}

func (s *ExtractionService) pdfText(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var builder strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			s.logger.Warn("Failed to extract text from PDF page",
				zap.Int("page", i+1),
				zap.Error(err),
			)
			continue
		}
		if pageText != "" {
			builder.WriteString(pageText)
			builder.WriteString("\n")
		}
	}

	return builder.String(), nil
}

// ExtractInvoiceData asks the model for the structured fields of one invoice.
// Fields the model omits stay at their zero value; a response that is not a
// JSON object is an error.
func (s *ExtractionService) ExtractInvoiceData(ctx context.Context, documentText string) (*dto.ExtractedInvoiceData, error) {
	user := fmt.Sprintf("Extract the invoice data from the following content: %s", documentText)

	content, err := s.llm.CompleteJSON(ctx, extractionSystemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}

	var extracted dto.ExtractedInvoiceData
	jsonStr := llm.ExtractJSONObject(content)
	if err := json.Unmarshal([]byte(jsonStr), &extracted); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w, content: %s", err, content)
	}

	s.logger.Info("Invoice data extracted",
		zap.String("vendor", extracted.Vendor),
		zap.String("invoice_number", extracted.InvoiceNumber),
		zap.Float64("amount", extracted.Amount),
	)

	return &extracted, nil
}

// SuggestCategory asks the model for a business-expense category for the
// given vendor/description text. The response is free text.
func (s *ExtractionService) SuggestCategory(ctx context.Context, description string) (string, error) {
	user := fmt.Sprintf("Categorize this invoice/expense: %s", description)

	content, err := s.llm.Complete(ctx, categorySystemPrompt, user)
	if err != nil {
		return "", fmt.Errorf("categorization request failed: %w", err)
	}

	return strings.TrimSpace(content), nil
}
