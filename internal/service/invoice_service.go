package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"invoiceflow/internal/dto"
	"invoiceflow/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// invoiceStore is the slice of the invoice repository the service needs.
type invoiceStore interface {
	Create(ctx context.Context, inv *models.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ListPageByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Invoice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) error
}

// InvoiceService owns the upload pipeline and invoice CRUD.
type InvoiceService struct {
	invoices   invoiceStore
	extraction *ExtractionService
	uploadDir  string
	logger     *zap.Logger
}

func NewInvoiceService(invoices invoiceStore, extraction *ExtractionService, uploadDir string, logger *zap.Logger) *InvoiceService {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		logger.Warn("Failed to create upload directory", zap.Error(err))
	}

	return &InvoiceService{
		invoices:   invoices,
		extraction: extraction,
		uploadDir:  uploadDir,
		logger:     logger,
	}
}

// ProcessUpload runs the pipeline for an uploaded invoice document:
// decode to text, extract fields with the model, suggest a category,
// store the file and persist the invoice with status pending.
func (s *InvoiceService) ProcessUpload(ctx context.Context, userID uuid.UUID, fileName string, data []byte) (*dto.ProcessInvoiceResponse, error) {
	text, err := s.extraction.DocumentText(fileName, data)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	extracted, err := s.extraction.ExtractInvoiceData(ctx, text)
	if err != nil {
		return nil, err
	}

	// Trim the excerpt to a rune boundary so a multi-byte character is
	// never split mid-sequence.
	excerpt := text
	if len(excerpt) > 500 {
		cut := 500
		for cut > 0 && !utf8.RuneStart(excerpt[cut]) {
			cut--
		}
		excerpt = excerpt[:cut]
	}
	category, err := s.extraction.SuggestCategory(ctx, extracted.Vendor+" "+excerpt)
	if err != nil {
		return nil, err
	}

	filePath, err := s.storeFile(fileName, data)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	inv := &models.Invoice{
		ID:            uuid.New(),
		UserID:        userID,
		Vendor:        extracted.Vendor,
		InvoiceNumber: extracted.InvoiceNumber,
		IssueDate:     parseDate(extracted.IssueDate),
		DueDate:       parseDate(extracted.DueDate),
		Amount:        extracted.Amount,
		Tax:           extracted.Tax,
		Currency:      extracted.Currency,
		Category:      category,
		Status:        models.InvoiceStatusPending,
		FilePath:      filePath,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.invoices.Create(ctx, inv); err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.logger.Info("Invoice processed",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("vendor", inv.Vendor),
		zap.String("category", category),
	)

	return &dto.ProcessInvoiceResponse{
		Success:           true,
		Invoice:           toInvoiceResponse(inv),
		ExtractedData:     *extracted,
		SuggestedCategory: category,
	}, nil
}

func (s *InvoiceService) storeFile(fileName string, data []byte) (string, error) {
	newName := uuid.New().String() + filepath.Ext(fileName)
	filePath := filepath.Join(s.uploadDir, newName)

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}

	return filePath, nil
}

func (s *InvoiceService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.InvoiceResponse, error) {
	invoices, err := s.invoices.ListPageByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		responses[i] = toInvoiceResponse(inv)
	}

	return responses, nil
}

func (s *InvoiceService) Get(ctx context.Context, userID, id uuid.UUID) (*dto.InvoiceResponse, error) {
	inv, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	resp := toInvoiceResponse(inv)
	return &resp, nil
}

// GetOwned returns the invoice model if it exists and belongs to the user.
// The browser automation needs the model rather than the API shape.
func (s *InvoiceService) GetOwned(ctx context.Context, userID, id uuid.UUID) (*models.Invoice, error) {
	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.UserID != userID {
		return nil, ErrNotFound
	}

	return inv, nil
}

// GetByID returns an invoice without an ownership check. The agent endpoints
// use this; they operate on ids handed over by the caller.
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return inv, nil
}

func (s *InvoiceService) CreateManual(ctx context.Context, userID uuid.UUID, req *dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := validateInvoiceInput(req); err != nil {
		return nil, err
	}

	now := time.Now()
	inv := &models.Invoice{
		ID:            uuid.New(),
		UserID:        userID,
		Vendor:        req.Vendor,
		InvoiceNumber: req.InvoiceNumber,
		IssueDate:     parseDate(req.IssueDate),
		DueDate:       parseDate(req.DueDate),
		Amount:        req.Amount,
		Tax:           req.Tax,
		Currency:      req.Currency,
		Category:      req.Category,
		Status:        models.InvoiceStatusPending,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	resp := toInvoiceResponse(inv)
	return &resp, nil
}

func (s *InvoiceService) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status string) error {
	if !models.ValidInvoiceStatus(models.InvoiceStatus(status)) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	if _, err := s.GetOwned(ctx, userID, id); err != nil {
		return err
	}

	return s.invoices.UpdateStatus(ctx, id, models.InvoiceStatus(status))
}

func validateInvoiceInput(req *dto.CreateInvoiceRequest) error {
	if req.Vendor == "" {
		return fmt.Errorf("%w: vendor is required", ErrValidation)
	}
	if req.Amount < 0 {
		return fmt.Errorf("%w: amount must be non-negative", ErrValidation)
	}
	if req.Tax < 0 {
		return fmt.Errorf("%w: tax must be non-negative", ErrValidation)
	}
	if len(req.Currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter code", ErrValidation)
	}

	issue := parseDate(req.IssueDate)
	due := parseDate(req.DueDate)
	if issue.IsZero() || due.IsZero() {
		return fmt.Errorf("%w: issue_date and due_date must be YYYY-MM-DD", ErrValidation)
	}
	if due.Before(issue) {
		return fmt.Errorf("%w: due_date must be on or after issue_date", ErrValidation)
	}

	return nil
}

// parseDate parses the date formats the model and clients produce.
// Unparseable input yields the zero time.
func parseDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "01/02/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func toInvoiceResponse(inv *models.Invoice) dto.InvoiceResponse {
	resp := dto.InvoiceResponse{
		ID:            inv.ID.String(),
		UserID:        inv.UserID.String(),
		Vendor:        inv.Vendor,
		InvoiceNumber: inv.InvoiceNumber,
		Amount:        inv.Amount,
		Tax:           inv.Tax,
		Currency:      inv.Currency,
		Category:      inv.Category,
		Status:        string(inv.Status),
		Notes:         inv.Notes,
		FilePath:      inv.FilePath,
		CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
	}
	if !inv.IssueDate.IsZero() {
		resp.IssueDate = inv.IssueDate.Format("2006-01-02")
	}
	if !inv.DueDate.IsZero() {
		resp.DueDate = inv.DueDate.Format("2006-01-02")
	}
	return resp
}
