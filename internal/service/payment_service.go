package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"invoiceflow/internal/dto"
	"invoiceflow/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"
)

// intentCreator is the slice of the Stripe client the service needs.
// *paymentintent.Client satisfies it.
type intentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type paymentInvoiceStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ListByIssueDateRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*models.Invoice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) error
}

type paymentStore interface {
	Create(ctx context.Context, p *models.PaymentRecord) error
	ListByInvoiceID(ctx context.Context, invoiceID uuid.UUID) ([]*models.PaymentRecord, error)
	CountByInvoiceID(ctx context.Context, invoiceID uuid.UUID) (int, error)
}

type reminderStore interface {
	Create(ctx context.Context, rem *models.Reminder) error
}

// PaymentService drives payment intents, reminder scheduling and the
// payment report.
type PaymentService struct {
	intents   intentCreator
	invoices  paymentInvoiceStore
	payments  paymentStore
	reminders reminderStore
	logger    *zap.Logger
}

func NewPaymentService(intents intentCreator, invoices paymentInvoiceStore, payments paymentStore, reminders reminderStore, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		intents:   intents,
		invoices:  invoices,
		payments:  payments,
		reminders: reminders,
		logger:    logger,
	}
}

// ProcessPayment creates a Stripe payment intent for the invoice, records
// the attempt and moves the invoice to processing. The idempotency key is
// derived from the invoice id and the attempt count, so a retry of the same
// attempt reuses the same intent while a deliberate new attempt gets a new
// one. A gateway failure aborts before anything is written.
func (s *PaymentService) ProcessPayment(ctx context.Context, userID, invoiceID uuid.UUID) (*dto.ProcessPaymentResponse, error) {
	inv, err := s.ownedInvoice(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.payments.CountByInvoiceID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	idempotencyKey := fmt.Sprintf("invoice-%s-attempt-%d", invoiceID, attempts+1)

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(int64(math.Round(inv.Amount * 100))),
		Currency:    stripe.String(strings.ToLower(inv.Currency)),
		Description: stripe.String(fmt.Sprintf("Payment for invoice #%s", inv.InvoiceNumber)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("invoice_id", inv.ID.String())
	params.AddMetadata("vendor", inv.Vendor)
	params.SetIdempotencyKey(idempotencyKey)

	intent, err := s.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("payment gateway error: %w", err)
	}

	now := time.Now()
	record := &models.PaymentRecord{
		ID:              uuid.New(),
		InvoiceID:       inv.ID,
		Amount:          inv.Amount,
		PaymentDate:     now,
		PaymentMethod:   models.PaymentMethodStripe,
		StripePaymentID: intent.ID,
		CreatedAt:       now,
	}
	if err := s.payments.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	if err := s.invoices.UpdateStatus(ctx, inv.ID, models.InvoiceStatusProcessing); err != nil {
		return nil, fmt.Errorf("failed to update invoice status: %w", err)
	}

	s.logger.Info("Payment intent created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("payment_intent", intent.ID),
		zap.Int("attempt", attempts+1),
	)

	return &dto.ProcessPaymentResponse{
		Success:      true,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// ScheduleReminder stores a reminder row with status scheduled. Nothing in
// the system dispatches scheduled reminders yet.
func (s *PaymentService) ScheduleReminder(ctx context.Context, userID uuid.UUID, req *dto.ScheduleReminderRequest) (*dto.ReminderResponse, error) {
	invoiceID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid invoice id", ErrValidation)
	}

	if _, err := s.ownedInvoice(ctx, userID, invoiceID); err != nil {
		return nil, err
	}

	reminderDate := parseDate(req.ReminderDate)
	if reminderDate.IsZero() {
		return nil, fmt.Errorf("%w: reminderDate must be YYYY-MM-DD", ErrValidation)
	}

	message := req.Message
	if message == "" {
		message = "Payment reminder for your invoice"
	}

	rem := &models.Reminder{
		ID:           uuid.New(),
		InvoiceID:    invoiceID,
		ReminderDate: reminderDate,
		Message:      message,
		Status:       models.ReminderStatusScheduled,
		CreatedAt:    time.Now(),
	}
	if err := s.reminders.Create(ctx, rem); err != nil {
		return nil, err
	}

	return &dto.ReminderResponse{
		ID:           rem.ID.String(),
		InvoiceID:    rem.InvoiceID.String(),
		ReminderDate: rem.ReminderDate.Format("2006-01-02"),
		Message:      rem.Message,
		Status:       string(rem.Status),
		CreatedAt:    rem.CreatedAt.Format(time.RFC3339),
	}, nil
}

// Report aggregates invoiced and paid totals over invoices issued within
// [start, end]. Sums are computed here rather than in SQL so the per-invoice
// breakdown and the totals always come from the same rows.
func (s *PaymentService) Report(ctx context.Context, userID uuid.UUID, start, end time.Time) (*dto.PaymentReportResponse, error) {
	invoices, err := s.invoices.ListByIssueDateRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	report := &dto.PaymentReportResponse{
		Invoices: make([]dto.InvoiceResponse, len(invoices)),
	}
	for i, inv := range invoices {
		report.Invoices[i] = toInvoiceResponse(inv)
		report.TotalInvoiced += inv.Amount

		records, err := s.payments.ListByInvoiceID(ctx, inv.ID)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			report.TotalPaid += rec.Amount
		}
	}
	report.TotalOutstanding = report.TotalInvoiced - report.TotalPaid

	return report, nil
}

func (s *PaymentService) ownedInvoice(ctx context.Context, userID, invoiceID uuid.UUID) (*models.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if inv.UserID != userID {
		return nil, ErrNotFound
	}
	return inv, nil
}
