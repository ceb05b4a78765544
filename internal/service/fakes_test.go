package service

import (
	"context"
	"errors"
	"time"

	"invoiceflow/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stripe/stripe-go/v79"
)

// fakeLLM plays back scripted responses and records every prompt it saw.
type fakeLLM struct {
	responses []string
	err       error
	calls     int
	systems   []string
	users     []string
}

func (f *fakeLLM) Complete(ctx context.Context, system, user string) (string, error) {
	return f.next(system, user)
}

func (f *fakeLLM) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	return f.next(system, user)
}

func (f *fakeLLM) next(system, user string) (string, error) {
	f.calls++
	f.systems = append(f.systems, system)
	f.users = append(f.users, user)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

// fakeInvoiceStore is an in-memory invoice repository.
type fakeInvoiceStore struct {
	invoices []*models.Invoice
	err      error
}

func (s *fakeInvoiceStore) Create(ctx context.Context, inv *models.Invoice) error {
	if s.err != nil {
		return s.err
	}
	s.invoices = append(s.invoices, inv)
	return nil
}

func (s *fakeInvoiceStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	for _, inv := range s.invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeInvoiceStore) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Invoice, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*models.Invoice
	for _, inv := range s.invoices {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *fakeInvoiceStore) ListPageByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	all, err := s.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	// newest first
	var out []*models.Invoice
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, all[i])
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeInvoiceStore) ListByIssueDateRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*models.Invoice, error) {
	var out []*models.Invoice
	for _, inv := range s.invoices {
		if inv.UserID == userID && !inv.IssueDate.Before(start) && !inv.IssueDate.After(end) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *fakeInvoiceStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) error {
	for _, inv := range s.invoices {
		if inv.ID == id {
			inv.Status = status
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakePaymentStore struct {
	records []*models.PaymentRecord
}

func (s *fakePaymentStore) Create(ctx context.Context, p *models.PaymentRecord) error {
	s.records = append(s.records, p)
	return nil
}

func (s *fakePaymentStore) ListByInvoiceID(ctx context.Context, invoiceID uuid.UUID) ([]*models.PaymentRecord, error) {
	var out []*models.PaymentRecord
	for _, rec := range s.records {
		if rec.InvoiceID == invoiceID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *fakePaymentStore) CountByInvoiceID(ctx context.Context, invoiceID uuid.UUID) (int, error) {
	records, _ := s.ListByInvoiceID(ctx, invoiceID)
	return len(records), nil
}

type fakeReminderStore struct {
	reminders []*models.Reminder
}

func (s *fakeReminderStore) Create(ctx context.Context, rem *models.Reminder) error {
	s.reminders = append(s.reminders, rem)
	return nil
}

// fakeIntents records the params of every created payment intent.
type fakeIntents struct {
	params []*stripe.PaymentIntentParams
	intent *stripe.PaymentIntent
	err    error
}

func (f *fakeIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	return f.intent, nil
}
