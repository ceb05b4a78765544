package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentMethodManual PaymentMethod = "manual"
	PaymentMethodStripe PaymentMethod = "stripe"
)

// PaymentRecord is an append-only record of a payment attempt against an invoice.
type PaymentRecord struct {
	ID              uuid.UUID     `db:"id"`
	InvoiceID       uuid.UUID     `db:"invoice_id"`
	Amount          float64       `db:"amount"`
	PaymentDate     time.Time     `db:"payment_date"`
	PaymentMethod   PaymentMethod `db:"payment_method"`
	StripePaymentID string        `db:"stripe_payment_id"`
	CreatedAt       time.Time     `db:"created_at"`
}
