package models

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceStatusPending    InvoiceStatus = "pending"
	InvoiceStatusProcessing InvoiceStatus = "processing"
	InvoiceStatusPaid       InvoiceStatus = "paid"
	InvoiceStatusOverdue    InvoiceStatus = "overdue"
)

// ValidInvoiceStatus reports whether s is one of the known status values.
func ValidInvoiceStatus(s InvoiceStatus) bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusProcessing, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

type Invoice struct {
	ID            uuid.UUID     `db:"id"`
	UserID        uuid.UUID     `db:"user_id"`
	Vendor        string        `db:"vendor"`
	InvoiceNumber string        `db:"invoice_number"`
	IssueDate     time.Time     `db:"issue_date"`
	DueDate       time.Time     `db:"due_date"`
	Amount        float64       `db:"amount"`
	Tax           float64       `db:"tax"`
	Currency      string        `db:"currency"`
	Category      string        `db:"category"`
	Status        InvoiceStatus `db:"status"`
	Notes         string        `db:"notes"`
	FilePath      string        `db:"file_path"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}
