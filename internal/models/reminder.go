package models

import (
	"time"

	"github.com/google/uuid"
)

type ReminderStatus string

const (
	// ReminderStatusScheduled marks rows waiting for a future dispatcher;
	// nothing in the current system sends them.
	ReminderStatusScheduled ReminderStatus = "scheduled"
)

type Reminder struct {
	ID           uuid.UUID      `db:"id"`
	InvoiceID    uuid.UUID      `db:"invoice_id"`
	ReminderDate time.Time      `db:"reminder_date"`
	Message      string         `db:"message"`
	Status       ReminderStatus `db:"status"`
	CreatedAt    time.Time      `db:"created_at"`
}
