package repository

import (
	"context"

	"invoiceflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ReminderRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewReminderRepository(db *pgxpool.Pool, logger *zap.Logger) *ReminderRepository {
	return &ReminderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ReminderRepository) Create(ctx context.Context, rem *models.Reminder) error {
	query := squirrel.Insert("reminders").
		Columns("id", "invoice_id", "reminder_date", "message", "status", "created_at").
		Values(rem.ID, rem.InvoiceID, rem.ReminderDate, rem.Message, rem.Status, rem.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
