package repository

import (
	"context"

	"invoiceflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PaymentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPaymentRepository(db *pgxpool.Pool, logger *zap.Logger) *PaymentRepository {
	return &PaymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.PaymentRecord) error {
	query := squirrel.Insert("payment_records").
		Columns("id", "invoice_id", "amount", "payment_date", "payment_method", "stripe_payment_id", "created_at").
		Values(p.ID, p.InvoiceID, p.Amount, p.PaymentDate, p.PaymentMethod, p.StripePaymentID, p.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *PaymentRepository) ListByInvoiceID(ctx context.Context, invoiceID uuid.UUID) ([]*models.PaymentRecord, error) {
	query := squirrel.Select("id", "invoice_id", "amount", "payment_date", "payment_method", "stripe_payment_id", "created_at").
		From("payment_records").
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("payment_date ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.PaymentRecord
	for rows.Next() {
		var p models.PaymentRecord
		if err := rows.Scan(
			&p.ID, &p.InvoiceID, &p.Amount, &p.PaymentDate, &p.PaymentMethod, &p.StripePaymentID, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, &p)
	}

	return records, rows.Err()
}

func (r *PaymentRepository) CountByInvoiceID(ctx context.Context, invoiceID uuid.UUID) (int, error) {
	query := squirrel.Select("COUNT(*)").
		From("payment_records").
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}
