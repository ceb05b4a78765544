package repository

import (
	"context"
	"time"

	"invoiceflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var invoiceColumns = []string{
	"id", "user_id", "vendor", "invoice_number", "issue_date", "due_date",
	"amount", "tax", "currency", "category", "status", "notes", "file_path",
	"created_at", "updated_at",
}

type InvoiceRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewInvoiceRepository(db *pgxpool.Pool, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	query := squirrel.Insert("invoices").
		Columns(invoiceColumns...).
		Values(inv.ID, inv.UserID, inv.Vendor, inv.InvoiceNumber, inv.IssueDate, inv.DueDate,
			inv.Amount, inv.Tax, inv.Currency, inv.Category, inv.Status, inv.Notes, inv.FilePath,
			inv.CreatedAt, inv.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	query := squirrel.Select(invoiceColumns...).
		From("invoices").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var inv models.Invoice
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&inv.ID, &inv.UserID, &inv.Vendor, &inv.InvoiceNumber, &inv.IssueDate, &inv.DueDate,
		&inv.Amount, &inv.Tax, &inv.Currency, &inv.Category, &inv.Status, &inv.Notes, &inv.FilePath,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &inv, nil
}

// ListByUserID returns the user's invoices, oldest first. The anomaly
// detector relies on this ordering to take the most recent slice.
func (r *InvoiceRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Invoice, error) {
	query := squirrel.Select(invoiceColumns...).
		From("invoices").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	return r.list(ctx, query)
}

// ListPageByUserID returns the user's invoices, newest first, paginated.
func (r *InvoiceRepository) ListPageByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	query := squirrel.Select(invoiceColumns...).
		From("invoices").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	return r.list(ctx, query)
}

// ListByIssueDateRange returns the user's invoices whose issue date falls
// within [start, end], oldest first.
func (r *InvoiceRepository) ListByIssueDateRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*models.Invoice, error) {
	query := squirrel.Select(invoiceColumns...).
		From("invoices").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.GtOrEq{"issue_date": start}).
		Where(squirrel.LtOrEq{"issue_date": end}).
		OrderBy("issue_date ASC").
		PlaceholderFormat(squirrel.Dollar)

	return r.list(ctx, query)
}

func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) error {
	query := squirrel.Update("invoices").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *InvoiceRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Invoice, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		var inv models.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.UserID, &inv.Vendor, &inv.InvoiceNumber, &inv.IssueDate, &inv.DueDate,
			&inv.Amount, &inv.Tax, &inv.Currency, &inv.Category, &inv.Status, &inv.Notes, &inv.FilePath,
			&inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, err
		}
		invoices = append(invoices, &inv)
	}

	return invoices, rows.Err()
}
