package repository

import (
	"context"

	"invoiceflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ConnectionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewConnectionRepository(db *pgxpool.Pool, logger *zap.Logger) *ConnectionRepository {
	return &ConnectionRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts or replaces the connection for (user, provider).
// One row per user+provider.
func (r *ConnectionRepository) Upsert(ctx context.Context, conn *models.AccountConnection) error {
	query := squirrel.Insert("account_connections").
		Columns("id", "user_id", "provider", "credentials", "created_at", "updated_at").
		Values(conn.ID, conn.UserID, conn.Provider, conn.Credentials, conn.CreatedAt, conn.UpdatedAt).
		Suffix("ON CONFLICT (user_id, provider) DO UPDATE SET credentials = EXCLUDED.credentials, updated_at = EXCLUDED.updated_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ConnectionRepository) GetByUserAndProvider(ctx context.Context, userID uuid.UUID, provider models.Provider) (*models.AccountConnection, error) {
	query := squirrel.Select("id", "user_id", "provider", "credentials", "created_at", "updated_at").
		From("account_connections").
		Where(squirrel.Eq{"user_id": userID, "provider": provider}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var conn models.AccountConnection
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&conn.ID, &conn.UserID, &conn.Provider, &conn.Credentials, &conn.CreatedAt, &conn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &conn, nil
}

func (r *ConnectionRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.AccountConnection, error) {
	query := squirrel.Select("id", "user_id", "provider", "credentials", "created_at", "updated_at").
		From("account_connections").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("provider ASC").
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

	var connections []*models.AccountConnection
	for rows.Next() {
		var conn models.AccountConnection
		if err := rows.Scan(
			&conn.ID, &conn.UserID, &conn.Provider, &conn.Credentials, &conn.CreatedAt, &conn.UpdatedAt,
		); err != nil {
			return nil, err
		}
		connections = append(connections, &conn)
	}

	return connections, rows.Err()
}

func (r *ConnectionRepository) Delete(ctx context.Context, userID uuid.UUID, provider models.Provider) error {
	query := squirrel.Delete("account_connections").
		Where(squirrel.Eq{"user_id": userID, "provider": provider}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
