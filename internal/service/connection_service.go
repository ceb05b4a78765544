package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"invoiceflow/internal/dto"
	"invoiceflow/internal/models"
	"invoiceflow/pkg/secrets"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// connectionStore is the slice of the connection repository the service needs.
type connectionStore interface {
	Upsert(ctx context.Context, conn *models.AccountConnection) error
	GetByUserAndProvider(ctx context.Context, userID uuid.UUID, provider models.Provider) (*models.AccountConnection, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.AccountConnection, error)
	Delete(ctx context.Context, userID uuid.UUID, provider models.Provider) error
}

// ConnectionService manages portal credentials. Credentials are sealed
// before they touch the repository and unsealed only for the browser driver.
type ConnectionService struct {
	connections connectionStore
	cipher      *secrets.Cipher
	logger      *zap.Logger
}

func NewConnectionService(connections connectionStore, cipher *secrets.Cipher, logger *zap.Logger) *ConnectionService {
	return &ConnectionService{
		connections: connections,
		cipher:      cipher,
		logger:      logger,
	}
}

func (s *ConnectionService) Upsert(ctx context.Context, userID uuid.UUID, req *dto.UpsertConnectionRequest) (*dto.ConnectionResponse, error) {
	provider := models.Provider(req.Provider)
	if !models.ValidProvider(provider) {
		return nil, fmt.Errorf("%w: unknown provider %q", ErrValidation, req.Provider)
	}
	if req.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if req.Email == "" && req.Username == "" {
		return nil, fmt.Errorf("%w: email or username is required", ErrValidation)
	}

	plaintext, err := json.Marshal(models.Credentials{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	sealed, err := s.cipher.Seal(plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to seal credentials: %w", err)
	}

	now := time.Now()
	conn := &models.AccountConnection{
		ID:          uuid.New(),
		UserID:      userID,
		Provider:    provider,
		Credentials: sealed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.connections.Upsert(ctx, conn); err != nil {
		return nil, err
	}

	s.logger.Info("Connection saved",
		zap.String("user_id", userID.String()),
		zap.String("provider", string(provider)),
	)

	return toConnectionResponse(conn), nil
}

func (s *ConnectionService) List(ctx context.Context, userID uuid.UUID) ([]dto.ConnectionResponse, error) {
	connections, err := s.connections.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ConnectionResponse, len(connections))
	for i, conn := range connections {
		responses[i] = *toConnectionResponse(conn)
	}

	return responses, nil
}

func (s *ConnectionService) Delete(ctx context.Context, userID uuid.UUID, provider string) error {
	p := models.Provider(provider)
	if !models.ValidProvider(p) {
		return fmt.Errorf("%w: unknown provider %q", ErrValidation, provider)
	}

	return s.connections.Delete(ctx, userID, p)
}

// CredentialsFor unseals the stored login for (user, provider). Only the
// browser driver calls this; the decrypted value is never persisted or
// returned over the API.
func (s *ConnectionService) CredentialsFor(ctx context.Context, userID uuid.UUID, provider models.Provider) (*models.Credentials, error) {
	conn, err := s.connections.GetByUserAndProvider(ctx, userID, provider)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNoConnection, provider)
		}
		return nil, err
	}

	plaintext, err := s.cipher.Open(conn.Credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal credentials: %w", err)
	}

	var creds models.Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, fmt.Errorf("failed to decode credentials: %w", err)
	}

	return &creds, nil
}

func toConnectionResponse(conn *models.AccountConnection) *dto.ConnectionResponse {
	return &dto.ConnectionResponse{
		ID:        conn.ID.String(),
		Provider:  string(conn.Provider),
		CreatedAt: conn.CreatedAt.Format(time.RFC3339),
		UpdatedAt: conn.UpdatedAt.Format(time.RFC3339),
	}
}
