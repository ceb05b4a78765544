package service

import (
	"context"
	"testing"

	"invoiceflow/internal/dto"
	"invoiceflow/internal/models"
	"invoiceflow/pkg/secrets"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testCredentialsKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

type fakeConnectionStore struct {
	connections map[string]*models.AccountConnection
}

func newFakeConnectionStore() *fakeConnectionStore {
	return &fakeConnectionStore{connections: make(map[string]*models.AccountConnection)}
}

func (s *fakeConnectionStore) key(userID uuid.UUID, provider models.Provider) string {
	return userID.String() + "/" + string(provider)
}

func (s *fakeConnectionStore) Upsert(ctx context.Context, conn *models.AccountConnection) error {
	s.connections[s.key(conn.UserID, conn.Provider)] = conn
	return nil
}

func (s *fakeConnectionStore) GetByUserAndProvider(ctx context.Context, userID uuid.UUID, provider models.Provider) (*models.AccountConnection, error) {
	conn, ok := s.connections[s.key(userID, provider)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return conn, nil
}

func (s *fakeConnectionStore) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.AccountConnection, error) {
	var out []*models.AccountConnection
	for _, conn := range s.connections {
		if conn.UserID == userID {
			out = append(out, conn)
		}
	}
	return out, nil
}

func (s *fakeConnectionStore) Delete(ctx context.Context, userID uuid.UUID, provider models.Provider) error {
	delete(s.connections, s.key(userID, provider))
	return nil
}

func newConnectionService(t *testing.T) (*ConnectionService, *fakeConnectionStore) {
	t.Helper()
	cipher, err := secrets.NewCipher(testCredentialsKey)
	require.NoError(t, err)
	store := newFakeConnectionStore()
	return NewConnectionService(store, cipher, zap.NewNop()), store
}

func TestUpsertSealsCredentials(t *testing.T) {
	svc, store := newConnectionService(t)
	userID := uuid.New()

	resp, err := svc.Upsert(context.Background(), userID, &dto.UpsertConnectionRequest{
		Provider: "gmail",
		Email:    "books@example.com",
		Password: "hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, "gmail", resp.Provider)

	stored := store.connections[store.key(userID, models.ProviderGmail)]
	require.NotNil(t, stored)
	assert.NotContains(t, stored.Credentials, "hunter2", "password must not be stored in plaintext")
	assert.NotContains(t, stored.Credentials, "books@example.com")
}

func TestCredentialsForRoundTrip(t *testing.T) {
	svc, _ := newConnectionService(t)
	userID := uuid.New()

	_, err := svc.Upsert(context.Background(), userID, &dto.UpsertConnectionRequest{
		Provider: "quickbooks",
		Username: "acme-books",
		Password: "hunter2",
	})
	require.NoError(t, err)

	creds, err := svc.CredentialsFor(context.Background(), userID, models.ProviderQuickbooks)
	require.NoError(t, err)
	assert.Equal(t, "acme-books", creds.Username)
	assert.Equal(t, "hunter2", creds.Password)
	assert.Equal(t, "acme-books", creds.Login())
}

func TestCredentialsForMissingConnection(t *testing.T) {
	svc, _ := newConnectionService(t)

	_, err := svc.CredentialsFor(context.Background(), uuid.New(), models.ProviderXero)
	require.ErrorIs(t, err, ErrNoConnection)
}

func TestUpsertValidation(t *testing.T) {
	svc, _ := newConnectionService(t)
	userID := uuid.New()

	_, err := svc.Upsert(context.Background(), userID, &dto.UpsertConnectionRequest{
		Provider: "fastmail",
		Email:    "a@b.c",
		Password: "x",
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Upsert(context.Background(), userID, &dto.UpsertConnectionRequest{
		Provider: "gmail",
		Email:    "a@b.c",
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Upsert(context.Background(), userID, &dto.UpsertConnectionRequest{
		Provider: "gmail",
		Password: "x",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestListNeverReturnsCredentials(t *testing.T) {
	svc, _ := newConnectionService(t)
	userID := uuid.New()

	_, err := svc.Upsert(context.Background(), userID, &dto.UpsertConnectionRequest{
		Provider: "outlook",
		Email:    "books@example.com",
		Password: "hunter2",
	})
	require.NoError(t, err)

	connections, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, connections, 1)
	assert.Equal(t, "outlook", connections[0].Provider)
}
