package browser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"invoiceflow/internal/models"
	"invoiceflow/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCredentialSource struct {
	creds *models.Credentials
	err   error
}

func (f *fakeCredentialSource) CredentialsFor(ctx context.Context, userID uuid.UUID, provider models.Provider) (*models.Credentials, error) {
	return f.creds, f.err
}

// newUnreachableDriver builds a driver whose session API works but whose
// browser endpoint is a dead address, so every script run fails after the
// session was created.
func newUnreachableDriver(t *testing.T, stops *atomic.Int32) *Driver {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/session" {
			w.Write([]byte(`{"id": "sess-1", "wsEndpoint": "ws://127.0.0.1:1/devtools"}`))
			return
		}
		if r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/stop") {
			stops.Add(1)
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.BrowserConfig{
		BaseURL:       srv.URL,
		APIKey:        "test-key",
		ScriptTimeout: 5 * time.Second,
		DownloadDir:   t.TempDir(),
	}

	source := &fakeCredentialSource{creds: &models.Credentials{Email: "user@example.com", Password: "secret"}}
	return NewDriver(NewSessionClient(cfg), source, cfg, zap.NewNop())
}

func TestImportDocumentsStopsSessionOnFailure(t *testing.T) {
	var stops atomic.Int32
	driver := newUnreachableDriver(t, &stops)

	_, err := driver.ImportDocuments(context.Background(), uuid.New(), models.ProviderGmail)
	require.Error(t, err)
	assert.Equal(t, int32(1), stops.Load(), "session must be stopped exactly once")
}

func TestImportDocumentsReturnsPartialResponseOnFailure(t *testing.T) {
	var stops atomic.Int32
	driver := newUnreachableDriver(t, &stops)

	resp, err := driver.ImportDocuments(context.Background(), uuid.New(), models.ProviderGmail)
	require.Error(t, err)
	require.NotNil(t, resp, "progress made before the failure must not be discarded")
	assert.Equal(t, "gmail", resp.Provider)
	assert.NotNil(t, resp.Files)
}

func TestImportDocumentsUnsupportedProvider(t *testing.T) {
	var stops atomic.Int32
	driver := newUnreachableDriver(t, &stops)

	_, err := driver.ImportDocuments(context.Background(), uuid.New(), models.ProviderQuickbooks)
	require.ErrorIs(t, err, ErrUnsupportedProvider)
	assert.Equal(t, int32(0), stops.Load(), "no session should be created for an unsupported provider")
}

func TestExportInvoiceUnsupportedProvider(t *testing.T) {
	var stops atomic.Int32
	driver := newUnreachableDriver(t, &stops)

	err := driver.ExportInvoice(context.Background(), uuid.New(), models.ProviderGmail, &models.Invoice{ID: uuid.New()})
	require.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestImportDocumentsCredentialErrorSkipsSession(t *testing.T) {
	var stops atomic.Int32
	driver := newUnreachableDriver(t, &stops)
	credErr := errors.New("no connection for provider")
	driver.credentials = &fakeCredentialSource{err: credErr}

	_, err := driver.ImportDocuments(context.Background(), uuid.New(), models.ProviderGmail)
	require.ErrorIs(t, err, credErr)
	assert.Equal(t, int32(0), stops.Load())
}
