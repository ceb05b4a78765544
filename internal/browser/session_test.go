package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"invoiceflow/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionClient(t *testing.T, handler http.HandlerFunc) *SessionClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewSessionClient(&config.BrowserConfig{
		BaseURL:       srv.URL,
		APIKey:        "test-key",
		ScriptTimeout: 5 * time.Second,
		DownloadDir:   t.TempDir(),
	})
}

func TestSessionClientCreate(t *testing.T) {
	client := newTestSessionClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/session", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "sess-1", "wsEndpoint": "ws://example.com/devtools/sess-1"}`))
	})

	session, err := client.Create(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sess-1", session.ID)
	assert.Equal(t, "ws://example.com/devtools/sess-1", session.WSEndpoint)
}

func TestSessionClientCreateIncompleteResponse(t *testing.T) {
	client := newTestSessionClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "sess-1"}`))
	})

	_, err := client.Create(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wsEndpoint")
}

func TestSessionClientCreateServerError(t *testing.T) {
	client := newTestSessionClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	})

	_, err := client.Create(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSessionClientDownloadFile(t *testing.T) {
	client := newTestSessionClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/session/sess-1/downloads/guid-42", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		w.Write([]byte("%PDF-1.4 invoice"))
	})

	data, err := client.DownloadFile(context.Background(), "sess-1", "guid-42")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 invoice"), data)
}

func TestSessionClientDownloadFileMissing(t *testing.T) {
	client := newTestSessionClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such download", http.StatusNotFound)
	})

	_, err := client.DownloadFile(context.Background(), "sess-1", "guid-42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestSessionClientStop(t *testing.T) {
	var gotPath, gotMethod string
	client := newTestSessionClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	})

	err := client.Stop(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/session/sess-1/stop", gotPath)
}
