package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"invoiceflow/pkg/config"
)

// Session is one remote browser instance. WSEndpoint is the CDP websocket
// the automation attaches to.
type Session struct {
	ID         string `json:"id"`
	WSEndpoint string `json:"wsEndpoint"`
}

// SessionClient talks to the remote browser provider's session API.
type SessionClient struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
}

func NewSessionClient(cfg *config.BrowserConfig) *SessionClient {
	return &SessionClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiURL:     cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

// Create starts a new remote browser session.
func (c *SessionClient) Create(ctx context.Context) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/session", bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session create request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("session create returned status %d: %s", resp.StatusCode, body)
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}
	if session.ID == "" || session.WSEndpoint == "" {
		return nil, fmt.Errorf("session response missing id or wsEndpoint: %s", body)
	}

	return &session, nil
}

// DownloadFile retrieves a file the session's browser downloaded to its own
// disk. Downloads run with the allowAndName behavior, so name is the GUID
// the remote browser stored the file under.
func (c *SessionClient) DownloadFile(ctx context.Context, sessionID, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/session/"+sessionID+"/downloads/"+name, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned status %d: %s", resp.StatusCode, body)
	}

	return body, nil
}

// Stop terminates the session. Sessions are billed until stopped, so every
// Create must be paired with a Stop.
func (c *SessionClient) Stop(ctx context.Context, sessionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.apiURL+"/session/"+sessionID+"/stop", nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("session stop request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("session stop returned status %d: %s", resp.StatusCode, body)
	}

	return nil
}
