package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceflow/pkg/config"
)

func TestNewOpenAIClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.OpenAIConfig
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     config.OpenAIConfig{APIKey: "test-key"},
			wantErr: false,
		},
		{
			name:    "missing API key",
			cfg:     config.OpenAIConfig{},
			wantErr: true,
		},
		{
			name: "custom model and base URL",
			cfg: config.OpenAIConfig{
				APIKey:  "test-key",
				Model:   "gpt-4o-mini",
				BaseURL: "https://proxy.example.com/v1/",
				Timeout: 10 * time.Second,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewOpenAIClient(&tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, client)
			}
		})
	}
}

func newCompletionServer(t *testing.T, content string, gotBody *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, gotBody))

		resp := map[string]any{
			"id":    "chatcmpl-1",
			"model": "gpt-4o",
			"choices": []map[string]any{
				{
					"message":       map[string]string{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIClient_Complete(t *testing.T) {
	var gotBody map[string]any
	server := newCompletionServer(t, "Dear customer, ...", &gotBody)
	defer server.Close()

	client, err := NewOpenAIClient(&config.OpenAIConfig{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	content, err := client.Complete(context.Background(), "You draft emails.", "Draft one.")
	require.NoError(t, err)
	assert.Equal(t, "Dear customer, ...", content)
	assert.NotContains(t, gotBody, "response_format")
}

func TestOpenAIClient_CompleteJSON_SetsResponseFormat(t *testing.T) {
	var gotBody map[string]any
	server := newCompletionServer(t, `{"vendor":"Acme Corp"}`, &gotBody)
	defer server.Close()

	client, err := NewOpenAIClient(&config.OpenAIConfig{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	content, err := client.CompleteJSON(context.Background(), "Extract fields.", "Invoice text")
	require.NoError(t, err)
	assert.JSONEq(t, `{"vendor":"Acme Corp"}`, content)

	format, ok := gotBody["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])
}

func TestOpenAIClient_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(&config.OpenAIConfig{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAIClient_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","choices":[]}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(&config.OpenAIConfig{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no completion choices")
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bare object",
			content: `{"anomaly": true}`,
			want:    `{"anomaly": true}`,
		},
		{
			name:    "markdown fenced",
			content: "```json\n{\"anomaly\": false}\n```",
			want:    `{"anomaly": false}`,
		},
		{
			name:    "chatter around object",
			content: `Sure! Here is the verdict: {"anomaly": true, "reason": "amount"} Hope that helps.`,
			want:    `{"anomaly": true, "reason": "amount"}`,
		},
		{
			name:    "no object",
			content: "true",
			want:    "true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONObject(tt.content))
		})
	}
}
