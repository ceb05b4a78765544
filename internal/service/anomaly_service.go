package service

import (
	"context"
	"encoding/json"
	"fmt"

	"invoiceflow/internal/dto"
	"invoiceflow/internal/llm"
	"invoiceflow/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// minHistory is the baseline below which no judgement is attempted.
	minHistory = 5
	// historyWindow is how many of the newest invoices are shown to the model.
	historyWindow = 10
)

const anomalySystemPrompt = "You are an AI that detects financial anomalies in invoice data. " +
	"Compare the new invoice against the history and respond with a JSON object of the exact shape " +
	`{"anomaly": true|false, "reason": "one short sentence"}. ` +
	"Respond with nothing but that JSON object."

// invoiceHistorySource is the slice of the invoice repository the detector needs.
type invoiceHistorySource interface {
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Invoice, error)
}

// AnomalyService judges whether a new invoice looks unusual against the
// user's history.
type AnomalyService struct {
	invoices invoiceHistorySource
	llm      llm.Client
	logger   *zap.Logger
}

func NewAnomalyService(invoices invoiceHistorySource, llmClient llm.Client, logger *zap.Logger) *AnomalyService {
	return &AnomalyService{
		invoices: invoices,
		llm:      llmClient,
		logger:   logger,
	}
}

type anomalyVerdict struct {
	Anomaly *bool  `json:"anomaly"`
	Reason  string `json:"reason"`
}

// invoiceSnapshot is the compact per-invoice shape serialized for the model.
type invoiceSnapshot struct {
	Vendor        string  `json:"vendor"`
	InvoiceNumber string  `json:"invoiceNumber,omitempty"`
	IssueDate     string  `json:"issueDate"`
	DueDate       string  `json:"dueDate"`
	Amount        float64 `json:"amount"`
	Tax           float64 `json:"tax,omitempty"`
	Currency      string  `json:"currency"`
	Category      string  `json:"category,omitempty"`
}

// DetectAnomalies reports whether the candidate invoice is unusual for the
// user. With fewer than minHistory historical invoices it returns false
// without consulting the model. The model must answer with the strict JSON
// verdict shape; anything else is an error, never a silent false.
func (s *AnomalyService) DetectAnomalies(ctx context.Context, userID uuid.UUID, candidate *dto.ExtractedInvoiceData) (bool, error) {
	history, err := s.invoices.ListByUserID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to load invoice history: %w", err)
	}

	if len(history) < minHistory {
		s.logger.Info("Not enough history for anomaly detection",
			zap.String("user_id", userID.String()),
			zap.Int("history", len(history)),
		)
		return false, nil
	}

	// history is ordered oldest first; keep the newest historyWindow entries.
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	snapshots := make([]invoiceSnapshot, len(history))
	for i, inv := range history {
		snapshots[i] = invoiceSnapshot{
			Vendor:        inv.Vendor,
			InvoiceNumber: inv.InvoiceNumber,
			IssueDate:     inv.IssueDate.Format("2006-01-02"),
			DueDate:       inv.DueDate.Format("2006-01-02"),
			Amount:        inv.Amount,
			Tax:           inv.Tax,
			Currency:      inv.Currency,
			Category:      inv.Category,
		}
	}

	payload, err := json.Marshal(map[string]any{
		"newInvoice":     candidate,
		"invoiceHistory": snapshots,
	})
	if err != nil {
		return false, fmt.Errorf("failed to serialize invoice data: %w", err)
	}

	content, err := s.llm.CompleteJSON(ctx, anomalySystemPrompt, fmt.Sprintf("Analyze this invoice data: %s", payload))
	if err != nil {
		return false, fmt.Errorf("anomaly request failed: %w", err)
	}

	var verdict anomalyVerdict
	jsonStr := llm.ExtractJSONObject(content)
	if err := json.Unmarshal([]byte(jsonStr), &verdict); err != nil {
		return false, fmt.Errorf("failed to parse anomaly verdict: %w, content: %s", err, content)
	}
	if verdict.Anomaly == nil {
		return false, fmt.Errorf("anomaly verdict missing 'anomaly' field, content: %s", content)
	}

	s.logger.Info("Anomaly verdict",
		zap.String("user_id", userID.String()),
		zap.Bool("anomaly", *verdict.Anomaly),
		zap.String("reason", verdict.Reason),
	)

	return *verdict.Anomaly, nil
}
