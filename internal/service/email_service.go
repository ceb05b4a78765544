package service

import (
	"context"
	"fmt"

	"invoiceflow/internal/llm"
	"invoiceflow/internal/models"

	"go.uber.org/zap"
)

const emailSystemPrompt = "You are an AI assistant that drafts professional payment reminder emails. Be polite but firm."

// EmailService drafts payment reminder emails from invoice fields.
// A model failure propagates; there is no template fallback.
type EmailService struct {
	llm    llm.Client
	logger *zap.Logger
}

func NewEmailService(llmClient llm.Client, logger *zap.Logger) *EmailService {
	return &EmailService{
		llm:    llmClient,
		logger: logger,
	}
}

func (s *EmailService) DraftReminderEmail(ctx context.Context, inv *models.Invoice) (string, error) {
	user := fmt.Sprintf("Draft a payment follow-up email for invoice #%s from %s for %.2f %s due on %s.",
		inv.InvoiceNumber, inv.Vendor, inv.Amount, inv.Currency, inv.DueDate.Format("2006-01-02"))

	content, err := s.llm.Complete(ctx, emailSystemPrompt, user)
	if err != nil {
		return "", fmt.Errorf("email draft request failed: %w", err)
	}

	s.logger.Info("Reminder email drafted",
		zap.String("invoice_id", inv.ID.String()),
		zap.Int("length", len(content)),
	)

	return content, nil
}
