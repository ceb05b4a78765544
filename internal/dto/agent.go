package dto

type DetectAnomalyRequest struct {
	UserID      string                `json:"userId"`
	InvoiceData *ExtractedInvoiceData `json:"invoiceData"`
}

type DetectAnomalyResponse struct {
	IsAnomaly bool   `json:"isAnomaly"`
	Message   string `json:"message"`
}

type EmailReminderRequest struct {
	InvoiceID string `json:"invoiceId"`
}

type EmailReminderResponse struct {
	Success      bool   `json:"success"`
	EmailContent string `json:"emailContent"`
}
