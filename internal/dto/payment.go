package dto

type ProcessPaymentRequest struct {
	InvoiceID string `json:"invoiceId"`
}

type ProcessPaymentResponse struct {
	Success      bool   `json:"success"`
	ClientSecret string `json:"clientSecret"`
}

type ScheduleReminderRequest struct {
	InvoiceID    string `json:"invoiceId"`
	ReminderDate string `json:"reminderDate"`
	Message      string `json:"message"`
}

type ReminderResponse struct {
	ID           string `json:"id"`
	InvoiceID    string `json:"invoice_id"`
	ReminderDate string `json:"reminder_date"`
	Message      string `json:"message"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

type PaymentReportResponse struct {
	TotalInvoiced    float64           `json:"total_invoiced"`
	TotalPaid        float64           `json:"total_paid"`
	TotalOutstanding float64           `json:"total_outstanding"`
	Invoices         []InvoiceResponse `json:"invoices"`
}
