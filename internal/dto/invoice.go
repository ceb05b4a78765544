package dto

// ExtractedInvoiceData is what the language model returns for an uploaded
// document. Fields the model could not find stay at their zero value.
type ExtractedInvoiceData struct {
	Vendor        string  `json:"vendor"`
	InvoiceNumber string  `json:"invoiceNumber"`
	IssueDate     string  `json:"issueDate"`
	DueDate       string  `json:"dueDate"`
	Amount        float64 `json:"amount"`
	Tax           float64 `json:"tax,omitempty"`
	Currency      string  `json:"currency"`
	Category      string  `json:"category,omitempty"`
}

type InvoiceResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	Vendor        string  `json:"vendor"`
	InvoiceNumber string  `json:"invoice_number,omitempty"`
	IssueDate     string  `json:"issue_date"`
	DueDate       string  `json:"due_date"`
	Amount        float64 `json:"amount"`
	Tax           float64 `json:"tax,omitempty"`
	Currency      string  `json:"currency"`
	Category      string  `json:"category,omitempty"`
	Status        string  `json:"status"`
	Notes         string  `json:"notes,omitempty"`
	FilePath      string  `json:"file_path,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type CreateInvoiceRequest struct {
	Vendor        string  `json:"vendor"`
	InvoiceNumber string  `json:"invoice_number"`
	IssueDate     string  `json:"issue_date"`
	DueDate       string  `json:"due_date"`
	Amount        float64 `json:"amount"`
	Tax           float64 `json:"tax"`
	Currency      string  `json:"currency"`
	Category      string  `json:"category"`
	Notes         string  `json:"notes"`
}

type UpdateInvoiceStatusRequest struct {
	Status string `json:"status"`
}

type ProcessInvoiceResponse struct {
	Success           bool                 `json:"success"`
	Invoice           InvoiceResponse      `json:"invoice"`
	ExtractedData     ExtractedInvoiceData `json:"extractedData"`
	SuggestedCategory string               `json:"suggestedCategory"`
}
