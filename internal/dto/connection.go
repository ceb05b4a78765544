package dto

type UpsertConnectionRequest struct {
	Provider string `json:"provider"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ConnectionResponse never carries credentials.
type ConnectionResponse struct {
	ID        string `json:"id"`
	Provider  string `json:"provider"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ItemFailure reports one item of an automation run that did not complete.
type ItemFailure struct {
	Item  string `json:"item"`
	Error string `json:"error"`
}

// ImportResponse reports partial progress explicitly: files that were
// fetched are returned even when later items failed.
type ImportResponse struct {
	Provider string        `json:"provider"`
	Files    []string      `json:"files"`
	Failures []ItemFailure `json:"failures,omitempty"`
}

type ExportRequest struct {
	InvoiceID string `json:"invoiceId"`
}

type ExportResponse struct {
	Success  bool   `json:"success"`
	Provider string `json:"provider"`
}
