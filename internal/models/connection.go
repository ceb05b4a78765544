package models

import (
	"time"

	"github.com/google/uuid"
)

type Provider string

const (
	ProviderGmail      Provider = "gmail"
	ProviderOutlook    Provider = "outlook"
	ProviderQuickbooks Provider = "quickbooks"
	ProviderXero       Provider = "xero"
)

// ValidProvider reports whether p names a supported portal.
func ValidProvider(p Provider) bool {
	switch p {
	case ProviderGmail, ProviderOutlook, ProviderQuickbooks, ProviderXero:
		return true
	}
	return false
}

// AccountConnection stores a user's portal login. Credentials is an
// AES-GCM sealed JSON blob; plaintext never reaches this struct.
type AccountConnection struct {
	ID          uuid.UUID `db:"id"`
	UserID      uuid.UUID `db:"user_id"`
	Provider    Provider  `db:"provider"`
	Credentials string    `db:"credentials"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Credentials is the decrypted shape of AccountConnection.Credentials.
// Email providers use Email+Password; accounting providers may use
// Username instead of Email.
type Credentials struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

// Login returns whichever identifier the provider login form expects.
func (c Credentials) Login() string {
	if c.Username != "" {
		return c.Username
	}
	return c.Email
}
