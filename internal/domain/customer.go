package domain

// IdentifierMode selects which Strapi key addresses a customer on update.
type IdentifierMode string

const (
	// IdentifierDocumentID addresses records by documentId (Strapi v5).
	IdentifierDocumentID IdentifierMode = "document_id"
	// IdentifierNumericID addresses records by numeric id (Strapi v4).
	IdentifierNumericID IdentifierMode = "id"
)

// Customer mirrors the customer collection stored in the directory.
// Key is the opaque identifier the directory expects on update.
type Customer struct {
	Key             string `json:"-"`
	ID              int64  `json:"id,omitempty"`
	DocumentID      string `json:"documentId,omitempty"`
	Email           string `json:"email"`
	SpotifyURL      string `json:"spotify_url,omitempty"`
	SubscriptionID  string `json:"subscription_id,omitempty"`
	PaymentStatus   string `json:"payment_status,omitempty"`
	PayPalStartTime string `json:"paypal_start_time,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	PasswordHash    string `json:"password,omitempty"`
}

// CustomerPatch carries the fields written after reconciliation.
type CustomerPatch struct {
	Email           string `json:"email,omitempty"`
	PaymentStatus   string `json:"payment_status,omitempty"`
	PayPalStartTime string `json:"paypal_start_time,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
}
