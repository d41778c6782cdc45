package paypal

import "errors"

var (
	// ErrProviderAuth is returned when the client-credentials exchange fails.
	ErrProviderAuth = errors.New("paypal: access token request failed")
	// ErrSubscriptionCreate is returned when a subscription cannot be created
	// or PayPal responds without an approval link.
	ErrSubscriptionCreate = errors.New("paypal: subscription create failed")
	// ErrSubscriptionFetch is returned when subscription details cannot be read.
	ErrSubscriptionFetch = errors.New("paypal: subscription fetch failed")
)

// apiError is the error envelope PayPal returns on non-2xx responses.
type apiError struct {
	Name             string `json:"name"`
	Message          string `json:"message"`
	DebugID          string `json:"debug_id"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e apiError) String() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Error != "":
		return e.Error
	}
	return e.Name
}
