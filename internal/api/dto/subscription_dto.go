package dto

// CreateSubscriptionRequest accepts the artist as a URI or a profile URL.
type CreateSubscriptionRequest struct {
	SpotifyURI string `json:"spotifyUri"`
	SpotifyURL string `json:"spotifyUrl"`
	Email      string `json:"email" validate:"required,email"`
}

// Artist returns whichever artist reference the client sent.
func (r CreateSubscriptionRequest) Artist() string {
	if r.SpotifyURI != "" {
		return r.SpotifyURI
	}
	return r.SpotifyURL
}

// CreateSubscriptionResponse tells the client where to send the browser.
type CreateSubscriptionResponse struct {
	SubscriptionID string `json:"subscriptionId"`
	ApprovalURL    string `json:"approvalUrl"`
}
