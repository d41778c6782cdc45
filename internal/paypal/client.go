package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/thiloilg/page-for-artists.com/internal/config"
	"github.com/thiloilg/page-for-artists.com/internal/domain"
)

const tokenExpirySkew = time.Minute

// Client talks to the PayPal REST API.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	brandName    string

	httpClient *http.Client
	cache      TokenCache
	logger     *zap.Logger
}

// NewClient builds a client. A nil cache disables token reuse.
func NewClient(cfg config.PayPalConfig, httpClient *http.Client, cache TokenCache, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cache == nil {
		cache = noopTokenCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.APIURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		brandName:    cfg.BrandName,
		httpClient:   httpClient,
		cache:        cache,
		logger:       logger,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// GetAccessToken performs the client-credentials exchange.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	if token, ok := c.cache.Get(ctx, c.clientID); ok {
		return token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderAuth, err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("fetching paypal access token")
	status, body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderAuth, err)
	}
	if !isSuccess(status) {
		return "", fmt.Errorf("%w: status=%d message=%s", ErrProviderAuth, status, errorMessage(body))
	}

	var out tokenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrProviderAuth, err)
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return "", fmt.Errorf("%w: empty access_token", ErrProviderAuth)
	}

	if out.ExpiresIn > 0 {
		c.cache.Set(ctx, c.clientID, out.AccessToken, time.Duration(out.ExpiresIn)*time.Second-tokenExpirySkew)
	}
	return out.AccessToken, nil
}

// CreateSubscriptionRequest describes a new subscription for a plan.
type CreateSubscriptionRequest struct {
	PlanID    string
	Email     string
	CustomID  string
	ReturnURL string
	CancelURL string
}

// CreatedSubscription is the part of the create response the workflow needs.
type CreatedSubscription struct {
	ID          string
	Status      domain.SubscriptionStatus
	ApprovalURL string
}

type applicationContext struct {
	BrandName          string `json:"brand_name,omitempty"`
	ShippingPreference string `json:"shipping_preference"`
	UserAction         string `json:"user_action"`
	ReturnURL          string `json:"return_url"`
	CancelURL          string `json:"cancel_url"`
}

type createSubscriptionBody struct {
	PlanID             string             `json:"plan_id"`
	Subscriber         subscriberBody     `json:"subscriber"`
	CustomID           string             `json:"custom_id"`
	ApplicationContext applicationContext `json:"application_context"`
}

type subscriberBody struct {
	EmailAddress string `json:"email_address"`
}

// CreateSubscription creates a subscription and extracts its approval link.
func (c *Client) CreateSubscription(ctx context.Context, accessToken string, in CreateSubscriptionRequest) (*CreatedSubscription, error) {
	payload, err := json.Marshal(createSubscriptionBody{
		PlanID:     in.PlanID,
		Subscriber: subscriberBody{EmailAddress: in.Email},
		CustomID:   in.CustomID,
		ApplicationContext: applicationContext{
			BrandName:          c.brandName,
			ShippingPreference: "NO_SHIPPING",
			UserAction:         "SUBSCRIBE_NOW",
			ReturnURL:          in.ReturnURL,
			CancelURL:          in.CancelURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubscriptionCreate, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/billing/subscriptions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubscriptionCreate, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("creating paypal subscription", zap.String("plan_id", in.PlanID))
	status, body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubscriptionCreate, err)
	}
	if !isSuccess(status) {
		c.evictRejectedToken(ctx, status)
		return nil, fmt.Errorf("%w: status=%d message=%s", ErrSubscriptionCreate, status, errorMessage(body))
	}

	var sub domain.Subscription
	if err := json.Unmarshal(body, &sub); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSubscriptionCreate, err)
	}
	if sub.ID == "" {
		return nil, fmt.Errorf("%w: response without id", ErrSubscriptionCreate)
	}

	approvalURL, ok := domain.ApprovalLink(sub.Links)
	if !ok {
		return nil, fmt.Errorf("%w: subscription %s has no approve link", ErrSubscriptionCreate, sub.ID)
	}

	return &CreatedSubscription{ID: sub.ID, Status: sub.Status, ApprovalURL: approvalURL}, nil
}

// FetchSubscription reads the live subscription state.
func (c *Client) FetchSubscription(ctx context.Context, accessToken, subscriptionID string) (*domain.Subscription, error) {
	if strings.TrimSpace(subscriptionID) == "" {
		return nil, fmt.Errorf("%w: subscription id is required", ErrSubscriptionFetch)
	}

	endpoint := c.baseURL + "/v1/billing/subscriptions/" + url.PathEscape(subscriptionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubscriptionFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("fetching paypal subscription", zap.String("subscription_id", subscriptionID))
	status, body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubscriptionFetch, err)
	}
	if !isSuccess(status) {
		c.evictRejectedToken(ctx, status)
		return nil, fmt.Errorf("%w: status=%d message=%s", ErrSubscriptionFetch, status, errorMessage(body))
	}

	var sub domain.Subscription
	if err := json.Unmarshal(body, &sub); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSubscriptionFetch, err)
	}
	return &sub, nil
}

// evictRejectedToken drops the cached bearer token after a 401 so the next
// call performs a fresh client-credentials exchange.
func (c *Client) evictRejectedToken(ctx context.Context, status int) {
	if status != http.StatusUnauthorized {
		return
	}
	c.logger.Warn("paypal rejected cached access token; evicting")
	c.cache.Delete(ctx, c.clientID)
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func errorMessage(body []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil {
		if msg := apiErr.String(); msg != "" {
			return msg
		}
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return string(body)
}
