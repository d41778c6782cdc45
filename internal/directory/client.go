package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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

var (
	// ErrCustomerNotFound is returned when a filter matches no customer.
	ErrCustomerNotFound = errors.New("directory: customer not found")
	// ErrDirectoryWrite is returned when creating or updating a customer fails.
	ErrDirectoryWrite = errors.New("directory: write failed")
	// ErrDirectoryRead is returned when a lookup cannot be performed.
	ErrDirectoryRead = errors.New("directory: read failed")
)

const linkTrackingsQuery = "populate[link][fields][0]=url&populate[link][fields][1]=platform" +
	"&populate[page][fields][0]=name&populate[page][fields][1]=domain"

// Client is the Strapi-backed customer directory.
type Client struct {
	origin     string
	token      string
	mode       domain.IdentifierMode
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a Strapi client.
func NewClient(cfg config.StrapiConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	mode := domain.IdentifierMode(cfg.IdentifierMode)
	if mode != domain.IdentifierNumericID {
		mode = domain.IdentifierDocumentID
	}
	return &Client{
		origin:     strings.TrimRight(cfg.APIOrigin, "/"),
		token:      cfg.APIToken,
		mode:       mode,
		httpClient: httpClient,
		logger:     logger,
	}
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

type strapiError struct {
	Message string `json:"message"`
	Error   struct {
		Status  int    `json:"status"`
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateCustomer stores a new customer record.
func (c *Client) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	customer.ID = 0
	customer.DocumentID = ""

	status, body, err := c.send(ctx, http.MethodPost, "/api/customers", customer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryWrite, err)
	}
	if !isSuccess(status) {
		return nil, fmt.Errorf("%w: status=%d message=%s", ErrDirectoryWrite, status, errorMessage(body))
	}

	stored, err := c.decodeOne(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryWrite, err)
	}
	return stored, nil
}

// FindCustomerBySubscriptionID looks a customer up by PayPal subscription id.
func (c *Client) FindCustomerBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.Customer, error) {
	return c.findBy(ctx, "subscription_id", subscriptionID)
}

// FindCustomerByEmail looks a customer up by login email.
func (c *Client) FindCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return c.findBy(ctx, "email", email)
}

// UpdateCustomer writes patch to the record addressed by key.
func (c *Client) UpdateCustomer(ctx context.Context, key string, patch domain.CustomerPatch) (*domain.Customer, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%w: empty customer key", ErrDirectoryWrite)
	}

	c.logger.Debug("updating directory customer", zap.String("key", key))
	status, body, err := c.send(ctx, http.MethodPut, "/api/customers/"+url.PathEscape(key), patch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryWrite, err)
	}
	if !isSuccess(status) {
		return nil, fmt.Errorf("%w: status=%d message=%s", ErrDirectoryWrite, status, errorMessage(body))
	}

	stored, err := c.decodeOne(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryWrite, err)
	}
	return stored, nil
}

// ListLinkTrackings returns the link-tracking collection as Strapi renders it.
func (c *Client) ListLinkTrackings(ctx context.Context) (json.RawMessage, error) {
	status, body, err := c.send(ctx, http.MethodGet, "/api/link-trackings?"+linkTrackingsQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryRead, err)
	}
	if !isSuccess(status) {
		return nil, fmt.Errorf("%w: status=%d message=%s", ErrDirectoryRead, status, errorMessage(body))
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: invalid json body", ErrDirectoryRead)
	}
	return json.RawMessage(body), nil
}

func (c *Client) findBy(ctx context.Context, field, value string) (*domain.Customer, error) {
	if strings.TrimSpace(value) == "" {
		return nil, ErrCustomerNotFound
	}

	query := url.Values{}
	query.Set(fmt.Sprintf("filters[%s][$eq]", field), value)

	c.logger.Debug("finding directory customer", zap.String("field", field))
	status, body, err := c.send(ctx, http.MethodGet, "/api/customers?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryRead, err)
	}
	if !isSuccess(status) {
		return nil, fmt.Errorf("%w: status=%d message=%s", ErrDirectoryRead, status, errorMessage(body))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrDirectoryRead, err)
	}
	var entries []json.RawMessage
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &entries); err != nil {
			return nil, fmt.Errorf("%w: decode: %v", ErrDirectoryRead, err)
		}
	}
	if len(entries) == 0 {
		return nil, ErrCustomerNotFound
	}

	customer, err := c.decodeEntry(entries[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryRead, err)
	}
	return customer, nil
}

func (c *Client) send(ctx context.Context, method, path string, data any) (int, []byte, error) {
	var reqBody io.Reader
	if data != nil {
		payload, err := json.Marshal(map[string]any{"data": data})
		if err != nil {
			return 0, nil, err
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.origin+path, reqBody)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func (c *Client) decodeOne(body []byte) (*domain.Customer, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, errors.New("response without data")
	}
	return c.decodeEntry(env.Data)
}

// decodeEntry flattens Strapi v4 {id, attributes:{...}} and v5 flat entries.
func (c *Client) decodeEntry(raw json.RawMessage) (*domain.Customer, error) {
	var customer domain.Customer
	if err := json.Unmarshal(raw, &customer); err != nil {
		return nil, err
	}

	var nested struct {
		Attributes json.RawMessage `json:"attributes"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested.Attributes) > 0 && string(nested.Attributes) != "null" {
		id := customer.ID
		if err := json.Unmarshal(nested.Attributes, &customer); err != nil {
			return nil, err
		}
		customer.ID = id
	}

	customer.Key = c.keyOf(customer)
	return &customer, nil
}

func (c *Client) keyOf(customer domain.Customer) string {
	if c.mode == domain.IdentifierNumericID {
		if customer.ID == 0 {
			return ""
		}
		return fmt.Sprintf("%d", customer.ID)
	}
	return customer.DocumentID
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func errorMessage(body []byte) string {
	var se strapiError
	if err := json.Unmarshal(body, &se); err == nil {
		if se.Error.Message != "" {
			return se.Error.Message
		}
		if se.Message != "" {
			return se.Message
		}
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return string(body)
}
