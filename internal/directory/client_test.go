package directory

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thiloilg/page-for-artists.com/internal/config"
	"github.com/thiloilg/page-for-artists.com/internal/domain"
)

func newTestClient(t *testing.T, mode string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.StrapiConfig{
		APIOrigin:      srv.URL,
		APIToken:       "strapi-token",
		IdentifierMode: mode,
	}, srv.Client(), nil)
}

func TestCreateCustomer(t *testing.T) {
	client := newTestClient(t, "document_id", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/customers", r.URL.Path)
		assert.Equal(t, "Bearer strapi-token", r.Header.Get("Authorization"))

		var body struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "I-X", body.Data["subscription_id"])
		assert.Equal(t, "APPROVAL_PENDING", body.Data["payment_status"])
		assert.NotContains(t, body.Data, "id")
		assert.NotContains(t, body.Data, "password")

		_, _ = w.Write([]byte(`{"data":{"id":7,"documentId":"doc-7","email":"a@b.com","subscription_id":"I-X"}}`))
	})

	stored, err := client.CreateCustomer(context.Background(), domain.Customer{
		Email:          "a@b.com",
		SpotifyURL:     "spotify:artist:abc123",
		SubscriptionID: "I-X",
		PaymentStatus:  "APPROVAL_PENDING",
	})
	require.NoError(t, err)
	assert.Equal(t, "doc-7", stored.Key)
	assert.Equal(t, int64(7), stored.ID)
}

func TestCreateCustomerFailurePropagatesMessage(t *testing.T) {
	client := newTestClient(t, "document_id", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"data":null,"error":{"status":400,"name":"ValidationError","message":"email must be unique"}}`))
	})

	_, err := client.CreateCustomer(context.Background(), domain.Customer{Email: "a@b.com"})
	require.ErrorIs(t, err, ErrDirectoryWrite)
	assert.Contains(t, err.Error(), "email must be unique")
}

func TestFindCustomerBySubscriptionID(t *testing.T) {
	client := newTestClient(t, "document_id", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/customers", r.URL.Path)
		assert.Equal(t, "I-X", r.URL.Query().Get("filters[subscription_id][$eq]"))
		_, _ = w.Write([]byte(`{"data":[{"id":3,"documentId":"abc","subscription_id":"I-X","email":"a@b.com"}],"meta":{}}`))
	})

	customer, err := client.FindCustomerBySubscriptionID(context.Background(), "I-X")
	require.NoError(t, err)
	assert.Equal(t, "abc", customer.Key)
	assert.Equal(t, "a@b.com", customer.Email)
}

func TestFindCustomerNotFound(t *testing.T) {
	client := newTestClient(t, "document_id", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[],"meta":{"pagination":{"total":0}}}`))
	})

	_, err := client.FindCustomerBySubscriptionID(context.Background(), "I-NOPE")
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	_, err = client.FindCustomerByEmail(context.Background(), "")
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestFindCustomerReadFailure(t *testing.T) {
	client := newTestClient(t, "document_id", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"data":null,"error":{"status":403,"message":"Forbidden"}}`))
	})

	_, err := client.FindCustomerByEmail(context.Background(), "a@b.com")
	assert.ErrorIs(t, err, ErrDirectoryRead)
	assert.NotErrorIs(t, err, ErrCustomerNotFound)
}

func TestFindCustomerByEmailStrapiV4(t *testing.T) {
	client := newTestClient(t, "id", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "a@b.com", r.URL.Query().Get("filters[email][$eq]"))
		_, _ = w.Write([]byte(`{"data":[{"id":42,"attributes":{"email":"a@b.com","password":"$2a$10$hash"}}]}`))
	})

	customer, err := client.FindCustomerByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "42", customer.Key)
	assert.Equal(t, int64(42), customer.ID)
	assert.Equal(t, "$2a$10$hash", customer.PasswordHash)
}

func TestUpdateCustomer(t *testing.T) {
	client := newTestClient(t, "document_id", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/customers/abc", r.URL.Path)
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"data":{"email":"payer@example.com","payment_status":"ACTIVE",
			"paypal_start_time":"2024-05-01T10:00:00Z","first_name":"Ada","last_name":"Lovelace"}}`, string(raw))
		_, _ = w.Write([]byte(`{"data":{"id":3,"documentId":"abc","payment_status":"ACTIVE"}}`))
	})

	stored, err := client.UpdateCustomer(context.Background(), "abc", domain.CustomerPatch{
		Email:           "payer@example.com",
		PaymentStatus:   "ACTIVE",
		PayPalStartTime: "2024-05-01T10:00:00Z",
		FirstName:       "Ada",
		LastName:        "Lovelace",
	})
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", stored.PaymentStatus)
}

func TestUpdateCustomerFailure(t *testing.T) {
	client := newTestClient(t, "document_id", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"data":null,"error":{"status":404,"message":"Not Found"}}`))
	})

	_, err := client.UpdateCustomer(context.Background(), "abc", domain.CustomerPatch{PaymentStatus: "ACTIVE"})
	require.ErrorIs(t, err, ErrDirectoryWrite)

	_, err = client.UpdateCustomer(context.Background(), "", domain.CustomerPatch{})
	require.ErrorIs(t, err, ErrDirectoryWrite)
}

func TestListLinkTrackings(t *testing.T) {
	client := newTestClient(t, "document_id", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/link-trackings", r.URL.Path)
		assert.Equal(t, "url", r.URL.Query().Get("populate[link][fields][0]"))
		assert.Equal(t, "domain", r.URL.Query().Get("populate[page][fields][1]"))
		_, _ = w.Write([]byte(`{"data":[{"id":1,"clicks":3}],"meta":{}}`))
	})

	raw, err := client.ListLinkTrackings(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[{"id":1,"clicks":3}],"meta":{}}`, string(raw))
}
