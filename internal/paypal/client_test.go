package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thiloilg/page-for-artists.com/internal/config"
	"github.com/thiloilg/page-for-artists.com/internal/domain"
)

type memoryCache struct {
	tokens map[string]string
	ttl    time.Duration
}

func (m *memoryCache) Get(_ context.Context, key string) (string, bool) {
	v, ok := m.tokens[key]
	return v, ok
}

func (m *memoryCache) Set(_ context.Context, key, token string, ttl time.Duration) {
	m.tokens[key] = token
	m.ttl = ttl
}

func (m *memoryCache) Delete(_ context.Context, key string) {
	delete(m.tokens, key)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, cache TokenCache) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.PayPalConfig{
		APIURL:       srv.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		BrandName:    "Artist Landing Page",
	}, srv.Client(), cache, nil)
}

func TestGetAccessToken(t *testing.T) {
	var calls int32
	cache := &memoryCache{tokens: map[string]string{}}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/oauth2/token", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		_, _ = w.Write([]byte(`{"access_token":"A21AA","token_type":"Bearer","expires_in":32400}`))
	}, cache)

	token, err := client.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A21AA", token)
	assert.Equal(t, 32400*time.Second-tokenExpirySkew, cache.ttl)

	token, err = client.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A21AA", token)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second call served from cache")
}

func TestGetAccessTokenFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"Client Authentication failed"}`))
	}, nil)

	_, err := client.GetAccessToken(context.Background())
	require.ErrorIs(t, err, ErrProviderAuth)
	assert.Contains(t, err.Error(), "Client Authentication failed")
}

func TestCreateSubscription(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/billing/subscriptions", r.URL.Path)
		assert.Equal(t, "Bearer A21AA", r.Header.Get("Authorization"))

		var body createSubscriptionBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "P-123", body.PlanID)
		assert.Equal(t, "a@b.com", body.Subscriber.EmailAddress)
		assert.Equal(t, "spotify:artist:abc123", body.CustomID)
		assert.Equal(t, "NO_SHIPPING", body.ApplicationContext.ShippingPreference)
		assert.Equal(t, "SUBSCRIBE_NOW", body.ApplicationContext.UserAction)
		assert.Equal(t, "https://pages.example.com/return", body.ApplicationContext.ReturnURL)
		assert.Equal(t, "https://pages.example.com/checkout", body.ApplicationContext.CancelURL)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"I-X","status":"APPROVAL_PENDING","links":[
			{"rel":"self","href":"https://api/self"},
			{"rel":"approve","href":"https://paypal/approve"}]}`))
	}, nil)

	sub, err := client.CreateSubscription(context.Background(), "A21AA", CreateSubscriptionRequest{
		PlanID:    "P-123",
		Email:     "a@b.com",
		CustomID:  "spotify:artist:abc123",
		ReturnURL: "https://pages.example.com/return",
		CancelURL: "https://pages.example.com/checkout",
	})
	require.NoError(t, err)
	assert.Equal(t, "I-X", sub.ID)
	assert.Equal(t, domain.SubscriptionApprovalPending, sub.Status)
	assert.Equal(t, "https://paypal/approve", sub.ApprovalURL)
}

func TestCreateSubscriptionWithoutApproveLink(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"I-X","status":"APPROVAL_PENDING","links":[{"rel":"self","href":"https://api/self"}]}`))
	}, nil)

	_, err := client.CreateSubscription(context.Background(), "A21AA", CreateSubscriptionRequest{PlanID: "P-123"})
	require.ErrorIs(t, err, ErrSubscriptionCreate)
	assert.Contains(t, err.Error(), "I-X")
}

func TestCreateSubscriptionProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"UNPROCESSABLE_ENTITY","message":"The requested action could not be performed."}`))
	}, nil)

	_, err := client.CreateSubscription(context.Background(), "A21AA", CreateSubscriptionRequest{PlanID: "P-123"})
	require.ErrorIs(t, err, ErrSubscriptionCreate)
	assert.Contains(t, err.Error(), "could not be performed")
}

func TestFetchSubscription(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/billing/subscriptions/I-X", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"I-X","status":"ACTIVE","start_time":"2024-05-01T10:00:00Z",
			"create_time":"2024-05-01T09:59:00Z",
			"subscriber":{"email_address":"payer@example.com","name":{"given_name":"Ada","surname":"Lovelace"}}}`))
	}, nil)

	sub, err := client.FetchSubscription(context.Background(), "A21AA", "I-X")
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, sub.Status)
	assert.Equal(t, "payer@example.com", sub.Subscriber.EmailAddress)
	assert.Equal(t, "Ada", sub.Subscriber.Name.GivenName)
	assert.Equal(t, "Lovelace", sub.Subscriber.Name.Surname)
	assert.Equal(t, "2024-05-01T10:00:00Z", sub.EffectiveStartTime())
}

func TestFetchSubscriptionNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"name":"RESOURCE_NOT_FOUND","message":"The specified resource does not exist."}`))
	}, nil)

	_, err := client.FetchSubscription(context.Background(), "A21AA", "I-MISSING")
	require.ErrorIs(t, err, ErrSubscriptionFetch)

	_, err = client.FetchSubscription(context.Background(), "A21AA", " ")
	require.ErrorIs(t, err, ErrSubscriptionFetch)
}

func TestTransportFailureIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := NewClient(config.PayPalConfig{APIURL: srv.URL}, &http.Client{Timeout: time.Second}, nil, nil)
	_, err := client.GetAccessToken(context.Background())
	require.ErrorIs(t, err, ErrProviderAuth)
}

func TestRejectedTokenIsEvicted(t *testing.T) {
	for _, tc := range []struct {
		name string
		call func(*Client) error
	}{
		{"create", func(c *Client) error {
			_, err := c.CreateSubscription(context.Background(), "revoked", CreateSubscriptionRequest{PlanID: "P-1"})
			return err
		}},
		{"fetch", func(c *Client) error {
			_, err := c.FetchSubscription(context.Background(), "revoked", "I-X")
			return err
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cache := &memoryCache{tokens: map[string]string{"client-id": "revoked"}}
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"name":"AUTHENTICATION_FAILURE","message":"Authentication failed due to invalid authentication credentials"}`))
			}, cache)

			require.Error(t, tc.call(client))
			_, ok := cache.Get(context.Background(), "client-id")
			assert.False(t, ok)
		})
	}
}

func TestOtherFailuresKeepCachedToken(t *testing.T) {
	cache := &memoryCache{tokens: map[string]string{"client-id": "A21AA"}}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"UNPROCESSABLE_ENTITY","message":"plan inactive"}`))
	}, cache)

	_, err := client.CreateSubscription(context.Background(), "A21AA", CreateSubscriptionRequest{PlanID: "P-1"})
	require.ErrorIs(t, err, ErrSubscriptionCreate)
	token, ok := cache.Get(context.Background(), "client-id")
	assert.True(t, ok)
	assert.Equal(t, "A21AA", token)
}
