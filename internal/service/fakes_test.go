package service

import (
	"context"
	"encoding/json"

	"github.com/thiloilg/page-for-artists.com/internal/directory"
	"github.com/thiloilg/page-for-artists.com/internal/domain"
	"github.com/thiloilg/page-for-artists.com/internal/paypal"
)

type fakeProvider struct {
	tokenErr  error
	created   *paypal.CreatedSubscription
	createErr error
	fetched   *domain.Subscription
	fetchErr  error

	createCalls []paypal.CreateSubscriptionRequest
}

func (f *fakeProvider) GetAccessToken(context.Context) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return "A21AA", nil
}

func (f *fakeProvider) CreateSubscription(_ context.Context, _ string, in paypal.CreateSubscriptionRequest) (*paypal.CreatedSubscription, error) {
	f.createCalls = append(f.createCalls, in)
	return f.created, f.createErr
}

func (f *fakeProvider) FetchSubscription(context.Context, string, string) (*domain.Subscription, error) {
	return f.fetched, f.fetchErr
}

type fakeDirectory struct {
	byEmail   map[string]domain.Customer
	bySubID   map[string]domain.Customer
	createErr error
	findErr   error
	updateErr error
	// blockCreate makes CreateCustomer wait for ctx to end and return its error.
	blockCreate bool

	created []domain.Customer
	updates map[string]domain.CustomerPatch
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		byEmail: map[string]domain.Customer{},
		bySubID: map[string]domain.Customer{},
		updates: map[string]domain.CustomerPatch{},
	}
}

func (f *fakeDirectory) CreateCustomer(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	f.created = append(f.created, c)
	if f.blockCreate {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	c.Key = "doc-1"
	return &c, nil
}

func (f *fakeDirectory) FindCustomerBySubscriptionID(_ context.Context, id string) (*domain.Customer, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	c, ok := f.bySubID[id]
	if !ok {
		return nil, directory.ErrCustomerNotFound
	}
	return &c, nil
}

func (f *fakeDirectory) FindCustomerByEmail(_ context.Context, email string) (*domain.Customer, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	c, ok := f.byEmail[email]
	if !ok {
		return nil, directory.ErrCustomerNotFound
	}
	return &c, nil
}

func (f *fakeDirectory) UpdateCustomer(_ context.Context, key string, patch domain.CustomerPatch) (*domain.Customer, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updates[key] = patch
	return &domain.Customer{Key: key, Email: patch.Email, PaymentStatus: patch.PaymentStatus}, nil
}

func (f *fakeDirectory) ListLinkTrackings(context.Context) (json.RawMessage, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return json.RawMessage(`{"data":[]}`), nil
}

type fakeOrphans struct {
	recorded []domain.OrphanedSubscription
	err      error
}

func (f *fakeOrphans) Record(ctx context.Context, o *domain.OrphanedSubscription) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.recorded = append(f.recorded, *o)
	return f.err
}
