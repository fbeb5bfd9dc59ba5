package payment

import (
	"context"

	"github.com/google/uuid"
)

type LineItem struct {
	Name        string
	Description string
	// UnitAmount is in minor units of Currency.
	UnitAmount int64
	Quantity   int64
}

type SessionRequest struct {
	CustomerEmail string
	Items         []LineItem
	SuccessURL    string
	CancelURL     string
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (string, error)
}

// Stub hands out fake session ids; used when no processor key is configured.
type Stub struct{}

func (Stub) CreateCheckoutSession(ctx context.Context, req SessionRequest) (string, error) {
	return "cs_test_" + uuid.NewString(), nil
}
