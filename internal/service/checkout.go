package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/money"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/shopspring/decimal"
)

const (
	CheckoutSuccessPath = "/checkout/success"
	CheckoutCancelPath  = "/checkout/cancel"
)

type Checkout struct {
	Products  []CartLine      `json:"products"`
	TotalSum  decimal.Decimal `json:"totalSum"`
	SessionID string          `json:"sessionId"`
}

type CheckoutService struct {
	Repo    *repo.GormRepo
	Gateway payment.Gateway
	BaseURL string
}

// Checkout opens a payment session for the current cart.
func (s *CheckoutService) Checkout(ctx context.Context, user session.Identity) (*Checkout, error) {
	cart, err := loadCart(ctx, s.Repo, user.UserID)
	if err != nil {
		return nil, err
	}
	if cart.Empty() {
		return nil, fieldError("cart", emptyCart, nil)
	}

	req := payment.SessionRequest{
		CustomerEmail: user.Email,
		SuccessURL:    s.BaseURL + CheckoutSuccessPath,
		CancelURL:     s.BaseURL + CheckoutCancelPath,
	}
	for _, line := range cart.Items {
		req.Items = append(req.Items, payment.LineItem{
			Name:        line.Product.Title,
			Description: line.Product.Description,
			UnitAmount:  money.ToMinorUnits(line.Product.Price),
			Quantity:    int64(line.Quantity),
		})
	}

	id, err := s.Gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", errors.Join(ErrUpstream, err))
	}

	return &Checkout{Products: cart.Items, TotalSum: cart.Total, SessionID: id}, nil
}
