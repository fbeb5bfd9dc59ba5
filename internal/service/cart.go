package service

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartLine struct {
	Product  models.Product `json:"productId"`
	Quantity uint           `json:"quantity"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type CartView struct {
	Items []CartLine `json:"products"`
	// Missing lists products still in the cart that no longer exist.
	Missing       []uuid.UUID     `json:"missing,omitempty"`
	TotalQuantity uint            `json:"totalQuantity"`
	Total         decimal.Decimal `json:"totalSum"`

	rows []models.CartItem
}

func (v *CartView) Empty() bool { return len(v.Items) == 0 }

type CartService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
}

func (s *CartService) AddToCart(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		return nil, storeErr("get product", err)
	}

	item, err := s.Repo.AddToCart(ctx, userID, productID)
	if err != nil {
		return nil, storeErr("add to cart", err)
	}

	publish(ctx, s.Events, mykafka.TopicCart, event("cart_item_added", userID, productID, map[string]any{
		"quantity": item.Quantity,
	}))
	return item, nil
}

// RemoveFromCart drops the product's line; removing an absent product is a no-op.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) error {
	removed, err := s.Repo.RemoveFromCart(ctx, userID, productID)
	if err != nil {
		return storeErr("remove from cart", err)
	}
	if removed {
		publish(ctx, s.Events, mykafka.TopicCart, event("cart_item_removed", userID, productID, nil))
	}
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := s.Repo.ClearCart(ctx, userID); err != nil {
		return storeErr("clear cart", err)
	}
	publish(ctx, s.Events, mykafka.TopicCart, event("cart_cleared", userID, userID, nil))
	return nil
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	return loadCart(ctx, s.Repo, userID)
}

// loadCart resolves cart rows to products, skipping rows whose product is gone.
func loadCart(ctx context.Context, r *repo.GormRepo, userID uuid.UUID) (*CartView, error) {
	rows, err := r.GetCart(ctx, userID)
	if err != nil {
		return nil, storeErr("get cart", err)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductID)
	}
	products, err := r.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr("resolve cart products", err)
	}

	view := &CartView{Items: []CartLine{}, Total: decimal.Zero, rows: rows}
	for _, row := range rows {
		p, ok := products[row.ProductID]
		if !ok {
			view.Missing = append(view.Missing, row.ProductID)
			continue
		}
		line := CartLine{Product: p, Quantity: row.Quantity}
		view.Items = append(view.Items, line)
		view.TotalQuantity += row.Quantity
		view.Total = view.Total.Add(line.Subtotal())
	}

	if len(view.Missing) > 0 {
		logging.FromContext(ctx).Warn("cart_has_missing_products", "user_id", userID, "missing", len(view.Missing))
	}
	return view, nil
}
