package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/google/uuid"
)

const emptyCart = "Your cart is empty."

type OrderService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
}

// PlaceOrder snapshots the cart into a new order and empties the cart in one
// transaction. A cart that changes while the order is being written aborts
// the whole placement with ErrConflict.
func (s *OrderService) PlaceOrder(ctx context.Context, user session.Identity) (*models.Order, error) {
	var order *models.Order

	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		cart, err := loadCart(ctx, tx, user.UserID)
		if err != nil {
			return err
		}
		if cart.Empty() {
			return fieldError("cart", emptyCart, nil)
		}

		o := &models.Order{UserID: user.UserID, UserEmail: user.Email}
		for i, line := range cart.Items {
			o.Items = append(o.Items, models.OrderItem{
				ProductID:   line.Product.ID,
				Title:       line.Product.Title,
				Price:       line.Product.Price,
				Description: line.Product.Description,
				ImageURL:    line.Product.ImageURL,
				Quantity:    line.Quantity,
				Position:    i,
			})
		}
		if _, err := tx.CreateOrder(ctx, o); err != nil {
			return storeErr("create order", err)
		}

		if err := tx.ConsumeCartItems(ctx, cart.rows); err != nil {
			if errors.Is(err, repo.ErrCartChanged) {
				return fmt.Errorf("clear cart: %w", errors.Join(ErrConflict, err))
			}
			return storeErr("clear cart", err)
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicOrder, event("order_created", user.UserID, order.ID, map[string]any{
		"items": len(order.Items),
		"total": order.Total().StringFixed(2),
	}))
	return order, nil
}

// ListOrders returns every order of the user, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders, err := s.Repo.ListOrders(ctx, userID)
	if err != nil {
		return nil, storeErr("list orders", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, storeErr("get order", err)
	}
	return order, nil
}
