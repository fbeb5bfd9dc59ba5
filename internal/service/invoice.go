package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/invoice"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/google/uuid"
)

type InvoiceService struct {
	Repo  *repo.GormRepo
	Store *invoice.Store
}

// GenerateInvoice renders the invoice of an order the requester owns.
func (s *InvoiceService) GenerateInvoice(ctx context.Context, orderID uuid.UUID, requester session.Identity) ([]byte, *invoice.Document, error) {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, nil, storeErr("get order", err)
	}
	if !requester.Owns(order.UserID) {
		return nil, nil, fmt.Errorf("invoice for order %s: %w", orderID, ErrForbidden)
	}

	doc := invoice.Build(order)
	var buf bytes.Buffer
	if err := invoice.Render(&buf, doc); err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), &doc, nil
}

// Persist caches a rendered invoice on disk.
func (s *InvoiceService) Persist(ctx context.Context, orderID uuid.UUID, pdf []byte) error {
	if s.Store == nil {
		return nil
	}
	if err := s.Store.Save(orderID, pdf); err != nil {
		return fmt.Errorf("persist invoice %s: %w", s.Store.Path(orderID), err)
	}
	return nil
}
