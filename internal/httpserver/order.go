package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Skotchmaster/storefront/internal/invoice"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type OrderHTTP struct {
	Orders   *service.OrderService
	Invoices *service.InvoiceService
	Checkout *service.CheckoutService
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders")
	user, _ := currentUser(c)

	orders, err := h.Orders.ListOrders(ctx, user.UserID)
	if err != nil {
		l.Error("get_orders_error", "status", 500, "reason", "cannot list orders", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list orders")
	}

	return render(c, http.StatusOK, "/orders", "Your Orders", map[string]any{"orders": orders})
}

func (h *OrderHTTP) PostOrder(c echo.Context) error {
	return h.placeOrder(c, "order.create_order")
}

// GetCheckoutSuccess is where the payment processor sends the buyer back.
func (h *OrderHTTP) GetCheckoutSuccess(c echo.Context) error {
	return h.placeOrder(c, "order.checkout_success")
}

func (h *OrderHTTP) placeOrder(c echo.Context, handler string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)
	user, _ := currentUser(c)

	order, err := h.Orders.PlaceOrder(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("create_order_error", "status", 302, "reason", "cart is empty", "error", err)
			return c.Redirect(http.StatusFound, "/cart")
		case errors.Is(err, service.ErrConflict):
			l.Warn("create_order_error", "status", 409, "reason", "cart changed while ordering", "error", err)
			return echo.NewHTTPError(http.StatusConflict, "cart changed while ordering, please retry")
		default:
			l.Error("create_order_error", "status", 500, "reason", "cannot create order", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot create order")
		}
	}

	l.Info("create_order_success", "order_id", order.ID)
	return c.Redirect(http.StatusFound, "/orders")
}

func (h *OrderHTTP) GetInvoice(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_invoice")
	user, _ := currentUser(c)

	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		l.Warn("get_invoice_error", "status", 404, "reason", "orderId is not a uuid", "error", err)
		return c.JSON(http.StatusNotFound, map[string]string{"message": "No order found."})
	}

	pdf, _, err := h.Invoices.GenerateInvoice(ctx, orderID, user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("get_invoice_error", "status", 404, "reason", "order not found", "order_id", orderID)
			return c.JSON(http.StatusNotFound, map[string]string{"message": "No order found."})
		case errors.Is(err, service.ErrForbidden):
			l.Warn("get_invoice_error", "status", 403, "reason", "not the owner", "order_id", orderID)
			return c.JSON(http.StatusForbidden, map[string]string{"message": "Unauthorized."})
		default:
			l.Error("get_invoice_error", "status", 500, "reason", "cannot render invoice", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot render invoice")
		}
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, invoice.FileName(orderID)))
	if err := c.Blob(http.StatusOK, "application/pdf", pdf); err != nil {
		return err
	}

	if err := h.Invoices.Persist(ctx, orderID, pdf); err != nil {
		l.Error("persist_invoice_error", "order_id", orderID, "error", err)
	}
	return nil
}

func (h *OrderHTTP) GetCheckout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_checkout")
	user, _ := currentUser(c)

	out, err := h.Checkout.Checkout(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("checkout_error", "status", 302, "reason", "cart is empty", "error", err)
			return c.Redirect(http.StatusFound, "/cart")
		case errors.Is(err, service.ErrUpstream):
			l.Error("checkout_error", "status", 502, "reason", "payment provider failed", "error", err)
			return echo.NewHTTPError(http.StatusBadGateway, "payment provider unavailable")
		default:
			l.Error("checkout_error", "status", 500, "reason", "cannot start checkout", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot start checkout")
		}
	}

	return render(c, http.StatusOK, "/checkout", "Checkout", map[string]any{
		"products":  out.Products,
		"totalSum":  out.TotalSum.StringFixed(2),
		"sessionId": out.SessionID,
	})
}

func (h *OrderHTTP) GetCheckoutCancel(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/checkout")
}
