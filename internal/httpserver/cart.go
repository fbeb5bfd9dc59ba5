package httpserver

import (
	"errors"
	"net/http"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_cart")
	user, _ := currentUser(c)

	cart, err := h.Svc.GetCart(ctx, user.UserID)
	if err != nil {
		l.Error("get_cart_error", "status", 500, "reason", "cannot get cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get cart")
	}

	return render(c, http.StatusOK, "/cart", "Your Cart", map[string]any{
		"products":      cart.Items,
		"missing":       cart.Missing,
		"totalQuantity": cart.TotalQuantity,
		"totalSum":      cart.Total.StringFixed(2),
	})
}

func (h *CartHTTP) PostCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")
	user, _ := currentUser(c)

	var req transport.CartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "productId is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "productId is not a uuid")
	}

	if _, err := h.Svc.AddToCart(ctx, user.UserID, productID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("add_to_cart_error", "status", 302, "reason", "product not found", "product_id", productID)
			return c.Redirect(http.StatusFound, "/")
		}
		l.Error("add_to_cart_error", "status", 500, "reason", "cannot add to cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot add to cart")
	}

	l.Info("add_to_cart_success", "product_id", productID)
	return c.Redirect(http.StatusFound, "/cart")
}

func (h *CartHTTP) PostCartDeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.delete_item")
	user, _ := currentUser(c)

	var req transport.CartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("delete_from_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		l.Warn("delete_from_cart_error", "status", 400, "reason", "productId is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "productId is not a uuid")
	}

	if err := h.Svc.RemoveFromCart(ctx, user.UserID, productID); err != nil {
		l.Error("delete_from_cart_error", "status", 500, "reason", "cannot remove from cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot remove from cart")
	}

	return c.Redirect(http.StatusFound, "/cart")
}
