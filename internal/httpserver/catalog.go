package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (h *CatalogHTTP) GetIndex(c echo.Context) error {
	return h.listProducts(c, "/", "Shop", "product.get_index")
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	return h.listProducts(c, "/products", "Products", "product.get_products")
}

func (h *CatalogHTTP) listProducts(c echo.Context, path, title, handler string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)

	page, err := h.Svc.ListProducts(ctx, pageParam(c))
	if err != nil {
		l.Error("get_products_error", "status", 500, "reason", "cannot list products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list products")
	}

	return render(c, http.StatusOK, path, title, map[string]any{
		"prods":           page.Products,
		"currentPage":     page.CurrentPage,
		"hasNextPage":     page.HasNextPage,
		"hasPreviousPage": page.HasPreviousPage,
		"nextPage":        page.NextPage,
		"previousPage":    page.PreviousPage,
		"lastPage":        page.LastPage,
		"totalProducts":   page.TotalProducts,
	})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		l.Warn("get_product_failed", "status", 302, "reason", "productId is not a uuid", "error", err)
		return c.Redirect(http.StatusFound, "/")
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_product_failed", "status", 302, "reason", "product not found", "product_id", id)
			return c.Redirect(http.StatusFound, "/")
		}
		l.Error("get_product_failed", "status", 500, "reason", "cannot get product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	return render(c, http.StatusOK, "/products", product.Title, map[string]any{"product": product})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	q := c.QueryParam("q")
	if q == "" {
		return c.Redirect(http.StatusFound, "/products")
	}

	page, err := h.Svc.SearchProducts(ctx, q, pageParam(c))
	if err != nil {
		l.Error("search_products_error", "status", 500, "reason", "cannot search products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot search products")
	}

	return render(c, http.StatusOK, "/products", "Search", map[string]any{
		"query":           q,
		"prods":           page.Products,
		"currentPage":     page.CurrentPage,
		"hasNextPage":     page.HasNextPage,
		"hasPreviousPage": page.HasPreviousPage,
		"nextPage":        page.NextPage,
		"previousPage":    page.PreviousPage,
		"lastPage":        page.LastPage,
		"totalProducts":   page.TotalProducts,
	})
}
