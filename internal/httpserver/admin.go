package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AdminHTTP struct {
	Svc *service.CatalogService
}

var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
}

// formImage opens the uploaded image, or returns nil when none or a non-image was sent.
func formImage(c echo.Context) (*service.Image, io.Closer, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	if !imageTypes[strings.ToLower(fh.Header.Get("Content-Type"))] {
		return nil, nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &service.Image{Name: fh.Filename, Body: f}, f, nil
}

func (h *AdminHTTP) GetAddProduct(c echo.Context) error {
	return render(c, http.StatusOK, "/admin/add-product", "Add Product", map[string]any{
		"editing":          false,
		"hasError":         false,
		"errorMessage":     nil,
		"validationErrors": []any{},
	})
}

func (h *AdminHTTP) PostAddProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.add_product")
	user, _ := currentUser(c)

	var req transport.ProductInput
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	img, closer, err := formImage(c)
	if err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid upload", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid upload")
	}
	if closer != nil {
		defer closer.Close()
	}

	prod, err := h.Svc.CreateProduct(ctx, user, req, img)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("product_create_error", "status", 422, "reason", "validation failed", "error", err)
			return unprocessable(c, "/admin/add-product", "Add Product", err, map[string]any{
				"editing": false,
				"product": req,
			})
		}
		l.Error("product_create_error", "status", 500, "reason", "cannot add product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot add product")
	}

	l.Info("create_product_success", "product_id", prod.ID)
	return c.Redirect(http.StatusFound, "/")
}

func (h *AdminHTTP) GetEditProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.get_edit_product")
	user, _ := currentUser(c)

	if c.QueryParam("edit") == "" {
		return c.Redirect(http.StatusFound, "/")
	}

	id, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		l.Warn("get_edit_product_failed", "status", 302, "reason", "productId is not a uuid", "error", err)
		return c.Redirect(http.StatusFound, "/")
	}

	prod, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_edit_product_failed", "status", 302, "reason", "product not found", "product_id", id)
			return c.Redirect(http.StatusFound, "/")
		}
		l.Error("get_edit_product_failed", "status", 500, "reason", "cannot get product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}
	if !user.Owns(prod.UserID) {
		l.Warn("get_edit_product_failed", "status", 302, "reason", "not the owner", "product_id", id)
		return c.Redirect(http.StatusFound, "/")
	}

	return render(c, http.StatusOK, "/admin/edit-product", "Edit Product", map[string]any{
		"editing":          true,
		"product":          prod,
		"hasError":         false,
		"errorMessage":     nil,
		"validationErrors": []any{},
	})
}

func (h *AdminHTTP) PostEditProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.edit_product")
	user, _ := currentUser(c)

	var req transport.EditProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_edit_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	id, err := uuid.Parse(req.ProductID)
	if err != nil {
		l.Warn("product_edit_error", "status", 302, "reason", "productId is not a uuid", "error", err)
		return c.Redirect(http.StatusFound, "/")
	}

	img, closer, err := formImage(c)
	if err != nil {
		l.Warn("product_edit_error", "status", 400, "reason", "invalid upload", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid upload")
	}
	if closer != nil {
		defer closer.Close()
	}

	_, err = h.Svc.UpdateProduct(ctx, user, id, req.ProductInput, img)
	switch {
	case err == nil:
		l.Info("edit_product_success", "product_id", id)
		return c.Redirect(http.StatusFound, "/admin/products")
	case errors.Is(err, service.ErrValidation):
		l.Warn("product_edit_error", "status", 422, "reason", "validation failed", "error", err)
		return unprocessable(c, "/admin/edit-product", "Edit Product", err, map[string]any{
			"editing": true,
			"product": req,
		})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrForbidden):
		l.Warn("product_edit_error", "status", 302, "reason", "missing or not the owner", "product_id", id, "error", err)
		return c.Redirect(http.StatusFound, "/")
	default:
		l.Error("product_edit_error", "status", 500, "reason", "cannot update product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update product")
	}
}

func (h *AdminHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.get_products")
	user, _ := currentUser(c)

	prods, err := h.Svc.ListOwnProducts(ctx, user.UserID)
	if err != nil {
		l.Error("get_admin_products_error", "status", 500, "reason", "cannot list products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list products")
	}

	return render(c, http.StatusOK, "/admin/products", "Admin Products", map[string]any{"prods": prods})
}

func (h *AdminHTTP) ExportProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.export_products")
	user, _ := currentUser(c)

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.xlsx"`)

	if err := h.Svc.ExportOwnProducts(ctx, user.UserID, res); err != nil {
		l.Error("export_products_error", "status", 500, "reason", "cannot export products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot export products")
	}
	return nil
}

func (h *AdminHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_product")
	user, _ := currentUser(c)

	id, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		l.Warn("product_delete_error", "status", 404, "reason", "productId is not a uuid", "error", err)
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Product not found."})
	}

	if err := h.Svc.DeleteProduct(ctx, user, id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("product_delete_error", "status", 404, "reason", "product not found", "product_id", id)
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Product not found."})
		case errors.Is(err, service.ErrForbidden):
			l.Warn("product_delete_error", "status", 403, "reason", "not the owner", "product_id", id)
			return c.JSON(http.StatusForbidden, map[string]string{"message": "Not authorized."})
		default:
			l.Error("product_delete_error", "status", 500, "reason", "cannot delete product", "error", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Deleting product failed."})
		}
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, map[string]string{"message": "Success!"})
}
