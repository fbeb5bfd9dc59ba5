package httpserver

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func TestGetIndex_Paginates(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@example.com")
	for _, title := range []string{"Book", "Lamp", "Chair"} {
		env.product(t, owner, title, "10.00")
	}

	rec, c := env.get("/?page=2", nil)
	require.NoError(t, env.Deps.CatalogHandler.GetIndex(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Len(t, body["prods"], 1)
	assert.EqualValues(t, 2, body["currentPage"])
	assert.Equal(t, true, body["hasPreviousPage"])
	assert.Equal(t, false, body["hasNextPage"])
	assert.EqualValues(t, 3, body["totalProducts"])
	assert.Equal(t, false, body["isAuthenticated"])
}

func TestGetProducts_GarbagePageIsFirstPage(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@example.com")
	env.product(t, owner, "Book", "10.00")

	rec, c := env.get("/products?page=abc", &owner)
	require.NoError(t, env.Deps.CatalogHandler.GetProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.EqualValues(t, 1, body["currentPage"])
	assert.Equal(t, "/products", body["path"])
	assert.Equal(t, true, body["isAuthenticated"])
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@example.com")
	p := env.product(t, owner, "Book", "12.50")

	rec, c := env.get("/products/"+p.ID.String(), nil)
	c.SetParamNames("productId")
	c.SetParamValues(p.ID.String())
	require.NoError(t, env.Deps.CatalogHandler.GetProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Book", body["title"])
	prod := body["product"].(map[string]any)
	assert.Equal(t, p.ID.String(), prod["id"])
}

func TestGetProduct_UnknownOrMalformedRedirects(t *testing.T) {
	env := newTestEnv(t)

	for _, id := range []string{"not-a-uuid", "3f2c1a9e-0000-4000-8000-000000000000"} {
		rec, c := env.get("/products/"+id, nil)
		c.SetParamNames("productId")
		c.SetParamValues(id)
		require.NoError(t, env.Deps.CatalogHandler.GetProduct(c))
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	}
}

func TestSearchProducts(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@example.com")
	env.product(t, owner, "Red Lamp", "10.00")
	env.product(t, owner, "Blue Chair", "20.00")

	rec, c := env.get("/products/search?q=lamp", nil)
	require.NoError(t, env.Deps.CatalogHandler.SearchProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "lamp", body["query"])
	require.Len(t, body["prods"], 1)

	rec, c = env.get("/products/search", nil)
	require.NoError(t, env.Deps.CatalogHandler.SearchProducts(c))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/products", rec.Header().Get(echo.HeaderLocation))
}

func TestPostAddProduct(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@example.com")

	rec, c := env.postMultipart(t, "/admin/add-product", map[string]string{
		"title":       "Desk Lamp",
		"price":       "19.99",
		"description": "bright and small",
	}, "lamp.png", "image/png", &owner)
	require.NoError(t, env.Deps.AdminHandler.PostAddProduct(c))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	prods, err := env.Catalog.ListOwnProducts(c.Request().Context(), owner.UserID)
	require.NoError(t, err)
	require.Len(t, prods, 1)
	assert.Equal(t, "Desk Lamp", prods[0].Title)
	assert.Equal(t, "19.99", prods[0].Price.StringFixed(2))
	assert.True(t, strings.HasPrefix(prods[0].ImageURL, "/images/"))
}

func TestPostAddProduct_InvalidRendersForm(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@example.com")

	rec, c := env.postMultipart(t, "/admin/add-product", map[string]string{
		"title":       "ab",
		"price":       "19.99",
		"description": "bright and small",
	}, "lamp.gif", "image/gif", &owner)
	require.NoError(t, env.Deps.AdminHandler.PostAddProduct(c))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["hasError"])
	assert.Equal(t, "Title must have at least 3 characters", body["errorMessage"])
	assert.Contains(t, rec.Body.String(), "Attached file is not an image.")

	prods, err := env.Catalog.ListOwnProducts(c.Request().Context(), owner.UserID)
	require.NoError(t, err)
	assert.Empty(t, prods)
}

func TestGetEditProduct(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@example.com")
	other := env.user(t, "other@example.com")
	p := env.product(t, owner, "Book", "10.00")

	call := func(query string, user *session.Identity) *httptest.ResponseRecorder {
		rec, c := env.get("/admin/edit-product/"+p.ID.String()+query, user)
		c.SetParamNames("productId")
		c.SetParamValues(p.ID.String())
		require.NoError(t, env.Deps.AdminHandler.GetEditProduct(c))
		return rec
	}

	rec := call("?edit=true", &owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["editing"])

	rec = call("", &owner)
	require.Equal(t, http.StatusFound, rec.Code)

	rec = call("?edit=true", &other)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
}

func TestPostEditProduct(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@example.com")
	other := env.user(t, "other@example.com")
	p := env.product(t, owner, "Book", "10.00")

	vals := url.Values{
		"productId":   {p.ID.String()},
		"title":       {"Better Book"},
		"price":       {"12.00"},
		"description": {"now with more pages"},
	}

	rec, c := env.postForm("/admin/edit-product", vals, &other)
	require.NoError(t, env.Deps.AdminHandler.PostEditProduct(c))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	rec, c = env.postForm("/admin/edit-product", vals, &owner)
	require.NoError(t, env.Deps.AdminHandler.PostEditProduct(c))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/admin/products", rec.Header().Get(echo.HeaderLocation))

	got, err := env.Catalog.GetProduct(c.Request().Context(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Better Book", got.Title)
	assert.Equal(t, "12.00", got.Price.StringFixed(2))
	assert.Equal(t, p.ImageURL, got.ImageURL)
}

func TestDeleteProduct_JSON(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@example.com")
	other := env.user(t, "other@example.com")
	p := env.product(t, owner, "Book", "10.00")

	call := func(id string, user *session.Identity) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/admin/product/"+id, nil)
		rec, c := env.newContext(req, user)
		c.SetParamNames("productId")
		c.SetParamValues(id)
		require.NoError(t, env.Deps.AdminHandler.DeleteProduct(c))
		return rec
	}

	rec := call(p.ID.String(), &other)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Not authorized.", decode(t, rec)["message"])

	rec = call(p.ID.String(), &owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Success!", decode(t, rec)["message"])

	rec = call(p.ID.String(), &owner)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found.", decode(t, rec)["message"])
}

func TestExportProducts(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@example.com")
	env.product(t, owner, "Book", "10.00")
	env.product(t, owner, "Lamp", "5.50")

	rec, c := env.get("/admin/products/export", &owner)
	require.NoError(t, env.Deps.AdminHandler.ExportProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "products.xlsx")

	wb, err := xlsx.OpenBinary(rec.Body.Bytes())
	require.NoError(t, err)
	require.NotEmpty(t, wb.Sheets)
	assert.Len(t, wb.Sheets[0].Rows, 3)
}
