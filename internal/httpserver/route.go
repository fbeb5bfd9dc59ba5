package httpserver

import (
	"net/http"

	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/labstack/echo/v4"
)

type Deps struct {
	CatalogHandler *CatalogHTTP
	AdminHandler   *AdminHTTP
	CartHandler    *CartHTTP
	OrderHandler   *OrderHTTP
	AuthHandler    *AuthHTTP
	Gate           *authmw.SessionGate
	// ImageDir is served under /images when set.
	ImageDir string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	if d.ImageDir != "" {
		e.Static("/images", d.ImageDir)
	}

	optional := d.Gate.LoadIdentity
	required := d.Gate.RequireAuth

	e.GET("/", d.CatalogHandler.GetIndex, optional)
	e.GET("/products", d.CatalogHandler.GetProducts, optional)
	e.GET("/products/search", d.CatalogHandler.SearchProducts, optional)
	e.GET("/products/:productId", d.CatalogHandler.GetProduct, optional)

	e.GET("/cart", d.CartHandler.GetCart, required)
	e.POST("/cart", d.CartHandler.PostCart, required)
	e.POST("/cart-delete-item", d.CartHandler.PostCartDeleteItem, required)

	e.GET("/orders", d.OrderHandler.GetOrders, required)
	e.POST("/create-order", d.OrderHandler.PostOrder, required)
	e.GET("/orders/:orderId/invoice", d.OrderHandler.GetInvoice, required)
	e.GET("/checkout", d.OrderHandler.GetCheckout, required)
	e.GET("/checkout/success", d.OrderHandler.GetCheckoutSuccess, required)
	e.GET("/checkout/cancel", d.OrderHandler.GetCheckoutCancel, required)

	e.GET("/login", d.AuthHandler.GetLogin, optional)
	e.POST("/login", d.AuthHandler.PostLogin)
	e.GET("/signup", d.AuthHandler.GetSignup, optional)
	e.POST("/signup", d.AuthHandler.PostSignup)
	e.POST("/logout", d.AuthHandler.PostLogout)
	e.GET("/reset-password", d.AuthHandler.GetReset, optional)
	e.POST("/reset-password", d.AuthHandler.PostReset)
	e.GET("/reset-password/:token", d.AuthHandler.GetNewPassword, optional)
	e.POST("/new-password", d.AuthHandler.PostNewPassword)

	admin := e.Group("/admin", required)
	admin.GET("/add-product", d.AdminHandler.GetAddProduct)
	admin.POST("/add-product", d.AdminHandler.PostAddProduct)
	admin.GET("/edit-product/:productId", d.AdminHandler.GetEditProduct)
	admin.POST("/edit-product", d.AdminHandler.PostEditProduct)
	admin.GET("/products", d.AdminHandler.GetProducts)
	admin.GET("/products/export", d.AdminHandler.ExportProducts)
	admin.DELETE("/product/:productId", d.AdminHandler.DeleteProduct)
}
