package httpserver

import (
	"errors"
	"net/http"

	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/validate"
	"github.com/labstack/echo/v4"
)

// view is the JSON view model a page template would be rendered from.
func view(c echo.Context, path, title string, data map[string]any) map[string]any {
	_, authed := session.FromContext(c.Request().Context())
	out := map[string]any{
		"path":            path,
		"title":           title,
		"isAuthenticated": authed,
		"csrfToken":       csrf.Token(c),
	}
	for k, v := range data {
		out[k] = v
	}
	return out
}

func render(c echo.Context, status int, path, title string, data map[string]any) error {
	return c.JSON(status, view(c, path, title, data))
}

// unprocessable re-renders a form with the failed rules and the user's input.
func unprocessable(c echo.Context, path, title string, err error, data map[string]any) error {
	var verrs validate.Errors
	errors.As(err, &verrs)
	if verrs == nil {
		verrs = validate.Errors{}
	}
	if data == nil {
		data = map[string]any{}
	}
	data["hasError"] = true
	data["errorMessage"] = verrs.First()
	data["validationErrors"] = verrs
	return render(c, http.StatusUnprocessableEntity, path, title, data)
}

func currentUser(c echo.Context) (session.Identity, bool) {
	return session.FromContext(c.Request().Context())
}
