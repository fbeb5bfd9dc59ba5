package httpserver

import (
	"errors"
	"net/http"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler renders anything a handler did not answer itself as a
// generic failure page and keeps the detail in the server log.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	l := logging.FromContext(c.Request().Context()).With("handler", "http_error")

	code := http.StatusInternalServerError
	msg := "Internal Server Error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if s, ok := he.Message.(string); ok {
			msg = s
		} else {
			msg = http.StatusText(code)
		}
	}

	if code >= 500 {
		l.Error("request_failed", "status", code, "error", err)
		if he == nil {
			msg = "Internal Server Error"
		}
	}

	var respErr error
	if c.Request().Method == http.MethodHead {
		respErr = c.NoContent(code)
	} else {
		title := "Error!"
		if code == http.StatusNotFound {
			title = "Page Not Found"
		}
		respErr = c.JSON(code, view(c, "", title, map[string]any{"message": msg}))
	}
	if respErr != nil {
		l.Error("error_response_failed", "error", respErr)
	}
}
