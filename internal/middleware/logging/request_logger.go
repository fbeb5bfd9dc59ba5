package loggingmw

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/labstack/echo/v4"
)

// quietPrefixes are asset routes whose successful hits only show at debug.
var quietPrefixes = []string{"/images/", "/favicon.ico"}

// RequestLogger stores a request-scoped logger in the request context and
// writes one completion line per request. The line carries the shopper's
// user_id once the session middleware further down the chain has resolved it.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			l := base.With(
				"method", req.Method,
				"path", c.Path(),
				"url", req.URL.Path,
				"remote_ip", c.RealIP(),
			)
			if rid != "" {
				l = l.With("request_id", rid)
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			status := c.Response().Status

			attrs := []any{"status", status, "duration_ms", time.Since(start).Milliseconds()}
			if uid, ok := c.Get("user_id").(string); ok && uid != "" {
				attrs = append(attrs, "user_id", uid)
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			} else {
				attrs = append(attrs, "bytes", c.Response().Size)
			}
			l.Log(c.Request().Context(), completionLevel(req, status), "request completed", attrs...)
			return nil
		}
	}
}

func completionLevel(req *http.Request, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case req.Method == http.MethodGet && isQuiet(req.URL.Path):
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func isQuiet(path string) bool {
	for _, p := range quietPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
