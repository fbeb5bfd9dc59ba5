// Package flash carries one-shot messages across a redirect in a cookie.
package flash

import (
	"encoding/base64"
	"net/http"

	"github.com/labstack/echo/v4"
)

const prefix = "flash_"

func Set(c echo.Context, key, msg string) {
	c.SetCookie(&http.Cookie{
		Name:     prefix + key,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(msg)),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Get returns the message stored under key and clears it.
func Get(c echo.Context, key string) string {
	ck, err := c.Cookie(prefix + key)
	if err != nil || ck.Value == "" {
		return ""
	}
	c.SetCookie(&http.Cookie{
		Name:     prefix + key,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	b, err := base64.RawURLEncoding.DecodeString(ck.Value)
	if err != nil {
		return ""
	}
	return string(b)
}
