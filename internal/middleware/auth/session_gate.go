package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const LoginPath = "/login"

type Authenticator interface {
	Refresh(ctx context.Context, refreshToken string) (*service.LoginResult, error)
	Identify(ctx context.Context, userID uuid.UUID) (session.Identity, error)
}

// SessionGate resolves the request's user from the token cookies, rotating
// the pair when the access token has expired.
type SessionGate struct {
	JWTSecret []byte
	Auth      Authenticator
}

func NewSessionGate(secret []byte, auth Authenticator) *SessionGate {
	return &SessionGate{JWTSecret: secret, Auth: auth}
}

// RequireAuth redirects anonymous requests to the login page.
func (m *SessionGate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := m.resolve(c)
		if err != nil {
			if errors.Is(err, errAnonymous) {
				return c.Redirect(http.StatusFound, LoginPath)
			}
			return err
		}
		setIdentity(c, id)
		return next(c)
	}
}

// LoadIdentity attaches the user when there is one and lets anonymous requests through.
func (m *SessionGate) LoadIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := m.resolve(c)
		if err == nil {
			setIdentity(c, id)
		} else if !errors.Is(err, errAnonymous) {
			logging.FromContext(c.Request().Context()).Warn("load_identity_failed", "error", err)
		}
		return next(c)
	}
}

var errAnonymous = errors.New("no authenticated session")

func (m *SessionGate) resolve(c echo.Context) (session.Identity, error) {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("middleware", "session_gate")

	var claimsErr error = errAnonymous
	if accessCookie, err := c.Cookie(tokens.AccessCookie); err == nil && accessCookie.Value != "" {
		claims, err := tokens.AccessClaimsFromToken(accessCookie.Value, m.JWTSecret)
		if err == nil {
			return m.identify(c, claims.Subject)
		}
		claimsErr = err
	}

	if claimsErr != errAnonymous && !errors.Is(claimsErr, jwt.ErrTokenExpired) {
		l.Warn("access_token_rejected", "reason", "invalid access token", "error", claimsErr)
		clearAuthCookies(c)
		return session.Identity{}, errAnonymous
	}

	refreshCookie, err := c.Cookie(tokens.RefreshCookie)
	if err != nil || refreshCookie.Value == "" {
		if claimsErr != errAnonymous {
			clearAuthCookies(c)
		}
		return session.Identity{}, errAnonymous
	}

	res, err := m.Auth.Refresh(ctx, refreshCookie.Value)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			l.Warn("refresh_rejected", "reason", "refresh token unusable", "error", err)
			clearAuthCookies(c)
			return session.Identity{}, errAnonymous
		}
		return session.Identity{}, err
	}

	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, res.AccessToken, "/", res.AccessExp))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, res.RefreshToken, "/", res.RefreshExp))

	return m.identify(c, res.UserID.String())
}

func (m *SessionGate) identify(c echo.Context, subject string) (session.Identity, error) {
	userID, err := uuid.Parse(subject)
	if err != nil {
		clearAuthCookies(c)
		return session.Identity{}, errAnonymous
	}
	id, err := m.Auth.Identify(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			clearAuthCookies(c)
			return session.Identity{}, errAnonymous
		}
		return session.Identity{}, err
	}
	return id, nil
}

func setIdentity(c echo.Context, id session.Identity) {
	req := c.Request()
	c.SetRequest(req.WithContext(session.IntoContext(req.Context(), id)))
	c.Set("user_id", id.UserID.String())
}

func clearAuthCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
}
