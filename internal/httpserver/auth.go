package httpserver

import (
	"errors"
	"net/http"

	"github.com/Skotchmaster/storefront/internal/flash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/validate"
	"github.com/labstack/echo/v4"
)

const (
	flashError = "error"

	msgInvalidLogin = "Invalid email or password."
	msgNoAccount    = "No account with that email found"
	msgResetExpired = "Password reset link is invalid or has expired."
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func setSession(c echo.Context, res *service.LoginResult) {
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, res.AccessToken, "/", res.AccessExp))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, res.RefreshToken, "/", res.RefreshExp))
}

func (h *AuthHTTP) GetLogin(c echo.Context) error {
	return render(c, http.StatusOK, "/login", "Login", map[string]any{
		"errorMessage": flash.Get(c, flashError),
		"oldInput":     transport.LoginRequest{},
	})
}

func (h *AuthHTTP) PostLogin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		old := map[string]any{"oldInput": transport.LoginRequest{Email: req.Email}}
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("login_error", "status", 422, "reason", "validation failed", "error", err)
			return unprocessable(c, "/login", "Login", err, old)
		case errors.Is(err, service.ErrInvalidCredentials):
			l.Warn("login_error", "status", 422, "reason", "invalid credentials")
			return unprocessable(c, "/login", "Login", validate.Errors{{Message: msgInvalidLogin}}, old)
		default:
			l.Error("login_error", "status", 500, "reason", "cannot log in", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot log in")
		}
	}

	setSession(c, res)
	l.Info("login_success", "user_id", res.UserID)
	return c.Redirect(http.StatusFound, "/")
}

func (h *AuthHTTP) GetSignup(c echo.Context) error {
	return render(c, http.StatusOK, "/signup", "Signup", map[string]any{
		"errorMessage": flash.Get(c, flashError),
		"oldInput":     transport.SignupRequest{},
	})
}

func (h *AuthHTTP) PostSignup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req transport.SignupRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Signup(ctx, req)
	if err != nil {
		old := map[string]any{"oldInput": transport.SignupRequest{Email: req.Email}}
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("signup_error", "status", 422, "reason", "validation failed", "error", err)
			return unprocessable(c, "/signup", "Signup", err, old)
		default:
			l.Error("signup_error", "status", 500, "reason", "cannot create user", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot create user")
		}
	}

	l.Info("signup_success", "user_id", user.ID)
	return c.Redirect(http.StatusFound, "/")
}

func (h *AuthHTTP) PostLogout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	var refresh string
	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil {
		refresh = ck.Value
	}
	if err := h.Svc.Logout(ctx, refresh); err != nil {
		l.Error("logout_error", "status", 500, "reason", "cannot revoke refresh token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot log out")
	}

	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
	return c.Redirect(http.StatusFound, "/")
}

func (h *AuthHTTP) GetReset(c echo.Context) error {
	return render(c, http.StatusOK, "/reset", "Reset Password", map[string]any{
		"errorMessage": flash.Get(c, flashError),
	})
}

func (h *AuthHTTP) PostReset(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.reset")

	var req transport.ResetRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("reset_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.RequestPasswordReset(ctx, req.Email); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("reset_error", "status", 302, "reason", "no such account")
			flash.Set(c, flashError, msgNoAccount)
			return c.Redirect(http.StatusFound, "/reset-password")
		}
		l.Error("reset_error", "status", 500, "reason", "cannot start reset", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot start password reset")
	}

	return c.Redirect(http.StatusFound, "/")
}

func (h *AuthHTTP) GetNewPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.new_password_form")

	ticket, err := h.Svc.ResolveResetToken(ctx, c.Param("token"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			l.Warn("new_password_error", "status", 302, "reason", "reset token invalid")
			flash.Set(c, flashError, msgResetExpired)
			return c.Redirect(http.StatusFound, "/reset-password")
		}
		l.Error("new_password_error", "status", 500, "reason", "cannot resolve reset token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot resolve reset token")
	}

	return render(c, http.StatusOK, "/new-password", "New Password", map[string]any{
		"errorMessage":  flash.Get(c, flashError),
		"userId":        ticket.UserID,
		"passwordToken": ticket.PasswordToken,
	})
}

func (h *AuthHTTP) PostNewPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.new_password")

	var req transport.NewPasswordRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("new_password_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.ResetPassword(ctx, req); err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("new_password_error", "status", 422, "reason", "validation failed", "error", err)
			return unprocessable(c, "/new-password", "New Password", err, map[string]any{
				"userId":        req.UserID,
				"passwordToken": req.PasswordToken,
			})
		case errors.Is(err, service.ErrInvalidResetToken):
			l.Warn("new_password_error", "status", 302, "reason", "reset token invalid")
			flash.Set(c, flashError, msgResetExpired)
			return c.Redirect(http.StatusFound, "/reset-password")
		default:
			l.Error("new_password_error", "status", 500, "reason", "cannot update password", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot update password")
		}
	}

	l.Info("new_password_success", "user_id", req.UserID)
	return c.Redirect(http.StatusFound, "/login")
}
