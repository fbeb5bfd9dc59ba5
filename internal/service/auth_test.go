package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/validate"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup_SendsMailAndPublishes(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "New@Example.com ")

	assert.Equal(t, "new@example.com", u.Email)
	require.Len(t, env.Mail.sent, 1)
	assert.Equal(t, "Signup Succeeded", env.Mail.sent[0].Subject)
	assert.Equal(t, "<h1>You successfully signed up!</h1>", env.Mail.sent[0].HTML)

	evs := env.Events.Events(mykafka.TopicUser)
	require.Len(t, evs, 1)
	assert.Equal(t, "user_registered", evs[0].Type)
}

func TestSignup_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  transport.SignupRequest
		msg  string
	}{
		{"bad email", transport.SignupRequest{Email: "nope", Password: "secret1", ConfirmPassword: "secret1"}, "Please enter a valid email."},
		{"short password", transport.SignupRequest{Email: "a@example.com", Password: "abc", ConfirmPassword: "abc"}, "Password must be 5 characters long and alphanumeric."},
		{"symbols", transport.SignupRequest{Email: "a@example.com", Password: "abc!!12", ConfirmPassword: "abc!!12"}, "Password must be 5 characters long and alphanumeric."},
		{"mismatch", transport.SignupRequest{Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret2"}, "Passwords do not match."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.Auth.Signup(ctx, tc.req)
			require.ErrorIs(t, err, ErrValidation)
			var verrs validate.Errors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, tc.msg, verrs.First())
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "a@example.com")

	_, err := env.Auth.Signup(context.Background(), transport.SignupRequest{
		Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.ErrorIs(t, err, ErrConflict)
	require.ErrorIs(t, err, ErrValidation)
	var verrs validate.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "Email already exists.", verrs.First())
}

func TestSignup_MailFailureDoesNotFail(t *testing.T) {
	env := newTestEnv(t)
	env.Mail.err = errors.New("smtp down")

	_, err := env.Auth.Signup(context.Background(), transport.SignupRequest{
		Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "a@example.com")

	_, err := env.Auth.Login(ctx, transport.LoginRequest{Email: "a@example.com", Password: "wrong1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.Auth.Login(ctx, transport.LoginRequest{Email: "b@example.com", Password: "secret1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := env.Auth.Login(ctx, transport.LoginRequest{Email: "A@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, u.UserID, res.UserID)

	claims, err := tokens.AccessClaimsFromToken(res.AccessToken, env.Auth.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, u.UserID.String(), claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestRefresh_RotatesAndRejectsReuse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "a@example.com")

	res, err := env.Auth.Login(ctx, transport.LoginRequest{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	next, err := env.Auth.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, res.RefreshToken, next.RefreshToken)

	_, err = env.Auth.Refresh(ctx, res.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = env.Auth.Refresh(ctx, "garbage")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestLogout_RevokesRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "a@example.com")
	res, err := env.Auth.Login(ctx, transport.LoginRequest{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, env.Auth.Logout(ctx, res.RefreshToken))
	require.NoError(t, env.Auth.Logout(ctx, ""))

	_, err = env.Auth.Refresh(ctx, res.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestIdentify(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "a@example.com")

	id, err := env.Auth.Identify(context.Background(), u.UserID)
	require.NoError(t, err)
	assert.Equal(t, u, id)

	_, err = env.Auth.Identify(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func resetTokenFromMail(t *testing.T, env *testEnv) string {
	t.Helper()
	require.NotEmpty(t, env.Mail.sent)
	html := env.Mail.sent[len(env.Mail.sent)-1].HTML
	const marker = "/reset-password/"
	i := strings.Index(html, marker)
	require.GreaterOrEqual(t, i, 0)
	rest := html[i+len(marker):]
	return rest[:strings.Index(rest, `"`)]
}

func TestPasswordReset_FullFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "a@example.com")

	require.ErrorIs(t, env.Auth.RequestPasswordReset(ctx, "nobody@example.com"), ErrNotFound)

	require.NoError(t, env.Auth.RequestPasswordReset(ctx, "a@example.com"))
	assert.Equal(t, "Password Reset", env.Mail.sent[len(env.Mail.sent)-1].Subject)
	token := resetTokenFromMail(t, env)
	assert.Len(t, token, 64)

	ticket, err := env.Auth.ResolveResetToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.UserID, ticket.UserID)

	err = env.Auth.ResetPassword(ctx, transport.NewPasswordRequest{
		UserID: uuid.NewString(), PasswordToken: token, Password: "newpass1",
	})
	require.ErrorIs(t, err, ErrInvalidResetToken)

	require.NoError(t, env.Auth.ResetPassword(ctx, transport.NewPasswordRequest{
		UserID: u.UserID.String(), PasswordToken: token, Password: "newpass1",
	}))

	_, err = env.Auth.ResolveResetToken(ctx, token)
	require.ErrorIs(t, err, ErrInvalidResetToken)

	_, err = env.Auth.Login(ctx, transport.LoginRequest{Email: "a@example.com", Password: "newpass1"})
	require.NoError(t, err)
}

func TestPasswordReset_ExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "a@example.com")

	now := time.Now().UTC()
	env.Auth.Now = func() time.Time { return now }
	require.NoError(t, env.Auth.RequestPasswordReset(ctx, "a@example.com"))
	token := resetTokenFromMail(t, env)

	env.Auth.Now = func() time.Time { return now.Add(61 * time.Minute) }
	_, err := env.Auth.ResolveResetToken(ctx, token)
	require.ErrorIs(t, err, ErrInvalidResetToken)

	err = env.Auth.ResetPassword(ctx, transport.NewPasswordRequest{
		UserID: u.UserID.String(), PasswordToken: token, Password: "newpass1",
	})
	require.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestPasswordReset_TokenSpentOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "a@example.com")

	require.NoError(t, env.Auth.RequestPasswordReset(ctx, "a@example.com"))
	token := resetTokenFromMail(t, env)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, pw := range []string{"newpass1", "newpass2"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = env.Auth.ResetPassword(ctx, transport.NewPasswordRequest{
				UserID: u.UserID.String(), PasswordToken: token, Password: pw,
			})
		}()
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInvalidResetToken):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)
}
