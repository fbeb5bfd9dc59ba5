package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/mailer"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 7 * 24 * time.Hour
	resetTTL   = time.Hour

	emailExists = "Email already exists."
)

type AuthService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
	Mailer        mailer.Sender
	Events        mykafka.Publisher
	BaseURL       string
	// HashCost overrides the bcrypt work factor; zero means hash.Cost.
	HashCost int
	Now      func() time.Time
}

type LoginResult struct {
	UserID       uuid.UUID
	Email        string
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

// ResetTicket is what the new-password form needs to finish a reset.
type ResetTicket struct {
	UserID        uuid.UUID `json:"userId"`
	PasswordToken string    `json:"passwordToken"`
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) CreateAccessToken(user *models.User, accessExp time.Time) (string, error) {
	accessClaims := tokens.AccessClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(s.JWTSecret)
}

func (s *AuthService) CreateRefreshToken(id uuid.UUID, refreshExp time.Time) (string, string, error) {
	jti := tokens.NewJTI()
	refreshClaims := tokens.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
			ID:        jti,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(s.RefreshSecret)
	if err != nil {
		return "", "", err
	}
	return token, jti, nil
}

func (s *AuthService) Signup(ctx context.Context, req transport.SignupRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	req.Normalize()
	if err := collect(&req); err != nil {
		return nil, err
	}

	taken, err := s.Repo.EmailTaken(ctx, req.Email)
	if err != nil {
		return nil, storeErr("check email", err)
	}
	if taken {
		return nil, errors.Join(ErrConflict, fieldError("email", emailExists, req.Email))
	}

	pwHash, err := hash.HashPassword(req.Password, s.HashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Email: req.Email, PasswordHash: pwHash}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Join(ErrConflict, fieldError("email", emailExists, req.Email))
		}
		return nil, storeErr("create user", err)
	}

	s.sendMail(ctx, l, mailer.Message{
		To:      user.Email,
		Subject: "Signup Succeeded",
		HTML:    "<h1>You successfully signed up!</h1>",
	})
	publish(ctx, s.Events, mykafka.TopicUser, event("user_registered", user.ID, user.ID, map[string]any{
		"email": user.Email,
	}))
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*LoginResult, error) {
	req.Normalize()
	if err := collect(&req); err != nil {
		return nil, err
	}

	user, err := s.Repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeErr("get user", err)
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	res, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.Events, mykafka.TopicUser, event("user_logged_in", user.ID, user.ID, nil))
	return res, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*LoginResult, error) {
	now := s.now()
	accessExp := now.Add(accessTTL)
	accessToken, err := s.CreateAccessToken(user, accessExp)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshExp := now.Add(refreshTTL)
	refreshToken, jti, err := s.CreateRefreshToken(user.ID, refreshExp)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.Repo.AddRefreshToken(ctx, &models.RefreshToken{
		UserID:    user.ID,
		Token:     tokens.Sha256Hex(refreshToken),
		JTI:       jti,
		ExpiresAt: refreshExp.Unix(),
	}); err != nil {
		return nil, storeErr("store refresh token", err)
	}

	return &LoginResult{
		UserID:       user.ID,
		Email:        user.Email,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

// Logout revokes the refresh token; an empty token is a no-op.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.Repo.RevokeRefreshToken(ctx, tokens.Sha256Hex(refreshToken)); err != nil {
		return storeErr("revoke refresh token", err)
	}
	return nil
}

// Refresh trades a live refresh token for a new token pair, revoking the old one.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("parse refresh token: %w", errors.Join(ErrInvalidRefreshToken, err))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("refresh subject: %w", ErrInvalidRefreshToken)
	}

	stored, err := s.Repo.FindRefreshByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("refresh token unknown: %w", ErrInvalidRefreshToken)
		}
		return nil, storeErr("find refresh token", err)
	}
	if stored.Token != tokens.Sha256Hex(refreshToken) || stored.UserID != userID {
		return nil, fmt.Errorf("refresh token mismatch: %w", ErrInvalidRefreshToken)
	}

	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("refresh user gone: %w", ErrInvalidRefreshToken)
		}
		return nil, storeErr("get user", err)
	}

	now := s.now()
	accessExp := now.Add(accessTTL)
	accessToken, err := s.CreateAccessToken(user, accessExp)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshExp := now.Add(refreshTTL)
	newRefresh, jti, err := s.CreateRefreshToken(user.ID, refreshExp)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.Repo.RotateRefreshToken(ctx, claims.ID, &models.RefreshToken{
		UserID:    user.ID,
		Token:     tokens.Sha256Hex(newRefresh),
		JTI:       jti,
		ExpiresAt: refreshExp.Unix(),
	}, now); err != nil {
		if errors.Is(err, repo.ErrRefreshUnusable) {
			return nil, fmt.Errorf("rotate refresh token: %w", errors.Join(ErrInvalidRefreshToken, err))
		}
		return nil, storeErr("rotate refresh token", err)
	}

	return &LoginResult{
		UserID:       user.ID,
		Email:        user.Email,
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

func (s *AuthService) Identify(ctx context.Context, userID uuid.UUID) (session.Identity, error) {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		return session.Identity{}, storeErr("get user", err)
	}
	return session.Identity{UserID: user.ID, Email: user.Email}, nil
}

// RequestPasswordReset stores a fresh one-hour token and mails the reset link.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.reset_request")

	token, err := newResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		return storeErr("get user", err)
	}
	if err := s.Repo.SetResetToken(ctx, user.ID, token, s.now().Add(resetTTL)); err != nil {
		return storeErr("set reset token", err)
	}

	link := fmt.Sprintf("%s/reset-password/%s", s.BaseURL, token)
	s.sendMail(ctx, l, mailer.Message{
		To:      user.Email,
		Subject: "Password Reset",
		HTML: "<p>You requested a password reset</p>" +
			`<p>Click this <a href="` + link + `">link</a> to set a new password</p>`,
	})
	publish(ctx, s.Events, mykafka.TopicUser, event("password_reset_requested", user.ID, user.ID, nil))
	return nil
}

func (s *AuthService) ResolveResetToken(ctx context.Context, token string) (*ResetTicket, error) {
	user, err := s.Repo.FindByResetToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, storeErr("find reset token", err)
	}
	return &ResetTicket{UserID: user.ID, PasswordToken: token}, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req transport.NewPasswordRequest) error {
	if err := collect(&req); err != nil {
		return err
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return ErrInvalidResetToken
	}

	now := s.now()
	user, err := s.Repo.FindByIDAndResetToken(ctx, userID, req.PasswordToken, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return storeErr("find reset token", err)
	}

	pwHash, err := hash.HashPassword(req.Password, s.HashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Repo.ResetPassword(ctx, user.ID, req.PasswordToken, now, pwHash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return storeErr("update password", err)
	}

	publish(ctx, s.Events, mykafka.TopicUser, event("password_reset", user.ID, user.ID, nil))
	return nil
}

func (s *AuthService) sendMail(ctx context.Context, l *slog.Logger, msg mailer.Message) {
	if s.Mailer == nil {
		return
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		l.Error("send_mail_failed", "subject", msg.Subject, "to", msg.To, "error", err)
	}
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
