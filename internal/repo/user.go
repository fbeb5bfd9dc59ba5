package repo

import (
	"context"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (r *GormRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = normalizeEmail(u.Email)
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) SetResetToken(ctx context.Context, userID uuid.UUID, token string, expiry time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"reset_token": token, "reset_token_expiry": expiry})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByResetToken returns the user holding token while it is still active at now.
func (r *GormRepo) FindByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Where("reset_token = ? AND reset_token_expiry > ?", token, now).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindByIDAndResetToken(ctx context.Context, id uuid.UUID, token string, now time.Time) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Where("id = ? AND reset_token = ? AND reset_token_expiry > ?", id, token, now).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ResetPassword stores the new hash and drops the reset token, but only while
// that token is still the user's live one. A token already spent or expired
// matches no row and yields gorm.ErrRecordNotFound.
func (r *GormRepo) ResetPassword(ctx context.Context, userID uuid.UUID, token string, now time.Time, passwordHash string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND reset_token = ? AND reset_token_expiry > ?", userID, token, now).
		Updates(map[string]any{
			"password_hash":      passwordHash,
			"reset_token":        nil,
			"reset_token_expiry": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
