package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCartChanged = errors.New("cart changed concurrently")

func (r *GormRepo) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddToCart inserts the line with quantity 1 or bumps an existing one in the
// same statement, so concurrent adds cannot lose an increment.
func (r *GormRepo) AddToCart(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	item := models.CartItem{UserID: userID, ProductID: productID, Quantity: 1}

	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity": gorm.Expr("cart_items.quantity + ?", 1),
		}),
	}).Create(&item).Error
	if err != nil {
		return nil, err
	}

	var stored models.CartItem
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *GormRepo) RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

// ConsumeCartItems deletes exactly the rows that were read, provided none of
// them changed in the meantime.
func (r *GormRepo) ConsumeCartItems(ctx context.Context, items []models.CartItem) error {
	for _, it := range items {
		res := r.DB.WithContext(ctx).
			Where("id = ? AND user_id = ? AND quantity = ?", it.ID, it.UserID, it.Quantity).
			Delete(&models.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrCartChanged
		}
	}
	return nil
}
