package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"   json:"id"`
	Email            string     `gorm:"uniqueIndex;not null"   json:"email"`
	PasswordHash     string     `gorm:"not null"               json:"-"`
	ResetToken       *string    `gorm:"index"                  json:"-"`
	ResetTokenExpiry *time.Time `                              json:"-"`
	CreatedAt        time.Time  `                              json:"createdAt"`
}

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"          json:"id"`
	Title       string          `gorm:"not null"                      json:"title"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"   json:"price"`
	Description string          `gorm:"not null"                      json:"description"`
	ImageURL    string          `gorm:"not null"                      json:"imageUrl"`
	UserID      uuid.UUID       `gorm:"type:uuid;index;not null"      json:"userId"`
	CreatedAt   time.Time       `                                     json:"createdAt"`
	UpdatedAt   time.Time       `                                     json:"updatedAt"`
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                              json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_product"   json:"userId"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_product"   json:"productId"`
	Quantity  uint      `gorm:"not null;default:1;check:quantity > 0"             json:"quantity"`
	CreatedAt time.Time `gorm:"index"                                             json:"createdAt"`
}

type Order struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey"       json:"id"`
	UserID    uuid.UUID   `gorm:"type:uuid;index;not null"   json:"userId"`
	UserEmail string      `gorm:"not null"                   json:"userEmail"`
	CreatedAt time.Time   `                                  json:"createdAt"`
	Items     []OrderItem `gorm:"foreignKey:OrderID"         json:"products"`
}

// OrderItem is a by-value copy of the product taken when the order was placed.
// Position keeps the order the lines were added to the cart in.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"          json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;index;not null"      json:"orderId"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"            json:"productId"`
	Title       string          `gorm:"not null"                      json:"title"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"   json:"price"`
	Description string          `                                     json:"description"`
	ImageURL    string          `                                     json:"imageUrl"`
	Quantity    uint            `gorm:"not null"                      json:"quantity"`
	Position    int             `gorm:"not null;default:0"           json:"position"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"        json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"    json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null"        json:"-"`
	JTI       string    `gorm:"uniqueIndex;not null"        json:"jti"`
	ExpiresAt int64     `gorm:"not null"                    json:"expires_at"`
	Revoked   bool      `gorm:"default:false"               json:"revoked"`
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// ensureOrderedID assigns a time-ordered id so rows created in the same
// instant still sort in creation order.
func ensureOrderedID(id *uuid.UUID) error {
	if *id != uuid.Nil {
		return nil
	}
	v, err := uuid.NewV7()
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func (u *User) BeforeCreate(tx *gorm.DB) error         { ensureID(&u.ID); return nil }
func (p *Product) BeforeCreate(tx *gorm.DB) error      { ensureID(&p.ID); return nil }
func (c *CartItem) BeforeCreate(tx *gorm.DB) error     { return ensureOrderedID(&c.ID) }
func (o *Order) BeforeCreate(tx *gorm.DB) error        { ensureID(&o.ID); return nil }
func (i *OrderItem) BeforeCreate(tx *gorm.DB) error    { ensureID(&i.ID); return nil }
func (r *RefreshToken) BeforeCreate(tx *gorm.DB) error { ensureID(&r.ID); return nil }
