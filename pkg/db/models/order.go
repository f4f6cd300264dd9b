package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/flowmazonhq/flowmazon-backend/pkg/enums"
	"github.com/flowmazonhq/flowmazon-backend/pkg/types"
)

// Order is the immutable record of a purchase. Items and Total are written
// once at creation; only Status and tracking metadata transition afterward.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	Total           decimal.Decimal   `gorm:"column:total;type:numeric(10,2);not null"`
	Currency        enums.Currency    `gorm:"column:currency;type:text;not null;default:'USD'"`
	PaymentRef      *string           `gorm:"column:payment_ref;type:text;uniqueIndex"`
	ShippingAddress *types.Address    `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	BillingAddress  *types.Address    `gorm:"column:billing_address;type:jsonb;serializer:json"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
