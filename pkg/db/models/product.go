package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the catalog listing. The cart/order subsystem treats it as
// read-only input; only the admin surface writes here.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description;not null"`
	ImageURL    string          `gorm:"column:image_url;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Tags        pq.StringArray  `gorm:"column:tags;type:text[]"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	// The tags column is NOT NULL; gorm writes the field either way, so a
	// nil slice must become an empty array before the insert.
	if p.Tags == nil {
		p.Tags = pq.StringArray{}
	}
	return nil
}
