package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a purchasable ingredient with one or more vendor offers.
type Product struct {
	ID          uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	Name        string        `gorm:"column:name;not null"`
	Description string        `gorm:"column:description;not null;default:''"`
	Vendors     []VendorOffer `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
