package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ParthG1810/TMSv1/pkg/enums"
)

// VendorOffer is one vendor's price for a product in a given package size.
// Position preserves insertion order for default fallback.
type VendorOffer struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ProductID   uuid.UUID         `gorm:"column:product_id;type:uuid;not null;index:idx_vendor_offers_product_position,priority:1"`
	Position    int               `gorm:"column:position;not null;default:0;index:idx_vendor_offers_product_position,priority:2"`
	VendorName  string            `gorm:"column:vendor_name;not null"`
	Price       decimal.Decimal   `gorm:"column:price;type:numeric(12,4);not null"`
	Weight      decimal.Decimal   `gorm:"column:weight;type:numeric(12,4);not null"`
	PackageSize enums.PackageSize `gorm:"column:package_size;type:varchar(10);not null"`
	IsDefault   bool              `gorm:"column:is_default;not null;default:false"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (VendorOffer) TableName() string { return "vendor_offers" }

func (v *VendorOffer) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
