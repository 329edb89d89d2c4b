package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ParthG1810/TMSv1/internal/costing"
	"github.com/ParthG1810/TMSv1/pkg/db/models"
	"github.com/ParthG1810/TMSv1/pkg/enums"
)

// MaxVendorOffersHint is the editing UI's per-product offer cap. Not enforced here;
// clients read it from FormOptions.
const MaxVendorOffersHint = 3

// FormOptionsDTO is what a product editor needs before any product exists.
type FormOptionsDTO struct {
	MaxVendorOffers int                 `json:"max_vendor_offers"`
	PackageSizes    []enums.PackageSize `json:"package_sizes"`
	DecimalPlaces   int                 `json:"decimal_places"`
}

// FormOptions reports the offer cap, accepted package sizes and stored precision.
func FormOptions() FormOptionsDTO {
	return FormOptionsDTO{
		MaxVendorOffers: MaxVendorOffersHint,
		PackageSizes:    enums.PackageSizes(),
		DecimalPlaces:   models.NumericScale,
	}
}

// VendorOfferDTO is the API view of a vendor offer.
type VendorOfferDTO struct {
	ID            uuid.UUID         `json:"id"`
	ProductID     uuid.UUID         `json:"product_id"`
	VendorName    string            `json:"vendor_name"`
	Price         decimal.Decimal   `json:"price"`
	PriceDisplay  string            `json:"price_display"`
	Weight        decimal.Decimal   `json:"weight"`
	WeightDisplay string            `json:"weight_display"`
	PackageSize   enums.PackageSize `json:"package_size"`
	IsDefault     bool              `json:"is_default"`
}

// ProductDTO is the API view of a product with its offers in stored order.
type ProductDTO struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Vendors     []VendorOfferDTO `json:"vendors"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func NewVendorOfferDTO(m models.VendorOffer) VendorOfferDTO {
	return VendorOfferDTO{
		ID:            m.ID,
		ProductID:     m.ProductID,
		VendorName:    m.VendorName,
		Price:         m.Price,
		PriceDisplay:  costing.Display(m.Price),
		Weight:        m.Weight,
		WeightDisplay: m.Weight.String(),
		PackageSize:   m.PackageSize,
		IsDefault:     m.IsDefault,
	}
}

func NewProductDTO(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}
	vendors := make([]VendorOfferDTO, 0, len(m.Vendors))
	for _, v := range m.Vendors {
		vendors = append(vendors, NewVendorOfferDTO(v))
	}
	return &ProductDTO{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Vendors:     vendors,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// OffersForCosting converts persisted offers into the costing view, keeping order.
func OffersForCosting(rows []models.VendorOffer) []costing.Offer {
	out := make([]costing.Offer, 0, len(rows))
	for _, v := range rows {
		out = append(out, costing.Offer{
			ID:          v.ID,
			VendorName:  v.VendorName,
			Price:       v.Price,
			Weight:      v.Weight,
			PackageSize: v.PackageSize,
			IsDefault:   v.IsDefault,
		})
	}
	return out
}
