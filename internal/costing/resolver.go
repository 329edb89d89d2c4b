// Package costing holds the pure pricing and cost arithmetic shared by the
// persisted recipe totals and the cost preview endpoint.
package costing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ParthG1810/TMSv1/pkg/enums"
)

// Offer is the costing view of a vendor offer.
type Offer struct {
	ID          uuid.UUID
	VendorName  string
	Price       decimal.Decimal
	Weight      decimal.Decimal
	PackageSize enums.PackageSize
	IsDefault   bool
}

// ResolveDefaultVendor returns the first offer flagged default, else the first
// offer, else false.
func ResolveDefaultVendor(offers []Offer) (Offer, bool) {
	if len(offers) == 0 {
		return Offer{}, false
	}
	for _, offer := range offers {
		if offer.IsDefault {
			return offer, true
		}
	}
	return offers[0], true
}

// NormalizeDefaults returns a copy of offers with exactly one default: the first
// flagged offer, or the first offer when none is flagged. Empty input stays empty.
func NormalizeDefaults(offers []Offer) []Offer {
	out := make([]Offer, len(offers))
	copy(out, offers)
	if len(out) == 0 {
		return out
	}
	chosen := -1
	for i := range out {
		if out[i].IsDefault && chosen < 0 {
			chosen = i
			continue
		}
		out[i].IsDefault = false
	}
	if chosen < 0 {
		out[0].IsDefault = true
	}
	return out
}
