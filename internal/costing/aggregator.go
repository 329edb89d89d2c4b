package costing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// divisionScale bounds non-terminating quotients; far beyond display precision.
const divisionScale = 20

// Line is one recipe ingredient as seen by the aggregator.
type Line struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// ProductLookup returns the offers for a product, or false when it is unknown.
type ProductLookup interface {
	Offers(productID uuid.UUID) ([]Offer, bool)
}

// LookupMap is a ProductLookup backed by a map.
type LookupMap map[uuid.UUID][]Offer

func (m LookupMap) Offers(productID uuid.UUID) ([]Offer, bool) {
	offers, ok := m[productID]
	return offers, ok
}

// LineCost is the costed form of a Line.
type LineCost struct {
	Line
	Offer    *Offer
	Cost     decimal.Decimal
	Resolved bool
}

// Breakdown is the per-line and total cost of a recipe, lines in input order.
type Breakdown struct {
	Lines []LineCost
	Total decimal.Decimal
}

// IngredientCost is price * quantity / weight, unrounded. A non-positive weight
// costs zero.
func IngredientCost(quantity decimal.Decimal, offer Offer) decimal.Decimal {
	if !offer.Weight.IsPositive() {
		return decimal.Zero
	}
	return offer.Price.Mul(quantity).DivRound(offer.Weight, divisionScale)
}

// RecipeTotal costs every line against its product's resolved offer. Unknown
// products and products without offers contribute zero.
func RecipeTotal(lines []Line, lookup ProductLookup) Breakdown {
	out := Breakdown{Lines: make([]LineCost, 0, len(lines)), Total: decimal.Zero}
	for _, line := range lines {
		lc := LineCost{Line: line, Cost: decimal.Zero}
		if lookup != nil {
			if offers, ok := lookup.Offers(line.ProductID); ok {
				if offer, found := ResolveDefaultVendor(offers); found {
					o := offer
					lc.Offer = &o
					lc.Resolved = true
					lc.Cost = IngredientCost(line.Quantity, offer)
				}
			}
		}
		out.Total = out.Total.Add(lc.Cost)
		out.Lines = append(out.Lines, lc)
	}
	return out
}

// Display rounds for presentation only; never persist or sum its output.
func Display(value decimal.Decimal) string {
	return value.StringFixed(2)
}
