package recipes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ParthG1810/TMSv1/internal/costing"
	"github.com/ParthG1810/TMSv1/pkg/db/models"
	"github.com/ParthG1810/TMSv1/pkg/enums"
)

// RecipeSummaryDTO is a list row: the recipe with its aggregate cost.
type RecipeSummaryDTO struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	IngredientCount  int64           `json:"ingredient_count"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	TotalCostDisplay string          `json:"total_cost_display"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// IngredientDTO is one recipe line joined to its product and default offer.
// Offer fields are nil when the product has no default offer.
type IngredientDTO struct {
	ID               uuid.UUID          `json:"id"`
	ProductID        uuid.UUID          `json:"product_id"`
	ProductName      string             `json:"product_name"`
	Quantity         decimal.Decimal    `json:"quantity"`
	QuantityDisplay  string             `json:"quantity_display"`
	UnitPrice        *decimal.Decimal   `json:"unit_price"`
	UnitPriceDisplay *string            `json:"unit_price_display"`
	Weight           *decimal.Decimal   `json:"weight"`
	PackageSize      *enums.PackageSize `json:"package_size"`
	Cost             decimal.Decimal    `json:"cost"`
	CostDisplay      string             `json:"cost_display"`
}

// RecipeDTO is the detail view of a recipe with ingredients in stored order.
type RecipeDTO struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Ingredients      []IngredientDTO `json:"ingredients"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	TotalCostDisplay string          `json:"total_cost_display"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// CostPreviewLineDTO is one costed line of a preview, in request order.
type CostPreviewLineDTO struct {
	ProductID   uuid.UUID          `json:"product_id"`
	Quantity    decimal.Decimal    `json:"quantity"`
	Resolved    bool               `json:"resolved"`
	VendorName  *string            `json:"vendor_name"`
	UnitPrice   *decimal.Decimal   `json:"unit_price"`
	Weight      *decimal.Decimal   `json:"weight"`
	PackageSize *enums.PackageSize `json:"package_size"`
	Cost        decimal.Decimal    `json:"cost"`
	CostDisplay string             `json:"cost_display"`
}

// CostPreviewDTO is the response of a cost preview.
type CostPreviewDTO struct {
	Lines            []CostPreviewLineDTO `json:"lines"`
	TotalCost        decimal.Decimal      `json:"total_cost"`
	TotalCostDisplay string               `json:"total_cost_display"`
}

func newSummaryDTO(recipe models.Recipe, ingredientCount int, total decimal.Decimal) RecipeSummaryDTO {
	return RecipeSummaryDTO{
		ID:               recipe.ID,
		Name:             recipe.Name,
		Description:      recipe.Description,
		IngredientCount:  int64(ingredientCount),
		TotalCost:        total,
		TotalCostDisplay: costing.Display(total),
		CreatedAt:        recipe.CreatedAt,
		UpdatedAt:        recipe.UpdatedAt,
	}
}

// newIngredientDTO pairs a joined line with its costed form from RecipeTotal.
func newIngredientDTO(rec ingredientRecord, lc costing.LineCost) IngredientDTO {
	dto := IngredientDTO{
		ID:              rec.ID,
		ProductID:       rec.ProductID,
		ProductName:     rec.ProductName,
		Quantity:        rec.Quantity,
		QuantityDisplay: rec.Quantity.String(),
		Cost:            lc.Cost,
		CostDisplay:     costing.Display(lc.Cost),
	}
	if lc.Offer != nil {
		price := lc.Offer.Price
		weight := lc.Offer.Weight
		display := costing.Display(price)
		dto.UnitPrice = &price
		dto.UnitPriceDisplay = &display
		dto.Weight = &weight
	}
	if rec.PackageSize != nil {
		size := enums.PackageSize(*rec.PackageSize)
		dto.PackageSize = &size
	}
	return dto
}

func newPreviewDTO(breakdown costing.Breakdown) *CostPreviewDTO {
	lines := make([]CostPreviewLineDTO, 0, len(breakdown.Lines))
	for _, lc := range breakdown.Lines {
		line := CostPreviewLineDTO{
			ProductID:   lc.ProductID,
			Quantity:    lc.Quantity,
			Resolved:    lc.Resolved,
			Cost:        lc.Cost,
			CostDisplay: costing.Display(lc.Cost),
		}
		if lc.Offer != nil {
			vendorName := lc.Offer.VendorName
			price := lc.Offer.Price
			weight := lc.Offer.Weight
			size := lc.Offer.PackageSize
			line.VendorName = &vendorName
			line.UnitPrice = &price
			line.Weight = &weight
			line.PackageSize = &size
		}
		lines = append(lines, line)
	}
	return &CostPreviewDTO{
		Lines:            lines,
		TotalCost:        breakdown.Total,
		TotalCostDisplay: costing.Display(breakdown.Total),
	}
}
