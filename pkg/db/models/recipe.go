package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Recipe is a named, ordered collection of ingredient lines.
type Recipe struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name        string             `gorm:"column:name;not null"`
	Description string             `gorm:"column:description;not null;default:''"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (Recipe) TableName() string { return "recipes" }

func (r *Recipe) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RecipeIngredient is a (product, quantity) line owned by a recipe.
type RecipeIngredient struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	RecipeID  uuid.UUID       `gorm:"column:recipe_id;type:uuid;not null;index:idx_recipe_ingredients_recipe_position,priority:1"`
	Position  int             `gorm:"column:position;not null;default:0;index:idx_recipe_ingredients_recipe_position,priority:2"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Product   *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Quantity  decimal.Decimal `gorm:"column:quantity;type:numeric(12,4);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (RecipeIngredient) TableName() string { return "recipe_ingredients" }

func (ri *RecipeIngredient) BeforeCreate(*gorm.DB) error {
	if ri.ID == uuid.Nil {
		ri.ID = uuid.New()
	}
	return nil
}

// All lists every model in dependency order; used by AutoMigrate in tests and sqlite mode.
func All() []any {
	return []any{&Product{}, &VendorOffer{}, &Recipe{}, &RecipeIngredient{}}
}
