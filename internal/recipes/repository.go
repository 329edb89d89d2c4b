package recipes

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ParthG1810/TMSv1/pkg/db/models"
)

// Repository wraps recipe and ingredient persistence plus the read-side join.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

type ingredientRecord struct {
	ID          uuid.UUID
	RecipeID    uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.NullDecimal
	Weight      decimal.NullDecimal
	PackageSize *string
}

// ListRecipes returns every recipe row, newest first.
func (r *Repository) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("name ASC").
		Find(&recipes).
		Error
	return recipes, err
}

// FindByID loads the recipe row without ingredients.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ListIngredients returns the lines of the given recipes joined to the product
// name and its default offer. Lines of one recipe keep their stored order.
func (r *Repository) ListIngredients(ctx context.Context, recipeIDs ...uuid.UUID) ([]ingredientRecord, error) {
	if len(recipeIDs) == 0 {
		return nil, nil
	}
	selectColumns := []string{
		"ri.id",
		"ri.recipe_id",
		"ri.product_id",
		"p.name AS product_name",
		"ri.quantity",
		"v.price AS unit_price",
		"v.weight",
		"v.package_size",
	}

	var records []ingredientRecord
	err := r.db.WithContext(ctx).
		Table("recipe_ingredients ri").
		Select(strings.Join(selectColumns, ", ")).
		Joins("JOIN products p ON p.id = ri.product_id").
		Joins("LEFT JOIN vendor_offers v ON v.product_id = p.id AND v.is_default = TRUE").
		Where("ri.recipe_id IN ?", recipeIDs).
		Order("ri.position ASC").
		Order("ri.created_at ASC").
		Scan(&records).
		Error
	return records, err
}

// MissingProductIDs returns the ids that have no product row, in input order.
func (r *Repository) MissingProductIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// CreateRecipe inserts the recipe row only; lines go through ReplaceIngredients.
func (r *Repository) CreateRecipe(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	if err := r.db.WithContext(ctx).Omit("Ingredients").Create(recipe).Error; err != nil {
		return nil, err
	}
	return recipe, nil
}

// UpdateRecipe writes name and description.
func (r *Repository) UpdateRecipe(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	err := r.db.WithContext(ctx).
		Model(recipe).
		Select("name", "description", "updated_at").
		Updates(recipe).
		Error
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// ReplaceIngredients deletes every line for the recipe and inserts lines in order.
func (r *Repository) ReplaceIngredients(ctx context.Context, recipeID uuid.UUID, lines []models.RecipeIngredient) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].RecipeID = recipeID
		lines[i].Position = i
	}
	return tx.Omit("Product").Create(&lines).Error
}

// DeleteRecipe removes the recipe and its lines.
func (r *Repository) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Recipe{}).Error
}
