package recipes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ParthG1810/TMSv1/internal/costing"
	"github.com/ParthG1810/TMSv1/internal/products"
	"github.com/ParthG1810/TMSv1/pkg/db"
	"github.com/ParthG1810/TMSv1/pkg/db/models"
	pkgerrors "github.com/ParthG1810/TMSv1/pkg/errors"
)

const (
	msgRecipeRequired  = "Recipe name and at least one ingredient are required"
	msgRecipeNotFound  = "Recipe not found"
	msgUnknownProduct  = "references an unknown product"
	msgValidationError = "validation failed"
)

// Service exposes recipe management and costing.
type Service interface {
	ListRecipes(ctx context.Context) ([]RecipeSummaryDTO, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*RecipeDTO, error)
	CreateRecipe(ctx context.Context, input RecipeInput) (*RecipeDTO, error)
	UpdateRecipe(ctx context.Context, id uuid.UUID, input RecipeInput) (*RecipeDTO, error)
	DeleteRecipe(ctx context.Context, id uuid.UUID) error
	PreviewCost(ctx context.Context, lines []IngredientInput) (*CostPreviewDTO, error)
}

// RecipeInput is the full replacement payload for create and update.
type RecipeInput struct {
	Name        string
	Description string
	Ingredients []IngredientInput
}

// IngredientInput is one (product, quantity) line.
type IngredientInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// ProductReader loads products with their offers.
type ProductReader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// CostRecorder observes cost previews. Optional.
type CostRecorder interface {
	ObserveCostPreview(lines, unresolved int)
}

type service struct {
	repo     *Repository
	products ProductReader
	dbClient *db.Client
	recorder CostRecorder
}

// NewService constructs a recipe service instance. recorder may be nil.
func NewService(repo *Repository, productReader ProductReader, dbClient *db.Client, recorder CostRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("recipe repository required")
	}
	if productReader == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:     repo,
		products: productReader,
		dbClient: dbClient,
		recorder: recorder,
	}, nil
}

func (s *service) ListRecipes(ctx context.Context) ([]RecipeSummaryDTO, error) {
	recipes, err := s.repo.ListRecipes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list recipes")
	}
	ids := make([]uuid.UUID, 0, len(recipes))
	for _, recipe := range recipes {
		ids = append(ids, recipe.ID)
	}
	records, err := s.repo.ListIngredients(ctx, ids...)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list recipe ingredients")
	}
	byRecipe := make(map[uuid.UUID][]ingredientRecord, len(recipes))
	for _, rec := range records {
		byRecipe[rec.RecipeID] = append(byRecipe[rec.RecipeID], rec)
	}

	out := make([]RecipeSummaryDTO, 0, len(recipes))
	for _, recipe := range recipes {
		lines := byRecipe[recipe.ID]
		_, breakdown := costRecords(lines)
		out = append(out, newSummaryDTO(recipe, len(lines), breakdown.Total))
	}
	return out, nil
}

func (s *service) GetRecipe(ctx context.Context, id uuid.UUID) (*RecipeDTO, error) {
	return loadDetail(ctx, s.repo, id)
}

// CreateRecipe inserts the recipe and its lines in one transaction.
func (s *service) CreateRecipe(ctx context.Context, input RecipeInput) (*RecipeDTO, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	var created *RecipeDTO
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := checkProducts(ctx, txRepo, input.Ingredients); err != nil {
			return err
		}

		recipe, err := txRepo.CreateRecipe(ctx, &models.Recipe{
			Name:        input.Name,
			Description: input.Description,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert recipe")
		}
		if err := txRepo.ReplaceIngredients(ctx, recipe.ID, ingredientRows(input.Ingredients)); err != nil {
			return mapWriteError(err, "insert recipe ingredients")
		}

		created, err = loadDetail(ctx, txRepo, recipe.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateRecipe rewrites name and description and replaces every line atomically.
func (s *service) UpdateRecipe(ctx context.Context, id uuid.UUID, input RecipeInput) (*RecipeDTO, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	var updated *RecipeDTO
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		recipe, err := txRepo.FindByID(ctx, id)
		if err != nil {
			return mapLookupError(err, "load recipe")
		}
		if err := checkProducts(ctx, txRepo, input.Ingredients); err != nil {
			return err
		}

		recipe.Name = input.Name
		recipe.Description = input.Description
		if _, err := txRepo.UpdateRecipe(ctx, recipe); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update recipe")
		}
		if err := txRepo.ReplaceIngredients(ctx, recipe.ID, ingredientRows(input.Ingredients)); err != nil {
			return mapWriteError(err, "replace recipe ingredients")
		}

		updated, err = loadDetail(ctx, txRepo, recipe.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteRecipe removes the recipe and its lines.
func (s *service) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.FindByID(ctx, id); err != nil {
			return mapLookupError(err, "load recipe")
		}
		if err := txRepo.DeleteRecipe(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete recipe")
		}
		return nil
	})
}

// PreviewCost costs unsaved lines against current default offers. Unknown
// products cost zero.
func (s *service) PreviewCost(ctx context.Context, lines []IngredientInput) (*CostPreviewDTO, error) {
	details := map[string]string{}
	for i, line := range lines {
		prefix := fmt.Sprintf("ingredients[%d].", i)
		if line.ProductID == uuid.Nil {
			details[prefix+"product_id"] = "is required"
		}
		if line.Quantity.IsNegative() {
			details[prefix+"quantity"] = "must be greater than or equal to 0"
		}
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgValidationError).WithDetails(details)
	}

	rows, err := s.products.FindByIDs(ctx, distinctProductIDs(lines))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products for preview")
	}
	lookup := make(costing.LookupMap, len(rows))
	for _, p := range rows {
		lookup[p.ID] = products.OffersForCosting(p.Vendors)
	}

	costLines := make([]costing.Line, 0, len(lines))
	for _, line := range lines {
		costLines = append(costLines, costing.Line{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	breakdown := costing.RecipeTotal(costLines, lookup)

	if s.recorder != nil {
		unresolved := 0
		for _, lc := range breakdown.Lines {
			if !lc.Resolved {
				unresolved++
			}
		}
		s.recorder.ObserveCostPreview(len(lines), unresolved)
	}
	return newPreviewDTO(breakdown), nil
}

func loadDetail(ctx context.Context, repo *Repository, id uuid.UUID) (*RecipeDTO, error) {
	recipe, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "load recipe")
	}
	records, err := repo.ListIngredients(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recipe ingredients")
	}

	ingredients, breakdown := costRecords(records)
	total := breakdown.Total
	return &RecipeDTO{
		ID:               recipe.ID,
		Name:             recipe.Name,
		Description:      recipe.Description,
		Ingredients:      ingredients,
		TotalCost:        total,
		TotalCostDisplay: costing.Display(total),
		CreatedAt:        recipe.CreatedAt,
		UpdatedAt:        recipe.UpdatedAt,
	}, nil
}

// costRecords prices joined lines with the same aggregate the preview uses, so
// list, detail and preview totals agree exactly.
func costRecords(records []ingredientRecord) ([]IngredientDTO, costing.Breakdown) {
	lines := make([]costing.Line, 0, len(records))
	lookup := make(costing.LookupMap, len(records))
	for _, rec := range records {
		lines = append(lines, costing.Line{ProductID: rec.ProductID, Quantity: rec.Quantity})
		if rec.UnitPrice.Valid && rec.Weight.Valid {
			lookup[rec.ProductID] = []costing.Offer{{
				Price:     rec.UnitPrice.Decimal,
				Weight:    rec.Weight.Decimal,
				IsDefault: true,
			}}
		}
	}
	breakdown := costing.RecipeTotal(lines, lookup)

	ingredients := make([]IngredientDTO, 0, len(records))
	for i, rec := range records {
		ingredients = append(ingredients, newIngredientDTO(rec, breakdown.Lines[i]))
	}
	return ingredients, breakdown
}

func checkProducts(ctx context.Context, repo *Repository, lines []IngredientInput) error {
	missing, err := repo.MissingProductIDs(ctx, distinctProductIDs(lines))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check ingredient products")
	}
	if len(missing) == 0 {
		return nil
	}
	unknown := make(map[uuid.UUID]struct{}, len(missing))
	for _, id := range missing {
		unknown[id] = struct{}{}
	}
	details := map[string]string{}
	for i, line := range lines {
		if _, ok := unknown[line.ProductID]; ok {
			details[fmt.Sprintf("ingredients[%d].product_id", i)] = msgUnknownProduct
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "Ingredient "+msgUnknownProduct).WithDetails(details)
}

func mapLookupError(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgRecipeNotFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}

// A product deleted between the existence check and the insert surfaces as a
// foreign key violation.
func mapWriteError(err error, action string) error {
	if db.IsForeignKeyViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Ingredient "+msgUnknownProduct)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}

func normalizeInput(input RecipeInput) (RecipeInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if input.Name == "" || len(input.Ingredients) == 0 {
		return input, pkgerrors.New(pkgerrors.CodeValidation, msgRecipeRequired)
	}

	details := map[string]string{}
	for i, line := range input.Ingredients {
		prefix := fmt.Sprintf("ingredients[%d].", i)
		if line.ProductID == uuid.Nil {
			details[prefix+"product_id"] = "is required"
		}
		if !line.Quantity.IsPositive() {
			details[prefix+"quantity"] = "must be greater than 0"
		} else if msg := models.NumericProblem(line.Quantity); msg != "" {
			details[prefix+"quantity"] = msg
		}
	}
	if len(details) > 0 {
		return input, pkgerrors.New(pkgerrors.CodeValidation, msgValidationError).WithDetails(details)
	}
	return input, nil
}

func distinctProductIDs(lines []IngredientInput) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
}

func ingredientRows(lines []IngredientInput) []models.RecipeIngredient {
	rows := make([]models.RecipeIngredient, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, models.RecipeIngredient{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	return rows
}
