package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ParthG1810/TMSv1/api/responses"
	"github.com/ParthG1810/TMSv1/api/validators"
	recipesvc "github.com/ParthG1810/TMSv1/internal/recipes"
	pkgerrors "github.com/ParthG1810/TMSv1/pkg/errors"
	"github.com/ParthG1810/TMSv1/pkg/logger"
)

const (
	recipeIDParam    = "id"
	msgRecipeDeleted = "Recipe deleted successfully"
)

type recipeRequest struct {
	Name        string              `json:"name"`
	Description *string             `json:"description"`
	Ingredients []ingredientRequest `json:"ingredients" validate:"dive"`
}

type ingredientRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
}

// Preview lines may be half-filled while the user edits, so zero is allowed.
type costPreviewRequest struct {
	Ingredients []previewLineRequest `json:"ingredients" validate:"dive"`
}

type previewLineRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gte=0"`
}

func (r recipeRequest) toInput() recipesvc.RecipeInput {
	input := recipesvc.RecipeInput{
		Name:        validators.SanitizeString(r.Name, maxNameLength),
		Ingredients: make([]recipesvc.IngredientInput, 0, len(r.Ingredients)),
	}
	if r.Description != nil {
		input.Description = validators.SanitizeString(*r.Description, maxDescriptionLength)
	}
	for _, line := range r.Ingredients {
		// validated by the uuid tag
		id, _ := uuid.Parse(line.ProductID)
		input.Ingredients = append(input.Ingredients, recipesvc.IngredientInput{
			ProductID: id,
			Quantity:  line.Quantity,
		})
	}
	return input
}

func (r costPreviewRequest) toLines() []recipesvc.IngredientInput {
	lines := make([]recipesvc.IngredientInput, 0, len(r.Ingredients))
	for _, line := range r.Ingredients {
		id, _ := uuid.Parse(line.ProductID)
		lines = append(lines, recipesvc.IngredientInput{ProductID: id, Quantity: line.Quantity})
	}
	return lines
}

func ListRecipes(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipe service unavailable"))
			return
		}
		list, err := svc.ListRecipes(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetRecipe(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipe service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, recipeIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		recipe, err := svc.GetRecipe(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, recipe)
	}
}

func CreateRecipe(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipe service unavailable"))
			return
		}

		var payload recipeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recipe, err := svc.CreateRecipe(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, recipe)
	}
}

func UpdateRecipe(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipe service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, recipeIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload recipeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recipe, err := svc.UpdateRecipe(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, recipe)
	}
}

func DeleteRecipe(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipe service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, recipeIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteRecipe(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, msgRecipeDeleted)
	}
}

// PreviewRecipeCost costs unsaved ingredient lines against current default offers.
func PreviewRecipeCost(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipe service unavailable"))
			return
		}

		var payload costPreviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		preview, err := svc.PreviewCost(r.Context(), payload.toLines())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}
