package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ParthG1810/TMSv1/api/responses"
	"github.com/ParthG1810/TMSv1/api/validators"
	productsvc "github.com/ParthG1810/TMSv1/internal/products"
	"github.com/ParthG1810/TMSv1/pkg/enums"
	pkgerrors "github.com/ParthG1810/TMSv1/pkg/errors"
	"github.com/ParthG1810/TMSv1/pkg/logger"
)

const (
	maxNameLength        = 255
	maxDescriptionLength = 2000
	productIDParam       = "id"
	msgProductDeleted    = "Product deleted successfully"
)

type productRequest struct {
	Name        string               `json:"name"`
	Description *string              `json:"description"`
	Vendors     []vendorOfferRequest `json:"vendors" validate:"dive"`
}

type vendorOfferRequest struct {
	VendorName  string          `json:"vendor_name" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"gt=0"`
	Weight      decimal.Decimal `json:"weight" validate:"gt=0"`
	PackageSize string          `json:"package_size" validate:"required"`
	IsDefault   bool            `json:"is_default"`
}

func (r productRequest) toInput() productsvc.ProductInput {
	input := productsvc.ProductInput{
		Name:    validators.SanitizeString(r.Name, maxNameLength),
		Vendors: make([]productsvc.VendorOfferInput, 0, len(r.Vendors)),
	}
	if r.Description != nil {
		input.Description = validators.SanitizeString(*r.Description, maxDescriptionLength)
	}
	for _, v := range r.Vendors {
		size, err := enums.ParsePackageSize(v.PackageSize)
		if err != nil {
			// the service reports it against the offer index
			size = enums.PackageSize(v.PackageSize)
		}
		input.Vendors = append(input.Vendors, productsvc.VendorOfferInput{
			VendorName:  validators.SanitizeString(v.VendorName, maxNameLength),
			Price:       v.Price,
			Weight:      v.Weight,
			PackageSize: size,
			IsDefault:   v.IsDefault,
		})
	}
	return input
}

func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		list, err := svc.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ProductFormOptions serves editor hints such as the per-product offer cap.
func ProductFormOptions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, productsvc.FormOptions())
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, productIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, productIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, productIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, msgProductDeleted)
	}
}
