package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/ParthG1810/TMSv1/internal/costing"
	"github.com/ParthG1810/TMSv1/pkg/db"
	"github.com/ParthG1810/TMSv1/pkg/db/models"
	"github.com/ParthG1810/TMSv1/pkg/enums"
	pkgerrors "github.com/ParthG1810/TMSv1/pkg/errors"
)

const (
	msgProductRequired = "Product name and at least one vendor are required"
	msgProductNotFound = "Product not found"
)

// Service exposes product and vendor offer management.
type Service interface {
	ListProducts(ctx context.Context) ([]ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// ProductInput is the full replacement payload for create and update.
type ProductInput struct {
	Name        string
	Description string
	Vendors     []VendorOfferInput
}

// VendorOfferInput is one offer in stored order.
type VendorOfferInput struct {
	VendorName  string
	Price       decimal.Decimal
	Weight      decimal.Decimal
	PackageSize enums.PackageSize
	IsDefault   bool
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a product service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) ListProducts(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewProductDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "load product")
	}
	return NewProductDTO(product), nil
}

// CreateProduct inserts the product and its normalized offers in one transaction.
func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	var created *models.Product
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product, err := txRepo.CreateProduct(ctx, &models.Product{
			Name:        input.Name,
			Description: input.Description,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert product")
		}

		offers := offerRows(input.Vendors)
		if err := txRepo.ReplaceVendorOffers(ctx, product.ID, offers); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert vendor offers")
		}
		product.Vendors = offers
		created = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewProductDTO(created), nil
}

// UpdateProduct rewrites name and description and replaces every offer atomically.
func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDTO, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	var updated *models.Product
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product, err := txRepo.FindByID(ctx, id)
		if err != nil {
			return mapLookupError(err, "load product")
		}

		product.Name = input.Name
		product.Description = input.Description
		if _, err := txRepo.UpdateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
		}

		offers := offerRows(input.Vendors)
		if err := txRepo.ReplaceVendorOffers(ctx, product.ID, offers); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replace vendor offers")
		}
		product.Vendors = offers
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewProductDTO(updated), nil
}

// DeleteProduct removes the product together with its offers and ingredient lines.
func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.FindByID(ctx, id); err != nil {
			return mapLookupError(err, "load product")
		}
		if err := txRepo.DeleteProduct(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
		}
		return nil
	})
}

func mapLookupError(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgProductNotFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}

type fieldError struct {
	field string
	msg   string
}

func (e fieldError) Error() string {
	return e.field + " " + e.msg
}

// normalizeInput validates the payload and enforces the single-default rule.
func normalizeInput(input ProductInput) (ProductInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.Vendors = append([]VendorOfferInput(nil), input.Vendors...)
	if input.Name == "" || len(input.Vendors) == 0 {
		return input, pkgerrors.New(pkgerrors.CodeValidation, msgProductRequired)
	}

	var errs error
	for i := range input.Vendors {
		v := &input.Vendors[i]
		v.VendorName = strings.TrimSpace(v.VendorName)
		prefix := fmt.Sprintf("vendors[%d].", i)
		if v.VendorName == "" {
			errs = multierr.Append(errs, fieldError{prefix + "vendor_name", "is required"})
		}
		if !v.Price.IsPositive() {
			errs = multierr.Append(errs, fieldError{prefix + "price", "must be greater than 0"})
		} else if msg := models.NumericProblem(v.Price); msg != "" {
			errs = multierr.Append(errs, fieldError{prefix + "price", msg})
		}
		if !v.Weight.IsPositive() {
			errs = multierr.Append(errs, fieldError{prefix + "weight", "must be greater than 0"})
		} else if msg := models.NumericProblem(v.Weight); msg != "" {
			errs = multierr.Append(errs, fieldError{prefix + "weight", msg})
		}
		if !v.PackageSize.IsValid() {
			errs = multierr.Append(errs, fieldError{prefix + "package_size", "must be one of g, kg, ml, l, pcs"})
		}
	}
	if errs != nil {
		details := map[string]string{}
		for _, e := range multierr.Errors(errs) {
			var fe fieldError
			if errors.As(e, &fe) {
				details[fe.field] = fe.msg
			}
		}
		return input, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}

	offers := make([]costing.Offer, len(input.Vendors))
	for i, v := range input.Vendors {
		offers[i] = costing.Offer{IsDefault: v.IsDefault}
	}
	for i, o := range costing.NormalizeDefaults(offers) {
		input.Vendors[i].IsDefault = o.IsDefault
	}
	return input, nil
}

func offerRows(inputs []VendorOfferInput) []models.VendorOffer {
	rows := make([]models.VendorOffer, 0, len(inputs))
	for _, v := range inputs {
		rows = append(rows, models.VendorOffer{
			VendorName:  v.VendorName,
			Price:       v.Price,
			Weight:      v.Weight,
			PackageSize: v.PackageSize,
			IsDefault:   v.IsDefault,
		})
	}
	return rows
}
