package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ParthG1810/TMSv1/pkg/db/models"
)

// Repository wraps product and vendor offer persistence.
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

func preloadVendors(db *gorm.DB) *gorm.DB {
	return db.Preload("Vendors", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// ListProducts returns every product with offers, newest first.
func (r *Repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := preloadVendors(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Order("name ASC").
		Find(&rows).
		Error
	return rows, err
}

// FindByID loads the product with its offers in stored order.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := preloadVendors(r.db.WithContext(ctx)).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads the requested products with offers. Unknown ids are skipped.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	err := preloadVendors(r.db.WithContext(ctx)).
		Where("id IN ?", ids).
		Find(&rows).
		Error
	return rows, err
}

// CreateProduct inserts the product row only; offers go through ReplaceVendorOffers.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Omit("Vendors").Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct writes name and description.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	err := r.db.WithContext(ctx).
		Model(product).
		Select("name", "description", "updated_at").
		Updates(product).
		Error
	if err != nil {
		return nil, err
	}
	return product, nil
}

// ReplaceVendorOffers deletes every offer for the product and inserts offers in order.
func (r *Repository) ReplaceVendorOffers(ctx context.Context, productID uuid.UUID, offers []models.VendorOffer) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.VendorOffer{}).Error; err != nil {
		return err
	}
	if len(offers) == 0 {
		return nil
	}
	for i := range offers {
		offers[i].ProductID = productID
		offers[i].Position = i
	}
	return tx.Create(&offers).Error
}

// DeleteProduct removes the product, its offers, and ingredient lines that reference it.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if err := tx.Where("product_id = ?", id).Delete(&models.VendorOffer{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Product{}).Error
}
