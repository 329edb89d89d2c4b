package products

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ParthG1810/TMSv1/pkg/db"
	"github.com/ParthG1810/TMSv1/pkg/db/dbtest"
	"github.com/ParthG1810/TMSv1/pkg/db/models"
	"github.com/ParthG1810/TMSv1/pkg/enums"
	pkgerrors "github.com/ParthG1810/TMSv1/pkg/errors"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()), client)
	require.NoError(t, err)
	return svc, client
}

func vendor(name, price, weight string, isDefault bool) VendorOfferInput {
	return VendorOfferInput{
		VendorName:  name,
		Price:       decimal.RequireFromString(price),
		Weight:      decimal.RequireFromString(weight),
		PackageSize: enums.PackageSizeKilogram,
		IsDefault:   isDefault,
	}
}

func countRows(t *testing.T, client *db.Client, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, client.DB().Model(model).Count(&n).Error)
	return n
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) *pkgerrors.Error {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected %s, got %s (%v)", code, typed.Code(), err)
	}
	return typed
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	client := dbtest.Open(t)
	if _, err := NewService(nil, client); err == nil {
		t.Fatal("expected error for nil repository")
	}
	if _, err := NewService(NewRepository(client.DB()), nil); err == nil {
		t.Fatal("expected error for nil db client")
	}
}

func TestCreateProductStoresOffersInOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, ProductInput{
		Name:        "  Flour ",
		Description: "all purpose",
		Vendors: []VendorOfferInput{
			vendor("Mill A", "10", "5", true),
			vendor("Mill B", "8", "4", false),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Flour", created.Name)
	require.Len(t, created.Vendors, 2)
	assert.Equal(t, "10.00", created.Vendors[0].PriceDisplay)

	got, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Vendors, 2)
	assert.Equal(t, "Mill A", got.Vendors[0].VendorName)
	assert.True(t, got.Vendors[0].IsDefault)
	assert.Equal(t, "Mill B", got.Vendors[1].VendorName)
	assert.False(t, got.Vendors[1].IsDefault)
}

func TestCreateProductRequiresNameAndVendors(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	cases := []ProductInput{
		{Name: "Flour"},
		{Name: "   ", Vendors: []VendorOfferInput{vendor("A", "1", "1", true)}},
	}
	for _, input := range cases {
		_, err := svc.CreateProduct(ctx, input)
		typed := requireCode(t, err, pkgerrors.CodeValidation)
		assert.Equal(t, msgProductRequired, typed.Message())
	}
	assert.Zero(t, countRows(t, client, &models.Product{}))
	assert.Zero(t, countRows(t, client, &models.VendorOffer{}))
}

func TestCreateProductReportsOfferFieldErrors(t *testing.T) {
	svc, client := newTestService(t)

	bad := vendor("", "0", "-1", false)
	bad.PackageSize = "lbs"
	_, err := svc.CreateProduct(context.Background(), ProductInput{
		Name:    "Flour",
		Vendors: []VendorOfferInput{vendor("A", "1", "1", true), bad},
	})
	typed := requireCode(t, err, pkgerrors.CodeValidation)

	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "vendors[1].vendor_name")
	assert.Contains(t, details, "vendors[1].price")
	assert.Contains(t, details, "vendors[1].weight")
	assert.Contains(t, details, "vendors[1].package_size")
	assert.NotContains(t, details, "vendors[0].price")
	assert.Zero(t, countRows(t, client, &models.Product{}))
}

func TestCreateProductRejectsUnstorableDecimals(t *testing.T) {
	svc, client := newTestService(t)

	_, err := svc.CreateProduct(context.Background(), ProductInput{
		Name:    "Saffron",
		Vendors: []VendorOfferInput{vendor("A", "1.23456", "100000000", true)},
	})
	typed := requireCode(t, err, pkgerrors.CodeValidation)

	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must have at most 4 decimal places", details["vendors[0].price"])
	assert.Equal(t, "must be less than 100000000", details["vendors[0].weight"])
	assert.Zero(t, countRows(t, client, &models.Product{}))
	assert.Zero(t, countRows(t, client, &models.VendorOffer{}))
}

func TestWeightDisplayKeepsPrecision(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, ProductInput{
		Name:    "Yeast",
		Vendors: []VendorOfferInput{vendor("A", "2.5", "0.125", true)},
	})
	require.NoError(t, err)

	got, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Vendors, 1)
	assert.Equal(t, "2.50", got.Vendors[0].PriceDisplay)
	assert.Equal(t, "0.125", got.Vendors[0].WeightDisplay)
	assert.True(t, got.Vendors[0].Weight.Equal(decimal.RequireFromString("0.125")))
}

func TestCreateProductNormalizesDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		flags   []bool
		wantIdx int
	}{
		{name: "none flagged", flags: []bool{false, false, false}, wantIdx: 0},
		{name: "several flagged", flags: []bool{false, true, true}, wantIdx: 1},
		{name: "single flagged", flags: []bool{false, false, true}, wantIdx: 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := ProductInput{Name: tc.name}
			for i, flag := range tc.flags {
				input.Vendors = append(input.Vendors, vendor(string(rune('A'+i)), "1", "1", flag))
			}
			created, err := svc.CreateProduct(ctx, input)
			require.NoError(t, err)

			got, err := svc.GetProduct(ctx, created.ID)
			require.NoError(t, err)
			defaults := 0
			for i, v := range got.Vendors {
				if v.IsDefault {
					defaults++
					assert.Equal(t, tc.wantIdx, i)
				}
			}
			assert.Equal(t, 1, defaults)
		})
	}
}

func TestCreateProductDoesNotMutateCallerInput(t *testing.T) {
	svc, _ := newTestService(t)
	vendors := []VendorOfferInput{vendor(" A ", "1", "1", false)}
	_, err := svc.CreateProduct(context.Background(), ProductInput{Name: "Salt", Vendors: vendors})
	require.NoError(t, err)
	assert.Equal(t, " A ", vendors[0].VendorName)
	assert.False(t, vendors[0].IsDefault)
}

func TestUpdateProductReplacesOffers(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, ProductInput{
		Name:    "Sugar",
		Vendors: []VendorOfferInput{vendor("A", "5", "1", true), vendor("B", "4", "1", false)},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(ctx, created.ID, ProductInput{
		Name:        "Cane Sugar",
		Description: "raw",
		Vendors:     []VendorOfferInput{vendor("C", "6", "2", false)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Cane Sugar", updated.Name)

	got, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "raw", got.Description)
	require.Len(t, got.Vendors, 1)
	assert.Equal(t, "C", got.Vendors[0].VendorName)
	assert.True(t, got.Vendors[0].IsDefault)
	assert.EqualValues(t, 1, countRows(t, client, &models.VendorOffer{}))
}

func TestUpdateProductNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.UpdateProduct(context.Background(), uuid.New(), ProductInput{
		Name:    "Ghost",
		Vendors: []VendorOfferInput{vendor("A", "1", "1", true)},
	})
	typed := requireCode(t, err, pkgerrors.CodeNotFound)
	assert.Equal(t, msgProductNotFound, typed.Message())
}

func TestUpdateProductRollsBackOnOfferFailure(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, ProductInput{
		Name:    "Butter",
		Vendors: []VendorOfferInput{vendor("A", "5", "1", true)},
	})
	require.NoError(t, err)

	err = client.DB().Callback().Create().Before("gorm:create").Register("test:fail_vendor_offers", func(tx *gorm.DB) {
		if tx.Statement.Table == "vendor_offers" {
			_ = tx.AddError(errors.New("vendor offer insert failed"))
		}
	})
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, created.ID, ProductInput{
		Name:    "Salted Butter",
		Vendors: []VendorOfferInput{vendor("B", "9", "1", true)},
	})
	requireCode(t, err, pkgerrors.CodeInternal)

	require.NoError(t, client.DB().Callback().Create().Remove("test:fail_vendor_offers"))

	got, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Butter", got.Name)
	require.Len(t, got.Vendors, 1)
	assert.Equal(t, "A", got.Vendors[0].VendorName)
}

func TestDeleteProductCascades(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, ProductInput{
		Name:    "Eggs",
		Vendors: []VendorOfferInput{vendor("A", "3", "12", true)},
	})
	require.NoError(t, err)

	recipe := models.Recipe{
		Name:        "Omelette",
		Ingredients: []models.RecipeIngredient{{ProductID: created.ID, Quantity: decimal.NewFromInt(3)}},
	}
	require.NoError(t, client.DB().Create(&recipe).Error)

	require.NoError(t, svc.DeleteProduct(ctx, created.ID))

	_, err = svc.GetProduct(ctx, created.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
	assert.Zero(t, countRows(t, client, &models.VendorOffer{}))
	assert.Zero(t, countRows(t, client, &models.RecipeIngredient{}))
	assert.EqualValues(t, 1, countRows(t, client, &models.Recipe{}))

	err = svc.DeleteProduct(ctx, created.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestListProductsIncludesOffers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Milk", "Cream"} {
		_, err := svc.CreateProduct(ctx, ProductInput{Name: name, Vendors: []VendorOfferInput{vendor("A", "1", "1", true)}})
		require.NoError(t, err)
	}

	list, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, p := range list {
		assert.Len(t, p.Vendors, 1)
	}
}

// Every flag combination of up to three offers, applied as create then a
// chain of updates, must leave exactly one default row per product.
func TestSingleDefaultHoldsAcrossWrites(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	var sets [][]bool
	for n := 1; n <= 3; n++ {
		for mask := 0; mask < 1<<n; mask++ {
			flags := make([]bool, n)
			for i := range flags {
				flags[i] = mask&(1<<i) != 0
			}
			sets = append(sets, flags)
		}
	}

	assertSingleDefault := func(t *testing.T, id uuid.UUID) {
		t.Helper()
		var defaults int64
		require.NoError(t, client.DB().Model(&models.VendorOffer{}).
			Where("product_id = ? AND is_default = ?", id, true).
			Count(&defaults).Error)
		if defaults != 1 {
			t.Fatalf("expected exactly one default offer, got %d", defaults)
		}
	}

	toInput := func(flags []bool) ProductInput {
		input := ProductInput{Name: "Oil"}
		for i, flag := range flags {
			input.Vendors = append(input.Vendors, vendor(string(rune('A'+i)), "2", "1", flag))
		}
		return input
	}

	created, err := svc.CreateProduct(ctx, toInput(sets[0]))
	require.NoError(t, err)
	assertSingleDefault(t, created.ID)

	for _, flags := range sets[1:] {
		_, err := svc.UpdateProduct(ctx, created.ID, toInput(flags))
		require.NoError(t, err)
		assertSingleDefault(t, created.ID)
	}
}
