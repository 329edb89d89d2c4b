package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	productsvc "github.com/ParthG1810/TMSv1/internal/products"
	recipesvc "github.com/ParthG1810/TMSv1/internal/recipes"
	"github.com/ParthG1810/TMSv1/pkg/config"
	"github.com/ParthG1810/TMSv1/pkg/enums"
	pkgerrors "github.com/ParthG1810/TMSv1/pkg/errors"
	"github.com/ParthG1810/TMSv1/pkg/logger"
)

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details"`
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func withIDParam(req *http.Request, id string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return body
}

type stubProductService struct {
	lastInput productsvc.ProductInput
	lastID    uuid.UUID
	err       error
}

func (s *stubProductService) ListProducts(context.Context) ([]productsvc.ProductDTO, error) {
	return []productsvc.ProductDTO{}, s.err
}

func (s *stubProductService) GetProduct(_ context.Context, id uuid.UUID) (*productsvc.ProductDTO, error) {
	s.lastID = id
	if s.err != nil {
		return nil, s.err
	}
	return &productsvc.ProductDTO{ID: id, Name: "Flour"}, nil
}

func (s *stubProductService) CreateProduct(_ context.Context, input productsvc.ProductInput) (*productsvc.ProductDTO, error) {
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &productsvc.ProductDTO{ID: uuid.New(), Name: input.Name}, nil
}

func (s *stubProductService) UpdateProduct(_ context.Context, id uuid.UUID, input productsvc.ProductInput) (*productsvc.ProductDTO, error) {
	s.lastID = id
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &productsvc.ProductDTO{ID: id, Name: input.Name}, nil
}

func (s *stubProductService) DeleteProduct(_ context.Context, id uuid.UUID) error {
	s.lastID = id
	return s.err
}

func TestCreateProduct(t *testing.T) {
	logg := testLogger()

	t.Run("success", func(t *testing.T) {
		stub := &stubProductService{}
		body := `{"id":"ignored","name":" Flour ","description":"fine","vendors":[{"vendor_name":"A","price":"10","weight":5,"package_size":"KG","is_default":true}]}`
		req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))
		rec := httptest.NewRecorder()
		CreateProduct(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.lastInput.Name != "Flour" {
			t.Fatalf("expected trimmed name, got %q", stub.lastInput.Name)
		}
		if len(stub.lastInput.Vendors) != 1 || stub.lastInput.Vendors[0].PackageSize != enums.PackageSizeKilogram {
			t.Fatalf("unexpected vendors %+v", stub.lastInput.Vendors)
		}
		if !stub.lastInput.Vendors[0].Price.Equal(decimal.NewFromInt(10)) {
			t.Fatalf("unexpected price %s", stub.lastInput.Vendors[0].Price)
		}
		if !decodeEnvelope(t, rec).Success {
			t.Fatalf("expected success envelope")
		}
	})

	t.Run("offer validation", func(t *testing.T) {
		stub := &stubProductService{}
		body := `{"name":"Flour","vendors":[{"vendor_name":"","price":0,"weight":1,"package_size":"g"}]}`
		req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))
		rec := httptest.NewRecorder()
		CreateProduct(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		env := decodeEnvelope(t, rec)
		if env.Code != string(pkgerrors.CodeValidation) {
			t.Fatalf("unexpected code %s", env.Code)
		}
		if _, ok := env.Details["vendors[0].price"]; !ok {
			t.Fatalf("expected price detail, got %v", env.Details)
		}
		if _, ok := env.Details["vendors[0].vendor_name"]; !ok {
			t.Fatalf("expected vendor_name detail, got %v", env.Details)
		}
	})

	t.Run("service validation message", func(t *testing.T) {
		stub := &stubProductService{err: pkgerrors.New(pkgerrors.CodeValidation, "Product name and at least one vendor are required")}
		req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"name":"Flour","vendors":[]}`))
		rec := httptest.NewRecorder()
		CreateProduct(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if env := decodeEnvelope(t, rec); env.Error != "Product name and at least one vendor are required" {
			t.Fatalf("unexpected error %q", env.Error)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"name":`))
		rec := httptest.NewRecorder()
		CreateProduct(&stubProductService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestGetProduct(t *testing.T) {
	logg := testLogger()
	id := uuid.New()

	t.Run("invalid id", func(t *testing.T) {
		req := withIDParam(httptest.NewRequest(http.MethodGet, "/api/products/nope", nil), "nope")
		rec := httptest.NewRecorder()
		GetProduct(&stubProductService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		stub := &stubProductService{err: pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")}
		req := withIDParam(httptest.NewRequest(http.MethodGet, "/api/products/"+id.String(), nil), id.String())
		rec := httptest.NewRecorder()
		GetProduct(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		env := decodeEnvelope(t, rec)
		if env.Success || env.Error != "Product not found" {
			t.Fatalf("unexpected envelope %+v", env)
		}
	})

	t.Run("found", func(t *testing.T) {
		stub := &stubProductService{}
		req := withIDParam(httptest.NewRequest(http.MethodGet, "/api/products/"+id.String(), nil), id.String())
		rec := httptest.NewRecorder()
		GetProduct(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.lastID != id {
			t.Fatalf("expected id %s passed to service, got %s", id, stub.lastID)
		}
	})
}

func TestUpdateProductPassesID(t *testing.T) {
	stub := &stubProductService{}
	id := uuid.New()
	body := `{"name":"Sugar","vendors":[{"vendor_name":"A","price":1,"weight":1,"package_size":"g"}]}`
	req := withIDParam(httptest.NewRequest(http.MethodPut, "/api/products/"+id.String(), strings.NewReader(body)), id.String())
	rec := httptest.NewRecorder()
	UpdateProduct(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.lastID != id || stub.lastInput.Name != "Sugar" {
		t.Fatalf("unexpected service call id=%s input=%+v", stub.lastID, stub.lastInput)
	}
}

func TestDeleteProduct(t *testing.T) {
	id := uuid.New()
	req := withIDParam(httptest.NewRequest(http.MethodDelete, "/api/products/"+id.String(), nil), id.String())
	rec := httptest.NewRecorder()
	DeleteProduct(&stubProductService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if !env.Success || env.Message != "Product deleted successfully" {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestNilServiceIsInternalError(t *testing.T) {
	rec := httptest.NewRecorder()
	ListProducts(nil, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

type stubRecipeService struct {
	lastInput recipesvc.RecipeInput
	lastLines []recipesvc.IngredientInput
	err       error
}

func (s *stubRecipeService) ListRecipes(context.Context) ([]recipesvc.RecipeSummaryDTO, error) {
	return []recipesvc.RecipeSummaryDTO{{Name: "Bread", TotalCost: decimal.RequireFromString("4")}}, s.err
}

func (s *stubRecipeService) GetRecipe(_ context.Context, id uuid.UUID) (*recipesvc.RecipeDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &recipesvc.RecipeDTO{ID: id}, nil
}

func (s *stubRecipeService) CreateRecipe(_ context.Context, input recipesvc.RecipeInput) (*recipesvc.RecipeDTO, error) {
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &recipesvc.RecipeDTO{ID: uuid.New(), Name: input.Name}, nil
}

func (s *stubRecipeService) UpdateRecipe(_ context.Context, id uuid.UUID, input recipesvc.RecipeInput) (*recipesvc.RecipeDTO, error) {
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &recipesvc.RecipeDTO{ID: id, Name: input.Name}, nil
}

func (s *stubRecipeService) DeleteRecipe(context.Context, uuid.UUID) error {
	return s.err
}

func (s *stubRecipeService) PreviewCost(_ context.Context, lines []recipesvc.IngredientInput) (*recipesvc.CostPreviewDTO, error) {
	s.lastLines = lines
	if s.err != nil {
		return nil, s.err
	}
	return &recipesvc.CostPreviewDTO{TotalCost: decimal.RequireFromString("17.5"), TotalCostDisplay: "17.50"}, nil
}

func TestCreateRecipe(t *testing.T) {
	logg := testLogger()
	productID := uuid.New()

	t.Run("success", func(t *testing.T) {
		stub := &stubRecipeService{}
		body := `{"name":"Bread","ingredients":[{"product_id":"` + productID.String() + `","quantity":"2","product_name":"Flour"}]}`
		rec := httptest.NewRecorder()
		CreateRecipe(stub, logg).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/recipes", strings.NewReader(body)))

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(stub.lastInput.Ingredients) != 1 || stub.lastInput.Ingredients[0].ProductID != productID {
			t.Fatalf("unexpected input %+v", stub.lastInput)
		}
	})

	t.Run("bad product id", func(t *testing.T) {
		body := `{"name":"Bread","ingredients":[{"product_id":"flour","quantity":2}]}`
		rec := httptest.NewRecorder()
		CreateRecipe(&stubRecipeService{}, logg).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/recipes", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if env := decodeEnvelope(t, rec); env.Details["ingredients[0].product_id"] == "" {
			t.Fatalf("expected product_id detail, got %v", env.Details)
		}
	})

	t.Run("persistence failure", func(t *testing.T) {
		stub := &stubRecipeService{err: pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("disk full"), "insert recipe")}
		body := `{"name":"Bread","ingredients":[{"product_id":"` + productID.String() + `","quantity":1}]}`
		rec := httptest.NewRecorder()
		CreateRecipe(stub, logg).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/recipes", strings.NewReader(body)))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if env := decodeEnvelope(t, rec); strings.Contains(env.Error, "disk full") {
			t.Fatalf("cause leaked: %q", env.Error)
		}
	})
}

func TestDeleteRecipe(t *testing.T) {
	id := uuid.New()
	logg := testLogger()

	req := withIDParam(httptest.NewRequest(http.MethodDelete, "/api/recipes/"+id.String(), nil), id.String())
	rec := httptest.NewRecorder()
	DeleteRecipe(&stubRecipeService{}, logg).ServeHTTP(rec, req)
	if env := decodeEnvelope(t, rec); rec.Code != http.StatusOK || env.Message != "Recipe deleted successfully" {
		t.Fatalf("unexpected response %d %+v", rec.Code, env)
	}

	req = withIDParam(httptest.NewRequest(http.MethodDelete, "/api/recipes/"+id.String(), nil), id.String())
	rec = httptest.NewRecorder()
	DeleteRecipe(&stubRecipeService{err: pkgerrors.New(pkgerrors.CodeNotFound, "Recipe not found")}, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPreviewRecipeCost(t *testing.T) {
	stub := &stubRecipeService{}
	productID := uuid.New()
	body := `{"ingredients":[{"product_id":"` + productID.String() + `","quantity":0}]}`
	rec := httptest.NewRecorder()
	PreviewRecipeCost(stub, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/recipes/cost-preview", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(stub.lastLines) != 1 || stub.lastLines[0].ProductID != productID {
		t.Fatalf("unexpected lines %+v", stub.lastLines)
	}
	env := decodeEnvelope(t, rec)
	var data struct {
		TotalCost        string `json:"total_cost"`
		TotalCostDisplay string `json:"total_cost_display"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.TotalCost != "17.5" || data.TotalCostDisplay != "17.50" {
		t.Fatalf("unexpected totals %+v", data)
	}
}

func TestListRecipesSerializesDecimalsAsStrings(t *testing.T) {
	rec := httptest.NewRecorder()
	ListRecipes(&stubRecipeService{}, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recipes", nil))
	if !strings.Contains(rec.Body.String(), `"total_cost":"4"`) {
		t.Fatalf("expected string decimal, got %s", rec.Body.String())
	}
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealth(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	logg := testLogger()

	rec := httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("X-TMS-Env") != "test" {
		t.Fatalf("unexpected live response %d", rec.Code)
	}

	cases := []struct {
		name   string
		db     Pinger
		redis  Pinger
		status int
	}{
		{name: "ready", db: stubPinger{}, status: http.StatusOK},
		{name: "ready with redis", db: stubPinger{}, redis: stubPinger{}, status: http.StatusOK},
		{name: "db down", db: stubPinger{err: errors.New("down")}, status: http.StatusServiceUnavailable},
		{name: "redis down", db: stubPinger{}, redis: stubPinger{err: errors.New("down")}, status: http.StatusServiceUnavailable},
		{name: "no db", status: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HealthReady(cfg, logg, tc.db, tc.redis).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}
