package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ParthG1810/TMSv1/api/controllers"
	"github.com/ParthG1810/TMSv1/api/middleware"
	"github.com/ParthG1810/TMSv1/internal/products"
	"github.com/ParthG1810/TMSv1/internal/recipes"
	"github.com/ParthG1810/TMSv1/pkg/config"
	"github.com/ParthG1810/TMSv1/pkg/db"
	"github.com/ParthG1810/TMSv1/pkg/logger"
	"github.com/ParthG1810/TMSv1/pkg/metrics"
	"github.com/ParthG1810/TMSv1/pkg/redis"
)

// Deps groups what the router wires into handlers. RedisPinger and
// IdempotencyStore are nil when redis is not configured.
type Deps struct {
	DBPinger         db.Pinger
	RedisPinger      redis.Pinger
	IdempotencyStore redis.IdempotencyStore
	ProductService   products.Service
	RecipeService    recipes.Service
	Registry         *prometheus.Registry
	HTTPMetrics      *metrics.HTTPMetrics
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if deps.HTTPMetrics != nil {
		r.Use(middleware.Metrics(deps.HTTPMetrics))
	}
	r.Use(middleware.CORS(cfg.App.CORSOrigins))

	idempotent := middleware.Idempotency(deps.IdempotencyStore, cfg.FeatureFlags.IdempotencyTTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisPinger))
	})

	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.ProductService, logg))
		r.With(idempotent).Post("/", controllers.CreateProduct(deps.ProductService, logg))
		r.Get("/form-options", controllers.ProductFormOptions())
		r.Get("/{id}", controllers.GetProduct(deps.ProductService, logg))
		r.Put("/{id}", controllers.UpdateProduct(deps.ProductService, logg))
		r.Delete("/{id}", controllers.DeleteProduct(deps.ProductService, logg))
	})

	r.Route("/api/recipes", func(r chi.Router) {
		r.Get("/", controllers.ListRecipes(deps.RecipeService, logg))
		r.With(idempotent).Post("/", controllers.CreateRecipe(deps.RecipeService, logg))
		r.Post("/cost-preview", controllers.PreviewRecipeCost(deps.RecipeService, logg))
		r.Get("/{id}", controllers.GetRecipe(deps.RecipeService, logg))
		r.Put("/{id}", controllers.UpdateRecipe(deps.RecipeService, logg))
		r.Delete("/{id}", controllers.DeleteRecipe(deps.RecipeService, logg))
	})

	return r
}
