package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storelane/storelane-backend/api/controllers"
	"github.com/storelane/storelane-backend/api/middleware"
	adminsvc "github.com/storelane/storelane-backend/internal/admin"
	categorysvc "github.com/storelane/storelane-backend/internal/categories"
	mediasvc "github.com/storelane/storelane-backend/internal/media"
	productsvc "github.com/storelane/storelane-backend/internal/products"
	"github.com/storelane/storelane-backend/pkg/config"
	"github.com/storelane/storelane-backend/pkg/logger"
	pkgredis "github.com/storelane/storelane-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. IdempotencyStore and
// Metrics may be nil; the corresponding features degrade gracefully.
type Deps struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               controllers.Pinger
	IdempotencyStore pkgredis.IdempotencyStore
	Metrics          prometheus.Gatherer

	// UploadsDir, when set, is served under /uploads/ so stored media URLs
	// resolve without a separate file server.
	UploadsDir string

	MediaService    mediasvc.Service
	ProductService  productsvc.Service
	CategoryService categorysvc.Service
	AdminService    adminsvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Idempotency(deps.IdempotencyStore, logg),
	)

	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, deps.DB, logg))

	gatherer := deps.Metrics
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if deps.UploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadsDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/products", func(products chi.Router) {
			products.Get("/", controllers.ListProducts(deps.ProductService, logg))
			products.Post("/", controllers.CreateProduct(deps.ProductService, logg))
			products.Route("/{id}", func(product chi.Router) {
				product.Get("/", controllers.GetProduct(deps.ProductService, logg))
				product.Put("/", controllers.UpdateProduct(deps.ProductService, logg))
				product.Delete("/", controllers.DeleteProduct(deps.ProductService, logg))
				product.Post("/media", controllers.AttachProductMedia(deps.ProductService, logg))
				product.Delete("/media/{mediaId}", controllers.DetachProductMedia(deps.ProductService, logg))
			})
		})

		api.Route("/media", func(media chi.Router) {
			media.Get("/", controllers.ListMedia(deps.MediaService, logg))
			media.Post("/", controllers.UploadMedia(deps.MediaService, logg, cfg.Storage.MaxUploadBytes()))
			media.Post("/bulk", controllers.BulkUpdateMediaStatus(deps.MediaService, logg))
			media.Post("/archive", controllers.ArchiveMedia(deps.MediaService, logg))
			media.Post("/delete", controllers.SoftDeleteMedia(deps.MediaService, logg))
			media.Get("/folders", controllers.MediaFolders(deps.MediaService, logg))
			media.Get("/tags", controllers.MediaTags(deps.MediaService, logg))
			media.Get("/stats", controllers.MediaStats(deps.MediaService, logg))
			media.Get("/featured", controllers.FeaturedMedia(deps.MediaService, logg))
			media.Route("/{id}", func(item chi.Router) {
				item.Get("/", controllers.GetMedia(deps.MediaService, logg))
				item.Patch("/", controllers.UpdateMediaMetadata(deps.MediaService, logg))
				item.Delete("/", controllers.PurgeMedia(deps.MediaService, logg))
			})
		})

		api.Route("/categories", func(categories chi.Router) {
			categories.Get("/", controllers.ListCategories(deps.CategoryService, logg))
			categories.Post("/", controllers.CreateCategory(deps.CategoryService, logg))
			categories.Get("/{id}", controllers.GetCategory(deps.CategoryService, logg))
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Get("/", controllers.AdminEntities(deps.AdminService, logg))
			admin.Route("/{entity}", func(entity chi.Router) {
				entity.Get("/", controllers.AdminList(deps.AdminService, logg))
				entity.Post("/", controllers.AdminCreate(deps.AdminService, logg))
				entity.Get("/fields", controllers.AdminFields(deps.AdminService, logg))
				entity.Route("/{id}", func(row chi.Router) {
					row.Get("/", controllers.AdminGet(deps.AdminService, logg))
					row.Put("/", controllers.AdminUpdate(deps.AdminService, logg))
					row.Delete("/", controllers.AdminDelete(deps.AdminService, logg))
				})
			})
		})
	})

	return r
}
