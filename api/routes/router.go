package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Tag-Take/tagandtake-backend-sub000/api/controllers"
	webhookcontrollers "github.com/Tag-Take/tagandtake-backend-sub000/api/controllers/webhooks"
	"github.com/Tag-Take/tagandtake-backend-sub000/api/middleware"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/items"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/listings"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/supplies"
	stripewebhook "github.com/Tag-Take/tagandtake-backend-sub000/internal/webhooks/stripe"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/config"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/logger"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/redis"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	itemsService items.Service,
	listingsService listings.Service,
	suppliesService supplies.Service,
	stripeClient *stripe.Client,
	stripeWebhookService *stripewebhook.Service,
	stripeWebhookGuard *stripewebhook.IdempotencyGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/v1/webhooks/stripe", func(r chi.Router) {
		var platformSecret, connectedSecret string
		if stripeClient != nil {
			platformSecret = stripeClient.PlatformSecret()
			connectedSecret = stripeClient.ConnectedSecret()
		}
		r.Post("/platform", webhookcontrollers.StripeWebhook(stripeWebhookService, platformSecret, stripeWebhookGuard, logg))
		r.Post("/connected", webhookcontrollers.StripeWebhook(stripeWebhookService, connectedSecret, stripeWebhookGuard, logg))
	})

	r.Route("/api/v1/items", func(r chi.Router) {
		r.Post("/", controllers.CreateItem(itemsService, logg))
		r.Get("/", controllers.ListItems(itemsService, logg))
		r.Get("/{id}", controllers.GetItem(itemsService, logg))
		r.Delete("/{id}", controllers.DeleteItem(itemsService, logg))
	})

	r.Route("/api/v1/listings", func(r chi.Router) {
		r.Post("/", controllers.CreateListing(listingsService, logg))
		r.Get("/{id}", controllers.GetListing(listingsService, logg))
		r.Post("/{id}/recall", controllers.RecallListing(listingsService, logg))
		r.Post("/{id}/delist", controllers.DelistListing(listingsService, logg))
		r.Post("/{id}/replace-tag", controllers.ReplaceListingTag(listingsService, logg))
	})

	r.Route("/api/v1/recalled-listings", func(r chi.Router) {
		r.Post("/{id}/collect", controllers.CollectRecalledListing(listingsService, logg))
		r.Post("/{id}/regenerate-pin", controllers.RegenerateCollectionPin(listingsService, logg))
	})

	r.Route("/api/v1/supply-orders", func(r chi.Router) {
		r.Post("/", controllers.CreateSupplyOrder(suppliesService, logg))
		r.Get("/", controllers.ListSupplyOrders(suppliesService, logg))
		r.Get("/{id}", controllers.GetSupplyOrder(suppliesService, logg))
	})

	return r
}
