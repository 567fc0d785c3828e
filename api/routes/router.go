package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lbricard/stockdesk-backend/api/controllers"
	"github.com/lbricard/stockdesk-backend/api/middleware"
	"github.com/lbricard/stockdesk-backend/internal/cart"
	"github.com/lbricard/stockdesk-backend/internal/listing"
	"github.com/lbricard/stockdesk-backend/internal/reference"
	"github.com/lbricard/stockdesk-backend/internal/reservations"
	"github.com/lbricard/stockdesk-backend/pkg/logger"
	"github.com/lbricard/stockdesk-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Logger       *logger.Logger
	DB           controllers.Pinger
	Redis        *redis.Client
	Reference    *reference.Service
	Cart         cart.Service
	Reservations reservations.Service
	Listing      *listing.Service
	Registry     *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	logg := deps.Logger

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Get("/health", controllers.Health(logg, map[string]controllers.Pinger{
		"database": deps.DB,
		"redis":    deps.Redis,
	}))

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.UserContext(logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/reference", func(r chi.Router) {
			r.Get("/", controllers.ReferenceGet(deps.Reference, logg))
			r.Post("/refresh", controllers.ReferenceRefresh(deps.Reference, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.Cart, logg))
			r.Put("/", controllers.CartSetFields(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
			r.Post("/lines", controllers.CartAddLine(deps.Cart, logg))
			r.Patch("/lines/{lineId}", controllers.CartUpdateQuantity(deps.Cart, logg))
			r.Delete("/lines/{lineId}", controllers.CartRemoveLine(deps.Cart, logg))
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Post("/", controllers.ReservationsSubmit(deps.Reservations, logg))
			r.Post("/release", controllers.ReservationRelease(deps.Reservations, logg))
			r.Post("/items/{itemId}", controllers.ReservationItemUpdate(deps.Reservations, logg))
			r.Route("/groups", func(r chi.Router) {
				r.Get("/", controllers.ListingGroups(deps.Listing, logg))
				r.Post("/{groupId}", controllers.ReservationGroupUpdate(deps.Reservations, logg))
				r.Post("/{groupId}/toggle", controllers.ListingToggle(deps.Listing, logg))
			})
		})
	})

	return r
}
