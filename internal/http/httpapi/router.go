package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/http/handlers"
	"github.com/weforyou/ledger/internal/middleware"
)

// Options configures the middleware stack around the handlers.
type Options struct {
	JWTSecret          string
	AllowedOrigins     []string
	RateLimitPerMinute int
	RateLimitBurst     int
	DefaultLocale      string
	CountryLookup      middleware.CountryLookup
	Logger             zerolog.Logger
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = "en"
	}
	admin := middleware.RequireRole(string(domain.RoleAdmin))
	volunteer := middleware.RequireRole(string(domain.RoleVolunteer), string(domain.RoleAdmin))

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/docs", app.OpenAPIDocs)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(
			middleware.RateLimit(opts.RateLimitPerMinute, opts.RateLimitBurst),
			middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
		)

		// Gateway callbacks carry their own signature.
		r.Post("/webhooks/razorpay", app.RazorpayWebhook)

		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(opts.JWTSecret))
			r.Post("/auth/register", app.AuthRegister)
			r.Post("/auth/login", app.AuthLogin)
			r.Get("/campaigns", app.CampaignsList)
			r.Get("/campaigns/{id}", app.CampaignsGet)
			r.Get("/events", app.EventsPublic)
			r.Get("/stats/summary", app.StatsSummary)
			r.Get("/blood-donors/search", app.BloodDonorsSearch)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(opts.JWTSecret))

			r.Get("/auth/me", app.Me)

			r.Route("/donations", func(r chi.Router) {
				r.Post("/", app.DonationsCreate)
				r.Post("/general", app.DonationsGeneral)
				r.Get("/my", app.DonationsMine)
				r.Post("/{id}/verify", app.DonationsVerify)
				r.Get("/{id}/receipt", app.DonationsReceipt)
			})

			r.Route("/pledges", func(r chi.Router) {
				r.Post("/", app.PledgesCreate)
				r.Get("/my", app.PledgesMine)
				r.Patch("/{id}", app.PledgesAct)
			})

			r.Route("/blood-donors", func(r chi.Router) {
				r.Post("/", app.BloodDonorsRegister)
				r.Post("/{id}/reveal-contact", app.BloodDonorsReveal)
				r.Patch("/{id}/consent", app.BloodDonorsConsent)
			})

			r.Post("/events/{id}/register", app.EventsRegister)

			r.Route("/volunteer/members", func(r chi.Router) {
				r.Use(volunteer)
				r.Get("/", app.MembersList)
				r.Post("/", app.MembersCreate)
				r.Patch("/{id}", app.MembersUpdate)
				r.Post("/{id}/donations", app.MembersDonate)
			})

			r.With(admin).Post("/campaigns", app.CampaignsCreate)
			r.With(admin).Patch("/campaigns/{id}", app.CampaignsUpdateStatus)

			r.Route("/admin", func(r chi.Router) {
				r.Use(admin)
				r.Get("/settings", app.SettingsGet)
				r.Patch("/settings", app.SettingsUpdate)
				r.Get("/events", app.AdminEventsList)
				r.Post("/events", app.AdminEventsCreate)
				r.Patch("/events/{id}", app.AdminEventsUpdate)
				r.Delete("/events/{id}", app.AdminEventsDelete)
				r.Get("/export/{type}", app.AdminExport)
				r.Get("/analytics", app.AdminAnalytics)
				r.Get("/donors", app.AdminDonors)
				r.Post("/donations/{id}/refund", app.AdminRefund)
				r.Post("/reconcile", app.AdminReconcile)
				r.Get("/campaigns/{id}/reconcile", app.AdminReconcile)
				r.Post("/blood-donors/{id}/hide", app.AdminBloodDonorHide)
			})
		})
	})

	return r
}
