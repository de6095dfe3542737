package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "communityevents/docs"
	"communityevents/internal/delivery/http/controllers"
	"communityevents/internal/delivery/http/middleware"
	"communityevents/internal/domain"
)

// RouterConfig carries everything NewRouter wires.
type RouterConfig struct {
	Logger         *slog.Logger
	Verifier       domain.TokenVerifier
	AllowedOrigins []string
	Registrations  *controllers.RegistrationController
	Health         *controllers.HealthController
}

// NewRouter builds the application handler: routes, auth, CORS and request logging.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(cfg.Verifier, cfg.Logger)

	// Registrations
	mux.HandleFunc("POST /registrations", auth(cfg.Registrations.Register))
	mux.HandleFunc("GET /registrations", auth(cfg.Registrations.ListMyEvents))
	mux.HandleFunc("GET /registrations/calendar.ics", auth(cfg.Registrations.ExportCalendar))

	// Calendar
	mux.HandleFunc("POST /calendar/sync", auth(cfg.Registrations.SyncCalendar))

	mux.HandleFunc("GET /healthz", cfg.Health.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return middleware.LoggingMiddleware(cfg.Logger, middleware.CORS(cfg.AllowedOrigins, mux))
}
