package main

import (
	"net/http"

	"tms-backend/internal/config"
	"tms-backend/internal/handlers"
	"tms-backend/internal/middleware"
	"tms-backend/internal/models"
	"tms-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

type routerDeps struct {
	cfg      *config.Config
	db       *sqlx.DB
	routes   handlers.RouteService
	hub      *websocket.Hub
	metrics  *middleware.Metrics
	registry *prometheus.Registry
}

func newRouter(d routerDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(log.StandardLogger()))
	// Outside Recoverer so recovered panics are counted as 500s
	r.Use(d.metrics.Handler)
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{}))

	// WebSocket endpoint (authentication handled in handler via query param)
	r.Get("/ws", websocket.HandleWebSocket(d.hub, d.cfg.JWTSecret))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", handlers.Login(d.db, d.cfg.JWTSecret))

		// Route dispatch endpoints
		r.Group(func(r chi.Router) {
			var guard func(http.Handler) http.Handler
			if d.cfg.AuthEnabled() {
				r.Use(middleware.Auth(d.cfg.JWTSecret))
				guard = middleware.RequireRole(models.RoleAdmin, models.RoleDispatcher)
			}
			handlers.MountRoutes(r, d.routes, guard)
			r.Get("/vehicles", handlers.GetVehicles(d.db))
			r.Get("/drivers", handlers.GetDrivers(d.db))
		})

		// Authenticated account endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(d.cfg.JWTSecret))

			r.Get("/auth/status", handlers.GetAuthStatus(d.db))
			r.Post("/driver/fcm-token", handlers.RegisterFCMToken(d.db))
		})

		// Admin endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(d.cfg.JWTSecret))
			r.Use(middleware.RequireRole(models.RoleAdmin))

			r.Post("/users", handlers.CreateUser(d.db))
		})
	})

	return r
}
