/*
Package handler provides the HTTP handlers and routing setup for the messenger server.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to the health/stats endpoints
and the WebSocket upgrade handler.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"messenger/internal/pkg/limiter"
	"messenger/internal/pkg/logx"
	"messenger/internal/pkg/resp"
)

const (
	// WebSocket connect attempts per IP.
	ConnectRate  = 1.0
	ConnectBurst = 5

	// Plain HTTP requests (health, stats) per IP.
	APIRate  = 5.0
	APIBurst = 10
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes the per-IP connect rate limiter, configures CORS, and applies
// global middleware before wiring the health, stats, and WebSocket endpoints.
func Router(deps *AppDeps) http.Handler {
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	apiLimiter := limiter.NewIPRateLimiter(rate.Limit(APIRate), APIBurst)

	r.Group(func(r chi.Router) {
		r.Use(apiLimiter.Middleware)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			data := map[string]string{
				"status":  "ok",
				"service": "Messenger Server",
			}
			resp.RespondSuccess(w, r, data)
		})

		r.Get("/stats", HandleStats(deps))
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, connectLimiter, deps))

	return r
}

// HandleStats reports live operational counters: connected sessions,
// registered accounts, and lobbies.
func HandleStats(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]int{
			"sessions": deps.Hub.SessionCount(),
			"users":    deps.Hub.Users.Count(),
			"lobbies":  deps.Hub.Lobbies.Count(),
		}
		resp.RespondSuccess(w, r, data)
	}
}
