/*
Package handler provides the HTTP handlers and routing setup for the dmchat server.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers (REST and WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/limiter"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/resp"
)

const (
	// CredentialRate limits register/login attempts per IP per second.
	CredentialRate  = 0.2
	CredentialBurst = 5

	// ConnectRate limits WebSocket handshakes per IP per second.
	ConnectRate  = 0.5
	ConnectBurst = 5
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global
// and per-route middleware.
func Router(deps *AppDeps) http.Handler {
	credentialLimiter := limiter.NewIPRateLimiter(rate.Limit(CredentialRate), CredentialBurst)
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
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
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

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "dmchat server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Group(func(open chi.Router) {
			open.Use(credentialLimiter.Middleware)

			open.Post("/auth/register", HandleRegister(deps))
			open.Post("/auth/login", HandleLogin(deps))
		})

		api.Group(func(protected chi.Router) {
			protected.Use(jwt.RequireAuth(deps.Config.JWTSecret))

			protected.Route("/auth", func(auth chi.Router) {
				auth.Get("/profile", HandleGetProfile(deps))
				auth.Put("/profile", HandleUpdateProfile(deps))
				auth.Post("/avatar", HandleUploadAvatar(deps))
				auth.Get("/users", HandleListUsers(deps))
			})

			protected.Route("/chat", func(chat chi.Router) {
				chat.Get("/messages", HandleListMessages(deps))
				chat.Post("/messages", HandlePostMessage(deps))
				chat.Post("/upload", HandleUploadAttachment(deps))
				chat.Get("/attachment", HandleDownloadAttachment(deps))
			})
		})
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, connectLimiter, deps))

	return r
}
