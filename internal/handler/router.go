/*
Package handler provides the HTTP handlers and routing setup for the uchat server.

This file defines the main Router, applying logging, CORS and IP-based rate
limiting middleware before delegating to the API and websocket handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"uchat/internal/pkg/auth/jwt"
	"uchat/internal/pkg/limiter"
	"uchat/internal/pkg/logx"
	"uchat/internal/pkg/resp"
)

const (
	// AuthRate throttles register/login attempts per IP.
	AuthRate  = 0.2
	AuthBurst = 5

	// ConnectRate throttles websocket upgrades per IP.
	ConnectRate  = 0.5
	ConnectBurst = 10
)

// Router builds the chi routing table: global middleware, the REST API under
// /v1 and the websocket endpoint at /ws.
func Router(deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst)
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
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
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
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
			"service": "uchat server",
		}
		resp.RespondSuccess(w, r, "ok", data)
	})

	r.Route("/v1", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.With(authLimiter.Middleware).Post("/register", HandleRegister(deps))
		api.With(authLimiter.Middleware).Post("/login", HandleLogin(deps))

		api.Get("/user/all", HandleListUsers(deps))
		api.Get("/user/{nickname}", HandleGetUser(deps))
		api.Patch("/user/{id}", HandleUpdateUser(deps))
		api.Delete("/user/{id}", HandleDeleteUser(deps))

		api.Get("/chat/page/{id}", HandleChatPage(deps))

		api.Post("/file/presign-upload", HandlePresignUpload(deps))
		api.Get("/file/presign-download", HandlePresignDownload(deps))
	})

	r.With(connectLimiter.Middleware).Get("/ws", HandleWebSocket(wsUpgrader, deps))

	return r
}
