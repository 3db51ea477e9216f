package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/intervault/apiserver/config"
	"github.com/intervault/apiserver/internal/auth"
	"github.com/intervault/apiserver/internal/db"
	"github.com/intervault/apiserver/internal/handlers"
	"github.com/intervault/apiserver/internal/logging"
	"github.com/intervault/apiserver/internal/services"
	"github.com/intervault/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// Option overrides a collaborator during construction. Used by tests to
// substitute the external identity provider.
type Option func(*options)

type options struct {
	verifier services.IdentityVerifier
}

// WithVerifier substitutes the identity verifier.
func WithVerifier(v services.IdentityVerifier) Option {
	return func(o *options) {
		o.verifier = v
	}
}

// New constructs a Server with its repositories, services, and routes wired
// from the given configuration.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	logger := logging.New(cfg.IsDevelopment())

	verifier := o.verifier
	if verifier == nil {
		if cfg.Auth.GoogleClientID == "" {
			_ = dbConn.Close()
			return nil, fmt.Errorf("GOOGLE_CLIENT_ID is required")
		}
		verifier = auth.NewGoogleVerifier(cfg.Auth.GoogleClientID)
	}

	userRepo := store.NewUserRepository(dbConn)
	vaultRepo := store.NewVaultRepository(dbConn)
	tagRepo := store.NewTagRepository(dbConn)

	tokens := auth.NewTokenIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)

	authService := services.NewAuthService(userRepo, verifier, tokens)
	userService := services.NewUserService(userRepo)
	vaultService := services.NewVaultService(vaultRepo, tagRepo)

	authHandler := handlers.NewAuthHandler(authService, userService, cfg.Auth.GoogleClientID, logger)
	vaultHandler := handlers.NewVaultHandler(vaultService, logger)
	requireAuth := handlers.RequireAuth(tokens)

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.TrustedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		logging.RequestLogger(logger),
		middleware.Timeout(60*time.Second),
	)

	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authHandler)
	})
	router.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Patch("/user/username", authHandler.UpdateUsername)
		handlers.VaultRouter(r, vaultHandler)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
