package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dekorhaus/apiserver/config"
	"github.com/dekorhaus/apiserver/internal/db"
	"github.com/dekorhaus/apiserver/internal/handlers"
	"github.com/dekorhaus/apiserver/internal/mq"
	"github.com/dekorhaus/apiserver/internal/services"
	"github.com/dekorhaus/apiserver/internal/storage"
	"github.com/dekorhaus/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	publisher  mq.Publisher
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	projectRepo := store.NewProjectRepository(dbConn)
	categoryRepo := store.NewCategoryRepository(dbConn)
	feedbackRepo := store.NewFeedbackRepository(dbConn)
	userRepo := store.NewUserRepository(dbConn)

	publisher, err := mq.Open(ctx, cfg.Events)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if publisher == nil {
		log.Info().Msg("events backend not configured, feedback notifications disabled")
	}

	mediaStore, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if mediaStore == nil {
		log.Info().Msg("storage backend not configured, media upload disabled")
	}

	projectService := services.NewProjectService(projectRepo)
	categoryService := services.NewCategoryService(categoryRepo)
	feedbackService := services.NewFeedbackService(feedbackRepo, projectRepo, publisher)
	userService := services.NewUserService(userRepo)

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("JWT_SECRET is required")
	}

	authMiddleware := handlers.RequireAuth(jwtSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/projects", func(r chi.Router) {
		handlers.ProjectRouter(r, projectService, feedbackService, userService, authMiddleware)
	})
	router.Route("/categories", func(r chi.Router) {
		handlers.CategoryRouter(r, categoryService, userService, authMiddleware)
	})
	router.Route("/feedbacks", func(r chi.Router) {
		handlers.FeedbackRouter(r, feedbackService, userService, authMiddleware)
	})
	router.Route("/images", func(r chi.Router) {
		handlers.ImageRouter(r, projectService, userService, authMiddleware)
	})
	if mediaStore != nil {
		router.Route("/media", func(r chi.Router) {
			handlers.MediaRouter(r, mediaStore, cfg.MediaBaseURL, userService, authMiddleware)
		})
	}
	handlers.AuthRouter(router, userService, jwtSecret)

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
		publisher:  publisher,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("starting server")
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
