package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pep299/american-standard/internal/config"
	"github.com/pep299/american-standard/internal/logging"
	"github.com/pep299/american-standard/internal/metrics"
	"github.com/pep299/american-standard/internal/repository"
	"github.com/pep299/american-standard/internal/service"
	"github.com/pep299/american-standard/internal/store"
)

// Server holds the HTTP handlers and their dependencies
type Server struct {
	config   *config.Config
	repo     *repository.Repository
	editions *service.Editions
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewServer creates a new HTTP server. m may be nil, which disables
// /metrics and request instrumentation.
func NewServer(cfg *config.Config, repo *repository.Repository, editions *service.Editions, m *metrics.Metrics, logger *zap.Logger) *Server {
	return &Server{
		config:   cfg,
		repo:     repo,
		editions: editions,
		metrics:  m,
		logger:   logging.OrNop(logger).Named("http"),
	}
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.corsMiddleware)
	r.Use(s.loggingMiddleware)
	if s.metrics != nil {
		r.Use(s.metricsMiddleware)
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/feed.xml", s.feedHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Generation
	api.HandleFunc("/generate-edition", s.generateHandler).Methods(http.MethodPost)
	api.HandleFunc("/generate-edition", s.generateGetHandler).Methods(http.MethodGet)
	api.HandleFunc("/regenerate-reactions", s.requireSecret(s.regenerateReactionsHandler)).Methods(http.MethodPost)

	// Reads
	api.HandleFunc("/today", s.todayHandler).Methods(http.MethodGet)
	api.HandleFunc("/editions", s.editionsHandler).Methods(http.MethodGet)
	api.HandleFunc("/edition/{date}", s.editionHandler).Methods(http.MethodGet)
	api.HandleFunc("/edition/{date}/{articleId}", s.articleHandler).Methods(http.MethodGet)

	// Deletes take the bearer token only
	api.HandleFunc("/edition/{date}", s.requireBearer(s.deleteEditionHandler)).Methods(http.MethodDelete)
	api.HandleFunc("/edition/{date}/{articleId}", s.requireBearer(s.deleteArticleHandler)).Methods(http.MethodDelete)

	// Preflight requests never match a route method; answer them here
	r.MethodNotAllowedHandler = s.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})

	return r
}

// healthResponse reports configuration readiness without exposing values
type healthResponse struct {
	Status           string `json:"status"`
	ModelConfigured  bool   `json:"modelConfigured"`
	SecretConfigured bool   `json:"secretConfigured"`
	StoreConfigured  bool   `json:"storeConfigured"`
	Store            string `json:"store"`
}

func (s *Server) health() healthResponse {
	return healthResponse{
		Status:           "ok",
		ModelConfigured:  s.config.ModelConfigured(),
		SecretConfigured: s.config.CronSecret != "",
		StoreConfigured:  store.Configured(s.config),
		Store:            s.repo.StoreName(),
	}
}
