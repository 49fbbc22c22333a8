package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"reflectbench/app"
	"reflectbench/internal"
	"reflectbench/ports"
)

// App serves the analysis API: suites in, structured verdicts out. Report
// rendering stays with the downstream sink; every response here is JSON.
type App struct {
	router  *chi.Mux
	service *app.AnalysisService
	ledger  ports.RunLedgerPort // nil when persistence is disabled
	logger  *internal.Logger
}

// Config holds API application settings
type Config struct {
	Port string
}

// NewApp creates the API application around an analysis service
func NewApp(service *app.AnalysisService, ledger ports.RunLedgerPort, logger *internal.Logger) *App {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	a := &App{
		router:  chi.NewRouter(),
		service: service,
		ledger:  ledger,
		logger:  logger.Named("api"),
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.RealIP)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Timeout(60 * time.Second))
}

func (a *App) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)
	a.router.Route("/api", func(r chi.Router) {
		r.Post("/analyze", a.handleAnalyze)
		r.Get("/runs", a.handleListRuns)
		r.Get("/runs/{runID}", a.handleGetRun)
	})
}

// Router exposes the configured router for serving and tests
func (a *App) Router() http.Handler {
	return a.router
}

// Serve starts the HTTP listener
func (a *App) Serve(cfg Config) error {
	a.logger.Info("listening on :%s", cfg.Port)
	return http.ListenAndServe(":"+cfg.Port, a.router)
}
