package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/delordemm1/agency-portfolio-api/internal/config"
	"github.com/delordemm1/agency-portfolio-api/internal/httpx"
	"github.com/delordemm1/agency-portfolio-api/internal/metrics"
)

// Module is a feature package that contributes operations to the API.
type Module interface {
	RegisterRoutes(api huma.API, g httpx.Guards)
}

// APIConfig describes the OpenAPI document, including the bearer scheme the guards expect.
func APIConfig() huma.Config {
	apiConfig := huma.DefaultConfig("Agency Portfolio API", "1.0.0")
	apiConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	return apiConfig
}

// New creates the router and the Huma API and registers every module on it.
func New(cfg *config.Config, log *slog.Logger, rec *metrics.Recorder, guards httpx.Guards, modules ...Module) (chi.Router, huma.API) {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)
	router.Use(rec.Middleware)

	httpx.UseProblems()
	api := humachi.New(router, APIConfig())
	for _, m := range modules {
		m.RegisterRoutes(api, guards)
	}

	huma.Register(api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health Check",
		Description: "Responds with the server's health status.",
	}, func(ctx context.Context, input *struct{}) (*struct {
		Body struct {
			Status string `json:"status"`
		}
	}, error) {
		resp := &struct {
			Body struct {
				Status string `json:"status"`
			}
		}{}
		resp.Body.Status = "ok"
		return resp, nil
	})

	router.Handle("/metrics", rec.Handler())
	log.Info("routes registered", "modules", len(modules), "cors_origins", cfg.Server.CORSOrigins)
	return router, api
}
