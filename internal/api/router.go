package api

import (
	"net/http"
	"time"

	"vehicle-route-service/internal/api/handlers"
	"vehicle-route-service/internal/ports"
	"vehicle-route-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	registry *services.Registry,
	provider ports.TravelMatrixProvider,
	departureBuffer time.Duration,
) http.Handler {
	mux := http.NewServeMux()

	planHandler := &handlers.RoutePlanHandler{
		Registry:        registry,
		Provider:        provider,
		DepartureBuffer: departureBuffer,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("POST /route-plans", planHandler.Create)
	mux.HandleFunc("PUT /route-plans/analyze", planHandler.Analyze)
	mux.HandleFunc("GET /route-plans/{id}/status", planHandler.Status)
	mux.HandleFunc("GET /route-plans/{id}", planHandler.Get)
	mux.HandleFunc("DELETE /route-plans/{id}", planHandler.Terminate)
	mux.HandleFunc("POST /route-plans/{id}/visits", planHandler.AddCustomer)
	mux.HandleFunc("POST /clear", planHandler.Clear)

	return requestIDMiddleware(loggingMiddleware(mux))
}
