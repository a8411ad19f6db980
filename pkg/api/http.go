// Package api assembles the HTTP surface: authenticated /v1 routes plus
// the operational endpoints (health, metrics, docs).
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"careline/pkg/api/handlers"
	"careline/pkg/auth"
	"careline/pkg/directory"
	"careline/pkg/messages"
	"careline/pkg/store"
	"careline/pkg/telemetry"
	"careline/pkg/threads"
)

// Handler builds the complete HTTP handler for the service.
func Handler(authCfg auth.Config) http.Handler {
	dir := directory.StoreResolver{}
	threadSvc := threads.NewService(dir)
	msgSvc := messages.NewService(dir, threadSvc)

	v1 := mux.NewRouter().PathPrefix("/v1").Subrouter()
	v1.Use(telemetry.Middleware)
	(&handlers.ThreadHandlers{Svc: threadSvc}).Register(v1)
	(&handlers.MessageHandlers{Svc: msgSvc}).Register(v1)
	(&handlers.PrincipalHandlers{}).Register(v1)

	root := http.NewServeMux()
	root.HandleFunc("/healthz", healthzHandler)
	root.HandleFunc("/readyz", readyzHandler)
	root.Handle("/metrics", promhttp.Handler())
	root.Handle("/docs/", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))
	root.Handle("/openapi.yaml", http.FileServer(http.Dir("./docs")))
	root.Handle("/v1/", auth.Middleware(authCfg)(v1))
	return root
}

// healthzHandler handles the /healthz endpoint.
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// readyzHandler reports ready once the store is open.
func readyzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !store.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
