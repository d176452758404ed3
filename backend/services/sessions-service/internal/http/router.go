package httpserver

import (
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap"

	"chargeshare/backend/services/sessions-service/internal/http/handlers"
	"chargeshare/backend/services/sessions-service/internal/http/middleware"
	"chargeshare/backend/services/sessions-service/internal/metrics"
)

// Routes groups handlers.
type Routes struct {
	Authorization *handlers.AuthorizationHandler
	Connectors    *handlers.ConnectorHandler
	Transactions  *handlers.TransactionHandler
	Chargers      *handlers.ChargerHandler
	Health        http.HandlerFunc
	Metrics       http.Handler
}

// NewRouter registers endpoints. Every /internal route goes through auth.
func NewRouter(routes Routes, auth func(http.Handler) http.Handler, m *metrics.Metrics, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	public := func(pattern string, h http.Handler) {
		mux.Handle(pattern, middleware.Chain(h, middleware.Instrument(pattern, m, logger)))
	}
	internal := func(pattern string, h http.Handler) {
		mux.Handle(pattern, middleware.Chain(h, middleware.Instrument(pattern, m, logger), auth))
	}

	if routes.Health != nil {
		public("/health", method(http.MethodGet, routes.Health))
	}
	if routes.Metrics != nil {
		mux.Handle("/metrics", method(http.MethodGet, routes.Metrics))
	}

	if a := routes.Authorization; a != nil {
		internal("/internal/authorize/{ocppID}", method(http.MethodPost, http.HandlerFunc(a.Authorize)))
		internal("/internal/authorized-tag/{ocppID}", method(http.MethodGet, http.HandlerFunc(a.PendingTag)))
	}
	if c := routes.Connectors; c != nil {
		internal("/internal/connector-status", method(http.MethodPost, http.HandlerFunc(c.Status)))
		internal("/internal/connectors/{id}", methods(map[string]http.Handler{
			http.MethodGet:   http.HandlerFunc(c.Get),
			http.MethodPatch: http.HandlerFunc(c.Configure),
		}))
	}
	if t := routes.Transactions; t != nil {
		internal("/internal/transaction/start", method(http.MethodPost, http.HandlerFunc(t.Start)))
		internal("/internal/transaction/meter-values", method(http.MethodPost, http.HandlerFunc(t.MeterValues)))
		internal("/internal/transaction/stop", method(http.MethodPost, http.HandlerFunc(t.Stop)))
		internal("/internal/transaction/prune", method(http.MethodPost, http.HandlerFunc(t.Prune)))
	}
	if c := routes.Chargers; c != nil {
		internal("/internal/heartbeat/{ocppID}", method(http.MethodPost, http.HandlerFunc(c.Heartbeat)))
		internal("/internal/charger/online/{ocppID}", method(http.MethodGet, http.HandlerFunc(c.Online)))
		internal("/internal/boot-notification/{ocppID}", method(http.MethodPost, http.HandlerFunc(c.Boot)))
		internal("/internal/charger/exists/{ocppID}", method(http.MethodGet, http.HandlerFunc(c.Exists)))
	}
	return mux
}

func method(expected string, handler http.Handler) http.Handler {
	return methods(map[string]http.Handler{expected: handler})
}

func methods(byMethod map[string]http.Handler) http.Handler {
	allowed := make([]string, 0, len(byMethod))
	for m := range byMethod {
		allowed = append(allowed, m)
	}
	sort.Strings(allowed)
	allow := strings.Join(allowed, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler, ok := byMethod[r.Method]
		if !ok {
			w.Header().Set("Allow", allow)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
