// Package server exposes the frontage API over HTTP/JSON.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/parcelworks/frontage-api/internal/config"
	"github.com/parcelworks/frontage-api/internal/dataset"
	"github.com/parcelworks/frontage-api/internal/frontage"
)

type ctxKey int

const requestIDKey ctxKey = iota

// Server holds the read-only dataset store and request policy. It is
// safe for concurrent use: nothing mutates the store after startup.
type Server struct {
	store   *dataset.Store
	cfg     config.FrontageConfig
	log     *zap.Logger
	limiter *rate.Limiter
}

// New builds a server around a loaded store.
func New(store *dataset.Store, srvCfg config.ServerConfig, frCfg config.FrontageConfig) *Server {
	rps := srvCfg.RateRPS
	if rps <= 0 {
		rps = 50
	}
	burst := srvCfg.RateBurst
	if burst <= 0 {
		burst = 100
	}
	return &Server{
		store:   store,
		cfg:     frCfg,
		log:     zap.L().With(zap.String("component", "server")),
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Router assembles the chi router with the middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Use(s.rateLimit)

	r.Get("/health", s.handleHealth)
	r.Post("/calculate-frontage", s.handleCalculateFrontage)
	r.Post("/analyze-parcel", s.handleAnalyzeParcel)
	r.Get("/sample-parcels", s.handleSampleParcels)

	return r
}

// requestID tags every request with a UUID, echoed in X-Request-ID.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// logRequests logs one line per request with status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		id, _ := r.Context().Value(requestIDKey).(string)
		s.log.Info("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// rateLimit rejects requests beyond the configured token bucket.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// analyzeOptions maps the frontage config onto analysis options.
func (s *Server) analyzeOptions() frontage.AnalyzeOptions {
	return frontage.AnalyzeOptions{
		NearbyRadius: s.cfg.NearbyRadiusFt,
		NearbyLimit:  s.cfg.NearbyLimit,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
