package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"meshd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Create(ctx context.Context, req types.PredictionRequest) (*types.PredictionResult, error)
	Ready() bool
}

// NewMux builds the router. allowedOrigin is the single configured caller
// origin; empty enables the loopback development fallback.
func NewMux(svc Service, allowedOrigin string) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, json panic recovery
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(recoverJSON)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: OriginAllower(allowedOrigin),
		AllowedMethods:  []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders:  []string{"Accept", "Content-Type"},
		MaxAge:          300,
	}))
	r.Use(MetricsMiddleware)

	// Wrong method on a known route must produce the same JSON error shape.
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Post("/api/predictions", createPredictionHandler(svc))
	// Bare OPTIONS (no preflight headers) bypasses the CORS middleware's
	// preflight branch; answer it with an empty success anyway.
	r.Options("/api/predictions", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("no credential"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", MetricsHandler().ServeHTTP)

	MountSwagger(r)

	return r
}

// createPredictionHandler relays one prediction request to the provider.
//
// @Summary  Create an image-to-3D prediction
// @Accept   json
// @Produce  json
// @Param    request body types.PredictionRequest true "image reference plus optional version/format"
// @Success  200 {object} map[string]any "provider prediction handle, forwarded unchanged"
// @Failure  400 {object} types.ErrorResponse
// @Failure  405 {object} types.ErrorResponse
// @Failure  500 {object} types.ErrorResponse
// @Router   /api/predictions [post]
func createPredictionHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.PredictionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// MaxBytesReader failures land here too; 400 either way.
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		lvl := requestLogLevel(r)
		start := time.Now()
		// Join server base context with request context so shutdown cancels work too.
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		res, err := svc.Create(joinedCtx, req)
		if err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := statusFor(err)
			writeJSONError(w, status, err.Error())
			if lvl >= LevelInfo {
				logEnd(r, status, start, err)
			}
			return
		}
		// Relay the provider's status and body verbatim, success or failure.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(res.Status)
		if _, err := w.Write(res.Body); err != nil && lvl >= LevelError {
			logEnd(r, res.Status, start, err)
			return
		}
		if lvl >= LevelInfo {
			logEnd(r, res.Status, start, nil)
		}
	}
}

func logEnd(r *http.Request, status int, start time.Time, err error) {
	if zlog != nil {
		z := zlog.Info().Int("status", status).Dur("dur", time.Since(start))
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			z = z.Str("request_id", rid)
		}
		if err != nil {
			z = z.Err(err)
		}
		z.Msg("prediction end")
		return
	}
	if err != nil {
		log.Printf("prediction end status=%d dur=%s err=%v", status, time.Since(start), err)
		return
	}
	log.Printf("prediction end status=%d dur=%s", status, time.Since(start))
}

// recoverJSON converts panics into the generic JSON 500 instead of chi's
// plain-text recoverer. Internal panic detail is not echoed to the caller.
func recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				if zlog != nil {
					zlog.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panic")
				} else {
					log.Printf("handler panic path=%s: %v", r.URL.Path, rec)
				}
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
