package cmd

// Standard library on top, third-party packages below.
import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cblogserver/backend/internal/platform/logging"
)

const (
	allowOrigin  = "*"
	allowHeaders = "Origin, X-Requested-With, Content-Type, Accept"
)

func (s *Server) middleware() {
	s.Router.Use(crossOriginHeaders)
	s.Router.Use(requestID)
	s.Router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(s.Logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	s.Router.Use(middleware.Recoverer)
	s.Router.Use(s.Metrics.Middleware)
	s.Router.Use(middleware.Timeout(30 * time.Second))
	s.Router.Use(middleware.StripSlashes)
	s.Router.Use(middleware.Heartbeat("/ping"))
	s.Router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowOrigin},
		AllowedMethods:   []string{"HEAD", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "X-Requested-With", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
}

// crossOriginHeaders opens every response to cross-origin callers, before
// any routing happens.
func crossOriginHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
		next.ServeHTTP(w, r)
	})
}

// requestID tags the request context and the response with a fresh id,
// unless the caller already supplied one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = logging.NewRequestID()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		ctx := logging.WithRequestID(r.Context(), id)
		ctx = context.WithValue(ctx, middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
