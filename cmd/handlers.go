package cmd

// Standard library on top, application and third-party packages below.
import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/cblogserver/backend/internal/db"
	"github.com/cblogserver/backend/internal/platform/logging"
)

// +----------------------------------------------------------------------------------------------+
// |                                            Helpers                                           |
// +----------------------------------------------------------------------------------------------+

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error     string `json:"error"`
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
}

// respondJSON sets the response header to JSON and writes v with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

// respondError writes a structured error. The cause is logged, never sent.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, errType, message string, cause error) {
	attrs := []any{
		"error_type", errType,
		"message", message,
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
	}
	if cause != nil {
		attrs = append(attrs, "cause", cause)
	}
	if status >= http.StatusInternalServerError {
		s.Logger.ErrorContext(r.Context(), "Internal error", attrs...)
	} else {
		s.Logger.InfoContext(r.Context(), "Request rejected", attrs...)
	}

	id, _ := logging.RequestID(r.Context())
	if err := respondJSON(w, status, errorResponse{Error: message, Type: errType, RequestID: id}); err != nil {
		s.Logger.ErrorContext(r.Context(), "Failed to write error response", "error", err)
	}
}

// +----------------------------------------------------------------------------------------------+
// |                                         Blog Handlers                                        |
// +----------------------------------------------------------------------------------------------+

// handleQuery runs route's query with the request's path parameters bound as
// arguments and writes the rows as a JSON array.
func (s *Server) handleQuery(route Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		args := make([]any, 0, len(route.Params))
		for _, name := range route.Params {
			id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
			if err != nil {
				// Every id column is an integer, so nothing can match.
				s.Logger.DebugContext(r.Context(), "Non-integer path parameter", "param", name, "value", chi.URLParam(r, name))
				s.writeRows(w, r, db.Rows{})
				return
			}
			args = append(args, id)
		}

		ctx, cancel := context.WithTimeout(r.Context(), s.Config.DB.QueryTimeout)
		defer cancel()

		rows, err := s.Database.Query(ctx, route.Query, args...)
		if err != nil {
			s.respondError(w, r, http.StatusInternalServerError, "internal", "Error reading from the blog database", err)
			return
		}
		s.writeRows(w, r, rows)
	}
}

func (s *Server) writeRows(w http.ResponseWriter, r *http.Request, rows db.Rows) {
	if rows == nil {
		rows = db.Rows{}
	}
	if err := respondJSON(w, http.StatusOK, rows); err != nil {
		s.Logger.ErrorContext(r.Context(), "Failed to write response", "error", err)
	}
}
