package apperror

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ServerErrorBody is the only text a client receives for a 5xx response.
const ServerErrorBody = "Server error"

// WriteJSON serializes data to JSON and writes it with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	// Headers are already sent; an encoding failure can only be dropped here.
	_ = json.NewEncoder(w).Encode(data)
}

// WriteServerError answers with a plain-text 500.
func WriteServerError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(ServerErrorBody))
}

// Write is the single error boundary for HTTP handlers.
// Client errors are answered with their itemized JSON body. Server errors are
// logged with full detail and answered with the generic plain-text body.
func Write(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	appErr := FromError(err)
	if appErr.IsServerError() {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Stringer("type", appErr.Type),
			zap.Error(appErr),
		)
		WriteServerError(w)
		return
	}
	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}

// Recoverer turns a panic in a downstream handler into the same generic 500
// that every other server-side failure produces.
func Recoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.String("request_id", middleware.GetReqID(r.Context())),
						zap.Stack("stack"),
					)
					WriteServerError(w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
