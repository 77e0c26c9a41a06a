package middleware

import (
	"context"
	"net/http"
	"time"

	"absence-instances/internal/logger"

	"go.uber.org/zap"
)

const requestInfoKey contextKey = "requestInfo"

// requestInfo is filled in by inner middleware so the request log can see
// values attached to derived requests, such as the authenticated user.
type requestInfo struct {
	user string
}

func setRequestUser(r *http.Request, user string) {
	if info, ok := r.Context().Value(requestInfoKey).(*requestInfo); ok {
		info.user = user
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogger logs one line per request with status and latency.
func RequestLogger(log *zap.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			info := &requestInfo{}

			next(rec, r.WithContext(context.WithValue(r.Context(), requestInfoKey, info)))

			log.Info("Request served",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.String("user", info.user),
				logger.Duration(time.Since(started)),
			)
		}
	}
}
