package middleware

import (
	"net/http"
	"time"

	"zidoyvelg-be/internal/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// responseRecorder captures the status code and body size.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// LoggingMiddleware writes one structured line per request. It must sit
// inside Authenticate so the line carries user_id.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rec, r)

		level := zapcore.InfoLevel
		if rec.statusCode >= http.StatusInternalServerError {
			level = zapcore.ErrorLevel
		}

		logger.FromCtx(r.Context()).Check(level, "HTTP request").Write(
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.statusCode),
			zap.Int("bytes", rec.bytes),
			zap.String("remote_ip", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
