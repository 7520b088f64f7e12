package middleware

import (
	"log"
	"net/http"
	"time"
)

// Logging handles request/response logging
type Logging struct {
	logger *log.Logger
}

func NewLogging(logger *log.Logger) *Logging {
	return &Logging{logger: logger}
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
	written    bool
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// LogRequest wraps an HTTP handler with request/response logging
func (l *Logging) LogRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		l.logger.Printf(
			"%s %s %d %dB %s %s",
			r.Method,
			r.URL.Path,
			wrapped.statusCode,
			wrapped.bytes,
			duration,
			r.RemoteAddr,
		)
	})
}
