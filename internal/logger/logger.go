// Package logger provides structured logging for the service
// using the Uber zap library, plus an HTTP middleware that logs every request.
package logger

import (
	"errors"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

// Log is the global SugaredLogger used across the application.
// It must be initialized via Init() before use.
var Log *zap.SugaredLogger

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	size, err := r.ResponseWriter.Write(b)
	r.size += size
	return size, err
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.status = statusCode
}

// Init configures the global logger with the given level.
func Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = zl.Sugar()

	return nil
}

// Sync flushes any buffered log entries. Call it on shutdown.
func Sync() error {
	if err := Log.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}

	return nil
}

// WithLoggingHTTPMiddleware logs method, URI, response status, size, and
// duration for every handled request.
func WithLoggingHTTPMiddleware(h http.Handler) http.Handler {
	logFn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		recorder := &statusRecorder{ResponseWriter: w}
		h.ServeHTTP(recorder, r)

		Log.Infoln(
			"uri", r.RequestURI,
			"method", r.Method,
			"status", recorder.status,
			"duration", time.Since(start),
			"size", recorder.size,
		)
	}

	return http.HandlerFunc(logFn)
}
