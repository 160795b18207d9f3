package aggregator

import (
	"context"
	"net/http"
	"strings"
	"time"

	"posts-gateway/aggregator/domain"
	"posts-gateway/logger"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// RequestLogMiddleware anexa ao ctx um logger com request_id (do header
// X-Request-ID ou um uuid novo) e loga o fim de cada request.
func RequestLogMiddleware(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			reqLog := log.With("request_id", id, "method", r.Method, "path", r.URL.Path)
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(rec, r.WithContext(logger.WithContext(r.Context(), reqLog)))

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			reqLog.Info("request completed", "status", status, "duration", time.Since(start))
		})
	}
}

// RecoverMiddleware converte panics em 500 genérico, logando o valor.
func RecoverMiddleware(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					logger.FromContext(r.Context(), log).Error("panic serving request", "panic", p)
					writeError(w, http.StatusInternalServerError, internalErrorMessage)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type ConcurrencyOptions struct {
	Pool           domain.SlotPool
	RejectStatus   int
	AcquireTimeout time.Duration
}

// ConcurrencyMiddleware limita os requests simultâneos usando um SlotPool.
//   - AcquireTimeout <= 0: espera até o ctx do request encerrar
//   - AcquireTimeout > 0: espera no máximo esse tempo e responde RejectStatus (503 por padrão)
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Pool == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if opts.AcquireTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, opts.AcquireTimeout)
				defer cancel()
			}

			release, ok := opts.Pool.Acquire(ctx)
			if !ok {
				writeError(w, opts.RejectStatus, "too many concurrent requests")
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
