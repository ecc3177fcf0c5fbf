package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/iho/cardroom/internal/usecase"
)

// IdempotencyKeyHeader names the header clients send to make a mutating
// request safely retryable.
const IdempotencyKeyHeader = "Idempotency-Key"

const (
	idempotencyTTL      = 24 * time.Hour
	inFlightPlaceholder = "processing"
)

// IdempotencyMiddleware replays the original response for a repeated
// Idempotency-Key instead of running the handler twice.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{store: store}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" || !mutating(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		seen, cached, err := m.store.CheckAndSet(r.Context(), key, nil, idempotencyTTL)
		if err != nil {
			// Fail closed: a duplicate cannot be ruled out without the store.
			http.Error(w, "idempotency check failed", http.StatusInternalServerError)
			return
		}

		if seen && len(cached) > 0 && string(cached) != inFlightPlaceholder {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Idempotency-Replay", "true")
			w.Write(cached)
			return
		}

		rec := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(rec, r)

		// Only successful outcomes are worth replaying.
		if rec.statusCode >= 200 && rec.statusCode < 300 {
			m.store.Update(r.Context(), key, rec.body.Bytes(), idempotencyTTL)
		}
	})
}

func mutating(method string) bool {
	return method == http.MethodPost || method == http.MethodPut
}

type responseRecorder struct {
	http.ResponseWriter

	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
