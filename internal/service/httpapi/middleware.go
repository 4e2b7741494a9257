package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/metrics"
)

// HeaderRequestID: заголовок с идентификатором запроса.
const HeaderRequestID = "X-Request-ID"

// unmatchedRoute: метка маршрута для запросов, не попавших ни в один шаблон.
const unmatchedRoute = "unmatched"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	routeKey
)

// routeInfo заполняется обработчиком маршрута и читается внешними middleware.
type routeInfo struct {
	pattern string
}

// RequestIDFromContext возвращает идентификатор текущего запроса.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func withRoute(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if info, ok := r.Context().Value(routeKey).(*routeInfo); ok {
			info.pattern = pattern
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// started сообщает, ушли ли клиенту заголовки ответа.
func (s *statusRecorder) started() bool {
	return s.status != 0
}

func (s *statusRecorder) code() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}

// observeMiddleware пишет одну строку лога и метрики на каждый запрос.
func observeMiddleware(logger *log.Entry, m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			info := &routeInfo{pattern: unmatchedRoute}
			rec := &statusRecorder{ResponseWriter: w}

			m.RequestStarted()
			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), routeKey, info)))
			duration := time.Since(start)
			m.RequestFinished(r.Method, info.pattern, rec.code(), duration)

			entry := logger.WithFields(log.Fields{
				"request_id":  RequestIDFromContext(r.Context()),
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.code(),
				"duration_ms": duration.Milliseconds(),
			})
			if rec.code() >= http.StatusInternalServerError {
				entry.Warn("http request failed")
				return
			}
			entry.Info("http request")
		})
	}
}

func timeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func recoverMiddleware(logger *log.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusRecorder{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.WithFields(log.Fields{
					"panic":            rec,
					"request_id":       RequestIDFromContext(r.Context()),
					"path":             r.URL.Path,
					"response_started": sw.started(),
				}).Error("panic in http handler")
				// Заголовки уже отправлены: второй WriteHeader только испортит ответ.
				if sw.started() {
					return
				}
				writeJSON(sw, http.StatusInternalServerError, errorBody{Message: internalErrorMessage})
			}()
			next.ServeHTTP(sw, r)
		})
	}
}
