package middleware

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/vfg2006/traffic-insights-import/pkg/apiErrors"
	"github.com/vfg2006/traffic-insights-import/pkg/log"
)

// CorrelationIDHeader devolve ao cliente o ID usado nos logs da requisição
const CorrelationIDHeader = "X-Correlation-ID"

// Importações são longas por natureza; o aviso de lentidão não se aplica a streams
const slowRequestThreshold = 500 * time.Millisecond

// LoggingMiddleware registra informações sobre cada requisição HTTP
func LoggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, correlationID := log.WithCorrelationID(r.Context())
			r = r.WithContext(ctx)
			w.Header().Set(CorrelationIDHeader, correlationID)

			lrw := newLoggingResponseWriter(w)
			startTime := time.Now()

			log.L.WithFields(log.Fields{
				"correlation_id": correlationID,
				"remote_addr":    r.RemoteAddr,
				"method":         r.Method,
				"path":           r.URL.Path,
				"query":          r.URL.RawQuery,
				"content_type":   r.Header.Get("Content-Type"),
				"content_length": r.ContentLength,
			}).Debug("Requisição iniciada")

			next.ServeHTTP(lrw, r)

			responseTime := time.Since(startTime)
			logger := log.L.WithFields(log.Fields{
				"correlation_id": correlationID,
				"method":         r.Method,
				"path":           r.URL.Path,
				"duration_ms":    responseTime.Milliseconds(),
				"status_code":    lrw.statusCode,
				"bytes":          lrw.written,
			})

			msg := fmt.Sprintf("Requisição finalizada em %s", formatDuration(responseTime))
			switch {
			case lrw.statusCode >= 500:
				logger.Error(msg)
			case lrw.statusCode >= 400:
				logger.Warn(msg)
			default:
				logger.Info(msg)
			}

			if responseTime > slowRequestThreshold && !lrw.streamed {
				logger.Warnf("Requisição lenta: %s %s", r.Method, r.URL.Path)
			}
		})
	}
}

// formatDuration formata a duração de forma humana
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%d µs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%d ms", d.Milliseconds())
	} else {
		return fmt.Sprintf("%.2f s", d.Seconds())
	}
}

// loggingResponseWriter captura o status code e o volume escrito, repassando
// Flush para que respostas em stream (NDJSON) cheguem ao cliente linha a linha
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	written     int64
	streamed    bool
	wroteHeader bool
}

func newLoggingResponseWriter(w http.ResponseWriter) *loggingResponseWriter {
	return &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	if lrw.wroteHeader {
		return
	}
	lrw.wroteHeader = true
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	lrw.wroteHeader = true
	n, err := lrw.ResponseWriter.Write(b)
	lrw.written += int64(n)
	return n, err
}

func (lrw *loggingResponseWriter) Flush() {
	lrw.streamed = true
	if f, ok := lrw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap permite que http.ResponseController alcance o writer original
func (lrw *loggingResponseWriter) Unwrap() http.ResponseWriter {
	return lrw.ResponseWriter
}

// LogPanicMiddleware captura panics não tratados e responde 500
func LogPanicMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					stack := make([]byte, 4096)
					stackSize := runtime.Stack(stack, false)

					logger := log.ForContext(r.Context()).WithFields(log.Fields{
						"panic_error": err,
						"method":      r.Method,
						"path":        r.URL.Path,
					})
					logger.Error("Erro não tratado na aplicação")
					logger.WithField("stack_trace", string(stack[:stackSize])).Debug("Stack trace do erro")

					apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro interno no servidor", nil)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
