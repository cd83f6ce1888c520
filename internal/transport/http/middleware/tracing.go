package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request. Operational routes are skipped.
func Tracing(service string, provider trace.TracerProvider) gin.HandlerFunc {
	opts := []otelgin.Option{
		otelgin.WithFilter(func(r *http.Request) bool {
			switch r.URL.Path {
			case "/healthz", "/readyz", "/metrics":
				return false
			}
			return true
		}),
	}
	if provider != nil {
		opts = append(opts, otelgin.WithTracerProvider(provider))
	}
	return otelgin.Middleware(service, opts...)
}
