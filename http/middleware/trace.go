package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/openpan/drive-service/http/controller"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TraceMiddleware opens a server span per request and records the route,
// method and final status code.
func TraceMiddleware(ctrl *controller.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ctrl.Infra == nil || ctrl.Infra.Telemetry == nil {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		ctx, span := ctrl.Infra.Telemetry.Tracer.Start(c.Request.Context(),
			c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Request.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
	}
}
