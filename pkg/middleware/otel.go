package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tandemwire/tandem/pkg/mux"
)

// Default tracer name for tandem peers.
const defaultTracerName = "tandem"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "tandem").
	TracerName string

	// Filter determines which requests to trace. Return true to trace
	// the request, false to skip. If nil, all requests are traced.
	Filter func(req *mux.Request) bool

	// AttributeExtractor extracts custom attributes from the request.
	AttributeExtractor func(req *mux.Request) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithRequestFilter sets a filter function for requests.
func WithRequestFilter(filter func(req *mux.Request) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(req *mux.Request) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry creates middleware that opens one span per inbound
// request, named after the message, with the identifier and name as
// attributes. Handler failures are recorded on the span and set its
// status.
//
// The tracer comes from the global tracer provider; configure that in
// main before starting peers.
func OpenTelemetry(opts ...OTelOption) mux.Middleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)

	return func(next mux.HandlerFunc) mux.HandlerFunc {
		return func(ctx context.Context, req *mux.Request) ([]byte, error) {
			if config.Filter != nil && !config.Filter(req) {
				return next(ctx, req)
			}

			attrs := []attribute.KeyValue{
				attribute.Int("tandem.message.id", int(req.ID)),
				attribute.String("tandem.message.name", req.Name),
			}
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(req)...)
			}

			spanCtx, span := config.tracer.Start(
				ctx,
				"tandem."+req.Name,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			reply, err := next(spanCtx, req)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}

			return reply, err
		}
	}
}
