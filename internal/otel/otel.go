package otel

import (
	"context"
	"sync"

	eventbus "github.com/hanpama/serverlessgql/internal/eventbus"
	events "github.com/hanpama/serverlessgql/internal/events"
	reqid "github.com/hanpama/serverlessgql/internal/reqid"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const instrumentationName = "github.com/hanpama/serverlessgql"

// Setup builds a tracer provider exporting spans over OTLP/gRPC to endpoint.
// If endpoint is empty, a no-op provider is returned.
func Setup(ctx context.Context, endpoint, service string) (trace.TracerProvider, func(context.Context) error, error) {
	if endpoint == "" {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	return tp, tp.Shutdown, nil
}

// Attach turns the operation events published on bus into spans created by
// tp. Queries and mutations end their span on OperationFinish; subscriptions
// keep it open until SubscriptionEnd and record one span event per result.
func Attach(bus *eventbus.Bus, tp trace.TracerProvider) (detach func()) {
	s := &subscriber{tracer: tp.Tracer(instrumentationName)}
	return s.register(bus)
}

type subscriber struct {
	tracer trace.Tracer
	spans  sync.Map // rid -> trace.Span
}

func (s *subscriber) register(bus *eventbus.Bus) func() {
	unsubscribers := []func(){
		eventbus.On(bus, func(ctx context.Context, e events.OperationStart) {
			rid, _ := reqid.FromContext(ctx)
			_, span := s.tracer.Start(ctx, "graphql."+operationType(e.OperationType))
			span.SetAttributes(
				attribute.String("graphql.operation.name", e.OperationName),
				attribute.String("graphql.operation.type", e.OperationType),
				attribute.String("graphql.document", e.Query),
				attribute.String("graphql.operation.id", rid),
			)
			s.spans.Store(rid, span)
		}),

		eventbus.On(bus, func(ctx context.Context, e events.OperationFinish) {
			rid, _ := reqid.FromContext(ctx)
			if e.OperationType == "subscription" {
				if v, ok := s.spans.Load(rid); ok {
					v.(trace.Span).SetAttributes(attribute.Int("graphql.subscribe.error_count", len(e.Errors)))
				}
				return
			}
			v, ok := s.spans.LoadAndDelete(rid)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(attribute.Int("graphql.error_count", len(e.Errors)))
			if len(e.Errors) > 0 {
				span.SetStatus(codes.Error, e.Errors[0].Error())
			}
			span.End()
		}),

		eventbus.On(bus, func(ctx context.Context, e events.SubscriptionEvent) {
			rid, _ := reqid.FromContext(ctx)
			if v, ok := s.spans.Load(rid); ok {
				v.(trace.Span).AddEvent("graphql.subscription.result", trace.WithAttributes(
					attribute.Int("graphql.subscription.seq", e.Seq),
					attribute.Int("graphql.error_count", len(e.Errors)),
				))
			}
		}),

		eventbus.On(bus, func(ctx context.Context, e events.SubscriptionEnd) {
			rid, _ := reqid.FromContext(ctx)
			v, ok := s.spans.LoadAndDelete(rid)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(attribute.Int("graphql.subscription.events", e.Events))
			if e.Err != nil {
				span.RecordError(e.Err)
				span.SetStatus(codes.Error, e.Err.Error())
			}
			span.End()
		}),
	}
	return func() {
		for _, unsubscribe := range unsubscribers {
			unsubscribe()
		}
	}
}

func operationType(t string) string {
	if t == "" {
		return "operation"
	}
	return t
}
