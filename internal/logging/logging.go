// Package logging writes the operation events of an event bus to a zerolog
// logger.
package logging

import (
	"context"
	"strings"

	eventbus "github.com/hanpama/serverlessgql/internal/eventbus"
	events "github.com/hanpama/serverlessgql/internal/events"
	reqid "github.com/hanpama/serverlessgql/internal/reqid"

	"github.com/rs/zerolog"
)

// Attach logs operation starts at debug level and every finished operation,
// subscription result and subscription end. Entries carry the operation id
// under "op_id" when the context has one.
func Attach(bus *eventbus.Bus, logger zerolog.Logger) (detach func()) {
	unsubscribers := []func(){
		eventbus.On(bus, func(ctx context.Context, e events.OperationStart) {
			withOp(ctx, logger.Debug()).
				Str("operation_type", e.OperationType).
				Str("operation_name", e.OperationName).
				Msg("graphql operation started")
		}),
		eventbus.On(bus, func(ctx context.Context, e events.OperationFinish) {
			ev := logger.Info()
			if len(e.Errors) > 0 {
				ev = logger.Warn().Object("errors", errorList(e.Errors))
			}
			withOp(ctx, ev).
				Str("operation_type", e.OperationType).
				Str("operation_name", e.OperationName).
				Dur("duration", e.Duration).
				Msg("graphql operation finished")
		}),
		eventbus.On(bus, func(ctx context.Context, e events.SubscriptionEvent) {
			withOp(ctx, logger.Debug()).
				Str("operation_name", e.OperationName).
				Int("seq", e.Seq).
				Int("error_count", len(e.Errors)).
				Msg("graphql subscription result")
		}),
		eventbus.On(bus, func(ctx context.Context, e events.SubscriptionEnd) {
			ev := logger.Info()
			if e.Err != nil {
				ev = logger.Warn().Err(e.Err)
			}
			withOp(ctx, ev).
				Str("operation_name", e.OperationName).
				Int("events", e.Events).
				Dur("duration", e.Duration).
				Msg("graphql subscription ended")
		}),
	}
	return func() {
		for _, unsubscribe := range unsubscribers {
			unsubscribe()
		}
	}
}

func withOp(ctx context.Context, ev *zerolog.Event) *zerolog.Event {
	if id, ok := reqid.FromContext(ctx); ok {
		ev = ev.Str("op_id", id)
	}
	return ev
}

type errorList []error

func (l errorList) MarshalZerologObject(e *zerolog.Event) {
	msgs := make([]string, len(l))
	for i, err := range l {
		msgs[i] = err.Error()
	}
	e.Int("count", len(l)).Str("messages", strings.Join(msgs, "; "))
}

// ParseLevel maps a --log-level flag value to a zerolog level. The empty
// string means info.
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(s))
}
