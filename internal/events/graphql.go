package events

import "time"

// OperationStart is emitted before executing a GraphQL operation. The
// context carries the operation id (see reqid).
type OperationStart struct {
	Query         string
	OperationName string
	OperationType string
}

// OperationFinish is emitted once a query or mutation has produced its
// result, or once a subscription has been established or refused.
type OperationFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}

// SubscriptionEvent is emitted for every result pulled from a subscription
// stream. Seq starts at 1.
type SubscriptionEvent struct {
	OperationName string
	Seq           int
	Errors        []error
}

// SubscriptionEnd is emitted when a subscription stream is exhausted,
// fails or is closed by the consumer. Err is nil for a clean end.
type SubscriptionEnd struct {
	OperationName string
	Events        int
	Err           error
	Duration      time.Duration
}
