package broadcast

import "errors"

var (
	ErrBusClosed      = errors.New("broadcast: bus is closed")
	ErrEmptyTopic     = errors.New("broadcast: topic must not be empty")
	ErrNilHandler     = errors.New("broadcast: handler must not be nil")
	ErrDeliveryFailed = errors.New("broadcast: delivery failed for one or more subscribers")
	ErrHandlerPanic   = errors.New("broadcast: handler panicked")
	ErrSlowConsumer   = errors.New("broadcast: subscriber buffer is full")
)
