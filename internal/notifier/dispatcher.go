package notifier

import (
	"context"
	"fmt"
)

// Dispatcher fans one intent out to the stream bus and to the sink
// registered for the intent's channel. Channels without a dedicated
// sink fall back to the log notifier.
type Dispatcher struct {
	stream    Notifier
	byChannel map[string]Notifier
	fallback  Notifier
}

// NewDispatcher creates a dispatcher. stream may be nil when no Redis
// bus is configured; fallback must not be nil.
func NewDispatcher(stream Notifier, fallback Notifier) *Dispatcher {
	return &Dispatcher{
		stream:    stream,
		byChannel: make(map[string]Notifier),
		fallback:  fallback,
	}
}

// Register binds a sink to a subscription channel name.
func (d *Dispatcher) Register(channel string, n Notifier) {
	d.byChannel[channel] = n
}

// Notify delivers the intent to the stream first, then to the channel
// sink. The first failure is returned; the caller decides whether to
// skip or retry.
func (d *Dispatcher) Notify(ctx context.Context, intent *Intent) error {
	if d.stream != nil {
		if err := d.stream.Notify(ctx, intent); err != nil {
			return fmt.Errorf("stream delivery failed: %w", err)
		}
	}

	sink, ok := d.byChannel[intent.Channel]
	if !ok {
		sink = d.fallback
	}

	if err := sink.Notify(ctx, intent); err != nil {
		return fmt.Errorf("channel %s delivery failed: %w", intent.Channel, err)
	}

	return nil
}
