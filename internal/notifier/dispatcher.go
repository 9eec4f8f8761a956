// Package notifier delivers newly published notices through the configured
// channels (email, Telegram). Channels are independent: a failure on one
// never blocks delivery attempts on the others.
package notifier

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"rgccr-notice-check/internal/notice"
	"rgccr-notice-check/internal/observability"
)

// Channel delivers a digest of newly published notices.
type Channel interface {
	Name() string
	Send(ctx context.Context, notices []notice.Notice) error
}

type ChannelError struct {
	Channel string
	Err     error
}

// DispatchError aggregates per-channel delivery failures. The run is not
// aborted by it: state persistence still proceeds so notices are not
// re-notified forever on a flaky channel.
type DispatchError struct {
	Failed []ChannelError
}

func (e *DispatchError) Error() string {
	parts := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		parts[i] = fmt.Sprintf("%s: %v", f.Channel, f.Err)
	}
	return "dispatch failed: " + strings.Join(parts, "; ")
}

type Dispatcher struct {
	channels []Channel
	logger   *observability.Logger
}

func NewDispatcher(logger *observability.Logger, channels ...Channel) *Dispatcher {
	return &Dispatcher{
		channels: channels,
		logger:   logger,
	}
}

// Dispatch fans the notices out to every channel concurrently and waits for
// all attempts to finish. Returns a DispatchError listing every channel that
// failed, or nil when all deliveries succeeded.
func (d *Dispatcher) Dispatch(ctx context.Context, notices []notice.Notice) error {
	if len(notices) == 0 {
		return nil
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []ChannelError
	)

	for _, ch := range d.channels {
		wg.Add(1)
		go func(ch Channel) {
			defer wg.Done()
			if err := ch.Send(ctx, notices); err != nil {
				d.logger.Error("channel delivery failed",
					"channel", ch.Name(),
					"notices", len(notices),
					"error", err.Error(),
				)
				mu.Lock()
				failed = append(failed, ChannelError{Channel: ch.Name(), Err: err})
				mu.Unlock()
				return
			}
			d.logger.Info("channel delivery succeeded",
				"channel", ch.Name(),
				"notices", len(notices),
			)
		}(ch)
	}
	wg.Wait()

	if len(failed) > 0 {
		return &DispatchError{Failed: failed}
	}
	return nil
}
