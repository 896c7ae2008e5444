package notify

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/xtesports/xtesports/internal/util/slogx"
	"golang.org/x/sync/errgroup"
)

// Dispatcher sends messages in the background. Callers never wait for delivery and never see
// delivery errors; those only end up in the log.
type Dispatcher struct {
	sender  Sender
	log     *slog.Logger
	timeout time.Duration
	ctx     context.Context
	cancel  func()
	wg      sync.WaitGroup
}

func NewDispatcher(log *slog.Logger, sender Sender, timeout time.Duration) *Dispatcher {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		sender:  sender,
		log:     log,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (d *Dispatcher) Notify(msgs ...Message) {
	if len(msgs) == 0 {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
		defer cancel()
		var g errgroup.Group
		for _, msg := range msgs {
			g.Go(func() error {
				if err := d.sender.Send(ctx, msg); err != nil {
					d.log.Error("could not send mail",
						slog.String("to", strings.Join(msg.To, ",")),
						slog.String("subject", msg.Subject),
						slogx.Err(err),
					)
					return err
				}
				return nil
			})
		}
		_ = g.Wait()
	}()
}

// Close waits for messages in flight. Each of them is bounded by the send timeout.
func (d *Dispatcher) Close() {
	d.wg.Wait()
	d.cancel()
}
