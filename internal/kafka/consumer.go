package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler must return nil only when the message was fully processed and the
// offset may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r       *kafka.Reader
	workers int
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers}
}

// Start dispatches messages to a fixed worker pool and blocks until ctx is
// cancelled or the reader fails.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, 1024)
	errs := make(chan error, c.workers)

	for i := 0; i < c.workers; i++ {
		go workerLoop(ctx, jobs, h, c.r.CommitMessages, errs)
	}

	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			close(jobs)
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			close(jobs)
			return nil
		}

		// drain worker errors without blocking the dispatch loop
		select {
		case e := <-errs:
			slog.Error("consumer worker error", "topic", c.r.Config().Topic, "err", e)
			time.Sleep(200 * time.Millisecond)
		default:
		}
	}
}

// workerLoop runs until jobs closes. Error reporting must never block a
// worker: once nobody drains errs, further reports are logged and dropped.
func workerLoop(ctx context.Context, jobs <-chan kafka.Message, h Handler,
	commit func(ctx context.Context, msgs ...kafka.Message) error, errs chan<- error) {
	for m := range jobs {
		if err := h(ctx, m); err != nil {
			report(errs, err)
			continue
		}
		if err := commit(ctx, m); err != nil {
			report(errs, err)
		}
	}
}

func report(errs chan<- error, err error) {
	select {
	case errs <- err:
	default:
		slog.Error("consumer worker error", "err", err)
	}
}
