package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/segmentio/kafka-go"
)

// Handler returns nil only when the message is fully processed and its
// offset may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	r       messageReader
	workers int
	log     *slog.Logger
}

func NewConsumer(brokers []string, group string, topics []string, workers int, log *slog.Logger) *Consumer {
	if log == nil {
		log = slog.Default()
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	return newConsumer(r, workers, log.With("group", group))
}

func newConsumer(r messageReader, workers int, log *slog.Logger) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Consumer{r: r, workers: workers, log: log.With("component", "kafka-consumer")}
}

// Start dispatches messages to a worker pool until ctx is done. A failed
// handler leaves the offset uncommitted. It returns nil on shutdown.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, 1024)

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for m := range jobs {
				if err := h(ctx, m); err != nil {
					c.log.Error("handle message", "worker", id, "topic", m.Topic,
						"partition", m.Partition, "offset", m.Offset, "error", err)
					continue
				}
				if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
					c.log.Error("commit message", "worker", id, "offset", m.Offset, "error", err)
				}
			}
		}(i)
	}

	err := c.dispatch(ctx, jobs)
	close(jobs)
	wg.Wait()

	return err
}

func (c *Consumer) dispatch(ctx context.Context, jobs chan<- kafka.Message) error {
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		select {
		case jobs <- m:
		case <-ctx.Done():
			return nil
		}
	}
}
