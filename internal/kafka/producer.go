package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer hands messages to a single writer goroutine through a buffered
// inbox, so Publish never waits on the broker.
type Producer struct {
	w       messageWriter
	inbox   chan kafka.Message
	closeCh chan struct{}
	log     *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewProducer writes to whatever topic each message names.
func NewProducer(brokers []string, buf int, log *slog.Logger) *Producer {
	return newProducer(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}, buf, log)
}

func newProducer(w messageWriter, buf int, log *slog.Logger) *Producer {
	if log == nil {
		log = slog.Default()
	}
	return &Producer{
		w:       w,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		log:     log.With("component", "kafka-producer"),
	}
}

func (p *Producer) Start() {
	go func() {
		defer close(p.closeCh)

		for m := range p.inbox {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := p.w.WriteMessages(ctx, m); err != nil {
				p.log.Error("write message", "topic", m.Topic, "key", string(m.Key), "error", err)
			}
			cancel()
		}

		if err := p.w.Close(); err != nil {
			p.log.Error("close writer", "error", err)
		}
	}()
}

func (p *Producer) Publish(topic string, key, value []byte, headers ...kafka.Header) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.log.Warn("publish after close dropped", "topic", topic, "key", string(key))
		return
	}

	p.inbox <- kafka.Message{
		Topic:   topic,
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
}

// Close stops accepting messages; the writer goroutine flushes what is
// buffered and exits. Safe to call more than once.
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.inbox)
}

// WaitClosed blocks until the buffered messages are flushed.
func (p *Producer) WaitClosed() { <-p.closeCh }
