package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	fail   bool
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail {
		return errors.New("broker unavailable")
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestProducer_FlushesOnClose(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 16, nil)
	p.Start()

	p.Publish("pos.order.created", []byte("161026-001"), []byte(`{"a":1}`),
		kafka.Header{Key: "x-event-type", Value: []byte("OrderCreated")})
	p.Publish("pos.order.status_changed", []byte("161026-001"), []byte(`{"a":2}`))

	p.Close()
	p.Close()
	p.WaitClosed()

	// dropped, not panicking
	p.Publish("pos.order.created", []byte("161026-002"), nil)

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "pos.order.created", w.msgs[0].Topic)
	assert.Equal(t, "pos.order.status_changed", w.msgs[1].Topic)
	assert.Equal(t, "OrderCreated", Header(w.msgs[0].Headers, "x-event-type"))
	assert.True(t, w.closed)
}

func TestProducer_WriteErrorKeepsGoing(t *testing.T) {
	w := &fakeWriter{fail: true}
	p := newProducer(w, 4, nil)
	p.Start()

	p.Publish("t", nil, []byte("x"))
	p.Close()
	p.WaitClosed()

	assert.Empty(t, w.msgs)
	assert.True(t, w.closed)
}

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	for {
		r.mu.Lock()
		if len(r.queue) > 0 {
			m := r.queue[0]
			r.queue = r.queue[1:]
			r.mu.Unlock()
			return m, nil
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return kafka.Message{}, ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func TestConsumer_CommitsOnlyHandled(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{
		{Offset: 1, Value: []byte("ok")},
		{Offset: 2, Value: []byte("bad")},
		{Offset: 3, Value: []byte("ok")},
	}}
	c := newConsumer(r, 2, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Start(ctx, func(_ context.Context, m kafka.Message) error {
			if string(m.Value) == "bad" {
				return errors.New("cannot handle")
			}
			return nil
		})
	}()

	require.Eventually(t, func() bool { return len(r.commits()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()

	require.NoError(t, <-done)
	assert.ElementsMatch(t, []int64{1, 3}, r.commits())
	assert.True(t, r.closed)
}

func TestUnwrapPayload(t *testing.T) {
	type payload struct {
		OrderID string `json:"order_id"`
	}

	got, err := UnwrapPayload[payload]([]byte(`{"order_id":"161026-001"}`))
	require.NoError(t, err)
	assert.Equal(t, "161026-001", got.OrderID)

	_, err = UnwrapPayload[payload]([]byte(`{`))
	assert.ErrorContains(t, err, "decode payload")
}
