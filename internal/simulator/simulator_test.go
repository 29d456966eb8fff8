package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/queueware/handoffq"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestDriverDeliversAllProducedPayloads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := &Driver{
		Ctx:                  ctx,
		CtxCancelFunc:        cancel,
		Queue:                handoffq.New[Payload](),
		NumProducers:         3,
		NumConsumers:         2,
		MessagesPerProducer:  20,
		ProducerLimiter:      rate.NewLimiter(rate.Inf, 1),
		ConsumerClaimTimeout: 50 * time.Millisecond,
	}

	summary := d.Run()

	require.Equal(t, int64(60), summary.Produced)
	require.Equal(t, int64(60), summary.Delivered)
	require.True(t, d.Queue.IsEmpty())
	require.Equal(t, 0, d.Queue.Waiting())
}

func TestRunReturnsWhenConsumersMissTheClear(t *testing.T) {
	// A claim that expires in the same instant as the final Clear re-registers
	// after it; the drain cancel must still release that consumer. Tight
	// timeouts and repeated runs make the window easy to hit.
	for i := 0; i < 25; i++ {
		ctx, cancel := context.WithCancel(context.Background())

		d := &Driver{
			Ctx:                  ctx,
			CtxCancelFunc:        cancel,
			Queue:                handoffq.New[Payload](),
			NumProducers:         1,
			NumConsumers:         8,
			MessagesPerProducer:  1,
			ProducerLimiter:      rate.NewLimiter(rate.Inf, 1),
			ConsumerClaimTimeout: time.Millisecond,
		}

		done := make(chan Summary, 1)
		go func() { done <- d.Run() }()

		select {
		case summary := <-done:
			require.Equal(t, int64(1), summary.Delivered, "iteration %d", i)
			require.Equal(t, 0, d.Queue.Waiting(), "iteration %d", i)
		case <-time.After(5 * time.Second):
			t.Fatalf("iteration %d: Run did not return after clear", i)
		}
		cancel()
	}
}

func TestRunReturnsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := &Driver{
		Ctx:                  ctx,
		CtxCancelFunc:        cancel,
		Queue:                handoffq.New[Payload](),
		NumProducers:         1,
		NumConsumers:         2,
		MessagesPerProducer:  10000,
		ProducerLimiter:      rate.NewLimiter(rate.Limit(10), 1),
		ConsumerClaimTimeout: time.Minute,
	}

	done := make(chan Summary, 1)
	go func() { done <- d.Run() }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case summary := <-done:
		require.Less(t, summary.Produced, int64(10000))
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestDriverPacedProducersStillDrain(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := &Driver{
		Ctx:                  ctx,
		CtxCancelFunc:        cancel,
		Queue:                handoffq.New[Payload](),
		NumProducers:         2,
		NumConsumers:         1,
		MessagesPerProducer:  5,
		ProducerLimiter:      rate.NewLimiter(rate.Limit(500), 1),
		ConsumerClaimTimeout: 500 * time.Millisecond,
	}

	summary := d.Run()

	require.Equal(t, int64(10), summary.Produced)
	require.Equal(t, int64(10), summary.Delivered)
	require.GreaterOrEqual(t, summary.MaxLatency, time.Duration(0))
}
