package simulator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/queueware/handoffq"
	"github.com/queueware/handoffq/internal/common"
	"github.com/queueware/handoffq/internal/metrics"

	"github.com/go-redis/redis/v7"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Payload is one simulated message handed from a producer to a consumer.
type Payload struct {
	ProducerID int
	Seq        int
	EnqueuedAt time.Time
}

// Summary aggregates one simulation run.
type Summary struct {
	Produced   int64
	Delivered  int64
	Timeouts   int64
	AvgLatency time.Duration
	MaxLatency time.Duration
}

type delivery struct {
	payload    Payload
	receivedAt time.Time
}

// Driver runs rate-limited producers and timeout-polling consumers against a
// single handoff queue, then reports delivery stats.
type Driver struct {
	Ctx context.Context

	// Invoked to abort the whole run when a consumer hits a claim failure it
	// cannot classify.
	CtxCancelFunc context.CancelFunc

	Queue *handoffq.Queue[Payload]

	NumProducers        int
	NumConsumers        int
	MessagesPerProducer int

	// Shared limiter pacing all producers together.
	ProducerLimiter *rate.Limiter

	// Per-claim timeout for consumers; expired claims are retried.
	ConsumerClaimTimeout time.Duration

	// Optional sink: delivered payloads are mirrored to this Redis list when
	// RedisClient is non-nil.
	RedisClient *redis.Client
	SinkListKey string

	producedCounter common.AtomicCounter
	timeoutCounter  common.AtomicCounter
}

// Run drives the full simulation: producers push their quota, consumers claim
// until everything produced was delivered, then a Clear releases the
// still-blocked consumers. Blocks until all workers exit.
func (d *Driver) Run() Summary {
	expected := d.NumProducers * d.MessagesPerProducer
	deliveries := make(chan delivery, expected)

	// Claims derive from drainCtx so a consumer whose claim expires in the
	// same instant as the final Clear, and re-registers after it, is still
	// released when the drain is cancelled.
	drainCtx, cancelDrain := context.WithCancel(d.Ctx)
	defer cancelDrain()

	var producersWaitGroup sync.WaitGroup
	for p := 0; p < d.NumProducers; p++ {
		producersWaitGroup.Add(1)
		go d.runProducer(p, &producersWaitGroup)
	}

	var consumersWaitGroup sync.WaitGroup
	for c := 0; c < d.NumConsumers; c++ {
		consumersWaitGroup.Add(1)
		go d.runConsumer(c, drainCtx, deliveries, &consumersWaitGroup)
	}

	received := make([]delivery, 0, expected)
collect:
	for len(received) < expected {
		select {
		case dv := <-deliveries:
			received = append(received, dv)
		case <-d.Ctx.Done():
			log.Info().Msg("simulation interrupted => aborting collection")
			break collect
		}
	}
	producersWaitGroup.Wait()

	// Everything produced is accounted for; abort the idle claims so the
	// consumer workers can exit. Clear fires once, so the drain cancel
	// backstops any consumer that registers too late to observe it.
	d.Queue.Clear()
	cancelDrain()
	consumersWaitGroup.Wait()

	return d.aggregateResults(received)
}

func (d *Driver) runProducer(id int, wg *sync.WaitGroup) {
	defer wg.Done()
	for seq := 0; seq < d.MessagesPerProducer; seq++ {
		if err := d.ProducerLimiter.Wait(d.Ctx); err != nil {
			log.Info().Int("producer_id", id).Msg("producer stopped before quota")
			return
		}
		d.Queue.Add(Payload{ProducerID: id, Seq: seq, EnqueuedAt: time.Now()})
		d.producedCounter.Incr()
		metrics.Incr("producer.adds", []string{fmt.Sprintf("producer_id:%d", id)})
	}
}

func (d *Driver) runConsumer(id int, drainCtx context.Context, deliveries chan<- delivery, wg *sync.WaitGroup) {
	defer wg.Done()
	for { // loop until cleared or drained
		claimCtx, cancelClaim := context.WithTimeout(drainCtx, d.ConsumerClaimTimeout)
		payload, err := d.Queue.Next(claimCtx)
		cancelClaim()
		switch {
		case err == nil:
			now := time.Now()
			metrics.Incr("consumer.deliveries", nil)
			metrics.Distribution(
				"consumer.handoff_latency_ms",
				float64(now.Sub(payload.EnqueuedAt).Milliseconds()),
				nil,
			)
			d.pushToSink(payload)
			deliveries <- delivery{payload: payload, receivedAt: now}
		case errors.Is(err, handoffq.ErrTimeout):
			d.timeoutCounter.Incr()
			metrics.Incr("consumer.claim_timeouts", nil)
		case errors.Is(err, handoffq.ErrCleared):
			log.Debug().Int("consumer_id", id).Msg("consumer released by clear")
			return
		case errors.Is(err, context.Canceled):
			log.Debug().Int("consumer_id", id).Msg("consumer drained")
			return
		default:
			log.Warn().Err(err).Int("consumer_id", id).Msg("unexpected claim failure")
			d.CtxCancelFunc()
			return
		}
	}
}

func (d *Driver) pushToSink(p Payload) {
	if d.RedisClient == nil {
		return
	}
	defer metrics.BenchmarkMethod(time.Now(), "sink_push", nil)
	entry := fmt.Sprintf("%d:%d", p.ProducerID, p.Seq)
	if err := d.RedisClient.RPush(d.SinkListKey, entry).Err(); err != nil {
		log.Warn().Err(errors.Wrap(err, "sink rpush failed")).Msg("dropping sink entry")
	}
}

func (d *Driver) aggregateResults(received []delivery) Summary {
	summary := Summary{
		Produced:  d.producedCounter.Read(),
		Delivered: int64(len(received)),
		Timeouts:  d.timeoutCounter.Read(),
	}

	var totalLatency time.Duration
	for _, dv := range received {
		latency := dv.receivedAt.Sub(dv.payload.EnqueuedAt)
		totalLatency += latency
		if latency > summary.MaxLatency {
			summary.MaxLatency = latency
		}
	}
	if len(received) > 0 {
		summary.AvgLatency = totalLatency / time.Duration(len(received))
	}

	metrics.Count("sim.produced", summary.Produced, nil)
	metrics.Count("sim.delivered", summary.Delivered, nil)
	metrics.Gauge("sim.max_latency_ms", float64(summary.MaxLatency.Milliseconds()), nil)

	log.Info().
		Int64("produced", summary.Produced).
		Int64("delivered", summary.Delivered).
		Int64("claim_timeouts", summary.Timeouts).
		Dur("avg_latency", summary.AvgLatency).
		Dur("max_latency", summary.MaxLatency).
		Msg("simulation complete")

	return summary
}
