package main

import (
	"context"
	"fmt"
	"time"

	"github.com/queueware/handoffq"
	"github.com/queueware/handoffq/internal/simulator"

	"github.com/go-redis/redis/v7"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	logLevel = "info"

	// Number of producer goroutines generated.
	numProducers = 8

	// Number of consumer goroutines generated.
	numConsumers = 4

	// Messages each producer pushes before exiting.
	messagesPerProducer = 500

	// Aggregate producer rate (messages/sec) shared across all producers.
	producerRatePerSec = 2000

	// Max burst allowed above the steady producer rate.
	producerBurst = 50

	// Per-claim timeout for consumers; an expired claim is simply retried.
	consumerClaimTimeout = 250 * time.Millisecond

	// Redis called to mirror delivered payloads (skipped when unreachable).
	redisAddr   = "localhost:6379"
	sinkListKey = "handoffsim:delivered"
)

func validateParams() {
	if numProducers <= 0 || numConsumers <= 0 {
		panic(fmt.Errorf("need at least one producer and one consumer"))
	}
	if messagesPerProducer <= 0 {
		panic(fmt.Errorf("messagesPerProducer should be > 0 but found %d", messagesPerProducer))
	}
	if producerRatePerSec <= 0 {
		panic(fmt.Errorf("producerRatePerSec should be > 0 but found %d", producerRatePerSec))
	}
}

func setLogging(logLevel string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	switch logLevel {
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		panic(fmt.Errorf("log level must be one of: {disabled, info, debug}"))
	}
}

func makeRedisClient(addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	_, err := client.Ping().Result()
	return client, err
}

func makeDriver(ctx context.Context, cancel context.CancelFunc, redisClient *redis.Client) *simulator.Driver {
	return &simulator.Driver{
		Ctx:                  ctx,
		CtxCancelFunc:        cancel,
		Queue:                handoffq.New[simulator.Payload](),
		NumProducers:         numProducers,
		NumConsumers:         numConsumers,
		MessagesPerProducer:  messagesPerProducer,
		ProducerLimiter:      rate.NewLimiter(rate.Limit(producerRatePerSec), producerBurst),
		ConsumerClaimTimeout: consumerClaimTimeout,
		RedisClient:          redisClient,
		SinkListKey:          sinkListKey,
	}
}
