package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/queueware/handoffq/internal/metrics"

	"github.com/rs/zerolog/log"
)

func main() {
	// Prepare background context configured to listen for cancelling.
	ctx, cancel := context.WithCancel(context.Background())

	// Configure channel to receive terminal interrupt.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	// Start goroutine to listen for interrupt signal => if received, cancel running context.
	go func() { <-sig; log.Info().Msg("shutting down simulator"); cancel() }()

	validateParams()
	setLogging(logLevel)
	metrics.AddGlobalTags([]string{
		fmt.Sprintf("producers:%d", numProducers),
		fmt.Sprintf("consumers:%d", numConsumers),
	})

	redisClient, redisErr := makeRedisClient(redisAddr)
	if redisErr != nil {
		log.Info().Msg("redis unreachable => delivered-payload sink disabled")
		redisClient = nil
	}

	driver := makeDriver(ctx, cancel, redisClient)
	driver.Run()
}
