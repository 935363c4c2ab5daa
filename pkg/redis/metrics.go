package redis

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	goredis "github.com/redis/go-redis/v9"
)

var (
	redisRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_requests_total",
			Help: "Total number of Redis commands by name.",
		},
		[]string{"command"},
	)
	redisErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_errors_total",
			Help: "Total number of Redis command errors by name.",
		},
		[]string{"command"},
	)
	redisRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_request_duration_seconds",
			Help:    "Redis command latency distributions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
)

// metricsHook instruments every command on the client, including commands
// issued by packages that hold the raw go-redis client.
type metricsHook struct{}

func (metricsHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (metricsHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		record(cmd.Name(), time.Since(start), err)
		return err
	}
}

func (metricsHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		duration := time.Since(start)
		for _, cmd := range cmds {
			record(cmd.Name(), duration, err)
		}
		return err
	}
}

func record(command string, duration time.Duration, err error) {
	if command == "" {
		command = "unknown"
	}

	redisRequestsTotal.WithLabelValues(command).Inc()
	redisRequestDuration.WithLabelValues(command).Observe(duration.Seconds())

	// A key miss is a normal outcome, not an error.
	if err != nil && !errors.Is(err, goredis.Nil) {
		redisErrorsTotal.WithLabelValues(command).Inc()
	}
}
