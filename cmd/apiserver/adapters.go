package main

import (
	"context"

	redisinfra "github.com/turtacn/mhtech-dashboard/internal/infrastructure/database/redis"
	kafkainfra "github.com/turtacn/mhtech-dashboard/internal/infrastructure/messaging/kafka"
	minioinfra "github.com/turtacn/mhtech-dashboard/internal/infrastructure/storage/minio"
	"github.com/turtacn/mhtech-dashboard/internal/interfaces/http/handlers"
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

// Adapters for HealthHandler.

func redisHealthChecker(cache redisinfra.Cache) handlers.HealthChecker {
	return handlers.CheckerFunc{ComponentName: "redis", Fn: cache.Ping}
}

func minioHealthChecker(client *minioinfra.MinIOClient) handlers.HealthChecker {
	return handlers.CheckerFunc{ComponentName: "minio", Fn: func(ctx context.Context) error {
		_, err := client.HealthCheck(ctx)
		return err
	}}
}

// kafkaHealthChecker fails once more writes have failed than succeeded.
func kafkaHealthChecker(p *kafkainfra.Producer) handlers.HealthChecker {
	return handlers.CheckerFunc{ComponentName: "kafka", Fn: func(context.Context) error {
		m := p.GetMetrics()
		if failed, sent := m.MessagesFailed.Load(), m.MessagesSent.Load(); failed > sent {
			return errors.New(errors.ErrCodeExternalService, "kafka publishes failing")
		}
		return nil
	}}
}
