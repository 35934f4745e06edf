package utils

import (
	"context"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Mongo         bool      `json:"mongo"`
	Redis         bool      `json:"redis"`
	Elasticsearch bool      `json:"elasticsearch"`
	CheckedAt     time.Time `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	healthMu      sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

// StartHealthMonitor performs periodic health checks and updates in-memory state.
func StartHealthMonitor(redisClient *redis.Client, mongoClient *mongo.Client, esClient *elasticsearch.Client) {
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()

		ctx := context.Background()

		for range ticker.C {
			redisHealthy := redisClient.Ping(ctx).Err() == nil
			mongoHealthy := mongoClient.Ping(ctx, nil) == nil

			esHealthy := false
			if res, err := esClient.Ping(); err == nil {
				esHealthy = !res.IsError()
				res.Body.Close()
			}

			healthMu.Lock()
			currentHealth = HealthStatus{
				Mongo:         mongoHealthy,
				Redis:         redisHealthy,
				Elasticsearch: esHealthy,
				CheckedAt:     time.Now(),
			}
			healthMu.Unlock()
		}
	}()
}
