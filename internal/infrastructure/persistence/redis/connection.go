package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yuzvak/eventsales-service/internal/config"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/monitoring"
)

const pingTimeout = 3 * time.Second

type Connection struct {
	client *redis.Client
}

func NewConnection(cfg config.RedisConfig) (*Connection, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 20,
	})
	monitoring.InstrumentRedisClient(client)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &Connection{
		client: client,
	}, nil
}

func NewConnectionFromClient(client *redis.Client) *Connection {
	return &Connection{client: client}
}

func (c *Connection) Close() error {
	return c.client.Close()
}

func (c *Connection) GetClient() *redis.Client {
	return c.client
}

func (c *Connection) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
