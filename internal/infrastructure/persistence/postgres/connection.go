package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	_ "github.com/lib/pq"

	"github.com/yuzvak/eventsales-service/internal/config"
	domainErrors "github.com/yuzvak/eventsales-service/internal/domain/errors"
)

const pingTimeout = 5 * time.Second

type Connection struct {
	db     *sql.DB
	driver string
}

// NewConnection opens the pool with the configured driver: "postgres" is
// lib/pq, "pgx" is pgx's database/sql adapter. Both speak the same DSN.
func NewConnection(cfg config.DatabaseConfig) (*Connection, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverPQ
	}

	db, err := sql.Open(driver, cfg.GetDSN())
	if err != nil {
		return nil, domainErrors.NewStorageError("open", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, domainErrors.NewStorageError("ping", fmt.Errorf("%s driver: %w", driver, err))
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = maxOpen
	}
	lifetime := cfg.ConnMaxLifetime.Duration
	if lifetime <= 0 {
		lifetime = time.Hour
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(lifetime)
	db.SetConnMaxIdleTime(30 * time.Minute)

	return &Connection{db: db, driver: driver}, nil
}

func NewConnectionFromDB(db *sql.DB) *Connection {
	return &Connection{db: db}
}

func (c *Connection) Close() error {
	return c.db.Close()
}

func (c *Connection) GetDB() *sql.DB {
	return c.db
}

func (c *Connection) Driver() string {
	return c.driver
}

// Ping backs the readiness check.
func (c *Connection) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return domainErrors.NewStorageError("ping", err)
	}
	return nil
}
