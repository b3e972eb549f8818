package database

import (
	"context"
	"fmt"
	"time"

	tx "github.com/Thiht/transactor/pgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cfg "github.com/rupeex/usdt-inr-exchange/backend/config"
)

// Postgres bundles the connection pool with the transactor used to scope
// multi-statement writes.
type Postgres struct {
	Pool       *pgxpool.Pool
	Transactor *tx.Transactor
	DBGetter   tx.DBGetter
}

type Option func(*settings)

type settings struct {
	maxPoolSize       int32
	connTimeout       time.Duration
	healthCheckPeriod time.Duration
	isolation         pgx.TxIsoLevel
}

func MaxPoolSize(size int32) Option {
	return func(s *settings) {
		s.maxPoolSize = size
	}
}

func ConnTimeout(seconds int) Option {
	return func(s *settings) {
		s.connTimeout = time.Duration(seconds) * time.Second
	}
}

func HealthCheckPeriod(minutes int) Option {
	return func(s *settings) {
		s.healthCheckPeriod = time.Duration(minutes) * time.Minute
	}
}

func Isolation(level pgx.TxIsoLevel) Option {
	return func(s *settings) {
		s.isolation = level
	}
}

// New connects the pool and wires the transactor around it.
func New(config *cfg.Config, opts ...Option) (*Postgres, error) {
	s := &settings{
		maxPoolSize:       10,
		connTimeout:       5 * time.Second,
		healthCheckPeriod: time.Minute,
		isolation:         pgx.ReadCommitted,
	}
	for _, opt := range opts {
		opt(s)
	}

	poolConfig, err := pgxpool.ParseConfig(config.DB.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	poolConfig.MaxConns = s.maxPoolSize
	poolConfig.ConnConfig.ConnectTimeout = s.connTimeout
	poolConfig.HealthCheckPeriod = s.healthCheckPeriod
	poolConfig.ConnConfig.RuntimeParams["default_transaction_isolation"] = string(s.isolation)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.connTimeout)
	defer cancel()

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	transactor, dbGetter := tx.NewTransactorFromPool(pool)

	return &Postgres{
		Pool:       pool,
		Transactor: transactor,
		DBGetter:   dbGetter,
	}, nil
}

func (p *Postgres) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}
