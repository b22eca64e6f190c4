package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "github.com/snowflakedb/gosnowflake"

	"github.com/Cyndi121404/Henhacks2026/config"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
)

// ConnectionError means none of the configured account identifier spellings
// produced a working warehouse session.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("warehouse connect: no account format accepted: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Provider resolves a working warehouse connection by walking the configured
// account identifier spellings in order. The first spelling that
// authenticates is cached together with its connection pool, so later
// acquisitions are a map lookup, not a dial.
type Provider struct {
	cfg    config.WarehouseConfig
	logger *logrus.Logger
	open   func(dsn string) (*sql.DB, error)

	mu      sync.Mutex
	db      *sql.DB
	account string
}

func NewProvider(cfg config.WarehouseConfig, logger *logrus.Logger) *Provider {
	return &Provider{
		cfg:    cfg,
		logger: logger,
		open: func(dsn string) (*sql.DB, error) {
			return sql.Open("snowflake", dsn)
		},
	}
}

// Acquire returns the shared connection pool, dialing through the account
// candidates on first use. Each candidate gets one ping bounded by the login
// timeout; if all fail the last failure is wrapped in a ConnectionError.
func (p *Provider) Acquire(ctx context.Context) (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db != nil {
		return p.db, nil
	}

	var lastErr error
	for _, account := range p.cfg.AccountFormats {
		db, err := p.open(p.cfg.DSN(account))
		if err != nil {
			lastErr = err
			continue
		}

		pingCtx, cancel := context.WithTimeout(ctx, p.cfg.LoginTimeout)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			_ = db.Close()
			lastErr = err
			p.logger.WithError(err).WithField("account", account).Debug("account format rejected")
			continue
		}

		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxIdleConns)
		db.SetConnMaxLifetime(connMaxLifetime)

		p.db = db
		p.account = account
		p.logger.WithField("account", account).Info("warehouse connected")
		return db, nil
	}

	return nil, &ConnectionError{Err: lastErr}
}

// Account reports which identifier spelling authenticated, or "" before the
// first successful Acquire.
func (p *Provider) Account() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.account
}

func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	p.account = ""
	return err
}
