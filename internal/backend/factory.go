package backend

import (
	"context"
	"errors"
	"fmt"

	"bookkeeping/internal/amqp"
	applog "bookkeeping/internal/log"
	"bookkeeping/internal/store"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger

	// dialAMQP is replaced in tests.
	dialAMQP func(url, exchange, queue string) (*amqp.Client, error)
}

var _ Factory = (*DefaultFactory)(nil)

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) *DefaultFactory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{
		logger:   logger.WithComponent(applog.ComponentBackend),
		dialAMQP: amqp.NewClient,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	key := config.StorageKey
	if key == "" {
		key = store.DefaultKey
	}

	var (
		s       store.Store
		cleanup []func() error
	)
	switch config.Type {
	case SQLiteBackend:
		db, err := store.NewSQLite(config.SQLiteDBPath, key, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		s = db
		cleanup = append(cleanup, db.Close)
		f.logger.InfoContext(ctx, "Initialized SQLite backend",
			"db_path", config.SQLiteDBPath,
			applog.FieldStorageKey, key)
	case MemoryBackend:
		s = store.NewMemory()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	result := &BackendResult{Store: s}

	// Events are optional; a broker outage must not keep the ledger down.
	if config.AMQPURL != "" {
		client, err := f.dialAMQP(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events",
				applog.FieldError, err.Error())
		} else {
			result.Publisher = client
			cleanup = append(cleanup, client.Close)
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	result.Cleanup = func() error {
		var errs []error
		for i := len(cleanup) - 1; i >= 0; i-- {
			if err := cleanup[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return result, nil
}
