package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/awantoch/geminiproxy/config"
	"github.com/awantoch/geminiproxy/constants"
	"github.com/awantoch/geminiproxy/event"
	"github.com/awantoch/geminiproxy/model"
)

// Storage keeps one record per proxied exchange. It satisfies proxy.Recorder.
type Storage interface {
	Record(ctx context.Context, ex *model.Exchange) error
	// List returns up to limit exchanges, newest first.
	List(ctx context.Context, limit int) ([]*model.Exchange, error)
	Close() error
}

// ErrListUnsupported is returned by write-only backends.
var ErrListUnsupported = errors.New("storage backend does not support listing")

// NewStorageFromConfig builds the configured backend. The "none" driver
// returns a nil Storage and no error. bus is only used by the "bus" driver.
func NewStorageFromConfig(ctx context.Context, cfg *config.AuditConfig, bus event.EventBus) (Storage, error) {
	if cfg == nil {
		return nil, nil
	}
	switch strings.ToLower(cfg.Driver) {
	case "", constants.AuditDriverNone:
		return nil, nil
	case constants.AuditDriverMemory:
		return NewMemoryStorage(), nil
	case constants.AuditDriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = config.DefaultAuditSQLiteDSN
		}
		s, err := NewSqliteStorage(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case constants.AuditDriverPostgres:
		s, err := NewPostgresStorage(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case constants.AuditDriverBus:
		if bus == nil {
			return nil, fmt.Errorf("bus audit driver requires an event bus")
		}
		topic := cfg.Topic
		if topic == "" {
			topic = constants.DefaultAuditTopic
		}
		return NewBusStorage(bus, topic), nil
	default:
		return nil, fmt.Errorf("unsupported audit driver: %s", cfg.Driver)
	}
}
