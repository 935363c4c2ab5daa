// Package idempotency deduplicates Telegram update deliveries. Telegram
// re-sends callbacks and messages on timeout; a double-tap on Save must not
// run the link confirmation twice.
package idempotency

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var (
	// ErrInProgress marks an update whose first delivery is still being
	// handled.
	ErrInProgress = errors.New("update with this key is already in progress")

	// ErrDuplicate marks an update that has already been fully handled.
	ErrDuplicate = errors.New("update with this key was already handled")
)

// Operation is the guarded handler body.
type Operation func(ctx context.Context) error

// Manager executes an operation at most once per key. Flow handlers report
// their outcome by editing the chat message, so there is no response to
// cache; only completion is recorded.
type Manager interface {
	Execute(ctx context.Context, key string, ttl time.Duration, fn Operation) error
}

type manager struct {
	store   Store
	lockTTL time.Duration
	log     *slog.Logger
}

// NewManager builds a Manager over the given store.
func NewManager(store Store, log *slog.Logger) Manager {
	if log == nil {
		log = slog.Default()
	}

	return &manager{
		store:   store,
		lockTTL: 5 * time.Minute,
		log:     log,
	}
}

func (m *manager) Execute(ctx context.Context, key string, ttl time.Duration, fn Operation) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if fn == nil {
		return errors.New("operation fn cannot be nil")
	}

	done, err := m.store.Done(ctx, key)
	if err != nil {
		return err
	}
	if done {
		return ErrDuplicate
	}

	locked, err := m.store.Lock(ctx, key, m.lockTTL)
	if err != nil {
		return err
	}
	if !locked {
		return ErrInProgress
	}

	defer func() {
		if err := m.store.ReleaseLock(ctx, key); err != nil {
			m.log.Warn("failed to release idempotency lock", slog.String("key", key), slog.Any("error", err))
		}
	}()

	// A failed handler leaves no completion mark: a Telegram redelivery
	// gets one more chance to succeed.
	if err := fn(ctx); err != nil {
		return err
	}

	return m.store.MarkDone(ctx, key, ttl)
}
