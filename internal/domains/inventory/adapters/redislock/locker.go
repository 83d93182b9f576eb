package redislock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
)

var _ ports.ProductLocker = (*ProductLocker)(nil)

const (
	defaultTTL     = 30 * time.Second
	defaultBackoff = 50 * time.Millisecond
	defaultRetries = 200
	keyPrefix      = "reseller-ops:lock:"
)

// ErrLockNotObtained is returned when a lock stays held past the retry budget.
var ErrLockNotObtained = errors.New("lock not obtained")

// ProductLocker serializes sales and quote edits across API replicas with a Redis lock.
type ProductLocker struct {
	client  *redislock.Client
	ttl     time.Duration
	backoff time.Duration
	retries int
	logger  *slog.Logger
}

type Option func(*ProductLocker)

// WithTTL bounds how long a crashed holder can block a lock.
func WithTTL(ttl time.Duration) Option {
	return func(l *ProductLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

func WithRetry(backoff time.Duration, retries int) Option {
	return func(l *ProductLocker) {
		if backoff > 0 {
			l.backoff = backoff
		}
		if retries >= 0 {
			l.retries = retries
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *ProductLocker) { l.logger = logger }
}

func NewProductLocker(rdb *goredis.Client, opts ...Option) *ProductLocker {
	l := &ProductLocker{
		client:  redislock.New(rdb),
		ttl:     defaultTTL,
		backoff: defaultBackoff,
		retries: defaultRetries,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

func (l *ProductLocker) Lock(ctx context.Context, name string) (func(), error) {
	lock, err := l.client.Obtain(ctx, keyPrefix+name, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.backoff), l.retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", ErrLockNotObtained, name)
	}
	if err != nil {
		return nil, err
	}
	return func() {
		// Release must not be cancelled by the request context.
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) && l.logger != nil {
			l.logger.Warn("failed to release lock", slog.String("lock", name), slog.String("error", err.Error()))
		}
	}, nil
}
