package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/reseller-ops-api/internal/domains/quotes/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/quotes/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

const keyPrefix = "quotes:session:"

// SessionStore keeps quotes in Redis as JSON. Each save resets the key's TTL.
type SessionStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *goredis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func (s *SessionStore) Save(ctx context.Context, quote *domain.Quote) error {
	if quote == nil {
		return errors.New("quote is nil")
	}
	payload, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("encode quote: %w", err)
	}
	return s.rdb.Set(ctx, keyPrefix+quote.ID, payload, s.ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Quote, error) {
	payload, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ports.ErrQuoteNotFound
	}
	if err != nil {
		return nil, err
	}
	var quote domain.Quote
	if err := json.Unmarshal(payload, &quote); err != nil {
		return nil, fmt.Errorf("decode quote %s: %w", id, err)
	}
	return &quote, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	removed, err := s.rdb.Del(ctx, keyPrefix+id).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return ports.ErrQuoteNotFound
	}
	return nil
}
