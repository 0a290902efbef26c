package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ryavnn/Employee-Management-system/internal/errors"
	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

// RedisStore keeps credentials in Redis so they survive gateway restarts
// and can be shared between gateway replicas.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed credential store. Entries expire
// after ttl; a ttl of zero keeps them until cleared.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "credentials:",
		ttl:    ttl,
	}
}

func (r *RedisStore) key(clientID, name string) string {
	return r.prefix + entryKey(clientID, name)
}

func (r *RedisStore) Get(ctx context.Context, clientID string) (Credential, error) {
	if clientID == "" {
		return Credential{}, fmt.Errorf("[RedisStore Get] %w", errors.ErrInvalidClientID)
	}

	vals, err := r.client.MGet(ctx, r.key(clientID, TokenKey), r.key(clientID, UserKey)).Result()
	if err != nil {
		return Credential{}, fmt.Errorf("[RedisStore Get] %w", err)
	}

	token, _ := vals[0].(string)
	if token == "" {
		return Credential{}, errors.ErrNoCredential
	}

	cred := Credential{Token: token}
	if raw, ok := vals[1].(string); ok && raw != "" {
		var cached Credential
		if err := json.Unmarshal([]byte(raw), &cached); err != nil {
			return Credential{}, fmt.Errorf("[RedisStore Get] failed to unmarshal identity: %w", err)
		}
		cred.Identity = cached.Identity
		cred.StoredAt = cached.StoredAt
	}
	return cred, nil
}

func (r *RedisStore) Set(ctx context.Context, clientID string, cred Credential) error {
	if clientID == "" {
		return fmt.Errorf("[RedisStore Set] %w", errors.ErrInvalidClientID)
	}
	if cred.Token == "" {
		return fmt.Errorf("[RedisStore Set] token is required")
	}
	if cred.StoredAt.IsZero() {
		cred.StoredAt = time.Now()
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("[RedisStore Set] failed to marshal: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(clientID, TokenKey), cred.Token, r.ttl)
	pipe.Set(ctx, r.key(clientID, UserKey), data, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("[RedisStore Set] %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, clientID string) error {
	if clientID == "" {
		return fmt.Errorf("[RedisStore Clear] %w", errors.ErrInvalidClientID)
	}
	if err := r.client.Del(ctx, r.key(clientID, TokenKey), r.key(clientID, UserKey)).Err(); err != nil {
		return fmt.Errorf("[RedisStore Clear] %w", err)
	}
	return nil
}

// Ping checks the Redis connection, bounded by a short timeout
func Ping(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err()
}
