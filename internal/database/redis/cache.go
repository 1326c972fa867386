package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ds124wfegd/voucher-reminder/internal/database"
	"github.com/ds124wfegd/voucher-reminder/internal/entity"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Lookups that miss in the store are not cached: a buyer created after a
// failed sweep must be found by the next one.

type cachedUserRepository struct {
	next   database.UserRepository
	client *redis.Client
	ttl    time.Duration
}

// NewCachedUserRepository puts a read-through Redis cache in front of a user repository.
func NewCachedUserRepository(next database.UserRepository, client *redis.Client, ttl time.Duration) database.UserRepository {
	return &cachedUserRepository{next: next, client: client, ttl: ttl}
}

func (r *cachedUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	key := "user:" + id

	var user entity.User
	if getJSON(ctx, r.client, key, &user) {
		return &user, nil
	}

	found, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	setJSON(ctx, r.client, key, found, r.ttl)
	return found, nil
}

type cachedEstablishmentRepository struct {
	next   database.EstablishmentRepository
	client *redis.Client
	ttl    time.Duration
}

// NewCachedEstablishmentRepository puts a read-through Redis cache in front of an establishment repository.
func NewCachedEstablishmentRepository(next database.EstablishmentRepository, client *redis.Client, ttl time.Duration) database.EstablishmentRepository {
	return &cachedEstablishmentRepository{next: next, client: client, ttl: ttl}
}

func (r *cachedEstablishmentRepository) GetByID(ctx context.Context, id string) (*entity.Establishment, error) {
	return r.get(ctx, "establishment:"+id, func() (*entity.Establishment, error) {
		return r.next.GetByID(ctx, id)
	})
}

func (r *cachedEstablishmentRepository) GetByOwner(ctx context.Context, userID string) (*entity.Establishment, error) {
	return r.get(ctx, "establishment:owner:"+userID, func() (*entity.Establishment, error) {
		return r.next.GetByOwner(ctx, userID)
	})
}

func (r *cachedEstablishmentRepository) get(ctx context.Context, key string, load func() (*entity.Establishment, error)) (*entity.Establishment, error) {
	var e entity.Establishment
	if getJSON(ctx, r.client, key, &e) {
		return &e, nil
	}

	found, err := load()
	if err != nil {
		return nil, err
	}

	setJSON(ctx, r.client, key, found, r.ttl)
	return found, nil
}

// getJSON reports a hit only when the key exists and decodes; cache errors
// degrade to a miss so the store stays authoritative.
func getJSON(ctx context.Context, client *redis.Client, key string, dst any) bool {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logrus.WithError(err).WithField("key", key).Warn("Lookup cache read failed")
		}
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Lookup cache entry is corrupt")
		return false
	}
	return true
}

func setJSON(ctx context.Context, client *redis.Client, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := client.Set(ctx, key, data, ttl).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Lookup cache write failed")
	}
}
