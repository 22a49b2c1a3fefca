package avatars

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/avatar-forge/internal/domain/avatar"
	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
)

const maxDeleteAttempts = 3

// Data is the stored form of a Record. Character holds the snapshot document.
type Data struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Character json.RawMessage `json:"character"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client       redis.UniversalClient
	TimeProvider TimeProvider
	// TTL applies to every key written. Zero keeps snapshots forever.
	TTL time.Duration
}

type redisRepo struct {
	client       redis.UniversalClient
	timeProvider TimeProvider
	ttl          time.Duration
}

// NewRedisRepository creates a new Redis-backed avatar repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil {
		panic("RedisRepoConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("redis client is required")
	}

	timeProvider := cfg.TimeProvider
	if timeProvider == nil {
		timeProvider = RealTimeProvider{}
	}

	return &redisRepo{
		client:       cfg.Client,
		timeProvider: timeProvider,
		ttl:          cfg.TTL,
	}
}

func avatarKey(id string) string {
	return fmt.Sprintf("avatar:%s", id)
}

func ownerAvatarsKey(ownerID string) string {
	return fmt.Sprintf("owner:%s:avatars", ownerID)
}

func ownerLatestKey(ownerID string) string {
	return fmt.Sprintf("owner:%s:latest", ownerID)
}

func (r *redisRepo) Save(ctx context.Context, record *Record) error {
	if err := validateRecord(record); err != nil {
		return err
	}

	now := r.timeProvider.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	jsonData, err := toData(record)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, avatarKey(record.ID), string(jsonData), r.ttl)
	pipe.SAdd(ctx, ownerAvatarsKey(record.OwnerID), record.ID)
	pipe.Set(ctx, ownerLatestKey(record.OwnerID), record.ID, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrapf(err, "failed to save avatar '%s'", record.ID)
	}

	return nil
}

func (r *redisRepo) Get(ctx context.Context, id string) (*Record, error) {
	jsonData, err := r.client.Get(ctx, avatarKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, notFound(id)
		}
		return nil, apperr.Wrapf(err, "failed to get avatar '%s'", id)
	}

	return fromData(jsonData)
}

func (r *redisRepo) GetLatestByOwner(ctx context.Context, ownerID string) (*Record, error) {
	id, err := r.client.Get(ctx, ownerLatestKey(ownerID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, noneForOwner(ownerID)
		}
		return nil, apperr.Wrapf(err, "failed to get latest avatar for owner '%s'", ownerID)
	}

	record, err := r.Get(ctx, id)
	if apperr.IsNotFound(err) {
		// Pointer outlived the record
		return nil, noneForOwner(ownerID)
	}
	return record, err
}

func (r *redisRepo) ListByOwner(ctx context.Context, ownerID string) ([]*Record, error) {
	ids, err := r.client.SMembers(ctx, ownerAvatarsKey(ownerID)).Result()
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to list avatars for owner '%s'", ownerID)
	}

	found := make([]*Record, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			record, err := r.Get(ctx, id)
			if apperr.IsNotFound(err) {
				// Expired records are skipped
				return nil
			}
			if err != nil {
				return err
			}
			found[i] = record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]*Record, 0, len(found))
	for _, record := range found {
		if record != nil {
			records = append(records, record)
		}
	}
	sortByRecency(records)
	return records, nil
}

func (r *redisRepo) Delete(ctx context.Context, id string) error {
	record, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	latestKey := ownerLatestKey(record.OwnerID)

	// A Save touching either watched key aborts the exec, so the latest pointer is
	// never left naming a deleted avatar
	txf := func(tx *redis.Tx) error {
		latest, err := tx.Get(ctx, latestKey).Result()
		if err != nil && err != redis.Nil {
			return apperr.Wrapf(err, "failed to read latest avatar for owner '%s'", record.OwnerID)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, avatarKey(id))
			pipe.SRem(ctx, ownerAvatarsKey(record.OwnerID), id)
			if latest == id {
				pipe.Del(ctx, latestKey)
			}
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxDeleteAttempts; attempt++ {
		err = r.client.Watch(ctx, txf, avatarKey(id), latestKey)
		if err != redis.TxFailedErr {
			break
		}
	}
	if err != nil {
		return apperr.Wrapf(err, "failed to delete avatar '%s'", id)
	}

	return nil
}

func toData(record *Record) ([]byte, error) {
	doc, err := avatar.MarshalDocument(record.Character)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to marshal avatar document")
	}

	jsonData, err := json.Marshal(Data{
		ID:        record.ID,
		OwnerID:   record.OwnerID,
		Character: doc,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	})
	if err != nil {
		return nil, apperr.Wrap(err, "failed to marshal avatar data")
	}
	return jsonData, nil
}

func fromData(jsonData []byte) (*Record, error) {
	var data Data
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, apperr.Wrap(err, "failed to unmarshal avatar data")
	}

	c, err := avatar.UnmarshalDocument(data.Character)
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to decode avatar '%s'", data.ID)
	}

	return &Record{
		ID:        data.ID,
		OwnerID:   data.OwnerID,
		Character: c,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}, nil
}
