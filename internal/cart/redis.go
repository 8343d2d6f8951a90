package cart

import (
	"context"
	"strconv"
	"time"

	"gamevault/backend/internal/logging"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// RedisStore keeps each session in two keys: a hash for the cart and a
// sorted set, scored by insertion time, for favorites. Both expire after the
// session TTL and every write refreshes them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

// NewRedisClient connects to redis and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "ping redis at %s", addr)
	}

	logging.Log.WithField("addr", addr).Info("Redis connection established.")
	return client, nil
}

func cartKey(sessionID string) string {
	return "session:" + sessionID + ":cart"
}

func favoritesKey(sessionID string) string {
	return "session:" + sessionID + ":favorites"
}

func member(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse game id %q", s)
	}
	return uint(id), nil
}

func (r *RedisStore) Cart(ctx context.Context, sessionID string) (map[uint]int, error) {
	fields, err := r.client.HGetAll(ctx, cartKey(sessionID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "read cart")
	}

	cart := make(map[uint]int, len(fields))
	for field, value := range fields {
		id, err := parseID(field)
		if err != nil {
			return nil, err
		}
		qty, err := strconv.Atoi(value)
		if err != nil {
			return nil, errors.Wrapf(err, "parse quantity for game %d", id)
		}
		cart[id] = qty
	}
	return cart, nil
}

func (r *RedisStore) MergeCart(ctx context.Context, sessionID string, gameIDs ...uint) error {
	key := cartKey(sessionID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range gameIDs {
			pipe.HSetNX(ctx, key, member(id), 1)
		}
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	return errors.Wrap(err, "merge cart")
}

func (r *RedisStore) RemoveFromCart(ctx context.Context, sessionID string, gameID uint) error {
	return errors.Wrap(r.client.HDel(ctx, cartKey(sessionID), member(gameID)).Err(), "remove from cart")
}

func (r *RedisStore) ClearCart(ctx context.Context, sessionID string) error {
	return errors.Wrap(r.client.Del(ctx, cartKey(sessionID)).Err(), "clear cart")
}

func (r *RedisStore) Favorites(ctx context.Context, sessionID string) ([]uint, error) {
	members, err := r.client.ZRange(ctx, favoritesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "read favorites")
	}

	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := parseID(m)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *RedisStore) AddFavorite(ctx context.Context, sessionID string, gameID uint) error {
	key := favoritesKey(sessionID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAddNX(ctx, key, &redis.Z{
			Score:  float64(r.now().UnixMicro()),
			Member: member(gameID),
		})
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	return errors.Wrap(err, "add favorite")
}

func (r *RedisStore) RemoveFavorite(ctx context.Context, sessionID string, gameID uint) error {
	return errors.Wrap(r.client.ZRem(ctx, favoritesKey(sessionID), member(gameID)).Err(), "remove favorite")
}
