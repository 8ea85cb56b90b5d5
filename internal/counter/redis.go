package counter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript advances the counter only while it is under the limit and
// stamps the window TTL on first use. Running it server-side keeps the
// check-and-increment atomic without a WATCH loop.
var incrScript = redis.NewScript(`
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[2])
if limit > 0 and count >= limit then
	return {count, 0}
end
count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {count, 1}
`)

// Redis is a shared fast-tier counter store. Window expiry rides on key
// TTL rather than stored timestamps, so WindowStart is reconstructed
// from the remaining TTL.
type Redis struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedis creates a counter store from a Redis URL.
func NewRedis(url string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Redis{client: redis.NewClient(opt), now: time.Now}, nil
}

// NewRedisClient wraps an existing client, letting tests inject one.
func NewRedisClient(client *redis.Client) *Redis {
	return &Redis{client: client, now: time.Now}
}

func (r *Redis) Increment(ctx context.Context, purpose, identifier string, window time.Duration, limit int) (Record, bool, error) {
	key := Key(purpose, identifier)

	vals, err := incrScript.Run(ctx, r.client, []string{key}, window.Milliseconds(), limit).Int64Slice()
	if err != nil {
		return Record{}, false, fmt.Errorf("redis counter %q: %w", key, err)
	}
	if len(vals) != 2 {
		return Record{}, false, fmt.Errorf("redis counter %q: unexpected script reply", key)
	}

	windowStart := r.now()
	if ttl, err := r.client.PTTL(ctx, key).Result(); err == nil && ttl > 0 {
		windowStart = r.now().Add(ttl - window)
	}

	return Record{Count: int(vals[0]), WindowStart: windowStart}, vals[1] == 1, nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error { return r.client.Close() }
