package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL           = 10 * time.Second
	DefaultMaxWait       = 5 * time.Second
	DefaultRetryInterval = 50 * time.Millisecond

	keyPrefix = "appointment-agent:lock:"
)

// releaseScript удаляет ключ, только если он все еще принадлежит владельцу
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker распределенная блокировка на SET NX PX
// Используется, когда сервис запущен в нескольких экземплярах
type RedisLocker struct {
	client        redis.UniversalClient
	ttl           time.Duration
	maxWait       time.Duration
	retryInterval time.Duration
	logger        Logger
}

// NewRedisLocker создает блокировщик; нулевые длительности заменяются значениями по умолчанию
func NewRedisLocker(client redis.UniversalClient, ttl, maxWait time.Duration, logger Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	return &RedisLocker{
		client:        client,
		ttl:           ttl,
		maxWait:       maxWait,
		retryInterval: DefaultRetryInterval,
		logger:        logger,
	}
}

// Lock берет блокировку key, ожидая не дольше maxWait
// Возвращаемая функция освобождает блокировку и безопасна для повторного вызова
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(waitCtx, redisKey, token, l.ttl).Result()
		if err != nil && waitCtx.Err() == nil {
			return nil, fmt.Errorf("%w: SetNX %s: %w", ErrLockBackend, redisKey, err)
		}
		if ok {
			return l.unlocker(redisKey, token), nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: key=%s", ErrLockTimeout, key)
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) unlocker(redisKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
				l.logger.Warn("RedisLocker: failed to release %s: %v", redisKey, err)
			}
		})
	}
}
