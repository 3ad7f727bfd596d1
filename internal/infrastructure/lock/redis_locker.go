package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

const renewScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`

// RedisLocker exclusión por número de factura entre réplicas (SET NX PX + liberación con token).
// Mientras el lock está tomado un watchdog renueva el TTL cada ttl/3.
type RedisLocker struct {
	client  *redis.Client
	release *redis.Script
	renew   *redis.Script
	ttl     time.Duration
	retry   time.Duration
	prefix  string
	log     zerolog.Logger
}

// NewRedisLocker ttl acota cuánto sobrevive un lock si el proceso muere sin liberarlo.
func NewRedisLocker(client *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisLocker {
	return &RedisLocker{
		client:  client,
		release: redis.NewScript(releaseScript),
		renew:   redis.NewScript(renewScript),
		ttl:     ttl,
		retry:   25 * time.Millisecond,
		prefix:  "gst-billing:lock:",
		log:     log,
	}
}

// Lock reintenta hasta adquirir el lock o hasta que ctx expire.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	if key == "" {
		return nil, errors.New("lock: clave vacía")
	}
	full := l.prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, full, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lock %s: %w", key, ctx.Err())
		case <-ticker.C:
		}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.watchdog(key, full, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// contexto propio: la liberación debe ocurrir aunque la petición ya se haya cancelado
			rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := l.release.Run(rctx, l.client, []string{full}, token).Err(); err != nil {
				l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el lock; expirará por TTL")
			}
		})
	}, nil
}

// watchdog extiende el TTL mientras el token siga siendo el dueño de la clave.
// Termina al cerrar stop o cuando la clave ya pertenece a otro.
func (l *RedisLocker) watchdog(key, full, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	interval := l.ttl / 3
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			rctx, cancel := context.WithTimeout(context.Background(), interval)
			n, err := l.renew.Run(rctx, l.client, []string{full}, token, l.ttl.Milliseconds()).Int()
			cancel()
			if err != nil {
				l.log.Warn().Err(err).Str("key", key).Msg("no se pudo renovar el lock")
				continue
			}
			if n == 0 {
				l.log.Warn().Str("key", key).Msg("lock perdido antes de liberarlo")
				return
			}
		}
	}
}
