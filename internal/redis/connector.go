package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sekawan-grup/raya/internal/logger"
)

// ErrDisabled is returned when no Redis address is configured. Callers fall
// back to the in-memory catalog cache and revocation list.
var ErrDisabled = errors.New("redis disabled: no address configured")

// ConnectOptions holds the client settings and the startup retry policy.
type ConnectOptions struct {
	Addr           string        // ex: "localhost:6379"
	User           string        // optional ACL user
	Password       string        // optional
	RedisDB        int           // logical database
	DialTimeout    time.Duration // per connection
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	PoolSize       int
	ConnectTimeout time.Duration // budget for the whole startup (ex: 30s)
	RetryInterval  time.Duration // first wait between pings, doubles each attempt
	MaxWait        time.Duration // cap for the doubling
	PingTimeout    time.Duration // per ping
	WarnThreshold  int           // attempts logged as warnings before switching to errors
}

// validate reports every invalid retry setting at once.
func validate(opts ConnectOptions) error {
	var errs []error
	positive := []struct {
		name  string
		value time.Duration
	}{
		{"ConnectTimeout", opts.ConnectTimeout},
		{"RetryInterval", opts.RetryInterval},
		{"MaxWait", opts.MaxWait},
		{"PingTimeout", opts.PingTimeout},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0, got %v", p.name, p.value))
		}
	}
	if opts.WarnThreshold < 0 {
		errs = append(errs, fmt.Errorf("WarnThreshold must be >= 0, got %d", opts.WarnThreshold))
	}
	return errors.Join(errs...)
}

// backoff doubles the wait up to max.
type backoff struct {
	wait time.Duration
	max  time.Duration
}

func (b *backoff) next() time.Duration {
	w := b.wait
	b.wait = min(b.wait*2, b.max)
	return w
}

// New creates a Redis client and pings it until it answers or ConnectTimeout
// (or ctx) runs out. An empty Addr returns ErrDisabled.
func New(ctx context.Context, opts ConnectOptions, log logger.Logger) (*redis.Client, error) {
	if opts.Addr == "" {
		return nil, ErrDisabled
	}
	if err := validate(opts); err != nil {
		return nil, fmt.Errorf("invalid redis options: %w", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.User,
		Password:     opts.Password,
		DB:           opts.RedisDB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
	})

	if err := waitReady(ctx, client, opts, log.Named("redis")); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// waitReady pings until success, backing off between attempts.
func waitReady(parent context.Context, client *redis.Client, opts ConnectOptions, log logger.Logger) error {
	ctx, cancel := context.WithTimeout(parent, opts.ConnectTimeout)
	defer cancel()

	addr := logger.String("addr", opts.Addr)
	log.Info("connecting to redis", addr, logger.Duration("timeout", opts.ConnectTimeout))

	started := time.Now()
	b := &backoff{wait: opts.RetryInterval, max: opts.MaxWait}

	for attempt := 1; ; attempt++ {
		pingCtx, pingCancel := context.WithTimeout(ctx, opts.PingTimeout)
		err := client.Ping(pingCtx).Err()
		pingCancel()

		if err == nil {
			if attempt > 1 {
				log.Warn("connected to redis after retry", addr,
					logger.Int("attempts", attempt),
					logger.Duration("elapsed", time.Since(started)))
			} else {
				log.Info("connected to redis", addr)
			}
			return nil
		}

		wait := b.next()
		fields := []logger.Field{addr, logger.Int("attempt", attempt), logger.Duration("next_retry_in", wait), logger.Error(err)}
		if attempt <= opts.WarnThreshold {
			log.Warn("redis connection failed, retrying", fields...)
		} else {
			log.Error("redis still unavailable, retrying", fields...)
		}

		select {
		case <-ctx.Done():
			log.Error("giving up on redis", addr, logger.Int("attempts", attempt), logger.Error(err))
			return fmt.Errorf("redis unavailable at %s after %d attempts (timeout: %v): %w",
				opts.Addr, attempt, opts.ConnectTimeout, err)
		case <-time.After(wait):
		}
	}
}
