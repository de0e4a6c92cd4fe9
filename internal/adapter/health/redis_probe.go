package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thushan/redis-watcher/internal/core/domain"
)

const (
	DefaultConnectTimeout = 3 * time.Second

	pingReply = "PONG"
)

type RedisProbeConfig struct {
	Host           string
	Username       string
	Password       string
	Port           int
	ConnectTimeout time.Duration
	Auth           bool
}

// RedisProbe checks the store the same way a client would: dial, AUTH when
// configured, then PING. Every probe uses a fresh connection which is closed
// afterwards and nothing is retried.
type RedisProbe struct {
	addr     string
	username string
	password string
	timeout  time.Duration
	auth     bool
}

func NewRedisProbe(cfg RedisProbeConfig) *RedisProbe {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	return &RedisProbe{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		username: cfg.Username,
		password: cfg.Password,
		auth:     cfg.Auth,
		timeout:  timeout,
	}
}

func (p *RedisProbe) Target() string {
	return p.addr
}

// Probe performs a single connectivity check
func (p *RedisProbe) Probe(ctx context.Context) domain.HealthCheckResult {
	start := time.Now()

	client := redis.NewClient(&redis.Options{
		Addr:         p.addr,
		Protocol:     2,
		DialTimeout:  p.timeout,
		ReadTimeout:  p.timeout,
		WriteTimeout: p.timeout,
		PoolSize:     1,
		MaxRetries:   -1,
		// no CLIENT SETINFO, the conversation stays AUTH then PING
		DisableIndentity: true,
	})
	defer func() {
		_ = client.Close()
	}()

	// a sticky connection keeps AUTH and PING on the same socket
	conn := client.Conn()
	defer func() {
		_ = conn.Close()
	}()

	if p.auth {
		var err error
		if p.username != "" {
			err = conn.AuthACL(ctx, p.username, p.password).Err()
		} else {
			err = conn.Auth(ctx, p.password).Err()
		}
		if err != nil {
			return p.failed("AUTH", err, start)
		}
	}

	reply, err := conn.Ping(ctx).Result()
	if err != nil {
		return p.failed("PING", err, start)
	}
	if reply != pingReply {
		return p.failed("PING", fmt.Errorf("%w: %q", domain.ErrUnexpectedReply, reply), start)
	}

	return domain.NewHealthyResult(time.Since(start))
}

func (p *RedisProbe) failed(command string, err error, start time.Time) domain.HealthCheckResult {
	latency := time.Since(start)
	status := classifyProbeError(err)
	if status == domain.ProbeUnreachable {
		// the dial happens lazily on the first command
		command = "CONNECT"
	}

	probeErr := &domain.ProbeError{Target: p.addr, Command: command, Err: err}
	if status == domain.ProbeUnreachable {
		return domain.NewUnreachableResult(probeErr, latency)
	}
	return domain.NewProtocolErrorResult(probeErr, latency)
}

// classifyProbeError separates transport failures (nothing answered) from
// failures of the conversation itself (something answered, wrongly)
func classifyProbeError(err error) domain.ProbeStatus {
	var replyErr redis.Error
	if errors.As(err, &replyErr) {
		return domain.ProbeProtocolError
	}

	if errors.Is(err, domain.ErrUnexpectedReply) {
		return domain.ProbeProtocolError
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.ProbeUnreachable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.ProbeUnreachable
	}

	// EOF and friends mean the peer accepted the connection then hung up
	return domain.ProbeProtocolError
}
