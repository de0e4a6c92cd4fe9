package health

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thushan/redis-watcher/internal/core/domain"
)

func probeConfigFor(t *testing.T, s *miniredis.Miniredis) RedisProbeConfig {
	t.Helper()
	port, err := strconv.Atoi(s.Port())
	require.NoError(t, err)
	return RedisProbeConfig{
		Host:           s.Host(),
		Port:           port,
		ConnectTimeout: time.Second,
	}
}

func closedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestRedisProbe_Healthy(t *testing.T) {
	s := miniredis.RunT(t)

	probe := NewRedisProbe(probeConfigFor(t, s))
	result := probe.Probe(context.Background())

	assert.Equal(t, domain.ProbeHealthy, result.Status, "detail: %s", result.Detail)
	assert.NoError(t, result.Err)
	assert.False(t, result.CheckedAt.IsZero())
	assert.Equal(t, net.JoinHostPort(s.Host(), s.Port()), probe.Target())
}

func TestRedisProbe_ACLAuth(t *testing.T) {
	s := miniredis.RunT(t)
	s.RequireUserAuth("watcher", "s3cret")

	cfg := probeConfigFor(t, s)
	cfg.Auth = true
	cfg.Username = "watcher"

	t.Run("correct credentials", func(t *testing.T) {
		cfg := cfg
		cfg.Password = "s3cret"
		result := NewRedisProbe(cfg).Probe(context.Background())
		assert.Equal(t, domain.ProbeHealthy, result.Status, "detail: %s", result.Detail)
	})

	t.Run("wrong password is a protocol error", func(t *testing.T) {
		cfg := cfg
		cfg.Password = "nope"
		result := NewRedisProbe(cfg).Probe(context.Background())
		assert.Equal(t, domain.ProbeProtocolError, result.Status)

		var probeErr *domain.ProbeError
		require.ErrorAs(t, result.Err, &probeErr)
		assert.Equal(t, "AUTH", probeErr.Command)
	})
}

func TestRedisProbe_LegacyAuth(t *testing.T) {
	s := miniredis.RunT(t)
	s.RequireAuth("hunter2")

	cfg := probeConfigFor(t, s)
	cfg.Auth = true
	cfg.Password = "hunter2"

	result := NewRedisProbe(cfg).Probe(context.Background())
	assert.Equal(t, domain.ProbeHealthy, result.Status, "detail: %s", result.Detail)
}

func TestRedisProbe_MissingAuthIsProtocolError(t *testing.T) {
	s := miniredis.RunT(t)
	s.RequireAuth("hunter2")

	result := NewRedisProbe(probeConfigFor(t, s)).Probe(context.Background())

	assert.Equal(t, domain.ProbeProtocolError, result.Status)
	assert.Contains(t, result.Detail, "NOAUTH")
}

func TestRedisProbe_Unreachable(t *testing.T) {
	probe := NewRedisProbe(RedisProbeConfig{
		Host:           "127.0.0.1",
		Port:           closedPort(t),
		ConnectTimeout: 500 * time.Millisecond,
	})

	result := probe.Probe(context.Background())

	assert.Equal(t, domain.ProbeUnreachable, result.Status)
	require.Error(t, result.Err)

	var probeErr *domain.ProbeError
	require.ErrorAs(t, result.Err, &probeErr)
	assert.Equal(t, "CONNECT", probeErr.Command)
}

func TestRedisProbe_ServerGoesAway(t *testing.T) {
	s := miniredis.RunT(t)
	cfg := probeConfigFor(t, s)
	s.Close()

	result := NewRedisProbe(cfg).Probe(context.Background())
	assert.Equal(t, domain.ProbeUnreachable, result.Status)
}

// recordingRedis answers like a pre HELLO server and keeps the command names
// it was sent, in order
type recordingRedis struct {
	ln       net.Listener
	commands []string
	mu       sync.Mutex
}

func startRecordingRedis(t *testing.T) *recordingRedis {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	r := &recordingRedis{ln: ln}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go r.serve(conn)
		}
	}()
	return r
}

func (r *recordingRedis) serve(conn net.Conn) {
	defer conn.Close()
	reader := bufio.NewReader(conn)
	for {
		args, err := readCommand(reader)
		if err != nil {
			return
		}
		name := strings.ToUpper(args[0])
		r.mu.Lock()
		r.commands = append(r.commands, name)
		r.mu.Unlock()

		reply := "+OK\r\n"
		switch name {
		case "HELLO":
			reply = "-ERR unknown command 'HELLO'\r\n"
		case "PING":
			reply = "+PONG\r\n"
		}
		if _, err := io.WriteString(conn, reply); err != nil {
			return
		}
	}
}

func (r *recordingRedis) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.commands...)
}

func (r *recordingRedis) Port() int {
	return r.ln.Addr().(*net.TCPAddr).Port
}

// readCommand reads one RESP array of bulk strings
func readCommand(reader *bufio.Reader) ([]string, error) {
	header, err := reader.ReadString('\n')
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(header, "*") {
		return nil, fmt.Errorf("unexpected header %q", header)
	}
	count, err := strconv.Atoi(strings.TrimSpace(header[1:]))
	if err != nil || count < 1 {
		return nil, fmt.Errorf("bad array length %q", header)
	}

	args := make([]string, 0, count)
	for i := 0; i < count; i++ {
		sizeLine, err := reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		size, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(sizeLine, "$")))
		if err != nil {
			return nil, err
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(reader, buf); err != nil {
			return nil, err
		}
		args = append(args, string(buf[:size]))
	}
	return args, nil
}

func TestRedisHandshake_IsAuthThenPing(t *testing.T) {
	t.Run("without auth", func(t *testing.T) {
		server := startRecordingRedis(t)
		result := NewRedisProbe(RedisProbeConfig{Host: "127.0.0.1", Port: server.Port(), ConnectTimeout: time.Second}).
			Probe(context.Background())

		require.Equal(t, domain.ProbeHealthy, result.Status, "detail: %s", result.Detail)
		commands := server.Commands()
		assert.NotContains(t, commands, "CLIENT")
		assert.NotContains(t, commands, "AUTH")
		require.NotEmpty(t, commands)
		assert.Equal(t, "PING", commands[len(commands)-1])
	})

	t.Run("with auth", func(t *testing.T) {
		server := startRecordingRedis(t)
		result := NewRedisProbe(RedisProbeConfig{
			Host:           "127.0.0.1",
			Port:           server.Port(),
			ConnectTimeout: time.Second,
			Auth:           true,
			Password:       "hunter2",
		}).Probe(context.Background())

		require.Equal(t, domain.ProbeHealthy, result.Status, "detail: %s", result.Detail)
		commands := server.Commands()
		assert.NotContains(t, commands, "CLIENT")
		require.GreaterOrEqual(t, len(commands), 2)
		assert.Equal(t, []string{"AUTH", "PING"}, commands[len(commands)-2:])
	})
}

func TestNewRedisProbe_DefaultTimeout(t *testing.T) {
	probe := NewRedisProbe(RedisProbeConfig{Host: "localhost", Port: 6379})
	assert.Equal(t, DefaultConnectTimeout, probe.timeout)
	assert.Equal(t, "localhost:6379", probe.Target())
}

func TestClassifyProbeError(t *testing.T) {
	testCases := []struct {
		err  error
		name string
		want domain.ProbeStatus
	}{
		{name: "server error reply", err: redisReplyError(t), want: domain.ProbeProtocolError},
		{name: "unexpected reply", err: fmt.Errorf("%w: %q", domain.ErrUnexpectedReply, "PANG"), want: domain.ProbeProtocolError},
		{name: "dial refused", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, want: domain.ProbeUnreachable},
		{name: "deadline", err: context.DeadlineExceeded, want: domain.ProbeUnreachable},
		{name: "eof mid conversation", err: io.EOF, want: domain.ProbeProtocolError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyProbeError(tc.err))
		})
	}
}

// redisReplyError gets a genuine server error reply out of go-redis
func redisReplyError(t *testing.T) error {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr(), Protocol: 2})
	defer client.Close()

	err := client.Do(context.Background(), "NOSUCHCOMMAND").Err()
	require.Error(t, err)
	return err
}
