package notify

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func TestParseSMTPURL(t *testing.T) {
	testCases := []struct {
		name         string
		raw          string
		wantHost     string
		wantPort     int
		wantImplicit bool
		wantErr      bool
	}{
		{name: "smtp default port", raw: "smtp://mail.example.com", wantHost: "mail.example.com", wantPort: 25},
		{name: "smtp explicit port", raw: "smtp://mail.example.com:587", wantHost: "mail.example.com", wantPort: 587},
		{name: "smtps default port", raw: "smtps://mail.example.com", wantHost: "mail.example.com", wantPort: 465, wantImplicit: true},
		{name: "unsupported scheme", raw: "http://mail.example.com", wantErr: true},
		{name: "missing host", raw: "smtp://:25", wantErr: true},
		{name: "bad port", raw: "smtp://mail.example.com:99999", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			host, port, implicit, err := parseSMTPURL(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantHost, host)
			assert.Equal(t, tc.wantPort, port)
			assert.Equal(t, tc.wantImplicit, implicit)
		})
	}
}

func TestMailNotifier_InvalidAddresses(t *testing.T) {
	n, err := NewMailNotifier(MailConfig{SMTPURL: "smtp://localhost", Sender: "not an address", Receiver: "ops@example.com"})
	require.NoError(t, err)

	_, err = n.buildMessage("reason")
	assert.ErrorContains(t, err, "invalid sender")
}

func TestMailNotifier_AuthTypePerTLSMode(t *testing.T) {
	testCases := []struct {
		name string
		url  string
		want mail.SMTPAuthType
		tls  bool
	}{
		{name: "plain relay", url: "smtp://relay.example.com:25", want: mail.SMTPAuthLoginNoEnc},
		{name: "starttls", url: "smtp://relay.example.com:587", tls: true, want: mail.SMTPAuthLogin},
		{name: "implicit tls", url: "smtps://relay.example.com", want: mail.SMTPAuthLogin},
		{name: "implicit tls with starttls flag", url: "smtps://relay.example.com", tls: true, want: mail.SMTPAuthLogin},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := NewMailNotifier(MailConfig{
				SMTPURL:  tc.url,
				Username: "alerts",
				Password: "secret",
				Sender:   "alerts@example.com",
				Receiver: "ops@example.com",
				TLS:      tc.tls,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, n.authType())

			client, err := mail.NewClient(n.host, n.clientOptions()...)
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

// fakeSMTP speaks just enough SMTP for a plain text delivery with AUTH LOGIN
type fakeSMTP struct {
	ln       net.Listener
	messages []string
	user     string
	pass     string
	mu       sync.Mutex
}

func startFakeSMTP(t *testing.T) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &fakeSMTP{ln: ln}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go s.serve(conn)
		}
	}()
	t.Cleanup(func() { _ = ln.Close() })
	return s
}

func (s *fakeSMTP) url() string {
	return "smtp://" + s.ln.Addr().String()
}

func (s *fakeSMTP) serve(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	r := bufio.NewReader(conn)
	reply := func(line string) { _, _ = fmt.Fprintf(conn, "%s\r\n", line) }
	readLine := func() (string, bool) {
		line, err := r.ReadString('\n')
		return strings.TrimRight(line, "\r\n"), err == nil
	}
	decode := func(in string) string {
		out, _ := base64.StdEncoding.DecodeString(in)
		return string(out)
	}

	reply("220 localhost ESMTP ready")
	for {
		line, ok := readLine()
		if !ok {
			return
		}
		cmd := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(cmd, "EHLO"):
			reply("250-localhost")
			reply("250-AUTH LOGIN PLAIN")
			reply("250 8BITMIME")
		case strings.HasPrefix(cmd, "AUTH LOGIN"):
			user := ""
			if parts := strings.Fields(line); len(parts) == 3 {
				user = decode(parts[2])
			} else {
				reply("334 VXNlcm5hbWU6")
				in, _ := readLine()
				user = decode(in)
			}
			reply("334 UGFzc3dvcmQ6")
			in, _ := readLine()
			s.mu.Lock()
			s.user, s.pass = user, decode(in)
			s.mu.Unlock()
			reply("235 2.7.0 Authentication successful")
		case cmd == "DATA":
			reply("354 End data with <CR><LF>.<CR><LF>")
			var b strings.Builder
			for {
				l, ok := readLine()
				if !ok {
					return
				}
				if l == "." {
					break
				}
				b.WriteString(l)
				b.WriteString("\n")
			}
			s.mu.Lock()
			s.messages = append(s.messages, b.String())
			s.mu.Unlock()
			reply("250 2.0.0 queued")
		case cmd == "QUIT":
			reply("221 2.0.0 bye")
			return
		default:
			reply("250 OK")
		}
	}
}

func TestMailNotifier_DeliversWithAuthLogin(t *testing.T) {
	srv := startFakeSMTP(t)

	n, err := NewMailNotifier(MailConfig{
		SMTPURL:  srv.url(),
		Username: "watcher",
		Password: "hunter2",
		Sender:   "watcher@example.com",
		Receiver: "ops@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, MailNotifierName, n.Name())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, n.Notify(ctx, "unreachable: connection refused"))

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Equal(t, "watcher", srv.user)
	assert.Equal(t, "hunter2", srv.pass)
	require.Len(t, srv.messages, 1)
	msg := srv.messages[0]
	assert.Contains(t, msg, "Subject: Redis connection failure")
	assert.Contains(t, msg, "ops@example.com")
	assert.Contains(t, msg, "unreachable: connection refused")
}

func TestMailNotifier_ServerDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	n, err := NewMailNotifier(MailConfig{
		SMTPURL:  "smtp://" + addr,
		Sender:   "watcher@example.com",
		Receiver: "ops@example.com",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.Error(t, n.Notify(ctx, "reason"))
}
