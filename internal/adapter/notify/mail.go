package notify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/wneessen/go-mail"
)

const (
	MailNotifierName = "mail"

	defaultSMTPPort  = 25
	defaultSMTPSPort = 465
	mailDialTimeout  = 15 * time.Second
)

type MailConfig struct {
	SMTPURL  string
	Username string
	Password string
	Sender   string
	Receiver string
	TLS      bool
}

// MailNotifier sends a plain text alert over SMTP. smtp:// URLs upgrade with
// STARTTLS when TLS is set, smtps:// URLs use implicit TLS.
type MailNotifier struct {
	cfg      MailConfig
	host     string
	port     int
	implicit bool
	now      func() time.Time
}

func NewMailNotifier(cfg MailConfig) (*MailNotifier, error) {
	host, port, implicit, err := parseSMTPURL(cfg.SMTPURL)
	if err != nil {
		return nil, err
	}
	return &MailNotifier{
		cfg:      cfg,
		host:     host,
		port:     port,
		implicit: implicit,
		now:      time.Now,
	}, nil
}

func (m *MailNotifier) Name() string {
	return MailNotifierName
}

func (m *MailNotifier) Notify(ctx context.Context, reason string) error {
	msg, err := m.buildMessage(reason)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.host, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("unable to create smtp client for %s: %w", m.host, err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp delivery to %s failed: %w", m.cfg.Receiver, err)
	}
	return nil
}

func (m *MailNotifier) buildMessage(reason string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.Sender); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.cfg.Sender, err)
	}
	if err := msg.To(m.cfg.Receiver); err != nil {
		return nil, fmt.Errorf("invalid receiver %q: %w", m.cfg.Receiver, err)
	}

	now := m.now()
	msg.Subject(messageSubject)
	msg.SetDateWithValue(now)
	msg.SetBodyString(mail.TypeTextPlain, outageMessage(reason, now))
	return msg, nil
}

func (m *MailNotifier) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTimeout(mailDialTimeout),
	}

	switch {
	case m.implicit:
		opts = append(opts, mail.WithSSL())
	case m.cfg.TLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(m.authType()),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return opts
}

// authType picks AUTH LOGIN. Without TLS go-mail only allows the plain
// variant of LOGIN towards localhost, relays need the NoEnc mechanism.
func (m *MailNotifier) authType() mail.SMTPAuthType {
	if m.implicit || m.cfg.TLS {
		return mail.SMTPAuthLogin
	}
	return mail.SMTPAuthLoginNoEnc
}

// parseSMTPURL accepts smtp://host[:port] and smtps://host[:port]
func parseSMTPURL(raw string) (host string, port int, implicitTLS bool, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid smtp url %q: %w", raw, err)
	}

	switch u.Scheme {
	case "smtp":
		port = defaultSMTPPort
	case "smtps":
		port = defaultSMTPSPort
		implicitTLS = true
	default:
		return "", 0, false, fmt.Errorf("invalid smtp url %q: scheme must be smtp or smtps", raw)
	}

	host = u.Hostname()
	if host == "" {
		return "", 0, false, fmt.Errorf("invalid smtp url %q: missing host", raw)
	}

	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return "", 0, false, fmt.Errorf("invalid smtp url %q: bad port", raw)
		}
	}
	return host, port, implicitTLS, nil
}
