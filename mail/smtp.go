package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

const (
	defaultDialTimeout = 10 * time.Second
	defaultIOTimeout   = 5 * time.Second
)

// SMTPConfig defines a public type used by goSignup APIs.
//
// SMTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string

	// DialTimeout bounds connection establishment; IOTimeout bounds each
	// subsequent read or write on the SMTP conversation.
	DialTimeout time.Duration
	IOTimeout   time.Duration
}

// SMTPSender delivers messages over SMTP. Port 465 uses implicit TLS;
// any other port upgrades via STARTTLS when the server offers it.
type SMTPSender struct {
	config SMTPConfig
}

// NewSMTPSender describes the newsmtpsender operation and its observable behavior.
//
// NewSMTPSender may return an error when input validation, dependency calls, or security checks fail.
// NewSMTPSender does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, errors.New("invalid smtp port")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		return nil, errors.New("smtp from address required")
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.IOTimeout <= 0 {
		cfg.IOTimeout = defaultIOTimeout
	}

	return &SMTPSender{config: cfg}, nil
}

// Send describes the send operation and its observable behavior.
//
// Send may return an error when input validation, dependency calls, or security checks fail.
// Send does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if to == "" {
		return errors.New("empty recipient")
	}

	fromHeader := s.config.From
	if s.config.FromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}
	msg := buildMessage(fromHeader, s.config.From, to, subject, htmlBody)

	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	conn, err := s.dial(ctx, addr)
	if err != nil {
		return err
	}
	// deadlineConn renews the deadline on every read and write, so a
	// stall at any phase of the conversation errors out within IOTimeout.
	guarded := &deadlineConn{Conn: conn, timeout: s.config.IOTimeout}

	c, err := smtp.NewClient(guarded, s.config.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if s.config.Port != 465 {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
				return err
			}
		}
	}

	if s.config.Username != "" {
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err := c.Auth(auth); err != nil {
			return err
		}
	}

	if err := c.Mail(s.config.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}

	return c.Quit()
}

func (s *SMTPSender) dial(ctx context.Context, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: s.config.DialTimeout}

	if s.config.Port == 465 {
		return tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: s.config.Host})
	}

	return dialer.DialContext(ctx, "tcp", addr)
}

type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *deadlineConn) Read(b []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}

func (c *deadlineConn) Write(b []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(b)
}
