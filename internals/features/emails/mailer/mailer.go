// Package mailer is the single outgoing-email entry point. Every recipient
// list is filtered against the allow-listed domains before anything touches
// the wire; transient transport failures are retried with exponential backoff
// plus jitter. Failures come back as a Result, never as a panic.
package mailer

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"classcover_backend/internals/configs"
)

type Message struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	HTML    string
}

type Result struct {
	Success bool
	Err     error
}

type Sender interface {
	Send(ctx context.Context, msg Message) Result
}

var ErrNoRecipients = errors.New("no recipients")

const (
	maxRetries  = 5
	baseBackoff = 500 * time.Millisecond
	maxJitter   = 100 * time.Millisecond
)

type SMTPSender struct {
	From           string
	AllowedDomains []string

	// send submits one assembled message; swapped out in tests.
	send    func(*gomail.Message) error
	backoff time.Duration
}

func NewFromEnv() *SMTPSender {
	d := gomail.NewDialer(configs.SMTPHost, configs.SMTPPort, configs.SMTPUser, configs.SMTPPassword)
	return &SMTPSender{
		From:           configs.EmailFrom,
		AllowedDomains: configs.AllowedEmailDomains,
		send:           func(m *gomail.Message) error { return d.DialAndSend(m) },
		backoff:        baseBackoff,
	}
}

// NewWithSendFunc builds a sender with a custom submit function and a tiny
// backoff. Used by tests to count attempts without an SMTP server.
func NewWithSendFunc(from string, allowedDomains []string, send func(*gomail.Message) error) *SMTPSender {
	return &SMTPSender{From: from, AllowedDomains: allowedDomains, send: send, backoff: time.Millisecond}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) Result {
	to := s.filterAllowed(msg.To)
	cc := s.filterAllowed(msg.Cc)
	bcc := s.filterAllowed(msg.Bcc)
	if len(to)+len(cc)+len(bcc) == 0 {
		return Result{Success: false, Err: ErrNoRecipients}
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	if len(to) > 0 {
		m.SetHeader("To", to...)
	}
	if len(cc) > 0 {
		m.SetHeader("Cc", cc...)
	}
	if len(bcc) > 0 {
		m.SetHeader("Bcc", bcc...)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := s.backoff*time.Duration(1<<uint(attempt-1)) +
				time.Duration(rand.Int63n(int64(maxJitter)))
			select {
			case <-ctx.Done():
				return Result{Success: false, Err: ctx.Err()}
			case <-time.After(backoff):
			}
		}
		if err := s.send(m); err != nil {
			lastErr = err
			if isTransient(err) {
				continue
			}
			return Result{Success: false, Err: err}
		}
		return Result{Success: true}
	}
	log.Printf("[MAILER] gave up after %d retries: %v", maxRetries, lastErr)
	return Result{Success: false, Err: lastErr}
}

// filterAllowed drops every address whose domain is not on the allow list.
func (s *SMTPSender) filterAllowed(addrs []string) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if s.domainAllowed(a) {
			out = append(out, a)
		}
	}
	return out
}

func (s *SMTPSender) domainAllowed(addr string) bool {
	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return false
	}
	domain := strings.ToLower(addr[at+1:])
	for _, d := range s.AllowedDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

var smtpCodeRe = regexp.MustCompile(`^(\d{3})[ -]`)

// isTransient reports whether the transport error is worth retrying: rate
// limiting, an SMTP 4yz "try again" reply, or a connection-level failure.
// Permanent rejections (5yz: bad recipient, auth failure) fail fast.
func isTransient(err error) bool {
	msg := err.Error()
	if strings.Contains(strings.ToLower(msg), "rate limit") {
		return true
	}
	if m := smtpCodeRe.FindStringSubmatch(msg); m != nil {
		code, _ := strconv.Atoi(m[1])
		return code >= 400 && code < 500
	}
	// Connection-level failures (dial refused, reset) are transient too.
	return strings.Contains(msg, "connection") || strings.Contains(msg, "EOF")
}
