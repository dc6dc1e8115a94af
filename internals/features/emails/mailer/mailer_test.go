package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/gomail.v2"
)

func TestSendAllRecipientsFilteredOut(t *testing.T) {
	calls := 0
	s := NewWithSendFunc("noreply@school.org", []string{"school.org"}, func(*gomail.Message) error {
		calls++
		return nil
	})

	res := s.Send(context.Background(), Message{
		To:      []string{"someone@gmail.com"},
		Cc:      []string{"other@yahoo.com"},
		Subject: "x", HTML: "<p>x</p>",
	})

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrNoRecipients)
	assert.Zero(t, calls, "no network call when every recipient is dropped")
}

func TestSendAllowsSubdomains(t *testing.T) {
	var got *gomail.Message
	s := NewWithSendFunc("noreply@school.org", []string{"school.org"}, func(m *gomail.Message) error {
		got = m
		return nil
	})

	res := s.Send(context.Background(), Message{
		To:      []string{"teacher@staff.school.org", "blocked@elsewhere.com"},
		Subject: "hello", HTML: "<p>hi</p>",
	})

	assert.True(t, res.Success)
	if assert.NotNil(t, got) {
		assert.Equal(t, []string{"teacher@staff.school.org"}, got.GetHeader("To"))
	}
}

func TestSendRetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	s := NewWithSendFunc("noreply@school.org", []string{"school.org"}, func(*gomail.Message) error {
		calls++
		if calls < 3 {
			return errors.New("421 4.7.0 rate limit exceeded")
		}
		return nil
	})

	res := s.Send(context.Background(), Message{To: []string{"t@school.org"}, Subject: "s", HTML: "h"})
	assert.True(t, res.Success)
	assert.Equal(t, 3, calls)
}

func TestSendNonTransientFailsFast(t *testing.T) {
	calls := 0
	s := NewWithSendFunc("noreply@school.org", []string{"school.org"}, func(*gomail.Message) error {
		calls++
		return errors.New("550 5.1.1 user unknown")
	})

	res := s.Send(context.Background(), Message{To: []string{"t@school.org"}, Subject: "s", HTML: "h"})
	assert.False(t, res.Success)
	assert.Equal(t, 1, calls, "permanent rejections are not retried")
}

func TestNewFromEnvWiresSMTPSubmit(t *testing.T) {
	s := NewFromEnv()
	assert.NotNil(t, s.send, "the dialer submit function must be attached")
	assert.Equal(t, baseBackoff, s.backoff)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(errors.New("rate limit exceeded")))
	assert.True(t, isTransient(errors.New("451 4.3.0 try again later")))
	assert.False(t, isTransient(errors.New("535 authentication failed")))
}
