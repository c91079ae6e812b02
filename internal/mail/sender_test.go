package mail

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	gomail "github.com/wneessen/go-mail"

	"github.com/phrazzld/roadmap-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureDialer struct {
	sent []*gomail.Msg
	err  error
}

func (d *captureDialer) DialAndSendWithContext(_ context.Context, msgs ...*gomail.Msg) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, msgs...)
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSender_Send(t *testing.T) {
	t.Parallel()

	d := &captureDialer{}
	s := NewSenderWithDialer(d, "reports@example.com", "Goal-to-Market AI", discard())

	err := s.Send(context.Background(), "jane@example.com", "Your report", "<h1>Report</h1>")
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	msg := d.sent[0]
	assert.Equal(t, []string{`"Goal-to-Market AI" <reports@example.com>`}, msg.GetFromString())
	assert.Equal(t, []string{"<jane@example.com>"}, msg.GetToString())
	assert.Equal(t, []string{"Your report"}, msg.GetGenHeader(gomail.HeaderSubject))

	var raw bytes.Buffer
	_, err = msg.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "Content-Type: text/html")
	assert.Contains(t, raw.String(), "<h1>Report</h1>")
}

func TestSender_InvalidRecipient(t *testing.T) {
	t.Parallel()

	d := &captureDialer{}
	s := NewSenderWithDialer(d, "reports@example.com", "Goal-to-Market AI", discard())

	err := s.Send(context.Background(), "not an address", "subject", "<p>x</p>")
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.Empty(t, d.sent)
}

func TestSender_DeliveryFailure(t *testing.T) {
	t.Parallel()

	d := &captureDialer{err: errors.New("535 authentication failed")}
	s := NewSenderWithDialer(d, "reports@example.com", "Goal-to-Market AI", discard())

	err := s.Send(context.Background(), "jane@example.com", "subject", "<p>x</p>")
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.Contains(t, err.Error(), "535")
}

func TestNewSender(t *testing.T) {
	t.Parallel()

	s, err := NewSender(config.MailConfig{
		Host:     "smtp.gmail.com",
		Port:     465,
		Username: "reports@example.com",
		Password: "app-password",
		FromName: "Goal-to-Market AI",
	}, discard())
	require.NoError(t, err)
	assert.Equal(t, "reports@example.com", s.from)

	_, err = NewSender(config.MailConfig{Port: 465}, discard())
	assert.Error(t, err, "an empty host is rejected")
}
