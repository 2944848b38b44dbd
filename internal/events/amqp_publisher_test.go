package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"license-admin-go/internal/core"
)

type recordingChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
}

func (c *recordingChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return c.err
}

func (c *recordingChannel) Close() error {
	c.closed = true
	return nil
}

func TestPublishSendsPersistentJSON(t *testing.T) {
	ch := &recordingChannel{}
	p := &AMQPPublisher{ch: ch, exchange: "license.events", logger: zap.NewNop()}

	var _ core.EventPublisher = p
	err := p.Publish(context.Background(), core.EventTrialActivated, core.LicenseEvent{
		Type:  core.EventTrialActivated,
		Email: "ana@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "license.events", ch.exchange)
	assert.Equal(t, "license.trial.activated", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, "ana@example.com", got["email"])
}

func TestPublishWrapsChannelError(t *testing.T) {
	ch := &recordingChannel{err: errors.New("channel closed")}
	p := &AMQPPublisher{ch: ch, exchange: "license.events", logger: zap.NewNop()}

	err := p.Publish(context.Background(), core.EventProActivated, core.LicenseEvent{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "license.pro.activated")

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
