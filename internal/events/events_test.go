package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (p *recordingPublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	p.exchange = exchange
	p.key = key
	p.msg = msg
	return p.err
}

func TestAMQPNotifierPublishesJSON(t *testing.T) {
	pub := &recordingPublisher{}
	n, err := NewAMQPNotifier(pub, "favtunes.events")
	require.NoError(t, err)

	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	event := NewFavoritesChanged(ActionAdded, "user-1", "fav-1", at)
	require.NoError(t, n.Notify(context.Background(), event))

	assert.Equal(t, "favtunes.events", pub.exchange)
	assert.Equal(t, FavoritesChanged, pub.key)
	assert.Equal(t, "application/json", pub.msg.ContentType)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)

	var decoded Event
	require.NoError(t, json.Unmarshal(pub.msg.Body, &decoded))
	assert.Equal(t, event, decoded)
	assert.Equal(t, FavoritesPath, decoded.Path)
}

func TestAMQPNotifierWrapsPublishError(t *testing.T) {
	boom := errors.New("channel closed")
	n, err := NewAMQPNotifier(&recordingPublisher{err: boom}, "x")
	require.NoError(t, err)

	err = n.Notify(context.Background(), NewFavoritesChanged(ActionDeleted, "u", "f", time.Now()))
	assert.ErrorIs(t, err, boom)
}

func TestNewAMQPNotifierValidates(t *testing.T) {
	_, err := NewAMQPNotifier(nil, "x")
	assert.Error(t, err)
	_, err = NewAMQPNotifier(&recordingPublisher{}, "")
	assert.Error(t, err)
}

func TestMultiJoinsErrors(t *testing.T) {
	first := errors.New("first")
	var delivered int
	m := Multi{
		NotifierFunc(func(context.Context, Event) error { return first }),
		nil,
		NotifierFunc(func(context.Context, Event) error { delivered++; return nil }),
	}

	err := m.Notify(context.Background(), Event{})
	assert.ErrorIs(t, err, first)
	assert.Equal(t, 1, delivered, "later notifiers still run after a failure")
	assert.NoError(t, Nop.Notify(context.Background(), Event{}))
}
