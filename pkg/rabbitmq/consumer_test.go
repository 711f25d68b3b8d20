package rabbitmq

import (
	"context"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noReconnect(t *testing.T) reconnectFunc {
	return func(context.Context) (<-chan amqp.Delivery, <-chan *amqp.Error, bool) {
		t.Error("unexpected reconnect")
		return nil, nil, false
	}
}

func receive(t *testing.T, out <-chan amqp.Delivery) (amqp.Delivery, bool) {
	t.Helper()
	select {
	case msg, ok := <-out:
		return msg, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for forward")
		return amqp.Delivery{}, false
	}
}

func TestForward_StopsOnGracefulClose(t *testing.T) {
	msgs := make(chan amqp.Delivery, 1)
	closed := make(chan *amqp.Error, 1)
	out := make(chan amqp.Delivery)

	go forward(context.Background(), msgs, closed, out, noReconnect(t))

	msgs <- amqp.Delivery{MessageId: "m-1"}
	msg, ok := receive(t, out)
	require.True(t, ok)
	assert.Equal(t, "m-1", msg.MessageId)

	close(msgs)
	close(closed)
	_, ok = receive(t, out)
	assert.False(t, ok)
}

func TestForward_ResubscribesAfterConnectionLoss(t *testing.T) {
	first := make(chan amqp.Delivery)
	firstClosed := make(chan *amqp.Error, 1)
	second := make(chan amqp.Delivery, 1)
	secondClosed := make(chan *amqp.Error, 1)
	out := make(chan amqp.Delivery)

	reconnects := 0
	reconnect := func(context.Context) (<-chan amqp.Delivery, <-chan *amqp.Error, bool) {
		reconnects++
		return second, secondClosed, true
	}
	go forward(context.Background(), first, firstClosed, out, reconnect)

	close(first)
	firstClosed <- &amqp.Error{Code: amqp.ConnectionForced, Reason: "broker restart"}
	second <- amqp.Delivery{MessageId: "m-2"}

	msg, ok := receive(t, out)
	require.True(t, ok)
	assert.Equal(t, "m-2", msg.MessageId)
	assert.Equal(t, 1, reconnects)

	close(secondClosed)
	_, ok = receive(t, out)
	assert.False(t, ok)
}

func TestForward_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan amqp.Delivery)

	go forward(ctx, make(chan amqp.Delivery), make(chan *amqp.Error), out, noReconnect(t))
	cancel()

	_, ok := receive(t, out)
	assert.False(t, ok)
}
