package rabbitmq

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	IssuanceExchange = "issuance"
	CollectionQueue  = "marketplace.collections"
	CollectionKeys   = "collection.*"
)

// Consumer reads collection announcements published by the issuance gateway
// and re-dials the broker when the connection drops.
type Consumer struct {
	url        string
	prefetch   int
	retryDelay time.Duration

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewConsumer(url string) (*Consumer, error) {
	c := &Consumer{url: url, prefetch: 16, retryDelay: 2 * time.Second}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

// connect dials the broker, declares the issuance exchange and binds the
// marketplace queue to it, replacing any previous connection.
func (c *Consumer) connect() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := declareCollectionQueue(ch, c.prefetch); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	c.mu.Lock()
	oldConn, oldChannel := c.conn, c.channel
	c.conn, c.channel = conn, ch
	c.mu.Unlock()

	if oldChannel != nil {
		oldChannel.Close()
	}
	if oldConn != nil {
		oldConn.Close()
	}
	return nil
}

func declareCollectionQueue(ch *amqp.Channel, prefetch int) error {
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("rabbitmq qos: %w", err)
	}
	if err := ch.ExchangeDeclare(IssuanceExchange, ExchangeKind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq exchange declare: %w", err)
	}
	q, err := ch.QueueDeclare(CollectionQueue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	if err := ch.QueueBind(q.Name, CollectionKeys, IssuanceExchange, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue bind: %w", err)
	}
	return nil
}

// Consume delivers announcements until ctx is done or the consumer is
// closed. Deliveries left unacked by a dropped connection come back from the
// broker after the reconnect.
func (c *Consumer) Consume(ctx context.Context) (<-chan amqp.Delivery, error) {
	msgs, closed, err := c.subscribe(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan amqp.Delivery)
	go forward(ctx, msgs, closed, out, c.reconnect)
	log.Printf("[RabbitMQ] consuming from queue: %s", CollectionQueue)
	return out, nil
}

func (c *Consumer) subscribe(ctx context.Context) (<-chan amqp.Delivery, <-chan *amqp.Error, error) {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()

	closed := ch.NotifyClose(make(chan *amqp.Error, 1))
	msgs, err := ch.ConsumeWithContext(
		ctx,
		CollectionQueue,
		"",    // consumer tag
		false, // acked by the handler once the collection is stored
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq consume: %w", err)
	}
	return msgs, closed, nil
}

// reconnect retries every retryDelay until it is consuming again or ctx is
// done.
func (c *Consumer) reconnect(ctx context.Context) (<-chan amqp.Delivery, <-chan *amqp.Error, bool) {
	for {
		select {
		case <-ctx.Done():
			return nil, nil, false
		case <-time.After(c.retryDelay):
		}
		if err := c.connect(); err != nil {
			log.Printf("[RabbitMQ] reconnect failed: %v", err)
			continue
		}
		msgs, closed, err := c.subscribe(ctx)
		if err != nil {
			log.Printf("[RabbitMQ] resubscribe failed: %v", err)
			continue
		}
		log.Printf("[RabbitMQ] reconnected to queue: %s", CollectionQueue)
		return msgs, closed, true
	}
}

type reconnectFunc func(ctx context.Context) (<-chan amqp.Delivery, <-chan *amqp.Error, bool)

// forward copies deliveries to out across reconnects. A channel closed
// without an error means Close was called; out is closed then.
func forward(ctx context.Context, msgs <-chan amqp.Delivery, closed <-chan *amqp.Error, out chan<- amqp.Delivery, reconnect reconnectFunc) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				// wait for the close notification
				msgs = nil
				continue
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		case err, ok := <-closed:
			if !ok || err == nil {
				return
			}
			log.Printf("[RabbitMQ] connection lost: %v", err)
			if msgs, closed, ok = reconnect(ctx); !ok {
				return
			}
		}
	}
}

func (c *Consumer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
