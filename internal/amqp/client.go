package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	baseBackoff    = time.Second
	maxBackoff     = 30 * time.Second
	publishTimeout = 5 * time.Second
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type Client struct {
	url          string
	exchangeName string
	queueName    string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	lastFailure  time.Time
	failureMu    sync.Mutex

	reconnecting atomic.Bool
	stop         chan struct{}
	stopOnce     sync.Once
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	client := newClient(url, exchangeName, queueName)
	if err := client.connect(); err != nil {
		return nil, err
	}
	return client, nil
}

func newClient(url, exchangeName, queueName string) *Client {
	return &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		stop:         make(chan struct{}),
	}
}

func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := setup(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.channel = channel
	c.mu.Unlock()
	return nil
}

func setup(ch *amqp091.Channel, exchange, queue string) error {
	err := ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key is the queue name on the direct exchange.
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// reconnect retries connect with exponential backoff until it succeeds or
// ctx is done.
func (c *Client) reconnect(ctx context.Context) error {
	c.closeConn()
	for attempt := 0; ; attempt++ {
		err := c.connect()
		if err == nil {
			slog.InfoContext(ctx, "Reconnected to AMQP", "attempts", attempt+1)
			return nil
		}
		wait := exponentialBackoff(attempt)
		slog.WarnContext(ctx, "AMQP reconnect failed", "attempt", attempt+1, "retry_in", wait, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// reconnectInBackground starts a reconnect loop unless one is running. The
// loop ends on success or when the client is closed.
func (c *Client) reconnectInBackground() {
	if !c.reconnecting.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.reconnecting.Store(false)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			select {
			case <-c.stop:
				cancel()
			case <-ctx.Done():
			}
		}()
		if err := c.reconnect(ctx); err != nil {
			slog.Warn("AMQP background reconnect stopped", "error", err)
			return
		}
		select {
		case <-c.stop:
			c.closeConn()
		default:
		}
	}()
}

// PublishBudgetChanged publishes a budget change event. It fails fast while
// the circuit is open. A lost connection fails the publish at once and is
// re-established in the background.
func (c *Client) PublishBudgetChanged(ctx context.Context, budgetID uuid.UUID, action Action) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("publish %s for budget %s: %w", action, budgetID, ErrCircuitOpen)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := NewBudgetChangedMessage(budgetID, action).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = c.publish(ctx, body)
	if err != nil && isConnectionError(err) {
		c.reconnectInBackground()
	}
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	slog.InfoContext(ctx, "Published budget changed message",
		"budget_id", budgetID,
		"action", action,
		"exchange", c.exchangeName,
		"queue", c.queueName)

	return nil
}

func (c *Client) publish(ctx context.Context, body []byte) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil {
		return amqp091.ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return ch.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// ConsumeBudgetChanged delivers messages to handler until ctx is done.
// Malformed messages are dropped, handler errors requeue the delivery, and
// a lost connection is re-established with backoff.
func (c *Client) ConsumeBudgetChanged(ctx context.Context, handler func(context.Context, *BudgetChangedMessage) error) error {
	for {
		err := c.consume(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.WarnContext(ctx, "AMQP consumer stopped, reconnecting", "error", err)
		if err := c.reconnect(ctx); err != nil {
			return err
		}
	}
}

func (c *Client) consume(ctx context.Context, handler func(context.Context, *BudgetChangedMessage) error) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil {
		return amqp091.ErrClosed
	}

	msgs, err := ch.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming budget changed messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}

			msg, err := BudgetChangedMessageFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal message", "error", err)
				delivery.Nack(false, false)
				continue
			}

			if err := handler(ctx, msg); err != nil {
				slog.ErrorContext(ctx, "Failed to handle message",
					"error", err,
					"budget_id", msg.BudgetID,
					"action", msg.Action)
				delivery.Nack(false, true)
				continue
			}

			delivery.Ack(false)
			slog.DebugContext(ctx, "Processed budget changed message",
				"budget_id", msg.BudgetID,
				"action", msg.Action)
		}
	}
}

func (c *Client) isCircuitOpen() bool {
	switch atomic.LoadInt32(&c.state) {
	case StateOpen:
		c.failureMu.Lock()
		last := c.lastFailure
		c.failureMu.Unlock()
		if time.Since(last) > openTimeout {
			atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
			return false
		}
		return true
	default:
		return false
	}
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

// recordFailure opens the circuit after maxFailures consecutive failures,
// or immediately when the half-open probe fails.
func (c *Client) recordFailure() {
	n := atomic.AddInt64(&c.failureCount, 1)
	c.failureMu.Lock()
	c.lastFailure = time.Now()
	c.failureMu.Unlock()
	if n >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		if atomic.SwapInt32(&c.state, StateOpen) != StateOpen {
			slog.Warn("AMQP circuit breaker opened", "failures", n)
		}
	}
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	d := baseBackoff << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "channel/connection is not open"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) closeConn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	if c.stop != nil {
		c.stopOnce.Do(func() { close(c.stop) })
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
