// Package queue publishes and consumes mail jobs over RabbitMQ.
package queue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"finboard/internal/logger"
)

// Circuit breaker states.
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures        = 5
	openTimeout        = 30 * time.Second
	maxBackoff         = 30 * time.Second
	maxConnectAttempts = 6
	publishTimeout     = 5 * time.Second
)

// ErrCircuitOpen is returned by PublishMail while the broker is considered down.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Client owns one AMQP connection and channel bound to a durable queue.
type Client struct {
	url          string
	exchangeName string
	queueName    string

	// open and backoff default to dial and exponentialBackoff.
	open    func() (*amqp091.Connection, *amqp091.Channel, error)
	backoff func(attempt int) time.Duration

	mu          sync.Mutex
	conn        *amqp091.Connection
	channel     *amqp091.Channel
	lastFailure time.Time

	failureCount int64
	state        int32
}

// errDeliveriesClosed reports that the broker closed the consumer's delivery
// channel, usually because the connection dropped.
var errDeliveriesClosed = errors.New("message channel closed")

// NewClient connects to url, retrying with exponential backoff, and declares
// the exchange and queue.
func NewClient(ctx context.Context, url, exchangeName, queueName string) (*Client, error) {
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
	}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) wait(attempt int) time.Duration {
	if c.backoff != nil {
		return c.backoff(attempt)
	}
	return exponentialBackoff(attempt)
}

func (c *Client) connect(ctx context.Context) error {
	log := logger.Named("queue")
	var lastErr error
	for attempt := 0; attempt < maxConnectAttempts; attempt++ {
		if attempt > 0 {
			wait := c.wait(attempt - 1)
			log.Warnw("retrying AMQP connection", "attempt", attempt, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		_, lastErr = c.ensureChannel()
		if lastErr == nil {
			return nil
		}
		if !isConnectionError(lastErr) {
			return lastErr
		}
	}
	return fmt.Errorf("connect to AMQP after %d attempts: %w", maxConnectAttempts, lastErr)
}

// dial opens a connection and channel and declares the topology.
func (c *Client) dial() (*amqp091.Connection, *amqp091.Channel, error) {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	if err := c.setup(channel); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return conn, channel, nil
}

func (c *Client) setup(ch *amqp091.Channel) error {
	if err := ch.ExchangeDeclare(c.exchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(c.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// Routing key equals the queue name on the direct exchange.
	if err := ch.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// ensureChannel returns the open channel, redialing while holding c.mu so
// concurrent callers share a single new connection.
func (c *Client) ensureChannel() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}

	open := c.open
	if open == nil {
		open = c.dial
	}
	conn, channel, err := open()
	if err != nil {
		return nil, err
	}
	if channel == nil {
		if conn != nil {
			_ = conn.Close()
		}
		return nil, errors.New("channel is not open")
	}

	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn, c.channel = conn, channel
	return channel, nil
}

// PublishMail publishes job as a persistent message.
func (c *Client) PublishMail(ctx context.Context, job *MailJob) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("publish mail job: %w", ErrCircuitOpen)
	}

	body, err := job.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ch, err := c.ensureChannel()
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("reconnect: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(ctx, c.exchangeName, c.queueName, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    job.ID,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	logger.Named("queue").Infow("published mail job",
		"job_id", job.ID,
		"template", job.TemplateKey,
		"queue", c.queueName,
	)
	return nil
}

// ConsumeMail delivers jobs to handler until ctx is cancelled. Successful
// jobs are acked, permanent failures and malformed messages are dropped, and
// anything else is requeued. A dropped broker connection is redialed with
// backoff; other errors are returned.
func (c *Client) ConsumeMail(ctx context.Context, handler func(context.Context, *MailJob) error) error {
	log := logger.Named("queue")
	attempt := 0
	for {
		err := c.consume(ctx, handler)
		if ctx.Err() != nil {
			log.Infow("stopping mail job consumption", "reason", ctx.Err())
			return ctx.Err()
		}
		switch {
		case errors.Is(err, errDeliveriesClosed):
			attempt = 0
		case isConnectionError(err):
			attempt++
		default:
			return err
		}

		wait := c.wait(attempt)
		log.Warnw("mail consumer disconnected, reconnecting", "wait", wait, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) consume(ctx context.Context, handler func(context.Context, *MailJob) error) error {
	ch, err := c.ensureChannel()
	if err != nil {
		return err
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := ch.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	logger.Named("queue").Infow("consuming mail jobs", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errDeliveriesClosed
			}
			c.handleDelivery(ctx, delivery, handler)
		}
	}
}

func (c *Client) handleDelivery(ctx context.Context, d amqp091.Delivery, handler func(context.Context, *MailJob) error) {
	log := logger.Named("queue")

	job, err := MailJobFromJSON(d.Body)
	if err != nil {
		log.Errorw("dropping malformed mail job", "error", err)
		_ = d.Nack(false, false)
		return
	}

	if err := handler(ctx, job); err != nil {
		if IsPermanent(err) {
			log.Errorw("dropping mail job", "job_id", job.ID, "template", job.TemplateKey, "error", err)
			_ = d.Nack(false, false)
			return
		}
		log.Warnw("requeueing mail job", "job_id", job.ID, "redelivered", d.Redelivered, "error", err)
		if d.Redelivered {
			select {
			case <-ctx.Done():
			case <-time.After(exponentialBackoff(1)):
			}
		}
		_ = d.Nack(false, true)
		return
	}

	_ = d.Ack(false)
	log.Infow("sent mail job", "job_id", job.ID, "template", job.TemplateKey)
}

// Close closes the channel and the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	n := atomic.AddInt64(&c.failureCount, 1)
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if n >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

// exponentialBackoff returns 1s, 2s, 4s... capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) || errors.Is(err, io.EOF) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{
		"connection refused",
		"connection closed",
		"connection reset",
		"eof",
		"broken pipe",
		"use of closed network connection",
		"no such host",
		"i/o timeout",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
