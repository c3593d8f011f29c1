// Package events publishes workflow and financial sync notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Event types
const (
	TypeAssignment      = "assignment.transition"
	TypeFinancialSync   = "financial.sync"
	TypeStaleAssignment = "assignment.stale"
)

// Event is the envelope written to the channel
type Event struct {
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// AssignmentEvent describes one workflow transition
type AssignmentEvent struct {
	Transition   string  `json:"transition"`
	AssignJobIDs []int64 `json:"assign_job_ids"`
	JobIDs       []int64 `json:"job_ids"`
	EmployeeID   *int64  `json:"employee_id,omitempty"`
	ProductionID *int64  `json:"production_id,omitempty"`
}

// SyncEvent describes one financial fan-out
type SyncEvent struct {
	Source         string  `json:"source"`
	SourceID       int64   `json:"source_id"`
	PurchaseOrders []int64 `json:"purchase_orders"`
	Invoices       []int64 `json:"invoices"`
	Estimate       bool    `json:"estimate"`
	Failures       int     `json:"failures"`
}

// StaleAssignmentEvent reports an assignment that has not moved for too long
type StaleAssignmentEvent struct {
	AssignJobID  int64     `json:"assign_job_id"`
	ProjectID    int64     `json:"project_id"`
	ProductionID *int64    `json:"production_id,omitempty"`
	EmployeeID   *int64    `json:"employee_id,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewEvent wraps payload in an envelope stamped with the current time
func NewEvent(eventType string, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s event: %w", eventType, err)
	}
	return Event{
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}, nil
}

// Publisher delivers events. Callers treat failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// RedisPublisher publishes events to a Redis pub/sub channel
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
}

// RedisOptions configures NewRedisPublisher
type RedisOptions struct {
	Address  string
	Password string
	DB       int
	PoolSize int
	Channel  string
}

// NewRedisPublisher connects to Redis and verifies the connection
func NewRedisPublisher(ctx context.Context, opts RedisOptions) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
		PoolSize: opts.PoolSize,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisPublisherWithClient(client, opts.Channel), nil
}

// NewRedisPublisherWithClient wraps an existing client
func NewRedisPublisherWithClient(client redis.UniversalClient, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, payload).Err()
}

// Ping checks the connection, for readiness probes
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// NopPublisher discards every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }

// Recorder keeps published events in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of what was published
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Emit builds and publishes an event, logging instead of returning failures
func Emit(ctx context.Context, p Publisher, logger *zap.Logger, eventType string, payload interface{}) {
	if p == nil {
		return
	}
	event, err := NewEvent(eventType, payload)
	if err == nil {
		err = p.Publish(ctx, event)
	}
	if err != nil {
		logger.Warn("failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}
