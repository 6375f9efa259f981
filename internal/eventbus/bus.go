// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	ws "github.com/tomtom215/marquee/internal/websocket"
)

// Metadata keys set on every change message.
const (
	MetadataResource = "resource"
	MetadataAction   = "action"
)

// Sink receives changes read from the bus. *websocket.Hub satisfies it.
type Sink interface {
	Publish(change ws.Change)
}

func natsOptions(cfg *config.EventBusConfig, role string, logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name("marquee-" + role),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, watermill.LogFields{"role": role})
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"role": role, "url": nc.ConnectedUrl()})
		}),
	}
}

func newLogger() watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logging.NewSlogLogger("eventbus"))
}

// Bus publishes catalog changes to NATS.
type Bus struct {
	publisher message.Publisher
	subject   string
}

// NewBus connects a publisher to url.
func NewBus(url string, cfg *config.EventBusConfig) (*Bus, error) {
	logger := newLogger()
	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOptions(cfg, "publisher", logger),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}
	return &Bus{publisher: pub, subject: cfg.Subject}, nil
}

// Publish sends change to the bus. Failures are logged and counted; the
// caller's write has already committed.
func (b *Bus) Publish(change ws.Change) {
	if change.Timestamp.IsZero() {
		change.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(change)
	if err != nil {
		metrics.EventBusMessages.WithLabelValues("out", "failed").Inc()
		logging.Error().Err(err).Msg("Failed to encode change for the event bus")
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataResource, change.Resource)
	msg.Metadata.Set(MetadataAction, change.Action)

	if err := b.publisher.Publish(b.subject, msg); err != nil {
		metrics.EventBusMessages.WithLabelValues("out", "failed").Inc()
		logging.Warn().Err(err).
			Str("resource", change.Resource).
			Str("action", change.Action).
			Msg("Failed to publish change to the event bus")
		return
	}
	metrics.EventBusMessages.WithLabelValues("out", "published").Inc()
}

// Close disconnects the publisher.
func (b *Bus) Close() error {
	return b.publisher.Close()
}

// Bridge forwards changes from the bus to a Sink. It implements
// suture.Service.
type Bridge struct {
	subscriber message.Subscriber
	subject    string
	sink       Sink

	readyOnce sync.Once
	ready     chan struct{}
}

// NewBridge connects a subscriber to url. Every instance receives every
// change: no queue group is used.
func NewBridge(url string, cfg *config.EventBusConfig, sink Sink) (*Bridge, error) {
	logger := newLogger()
	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		SubscribersCount: 1,
		AckWaitTimeout:   5 * time.Second,
		CloseTimeout:     5 * time.Second,
		NatsOptions:      natsOptions(cfg, "subscriber", logger),
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}
	return &Bridge{
		subscriber: sub,
		subject:    cfg.Subject,
		sink:       sink,
		ready:      make(chan struct{}),
	}, nil
}

// Ready is closed once the first subscription is in place.
func (b *Bridge) Ready() <-chan struct{} {
	return b.ready
}

// Serve subscribes and forwards changes until ctx is canceled.
func (b *Bridge) Serve(ctx context.Context) error {
	messages, err := b.subscriber.Subscribe(ctx, b.subject)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", b.subject, err)
	}
	b.readyOnce.Do(func() { close(b.ready) })
	logging.Info().Str("subject", b.subject).Msg("Event bus bridge subscribed")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("subscription to %s closed", b.subject)
			}
			b.forward(msg)
		}
	}
}

func (b *Bridge) forward(msg *message.Message) {
	defer msg.Ack()

	var change ws.Change
	if err := json.Unmarshal(msg.Payload, &change); err != nil {
		metrics.EventBusMessages.WithLabelValues("in", "invalid").Inc()
		logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Discarding malformed event bus message")
		return
	}
	metrics.EventBusMessages.WithLabelValues("in", "received").Inc()
	b.sink.Publish(change)
}

// String implements fmt.Stringer for supervisor logs.
func (b *Bridge) String() string {
	return "eventbus-bridge"
}

// Close disconnects the subscriber.
func (b *Bridge) Close() error {
	return b.subscriber.Close()
}
