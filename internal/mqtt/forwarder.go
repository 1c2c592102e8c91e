package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/AaronLay10/TowerEngine/internal/events"
	"github.com/AaronLay10/TowerEngine/internal/logger"
)

// ErrNotConnected is returned when the broker is unreachable.
var ErrNotConnected = errors.New("mqtt not connected")

// Publisher is the part of Client the forwarder needs.
type Publisher interface {
	IsConnected() bool
	Publish(topic string, payload []byte) error
}

// Forwarder mirrors bus events to MQTT topics of the form
// <prefix>/<room>/<event with dots as slashes>, e.g. hanoi/lobby/move/applied.
type Forwarder struct {
	pub     Publisher
	prefix  string
	room    string
	log     *zap.SugaredLogger
	sent    atomic.Int64
	dropped atomic.Int64
}

// NewForwarder creates a forwarder; call Run to start it.
func NewForwarder(pub Publisher, prefix, room string) *Forwarder {
	return &Forwarder{
		pub:    pub,
		prefix: strings.Trim(prefix, "/"),
		room:   room,
		log:    logger.For("mqtt.forwarder"),
	}
}

// Topic returns the topic an event is published on.
func (f *Forwarder) Topic(e events.Event) string {
	return f.prefix + "/" + f.room + "/" + strings.ReplaceAll(e.Name, ".", "/")
}

// Forward publishes a single event.
func (f *Forwarder) Forward(e events.Event) error {
	if !f.pub.IsConnected() {
		f.dropped.Add(1)
		return ErrNotConnected
	}

	payload, err := json.Marshal(e)
	if err != nil {
		f.dropped.Add(1)
		return err
	}

	if err := f.pub.Publish(f.Topic(e), payload); err != nil {
		f.dropped.Add(1)
		return err
	}
	f.sent.Add(1)
	return nil
}

// Run forwards every event on sub until ctx ends or sub is closed, then
// unsubscribes. Subscribe before starting Run so no event is missed.
func (f *Forwarder) Run(ctx context.Context, sub events.Subscriber) {
	defer events.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			// mqtt.* events describe this link; mirroring them is pointless.
			if strings.HasPrefix(e.Name, "mqtt.") {
				continue
			}
			if err := f.Forward(e); err != nil && !errors.Is(err, ErrNotConnected) {
				f.log.Warnw("forward failed", "event", e.Name, "error", err)
			}
		}
	}
}

// Sent returns the number of published events.
func (f *Forwarder) Sent() int64 {
	return f.sent.Load()
}

// Dropped returns the number of events that could not be published.
func (f *Forwarder) Dropped() int64 {
	return f.dropped.Load()
}
