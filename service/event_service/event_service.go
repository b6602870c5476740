package event_service

import (
	"context"
	"io"

	"github.com/varity-labs/varity-app-store/common"
	"github.com/varity-labs/varity-app-store/models"
)

var log = common.NewLog("event")

// Sink delivers committed facts to one off-core observer
type Sink interface {
	Name() string
	Publish(ctx context.Context, ev models.Event) error
}

// Emitter fans committed facts out to every sink. A sink failure never undoes the
// transition that produced the fact; it is logged and counted.
type Emitter struct {
	sinks []Sink
}

// NewEmitter create emitter over the given sinks
func NewEmitter(sinks ...Sink) *Emitter {
	return &Emitter{sinks: sinks}
}

// AddSink registers another sink
func (e *Emitter) AddSink(s Sink) {
	e.sinks = append(e.sinks, s)
}

// Emit publishes ev to every sink. Only call after the transition was committed.
// The fact outlives the request that produced it, so cancellation of ctx is ignored.
func (e *Emitter) Emit(ctx context.Context, ev models.Event) {
	if e == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, s := range e.sinks {
		if err := s.Publish(ctx, ev); err != nil {
			log.Error("publish event failed", "sink", s.Name(), "type", ev.Type, "id", ev.ID, "err", err)
			common.MetricEventSinkError(s.Name())
		}
	}
}

// Close closes every sink holding resources
func (e *Emitter) Close() {
	if e == nil {
		return
	}
	for _, s := range e.sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.Warn("close sink failed", "sink", s.Name(), "err", err)
			}
		}
	}
}
