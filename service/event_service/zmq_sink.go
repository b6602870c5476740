package event_service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-zeromq/zmq4"

	"github.com/varity-labs/varity-app-store/models"
)

// ZMQSink publishes facts on a ZeroMQ PUB socket. Each message has two frames:
// the event type as topic, then the JSON event.
type ZMQSink struct {
	endpoint string
	mu       sync.Mutex
	socket   zmq4.Socket
	cancel   context.CancelFunc
}

// NewZMQSink binds a PUB socket, e.g. "tcp://*:28400"
func NewZMQSink(endpoint string) (*ZMQSink, error) {
	ctx, cancel := context.WithCancel(context.Background())
	socket := zmq4.NewPub(ctx)
	if err := socket.Listen(endpoint); err != nil {
		cancel()
		socket.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", endpoint, err)
	}
	log.Info("ZMQ event publisher listening", "endpoint", endpoint)
	return &ZMQSink{endpoint: endpoint, socket: socket, cancel: cancel}, nil
}

func (z *ZMQSink) Name() string { return "zmq" }

func (z *ZMQSink) Publish(_ context.Context, ev models.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.socket.Send(zmq4.NewMsgFrom([]byte(ev.Type), payload))
}

func (z *ZMQSink) Close() error {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.cancel()
	return z.socket.Close()
}
