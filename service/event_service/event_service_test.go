package event_service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varity-labs/varity-app-store/models"
)

type failingSink struct {
	calls int
}

func (f *failingSink) Name() string { return "failing" }

func (f *failingSink) Publish(context.Context, models.Event) error {
	f.calls++
	return errors.New("boom")
}

func testEvent(typ models.EventType, appID uint64) models.Event {
	return models.NewEvent(typ, appID, "alice", map[string]interface{}{"reason": "spam"}, time.Unix(1700000000, 0))
}

func TestEmitterContinuesPastFailingSink(t *testing.T) {
	bad := &failingSink{}
	ring := NewRingSink(4)
	e := NewEmitter(bad, ring)

	e.Emit(context.Background(), testEvent(models.EventAppRejected, 1))

	assert.Equal(t, 1, bad.calls)
	require.Len(t, ring.Recent(0), 1)
	assert.Equal(t, models.EventAppRejected, ring.Recent(0)[0].Type)

	var nilEmitter *Emitter
	nilEmitter.Emit(context.Background(), testEvent(models.EventAppRejected, 1))
}

func TestRingSinkWraps(t *testing.T) {
	ring := NewRingSink(3)
	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, ring.Publish(context.Background(), testEvent(models.EventAppRegistered, i)))
	}

	recent := ring.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, uint64(5), recent[0].AppID)
	assert.Equal(t, uint64(4), recent[1].AppID)
	assert.Equal(t, uint64(3), recent[2].AppID)

	recent = ring.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, uint64(5), recent[0].AppID)
}

func TestArchiveSink(t *testing.T) {
	sink, err := NewArchiveSink(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	defer sink.Close()

	ctx := context.Background()
	require.NoError(t, sink.Publish(ctx, testEvent(models.EventAppRegistered, 1)))
	require.NoError(t, sink.Publish(ctx, testEvent(models.EventAppRejected, 1)))
	require.NoError(t, sink.Publish(ctx, testEvent(models.EventAppRegistered, 2)))

	events, err := sink.ListByApp(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventAppRegistered, events[0].Type)
	assert.Equal(t, models.EventAppRejected, events[1].Type)
	assert.Equal(t, "spam", events[1].Payload["reason"])
	assert.Equal(t, models.Account("alice"), events[1].Actor)
	assert.Equal(t, int64(1700000000), events[1].Timestamp)

	events, err = sink.ListByApp(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestEmitAfterRequestEnded(t *testing.T) {
	sink, err := NewArchiveSink(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	defer sink.Close()
	ring := NewRingSink(4)
	e := NewEmitter(ring, sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e.Emit(ctx, testEvent(models.EventAppApproved, 3))

	events, err := sink.ListByApp(context.Background(), 3, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventAppApproved, events[0].Type)
	assert.Len(t, ring.Recent(0), 1)
}
