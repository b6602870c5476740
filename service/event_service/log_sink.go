package event_service

import (
	"context"

	"github.com/varity-labs/varity-app-store/models"
)

// LogSink writes every fact to the structured log
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Publish(_ context.Context, ev models.Event) error {
	log.Info("event", "type", ev.Type, "id", ev.ID, "appId", ev.AppID, "actor", ev.Actor, "payload", ev.Payload)
	return nil
}
