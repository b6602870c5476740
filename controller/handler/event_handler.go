package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/varity-labs/varity-app-store/controller/respond"
	"github.com/varity-labs/varity-app-store/models"
	"github.com/varity-labs/varity-app-store/service/event_service"
)

// EventHandler fact queries. Either source may be nil.
type EventHandler struct {
	recent  *event_service.RingSink
	archive *event_service.ArchiveSink
}

// NewEventHandler create event handler
func NewEventHandler(recent *event_service.RingSink, archive *event_service.ArchiveSink) *EventHandler {
	return &EventHandler{recent: recent, archive: archive}
}

// Recent latest facts, newest first
// @Summary Recent events
// @Tags Event
// @Produce json
// @Param limit query int false "Max results" default(100)
// @Success 200 {object} respond.Response{data=[]models.Event}
// @Router /api/v1/events/recent [get]
func (h *EventHandler) Recent(c *gin.Context) {
	if h.recent == nil {
		respond.Success(c, []models.Event{})
		return
	}
	respond.Success(c, h.recent.Recent(parseLimit(c)))
}

// ListByApp facts of one app. Served from the archive oldest first, falling back to the
// in-memory window, newest first, when no archive is configured.
// @Summary App events
// @Tags Event
// @Produce json
// @Param id path int true "App ID"
// @Param limit query int false "Max results" default(100)
// @Success 200 {object} respond.Response{data=[]models.Event}
// @Router /api/v1/apps/{id}/events [get]
func (h *EventHandler) ListByApp(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respond.InvalidParam(c, "invalid app id")
		return
	}
	limit := parseLimit(c)

	if h.archive != nil {
		events, err := h.archive.ListByApp(c.Request.Context(), id, limit)
		if err != nil {
			respond.ServerError(c, err.Error())
			return
		}
		respond.Success(c, events)
		return
	}

	events := make([]models.Event, 0)
	if h.recent != nil {
		for _, ev := range h.recent.Recent(0) {
			if ev.AppID != id {
				continue
			}
			events = append(events, ev)
			if len(events) == limit {
				break
			}
		}
	}
	respond.Success(c, events)
}
