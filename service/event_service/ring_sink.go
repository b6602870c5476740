package event_service

import (
	"context"
	"sync"

	"github.com/varity-labs/varity-app-store/models"
)

// RingSink keeps the most recent facts in memory for the HTTP boundary
type RingSink struct {
	mu   sync.RWMutex
	buf  []models.Event
	next int
	full bool
}

// NewRingSink size must be positive
func NewRingSink(size int) *RingSink {
	if size <= 0 {
		size = 1
	}
	return &RingSink{buf: make([]models.Event, size)}
}

func (r *RingSink) Name() string { return "recent" }

func (r *RingSink) Publish(_ context.Context, ev models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = ev
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
	return nil
}

// Recent returns up to limit facts, newest first. limit <= 0 returns everything kept.
func (r *RingSink) Recent(limit int) []models.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := r.next
	if r.full {
		n = len(r.buf)
	}
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]models.Event, 0, limit)
	for i := 1; i <= limit; i++ {
		out = append(out, r.buf[(r.next-i+len(r.buf))%len(r.buf)])
	}
	return out
}
