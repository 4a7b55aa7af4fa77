// Package attribution keeps the bounded per-session interaction history used
// to assemble lead-attribution snapshots at submission time.
package attribution

import (
	"sync"
	"time"
)

// EventPropertyViewed is the event name mined for recently viewed listings.
const EventPropertyViewed = "property_viewed"

// SessionEvent is one sanitized interaction in the session history.
type SessionEvent struct {
	EventName string         `json:"event_name"`
	PagePath  string         `json:"page_path"`
	EntityID  string         `json:"entity_id,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
	TS        time.Time      `json:"ts"`
}

// metaAllowList enumerates the only meta keys that survive sanitization.
// Everything else is dropped before the event reaches memory or storage, to
// prevent accidental PII capture.
var metaAllowList = map[string]struct{}{
	"property_id": {},
	"bedrooms":    {},
	"bathrooms":   {},
	"price":       {},
	"area":        {},
	"city":        {},
	"district":    {},
	"finishing":   {},
	"status":      {},
	"position":    {},
	"page":        {},
	"query_terms": {},
	"language":    {},
	"section":     {},
	"milestone":   {},
}

// SanitizeMeta filters meta down to the allow-list. Nil in, nil out.
func SanitizeMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	sanitized := make(map[string]any, len(meta))
	for key, value := range meta {
		if _, ok := metaAllowList[key]; ok {
			sanitized[key] = value
		}
	}
	if len(sanitized) == 0 {
		return nil
	}
	return sanitized
}

// Buffer is a bounded FIFO of the most recent session events. Appending
// beyond capacity evicts the oldest entry.
type Buffer struct {
	mu       sync.Mutex
	capacity int
	events   []SessionEvent
}

// NewBuffer creates a buffer holding at most capacity events.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 10
	}
	return &Buffer{capacity: capacity}
}

// Append adds an event, evicting the oldest entry when full. Meta is assumed
// already sanitized by the caller.
func (b *Buffer) Append(event SessionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, event)
	if len(b.events) > b.capacity {
		b.events = b.events[len(b.events)-b.capacity:]
	}
}

// Events returns a copy of the buffered events, oldest first.
func (b *Buffer) Events() []SessionEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]SessionEvent, len(b.events))
	copy(out, b.events)
	return out
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// LastViewedProperties returns up to max distinct property ids from
// property_viewed events, most recent first.
func (b *Buffer) LastViewedProperties(max int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var ids []string
	seen := make(map[string]struct{})
	for i := len(b.events) - 1; i >= 0 && len(ids) < max; i-- {
		event := b.events[i]
		if event.EventName != EventPropertyViewed || event.EntityID == "" {
			continue
		}
		if _, dup := seen[event.EntityID]; dup {
			continue
		}
		seen[event.EntityID] = struct{}{}
		ids = append(ids, event.EntityID)
	}
	return ids
}

// EventSummary is the compact form of a session event included in a lead
// attribution snapshot.
type EventSummary struct {
	EventName string `json:"event_name"`
	PagePath  string `json:"page_path"`
	EntityID  string `json:"entity_id,omitempty"`
	TS        int64  `json:"ts"`
}

// Summary returns the most recent events, up to max, oldest first.
func (b *Buffer) Summary(max int) []EventSummary {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := 0
	if len(b.events) > max {
		start = len(b.events) - max
	}

	summaries := make([]EventSummary, 0, len(b.events)-start)
	for _, event := range b.events[start:] {
		summaries = append(summaries, EventSummary{
			EventName: event.EventName,
			PagePath:  event.PagePath,
			EntityID:  event.EntityID,
			TS:        event.TS.UnixMilli(),
		})
	}
	return summaries
}
