package services

import (
	"context"
	"sync"
	"time"

	"github.com/bagusrestoration/bengkel-progress-api/models"
)

// JobEventType names the kind of change published on the feed
type JobEventType string

const (
	JobCreated JobEventType = "created"
	JobUpdated JobEventType = "updated"
	JobDeleted JobEventType = "deleted"
)

// JobEvent is one change to the job collection. Job is nil for deletions.
type JobEvent struct {
	Type  JobEventType      `json:"type"`
	JobID string            `json:"job_id"`
	Job   *models.JobRecord `json:"job,omitempty"`
	At    time.Time         `json:"at"`
}

// DefaultFeedBuffer is the per-subscriber queue length
const DefaultFeedBuffer = 32

// ChangeFeed fans job changes out to live subscribers.
// Publish never blocks: a subscriber whose queue is full misses the event
// and is expected to re-list.
type ChangeFeed struct {
	mu     sync.RWMutex
	subs   map[uint64]chan JobEvent
	nextID uint64
	buffer int
}

// NewChangeFeed creates a feed with the given per-subscriber buffer
func NewChangeFeed(buffer int) *ChangeFeed {
	if buffer <= 0 {
		buffer = DefaultFeedBuffer
	}
	return &ChangeFeed{
		subs:   make(map[uint64]chan JobEvent),
		buffer: buffer,
	}
}

// Subscribe registers a listener that lives until ctx is done.
// The returned channel is closed after the subscription is removed.
func (f *ChangeFeed) Subscribe(ctx context.Context) <-chan JobEvent {
	ch := make(chan JobEvent, f.buffer)

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = ch
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, id)
		close(ch)
		f.mu.Unlock()
	}()

	return ch
}

// Publish delivers an event to every subscriber without waiting
func (f *ChangeFeed) Publish(evt JobEvent) {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, ch := range f.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions
func (f *ChangeFeed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
