package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opencode-ai/netforge/internal/models"
)

// DefaultJournalSize bounds a journal created with a non-positive size.
const DefaultJournalSize = 500

// Journal is an in-memory Repository keeping the most recent events.
type Journal struct {
	mu     sync.RWMutex
	size   int
	events []models.Event
	now    func() time.Time
}

// NewJournal creates a journal holding at most size events.
func NewJournal(size int) *Journal {
	if size <= 0 {
		size = DefaultJournalSize
	}
	return &Journal{size: size, now: time.Now}
}

// Create stamps the event and appends it, dropping the oldest entry when
// the journal is full.
func (j *Journal) Create(ctx context.Context, event *models.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = j.now().UTC()
	}
	j.events = append(j.events, *event)
	if over := len(j.events) - j.size; over > 0 {
		j.events = append([]models.Event(nil), j.events[over:]...)
	}
	return nil
}

// List returns up to limit of the newest events, oldest first. A
// non-positive limit returns everything.
func (j *Journal) List(limit int) []models.Event {
	j.mu.RLock()
	defer j.mu.RUnlock()

	start := 0
	if limit > 0 && len(j.events) > limit {
		start = len(j.events) - limit
	}
	out := make([]models.Event, len(j.events)-start)
	copy(out, j.events[start:])
	return out
}

// Len returns the number of stored events.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.events)
}
