package watcher

import (
	"sync"
	"time"
)

// maxWaitFactor bounds how long a steady stream of changes can postpone a
// batch, as a multiple of the quiet period.
const maxWaitFactor = 10

// BatchDebouncer coalesces events per path and emits them once the tree has
// been quiet for the configured delay. A path changed several times appears
// once, with its latest event, at the position it was first seen.
type BatchDebouncer struct {
	delay   time.Duration
	maxWait time.Duration
	emit    func([]Event)

	mu      sync.Mutex
	timer   *time.Timer
	first   time.Time
	pending []Event
	byPath  map[string]int
}

// NewBatchDebouncer creates a debouncer that calls emit with each batch.
func NewBatchDebouncer(delay time.Duration, emit func([]Event)) *BatchDebouncer {
	return &BatchDebouncer{
		delay:   delay,
		maxWait: delay * maxWaitFactor,
		emit:    emit,
		byPath:  make(map[string]int),
	}
}

// Add records event and restarts the quiet period, unless the oldest pending
// event has already waited maxWait.
func (b *BatchDebouncer) Add(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i, ok := b.byPath[event.Path]; ok {
		b.pending[i] = event
	} else {
		b.byPath[event.Path] = len(b.pending)
		b.pending = append(b.pending, event)
	}

	now := time.Now()
	if b.timer == nil {
		b.first = now
	} else {
		b.timer.Stop()
	}
	wait := b.delay
	if remaining := b.maxWait - now.Sub(b.first); remaining < wait {
		wait = max(remaining, 0)
	}
	b.timer = time.AfterFunc(wait, b.flush)
}

func (b *BatchDebouncer) take() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	events := b.pending
	b.pending = nil
	clear(b.byPath)
	return events
}

func (b *BatchDebouncer) flush() {
	if events := b.take(); len(events) > 0 && b.emit != nil {
		b.emit(events)
	}
}

// Cancel drops pending events without emitting them.
func (b *BatchDebouncer) Cancel() {
	b.take()
}

// Flush emits pending events now.
func (b *BatchDebouncer) Flush() {
	b.flush()
}

// EventCount returns the number of distinct pending paths.
func (b *BatchDebouncer) EventCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
