package common

import (
	"sync"
	"time"
)

// QueueProcessor processes a batch of items drained from the queue.
type QueueProcessor[V any] func(items []V)

// QueueHandler batches incoming items and hands them to a processor on a
// background goroutine, in chunks of at most chunkSize.
type QueueHandler[V any] struct {
	mu        sync.Mutex
	queue     []V
	processor QueueProcessor[V]
	chunkSize int
	interval  time.Duration
	stop      chan struct{}
	stopOnce  sync.Once
}

func NewQueueHandler[V any](processor QueueProcessor[V], chunkSize int) *QueueHandler[V] {
	q := &QueueHandler[V]{
		queue:     make([]V, 0),
		processor: processor,
		chunkSize: chunkSize,
		interval:  time.Second,
		stop:      make(chan struct{}),
	}
	go q.processQueue()
	return q
}

// Add enqueues items for background processing.
func (h *QueueHandler[V]) Add(items ...V) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queue = append(h.queue, items...)
}

// Stop drains the queue one last time and stops the worker.
func (h *QueueHandler[V]) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

func (h *QueueHandler[V]) drain() []V {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.queue) == 0 {
		return nil
	}
	n := min(h.chunkSize, len(h.queue))
	items := h.queue[:n]
	h.queue = h.queue[n:]
	return items
}

func (h *QueueHandler[V]) processQueue() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stop:
			for items := h.drain(); items != nil; items = h.drain() {
				h.processor(items)
			}
			return
		case <-ticker.C:
			for items := h.drain(); items != nil; items = h.drain() {
				h.processor(items)
			}
		}
	}
}
