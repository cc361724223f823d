package transport

import (
	"container/heap"
	"sync"
)

// Draw defers display-visible work to the moment its audio time is actually
// heard. Audio callbacks schedule a closure at their transport time; the
// display loop calls Flush with the time currently coming out of the
// speakers.
type Draw struct {
	mu    sync.Mutex
	queue drawQueue
	seq   uint64
}

type drawItem struct {
	fn  func()
	at  float64
	seq uint64
}

// NewDraw returns an empty draw channel.
func NewDraw() *Draw {
	return &Draw{}
}

// Schedule queues fn to run once Flush reaches at.
func (d *Draw) Schedule(fn func(), at float64) {
	d.mu.Lock()
	d.seq++
	heap.Push(&d.queue, drawItem{fn: fn, at: at, seq: d.seq})
	d.mu.Unlock()
}

// Flush runs every callback scheduled at or before now, oldest first, and
// returns how many ran. Callbacks run without the lock held.
func (d *Draw) Flush(now float64) int {
	d.mu.Lock()
	var ready []func()
	for len(d.queue) > 0 && d.queue[0].at <= now {
		ready = append(ready, heap.Pop(&d.queue).(drawItem).fn)
	}
	d.mu.Unlock()
	for _, fn := range ready {
		fn()
	}
	return len(ready)
}

// Clear drops every pending callback.
func (d *Draw) Clear() {
	d.mu.Lock()
	d.queue = nil
	d.mu.Unlock()
}

// Len returns the number of pending callbacks.
func (d *Draw) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

type drawQueue []drawItem

func (q drawQueue) Len() int { return len(q) }
func (q drawQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}
func (q drawQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *drawQueue) Push(x any)   { *q = append(*q, x.(drawItem)) }
func (q *drawQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}
