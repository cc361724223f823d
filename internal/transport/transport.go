package transport

import (
	"container/heap"
	"math"
	"sync"
)

// Handle identifies a scheduled event. The zero Handle is never issued.
type Handle uint64

// Callback runs on the transport's tick with the event's scheduled time in
// seconds.
type Callback func(at float64)

type event struct {
	handle    Handle
	cb        Callback
	frame     int64
	seq       uint64
	start     float64 // first scheduled time (repeats)
	interval  float64 // seconds between repeats, 0 for one-shot events
	end       float64 // repeats stop before this time; +Inf when unbounded
	count     int64   // repeats already issued
	cancelled bool
	index     int
}

// Transport is a sample-clock timeline. Time advances one frame per Tick
// while running. Events scheduled on it fire from Tick, in frame order and
// then in the order they were scheduled.
type Transport struct {
	mu         sync.Mutex
	sampleRate int
	bpm        float64
	running    bool
	pos        int64 // current frame; negative during the lead-in
	queue      eventQueue
	live       map[Handle]*event
	nextHandle Handle
	seq        uint64
	draw       *Draw
}

// New creates a stopped transport.
func New(sampleRate int, bpm float64) *Transport {
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	return &Transport{
		sampleRate: sampleRate,
		bpm:        bpm,
		live:       make(map[Handle]*event),
		draw:       NewDraw(),
	}
}

// SampleRate returns the frames per second of the timeline.
func (t *Transport) SampleRate() int { return t.sampleRate }

// Draw returns the draw-synchronized side channel bound to this timeline.
func (t *Transport) Draw() *Draw { return t.draw }

// BPM returns the current tempo.
func (t *Transport) BPM() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bpm
}

// SetBPM replaces the tempo. Already scheduled events keep their times.
func (t *Transport) SetBPM(bpm float64) {
	t.mu.Lock()
	t.bpm = bpm
	t.mu.Unlock()
}

// Start begins advancing the clock. Time zero is reached lead seconds after
// the call, so events scheduled at or near zero are not missed. Starting a
// running transport is a no-op.
func (t *Transport) Start(lead float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	if lead < 0 || math.IsNaN(lead) {
		lead = 0
	}
	t.pos = -int64(math.Round(lead * float64(t.sampleRate)))
	t.running = true
}

// Stop halts the clock, cancels every pending event, drops pending draw
// callbacks and rewinds to zero.
func (t *Transport) Stop() {
	t.mu.Lock()
	for _, ev := range t.live {
		ev.cancelled = true
	}
	t.live = make(map[Handle]*event)
	t.queue = t.queue[:0]
	t.running = false
	t.pos = 0
	t.mu.Unlock()
	t.draw.Clear()
}

// Running reports whether the clock is advancing.
func (t *Transport) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Now returns the current time in seconds. It is negative during the lead-in.
func (t *Transport) Now() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seconds(t.pos)
}

// Frame returns the current frame.
func (t *Transport) Frame() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pos
}

// ScheduleOnce runs cb at time at. A time already in the past fires on the
// next tick.
func (t *Transport) ScheduleOnce(cb Callback, at float64) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	ev := t.newEvent(cb)
	ev.start = at
	ev.frame = max(t.frameOf(at), t.pos)
	heap.Push(&t.queue, ev)
	return ev.handle
}

// ScheduleRepeat runs cb every interval seconds from start. With a positive
// duration the repeats stop before start+duration; otherwise they continue
// until cancelled. When start has already passed, the first call lands on
// the next interval-aligned time so the series stays on its original grid.
func (t *Transport) ScheduleRepeat(cb Callback, interval, start, duration float64) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	ev := t.newEvent(cb)
	if interval <= 0 || math.IsNaN(interval) || math.IsInf(interval, 0) {
		// A non-positive interval degenerates to a single call.
		ev.start = start
		ev.frame = max(t.frameOf(start), t.pos)
		heap.Push(&t.queue, ev)
		return ev.handle
	}
	ev.start = start
	ev.interval = interval
	ev.end = math.Inf(1)
	if duration > 0 {
		ev.end = start + duration
	}
	now := t.seconds(t.pos)
	if start < now {
		ev.count = int64(math.Ceil((now - start) / interval))
	}
	if ev.at() >= ev.end {
		ev.cancelled = true
		delete(t.live, ev.handle)
		return ev.handle
	}
	ev.frame = t.frameOf(ev.at())
	heap.Push(&t.queue, ev)
	return ev.handle
}

// Cancel removes a pending event. It reports whether anything was removed;
// cancelling an unknown or already cancelled handle is safe.
func (t *Transport) Cancel(h Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	ev, ok := t.live[h]
	if !ok {
		return false
	}
	ev.cancelled = true
	delete(t.live, h)
	if ev.index >= 0 {
		heap.Remove(&t.queue, ev.index)
	}
	return true
}

// IsPending reports whether h can still fire.
func (t *Transport) IsPending(h Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.live[h]
	return ok
}

// Pending returns the number of events that can still fire.
func (t *Transport) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

// Tick fires every event due at the current frame and advances the clock by
// one frame. The lock is released while callbacks run, so callbacks may
// schedule and cancel freely; an event cancelled by an earlier callback in
// the same tick does not fire.
func (t *Transport) Tick() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	pos := t.pos
	t.pos++
	if len(t.queue) == 0 || t.queue[0].frame > pos {
		t.mu.Unlock()
		return
	}
	var due []*event
	for len(t.queue) > 0 && t.queue[0].frame <= pos {
		due = append(due, heap.Pop(&t.queue).(*event))
	}
	t.mu.Unlock()

	for _, ev := range due {
		t.mu.Lock()
		if ev.cancelled {
			t.mu.Unlock()
			continue
		}
		at := ev.at()
		t.reschedule(ev)
		t.mu.Unlock()
		ev.cb(at)
	}
}

// Advance ticks the clock the given number of frames.
func (t *Transport) Advance(frames int) {
	for i := 0; i < frames; i++ {
		t.Tick()
	}
}

// reschedule queues the next occurrence of a repeat or retires the event.
func (t *Transport) reschedule(ev *event) {
	if ev.interval > 0 {
		ev.count++
		if next := ev.at(); next < ev.end {
			ev.frame = t.frameOf(next)
			t.seq++
			ev.seq = t.seq
			heap.Push(&t.queue, ev)
			return
		}
	}
	delete(t.live, ev.handle)
}

func (t *Transport) newEvent(cb Callback) *event {
	t.nextHandle++
	t.seq++
	ev := &event{handle: t.nextHandle, cb: cb, seq: t.seq, index: -1}
	t.live[ev.handle] = ev
	return ev
}

func (t *Transport) frameOf(sec float64) int64 {
	return int64(math.Round(sec * float64(t.sampleRate)))
}

func (t *Transport) seconds(frame int64) float64 {
	return float64(frame) / float64(t.sampleRate)
}

func (e *event) at() float64 {
	return e.start + float64(e.count)*e.interval
}

type eventQueue []*event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].frame != q[j].frame {
		return q[i].frame < q[j].frame
	}
	return q[i].seq < q[j].seq
}

func (q eventQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *eventQueue) Push(x any) {
	ev := x.(*event)
	ev.index = len(*q)
	*q = append(*q, ev)
}

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	ev.index = -1
	*q = old[:n-1]
	return ev
}
