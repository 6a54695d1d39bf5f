package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCapacity bounds how many undrained events a Channel keeps.
const DefaultCapacity = 10000

// Event is one advisory message flowing from background work to the consumer.
// Ratio is only meaningful when HasRatio is set.
type Event struct {
	Message  string
	Time     time.Time
	Level    zerolog.Level
	Ratio    int
	HasRatio bool
}

// Sink is what background work reports into.
type Sink interface {
	Logf(format string, args ...any)
	Warnf(format string, args ...any)
	Ratio(pct int, msg string)
}

// Channel is a bounded FIFO of events with a single draining consumer.
// When full, the oldest event is dropped.
type Channel struct {
	mu       sync.Mutex
	buf      []Event
	capacity int
	dropped  int
	notify   chan struct{}
	log      zerolog.Logger
	now      func() time.Time
}

// NewChannel creates a channel. capacity <= 0 selects DefaultCapacity.
func NewChannel(capacity int, log zerolog.Logger) *Channel {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Channel{
		capacity: capacity,
		notify:   make(chan struct{}, 1),
		log:      log,
		now:      time.Now,
	}
}

// Publish appends ev, stamping its time if unset.
func (c *Channel) Publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = c.now()
	}
	c.mirror(ev)

	c.mu.Lock()
	if len(c.buf) >= c.capacity {
		c.buf = c.buf[1:]
		c.dropped++
	}
	c.buf = append(c.buf, ev)
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *Channel) Logf(format string, args ...any) {
	c.Publish(Event{Message: fmt.Sprintf(format, args...), Level: zerolog.InfoLevel})
}

func (c *Channel) Warnf(format string, args ...any) {
	c.Publish(Event{Message: fmt.Sprintf(format, args...), Level: zerolog.WarnLevel})
}

func (c *Channel) Ratio(pct int, msg string) {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	c.Publish(Event{Message: msg, Level: zerolog.DebugLevel, Ratio: pct, HasRatio: true})
}

// Drain removes and returns up to budget events in FIFO order.
// budget <= 0 drains everything.
func (c *Channel) Drain(budget int) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.buf)
	if budget > 0 && budget < n {
		n = budget
	}
	if n == 0 {
		return nil
	}
	out := make([]Event, n)
	copy(out, c.buf[:n])
	c.buf = c.buf[n:]
	if len(c.buf) == 0 {
		// release the backing array once fully drained
		c.buf = nil
	}
	return out
}

// Len reports the number of undrained events.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buf)
}

// Dropped reports how many events were discarded because the channel was full.
func (c *Channel) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Reset discards all pending events.
func (c *Channel) Reset() {
	c.mu.Lock()
	c.buf = nil
	c.mu.Unlock()
}

// Wait returns a channel that receives when events may be pending.
func (c *Channel) Wait() <-chan struct{} {
	return c.notify
}

func (c *Channel) mirror(ev Event) {
	e := c.log.WithLevel(ev.Level)
	if ev.HasRatio {
		e = e.Int("ratio", ev.Ratio)
	}
	e.Msg(ev.Message)
}

type discard struct{}

func (discard) Logf(string, ...any)  {}
func (discard) Warnf(string, ...any) {}
func (discard) Ratio(int, string)    {}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}
