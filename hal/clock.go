package hal

import "time"

type monotonicClock struct {
	t0     time.Time
	offset uint32
}

// NewClock returns a millisecond clock backed by the runtime's monotonic time.
//
// offset shifts the first reading, which lets callers start close to the
// wraparound point.
func NewClock(offset uint32) Clock {
	return &monotonicClock{t0: time.Now(), offset: offset}
}

func (c *monotonicClock) Millis() uint32 {
	return c.offset + uint32(time.Since(c.t0)/time.Millisecond)
}
