// Package buffer keeps a fixed window of the most recent draws of a chain.
package buffer

// CircularFloat is a fixed size window over a stream of draws. Once full,
// each Add overwrites the oldest draw, and the window can be read back as
// two halves in the order the draws were added.
type CircularFloat struct {
	buffer    []float64 // actual storage
	pos       int       // next write position
	BufSize   int       // BufSize is the (even) number of draws kept
	Count     int       // Count is the number of draws held, at most BufSize
	TotalSeen int64     // TotalSeen is the number of calls to Add
}

// NewCircularFloat creates a window of windowSize draws, rounded down to an
// even size. Sizes below 2 become 2.
func NewCircularFloat(windowSize int) *CircularFloat {
	half := windowSize / 2
	if half < 1 {
		half = 1
	}
	total := half + half

	return &CircularFloat{
		buffer:  make([]float64, total),
		BufSize: total,
	}
}

// Add appends a draw, overwriting the oldest one when full
func (c *CircularFloat) Add(v float64) {
	c.TotalSeen++
	c.buffer[c.pos] = v
	c.pos = (c.pos + 1) % c.BufSize
	if c.Count < c.BufSize {
		c.Count++
	}
}

// Full is true once BufSize draws have been added
func (c *CircularFloat) Full() bool {
	return c.Count >= c.BufSize
}

// Values returns a copy of the held draws, oldest first
func (c *CircularFloat) Values() []float64 {
	out := make([]float64, 0, c.Count)
	start := 0
	if c.Full() {
		start = c.pos
	}
	for i := 0; i < c.Count; i++ {
		out = append(out, c.buffer[(start+i)%c.BufSize])
	}
	return out
}

// FirstHalf iterates over the oldest half of the window. It is nil until
// the window is full.
func (c *CircularFloat) FirstHalf() *CircularFloatIterator {
	if !c.Full() {
		return nil
	}
	return &CircularFloatIterator{buf: c, curr: c.pos, remain: c.BufSize / 2}
}

// SecondHalf iterates over the newest half of the window. It is nil until
// the window is full.
func (c *CircularFloat) SecondHalf() *CircularFloatIterator {
	if !c.Full() {
		return nil
	}
	half := c.BufSize / 2
	return &CircularFloatIterator{buf: c, curr: (c.pos + half) % c.BufSize, remain: half}
}

// CircularFloatIterator reads one half of a CircularFloat
type CircularFloatIterator struct {
	buf    *CircularFloat
	curr   int
	remain int
}

// Next is true while there are values left to read
func (i *CircularFloatIterator) Next() bool {
	return i.remain > 0
}

// Value returns the next draw. Only call it after Next returned true.
func (i *CircularFloatIterator) Value() float64 {
	v := i.buf.buffer[i.curr]
	i.curr = (i.curr + 1) % i.buf.BufSize
	i.remain--
	return v
}

// Collect drains the iterator into a slice
func (i *CircularFloatIterator) Collect() []float64 {
	out := make([]float64, 0, i.remain)
	for i.Next() {
		out = append(out, i.Value())
	}
	return out
}
