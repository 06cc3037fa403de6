// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package buffers

import "github.com/Query-farm/arrowserde/arrowserde/internal/errs"

// Cursor is a forward-only position over n logical elements.
type Cursor struct {
	next int
	n    int
}

// NewCursor returns a cursor over n elements.
func NewCursor(n int) Cursor { return Cursor{n: n} }

// Len returns the total number of elements.
func (c *Cursor) Len() int { return c.n }

// Position returns the index of the next element.
func (c *Cursor) Position() int { return c.next }

// Remaining returns how many elements are left.
func (c *Cursor) Remaining() int { return c.n - c.next }

// Peek returns the next index without advancing.
func (c *Cursor) Peek() (int, bool) {
	return c.next, c.next < c.n
}

// Next returns the next index and advances. Reading past the end fails.
func (c *Cursor) Next() (int, error) {
	if c.next >= c.n {
		return 0, errs.Exhaustedf("exhausted deserializer: all %d elements consumed", c.n)
	}
	i := c.next
	c.next++
	return i, nil
}
