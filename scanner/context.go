// Copyright (c) 2026 The streamjson Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package scanner

import (
	"bytes"

	"github.com/streamjson/streamjson/slicepool"
)

// ContextIter yields context-path frames from innermost to outermost,
// excluding the frame currently being dispatched. It is a restartable
// snapshot of the pool at the moment it was handed to a callback: Clone
// lets a callback (or PathMatch) walk it without disturbing another reader
// positioned at the same point.
type ContextIter struct {
	pool *slicepool.Pool
	idx  int
}

// newContextIter builds an iterator over pool excluding its topmost frame,
// which is the frame currently being dispatched.
func newContextIter(pool *slicepool.Pool) *ContextIter {
	return &ContextIter{pool: pool, idx: pool.Len() - 2}
}

// Next returns the next enclosing frame's name and container kind, or
// ok=false once the root has been exhausted.
func (c *ContextIter) Next() (name []byte, isObject, isArray bool, ok bool) {
	if c.idx < 0 {
		return nil, false, false, false
	}
	h, data, got := slicepool.GetAssoc[frameHeader](c.pool, c.idx)
	if !got {
		return nil, false, false, false
	}
	c.idx--
	return data, h.IsObject, h.IsArray, true
}

// Clone returns an independent iterator positioned exactly where c is now.
func (c *ContextIter) Clone() *ContextIter {
	cp := *c
	return &cp
}

// PathMatch reports whether pseudoname equals want[0] and ctx's next
// len(want)-1 frames, read innermost first, equal want[1:] one for one. It
// consumes ctx. This is the primitive for expressions like "only match
// content when inside message": PathMatch(ctx, pseudoname, []byte("content"),
// []byte("message")).
func PathMatch(ctx *ContextIter, pseudoname []byte, want ...[]byte) bool {
	if len(want) == 0 {
		return true
	}
	if !bytes.Equal(pseudoname, want[0]) {
		return false
	}
	for _, w := range want[1:] {
		name, _, _, ok := ctx.Next()
		if !ok || !bytes.Equal(name, w) {
			return false
		}
	}
	return true
}
