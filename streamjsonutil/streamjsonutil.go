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

// Package streamjsonutil provides utility tools that are not part of the
// core streamjson libraries.
package streamjsonutil

import "sync"

const (
	// DefaultInitialSize is the default initial size hint of a buffer in
	// the Pool. Set at 4KiB, a comfortable tokenizer window for most
	// documents without a single atomic token forcing a refill.
	DefaultInitialSize = 4096
	// DefaultLowerBound defines the default lower bound for a pool. Set
	// at 64KiB. Buffers with a capacity lower than this size will always
	// be recycled into the pool.
	DefaultLowerBound = 1 << 16
)

// Pool is an implementation of a buffer pool of []byte slices, meant for
// callers that construct many short-lived streambuf.Buffer or
// slicepool.Pool instances (one per incoming document, say) and don't want
// to size and allocate a working buffer by hand each time.
//
// It avoids pinning large chunks of memory (memory leaks) by using a very
// simple "statistical" approach that discards sequentially under-utilized
// buffers in the pool, devised by 'dsnet'
// https://github.com/golang/go/issues/27735#issuecomment-739169121
// https://github.com/golang/go/issues/23199
//
// This matters here because a tokenizer's window only needs to grow past
// its typical size when a single document contains an unusually long
// atomic token (a long string or number); naively putting such an
// oversized buffer back into the pool would let one outlier document pin
// an ever-growing chunk of memory across every future scan.
type Pool struct {
	pool       sync.Pool
	lowerBound int
}

// PooledBuffer is a simple wrapper around a byte slice meant to back a
// streambuf.Buffer's window or a slicepool.Pool's bound buffer.
//
// You can get the underlying byte slice by calling the Bytes() function on
// a PooledBuffer.
type PooledBuffer struct {
	buf     []byte
	strikes int // number of times the buffer was under-utilized
}

// Bytes returns the underlying byte slice of this PooledBuffer.
func (p *PooledBuffer) Bytes() []byte { return p.buf }

// Grow ensures the buffer has at least n bytes of capacity, reallocating
// (and copying no existing content, since callers use this before binding
// a fresh streambuf.Buffer or slicepool.Pool) if necessary.
func (p *PooledBuffer) Grow(n int) {
	if cap(p.buf) >= n {
		p.buf = p.buf[:n]
		return
	}
	p.buf = make([]byte, n)
}

type Option = func(*Pool)

// WithSizeHint sets the default initial size of each buffer (byte slice)
// in the buffer pool. This is handy if you already know, on average, how
// large a tokenizer window or context pool you'll need.
func WithSizeHint(size int) Option {
	return func(p *Pool) {
		p.pool.New = func() any {
			return &PooledBuffer{buf: make([]byte, size)}
		}
	}
}

// WithLowerBound sets the lower bound for this Pool. Buffers with a
// capacity lower than this are always recycled into the pool.
func WithLowerBound(lowerBound int) Option {
	return func(p *Pool) {
		p.lowerBound = lowerBound
	}
}

// NewPool creates a new buffer pool.
func NewPool(options ...Option) *Pool {
	pool := &Pool{
		pool: sync.Pool{
			New: func() any {
				return &PooledBuffer{buf: make([]byte, DefaultInitialSize)}
			},
		},
		lowerBound: DefaultLowerBound,
	}
	for _, option := range options {
		option(pool)
	}
	return pool
}

// Get returns a PooledBuffer from the Pool ready to be used.
func (p *Pool) Get() *PooledBuffer {
	return p.pool.Get().(*PooledBuffer) //nolint: forcetypeassert
}

// Put recycles buf back into the pool.
//
// If a buffer is under-utilized enough times in a row it is discarded
// instead, so a single document with one outsized atomic token doesn't
// leave an oversized buffer pinned in the pool forever. Utilization is
// "at least 50% of capacity used"; a buffer survives four consecutive
// misses below that before being dropped.
func (p *Pool) Put(buf *PooledBuffer) {
	switch {
	case cap(buf.buf) <= p.lowerBound:
		buf.strikes = 0
	case cap(buf.buf)/2 <= len(buf.buf):
		buf.strikes = 0
	case buf.strikes < 4:
		buf.strikes++
	default:
		return
	}
	p.pool.Put(buf)
}
