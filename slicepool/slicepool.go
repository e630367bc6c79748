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

// Package slicepool implements a fixed-memory stack of variable-length byte
// slices, optionally each preceded by a trivially-copyable associated header.
//
// A Pool never allocates. It is bound once to a caller-provided buffer and a
// fixed maximum slice count, and every subsequent Push/Pop only moves the
// bookkeeping offsets and copies bytes within that buffer. This makes it
// suitable for holding a JSON scanner's context path (see package scanner)
// entirely inside memory the caller already owns.
//
// # Layout
//
// The bound buffer is split into two regions: a descriptor array of fixed
// size, followed by a data heap that grows upward as slices are pushed:
//
//	[ descriptor array (low, fixed N_max entries) | data heap (high, append-only) ]
//
// Each descriptor is a fixed 6-byte record (three little-endian uint16
// fields: offset, length and payloadLen) written directly into the buffer,
// so the descriptor array itself costs no separate Go allocation. Because
// the fields are 16-bit, a single Pool can only address up to 65535 bytes of
// data heap; Create rejects anything larger.
//
// For a plain Push, payloadLen always equals length. For PushAssoc, length
// additionally covers alignment padding and the associated header, so
// payloadLen (the trailing data-bytes length) is recorded separately,
// letting GetAssoc/PopAssoc locate the header without knowing its size in
// advance.
package slicepool

import (
	"encoding/binary"
	"errors"
	"unsafe"
)

// Errors returned by Pool methods. All of them are contract violations by
// the caller (a buffer too small, too many pushes, a slice too large) rather
// than conditions the pool recovers from.
var (
	// ErrZeroCapacity is returned by Create when maxSlices is 0.
	ErrZeroCapacity = errors.New("slicepool: max slices must be > 0")
	// ErrBufferTooSmall is returned by Create when buf cannot hold the
	// descriptor array for the requested maxSlices.
	ErrBufferTooSmall = errors.New("slicepool: buffer too small for descriptor array")
	// ErrAddressRange is returned by Create when buf is larger than the
	// descriptor fields (uint16 each) can address.
	ErrAddressRange = errors.New("slicepool: buffer exceeds addressable range")
	// ErrSliceLimitExceeded is returned by Push/PushAssoc when the pool
	// already holds maxSlices entries.
	ErrSliceLimitExceeded = errors.New("slicepool: slice limit exceeded")
	// ErrBufferOverflow is returned by Push/PushAssoc when the data does not
	// fit in the remaining data heap.
	ErrBufferOverflow = errors.New("slicepool: buffer overflow")
	// ErrValueTooLarge is returned by Push/PushAssoc when the resulting
	// offset or length overflows a descriptor's uint16 field.
	ErrValueTooLarge = errors.New("slicepool: value too large for descriptor")
)

const (
	descriptorSize = 6 // offset, length, payloadLen, each a uint16
	maxAddress     = 1<<16 - 1
)

// Pool is a fixed-memory stack of byte slices. The zero Pool is not usable;
// construct one with Create.
type Pool struct {
	buf       []byte
	maxSlices int
	dataStart int // offset in buf where the data heap begins
	count     int
	dataUsed  int // high-water mark of the data heap, relative to dataStart
}

// Create binds buf as the pool's working memory and fixes the maximum
// number of live slices at maxSlices.
//
// Create fails if maxSlices is zero, if buf cannot hold the descriptor array
// for maxSlices entries, or if the data heap (buf past the descriptor array)
// is larger than the descriptor's 16-bit offset/length fields can address.
func Create(buf []byte, maxSlices int) (*Pool, error) {
	if maxSlices <= 0 {
		return nil, ErrZeroCapacity
	}
	descBytes := maxSlices * descriptorSize
	if len(buf) < descBytes {
		return nil, ErrBufferTooSmall
	}
	if len(buf)-descBytes > maxAddress {
		return nil, ErrAddressRange
	}
	return &Pool{
		buf:       buf,
		maxSlices: maxSlices,
		dataStart: descBytes,
	}, nil
}

// Len reports the number of live slices.
func (p *Pool) Len() int { return p.count }

// IsEmpty reports whether the pool holds no slices.
func (p *Pool) IsEmpty() bool { return p.count == 0 }

// Clear discards every slice in O(1).
func (p *Pool) Clear() {
	p.count = 0
	p.dataUsed = 0
}

type descriptor struct {
	offset     int
	length     int
	payloadLen int
}

func (p *Pool) descriptorAt(i int) descriptor {
	base := i * descriptorSize
	return descriptor{
		offset:     int(binary.LittleEndian.Uint16(p.buf[base : base+2])),
		length:     int(binary.LittleEndian.Uint16(p.buf[base+2 : base+4])),
		payloadLen: int(binary.LittleEndian.Uint16(p.buf[base+4 : base+6])),
	}
}

func (p *Pool) setDescriptorAt(i int, d descriptor) {
	base := i * descriptorSize
	binary.LittleEndian.PutUint16(p.buf[base:base+2], uint16(d.offset))
	binary.LittleEndian.PutUint16(p.buf[base+2:base+4], uint16(d.length))
	binary.LittleEndian.PutUint16(p.buf[base+4:base+6], uint16(d.payloadLen))
}

func (p *Pool) region(d descriptor) []byte {
	start := p.dataStart + d.offset
	return p.buf[start : start+d.length]
}

// reserve validates a length-byte allocation starting at the current
// high-water mark, returning the descriptor offset/length to use.
func (p *Pool) reserve(n int) (offset int, err error) {
	if p.count >= p.maxSlices {
		return 0, ErrSliceLimitExceeded
	}
	end := p.dataUsed + n
	if end > len(p.buf)-p.dataStart {
		return 0, ErrBufferOverflow
	}
	if p.dataUsed > maxAddress || end > maxAddress {
		return 0, ErrValueTooLarge
	}
	return p.dataUsed, nil
}

// Push appends bytes to the top of the pool and returns a reference to the
// stored copy. The returned slice is only valid until the next mutating call
// (Push, PushAssoc, Pop, PopAssoc, or Clear).
func (p *Pool) Push(bytes []byte) ([]byte, error) {
	off, err := p.reserve(len(bytes))
	if err != nil {
		return nil, err
	}
	d := descriptor{offset: off, length: len(bytes), payloadLen: len(bytes)}
	dst := p.region(d)
	copy(dst, bytes)
	p.setDescriptorAt(p.count, d)
	p.count++
	p.dataUsed = off + d.length
	return dst, nil
}

// Pop removes and returns the topmost slice's bytes. It returns ok=false if
// the pool is empty. The returned slice is only valid until the next
// mutating call.
func (p *Pool) Pop() (data []byte, ok bool) {
	if p.count == 0 {
		return nil, false
	}
	idx := p.count - 1
	d := p.descriptorAt(idx)
	data = p.region(d)
	p.count = idx
	p.dataUsed = d.offset
	return data, true
}

// Top returns the topmost slice's bytes without removing it.
func (p *Pool) Top() (data []byte, ok bool) {
	if p.count == 0 {
		return nil, false
	}
	return p.region(p.descriptorAt(p.count - 1)), true
}

// Get returns the bytes of the slice at the given index, 0 being the
// bottom-most (oldest) slice.
func (p *Pool) Get(index int) (data []byte, ok bool) {
	if index < 0 || index >= p.count {
		return nil, false
	}
	return p.region(p.descriptorAt(index)), true
}

// PushAssoc appends bytes to the top of the pool preceded by header, a
// trivially-copyable plain-data value of type T. header is stored with
// natural alignment: the data cursor is rounded up to alignof(T) before the
// header's raw bits are written, so GetAssoc can read it back directly.
//
// T must not contain pointers, slices, maps, channels, or anything else
// requiring a destructor or GC tracking; PushAssoc copies its raw bits with
// no regard for Go's memory model guarantees around reference types.
func PushAssoc[T any](p *Pool, header T, data []byte) ([]byte, error) {
	if p.count >= p.maxSlices {
		return nil, ErrSliceLimitExceeded
	}
	size := int(unsafe.Sizeof(header))
	align := int(unsafe.Alignof(header))
	padded := alignUp(p.dataUsed, align)
	padding := padded - p.dataUsed

	totalLen := padding + size + len(data)
	off, err := p.reserve(totalLen)
	if err != nil {
		return nil, err
	}

	d := descriptor{offset: off, length: totalLen, payloadLen: len(data)}
	region := p.region(d)

	headerBytes := unsafe.Slice((*byte)(unsafe.Pointer(&header)), size)
	copy(region[padding:padding+size], headerBytes)
	copy(region[padding+size:], data)

	p.setDescriptorAt(p.count, d)
	p.count++
	p.dataUsed = off + totalLen
	return region[padding+size:], nil
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	if rem := n % align; rem != 0 {
		return n + (align - rem)
	}
	return n
}

// splitAssoc locates header and data within an associated-value region,
// using the descriptor's payloadLen to find the header's size-independent
// boundary.
func splitAssoc(region []byte, d descriptor, headerSize int) (header, data []byte) {
	dataStart := d.length - d.payloadLen
	headerStart := dataStart - headerSize
	return region[headerStart:dataStart], region[dataStart:]
}

// PopAssoc removes and returns the topmost slice's header and bytes. It
// returns ok=false if the pool is empty.
//
// PopAssoc must be called with the same T that PushAssoc stored; there is no
// runtime tag confirming this, matching the "plain bits" contract described
// at the package level.
func PopAssoc[T any](p *Pool) (header T, data []byte, ok bool) {
	if p.count == 0 {
		return header, nil, false
	}
	idx := p.count - 1
	d := p.descriptorAt(idx)
	region := p.region(d)

	size := int(unsafe.Sizeof(header))
	h, rest := splitAssoc(region, d, size)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&header)), size), h)

	p.count = idx
	p.dataUsed = d.offset
	return header, rest, true
}

// GetAssoc reads the header and bytes of the slice at the given index
// without removing it.
func GetAssoc[T any](p *Pool, index int) (header T, data []byte, ok bool) {
	if index < 0 || index >= p.count {
		return header, nil, false
	}
	d := p.descriptorAt(index)
	region := p.region(d)
	size := int(unsafe.Sizeof(header))
	h, rest := splitAssoc(region, d, size)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&header)), size), h)
	return header, rest, true
}

// Forward returns a restartable snapshot iterator from the bottom-most
// (oldest) slice to the topmost.
func (p *Pool) Forward() *Iterator { return &Iterator{p: p, n: p.count, idx: 0, step: 1} }

// Reverse returns a restartable snapshot iterator from the topmost slice to
// the bottom-most (oldest).
func (p *Pool) Reverse() *Iterator { return &Iterator{p: p, n: p.count, idx: p.count - 1, step: -1} }

// Iterator walks a fixed snapshot of the pool's slice count at the moment it
// was created; it does not observe later mutations.
type Iterator struct {
	p    *Pool
	n    int
	idx  int
	step int
	seen int
}

// Next returns the next slice's bytes, or ok=false once exhausted.
func (it *Iterator) Next() (data []byte, ok bool) {
	if it.seen >= it.n {
		return nil, false
	}
	data, _ = it.p.Get(it.idx)
	it.idx += it.step
	it.seen++
	return data, true
}

// Pairs returns a restartable iterator over consecutive bottom-to-top pairs
// of slices, ignoring a trailing odd element.
func (p *Pool) Pairs() *PairIterator { return &PairIterator{p: p, n: p.count / 2 * 2} }

// PairIterator yields consecutive (a, b) slice pairs.
type PairIterator struct {
	p   *Pool
	n   int // even count to consider
	idx int
}

// Next returns the next pair, or ok=false once exhausted.
func (it *PairIterator) Next() (a, b []byte, ok bool) {
	if it.idx+1 >= it.n {
		return nil, nil, false
	}
	a, _ = it.p.Get(it.idx)
	b, _ = it.p.Get(it.idx + 1)
	it.idx += 2
	return a, b, true
}

// IterAssoc returns a restartable iterator over (header, bytes) pairs for a
// pool built entirely of PushAssoc[T] entries, from bottom to top.
func IterAssoc[T any](p *Pool) *AssocIterator[T] {
	return &AssocIterator[T]{p: p, n: p.count}
}

// PairsAssoc returns a restartable iterator over consecutive bottom-to-top
// pairs of PushAssoc[T] entries, ignoring a trailing odd element. Unlike
// Pairs (which yields the two slices' raw bytes), each side of a PairsAssoc
// pair carries its own header alongside its bytes.
func PairsAssoc[T any](p *Pool) *AssocPairIterator[T] {
	return &AssocPairIterator[T]{p: p, n: p.count / 2 * 2}
}

// AssocPairIterator yields consecutive (header, bytes) pairs.
type AssocPairIterator[T any] struct {
	p   *Pool
	n   int
	idx int
}

// Next returns the next pair's headers and bytes, or ok=false once exhausted.
func (it *AssocPairIterator[T]) Next() (ha T, da []byte, hb T, db []byte, ok bool) {
	if it.idx+1 >= it.n {
		return ha, nil, hb, nil, false
	}
	ha, da, _ = GetAssoc[T](it.p, it.idx)
	hb, db, _ = GetAssoc[T](it.p, it.idx+1)
	it.idx += 2
	return ha, da, hb, db, true
}

// AssocIterator walks a fixed snapshot of a pool's associated-value entries.
type AssocIterator[T any] struct {
	p   *Pool
	n   int
	idx int
}

// Next returns the next (header, data) entry, or ok=false once exhausted.
func (it *AssocIterator[T]) Next() (header T, data []byte, ok bool) {
	if it.idx >= it.n {
		return header, nil, false
	}
	header, data, ok = GetAssoc[T](it.p, it.idx)
	it.idx++
	return header, data, ok
}
