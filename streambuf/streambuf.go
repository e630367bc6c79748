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

// Package streambuf implements a fixed-size byte window over an io.Reader:
// component B of the streaming JSON toolkit. It refills the unused suffix
// and, when asked, shifts the live bytes down to make more room; the buffer
// is reallocated only by an explicit call to Grow.
//
// Buffer is the layer package tokenizer builds its refill/shift/retry loop
// on top of; most callers outside this module never touch it directly.
package streambuf

import (
	"bytes"
	"io"
)

// Buffer is a borrowed byte window plus bookkeeping for how much of the
// logical input it has already discarded off the left (ShiftedOut) and a
// best-effort line/column anchor for error reporting.
//
// The zero value is not usable; construct one with Create.
type Buffer struct {
	r   io.Reader
	buf []byte

	nBytes      int   // valid bytes in buf[:nBytes]
	nShiftedOut int64 // total bytes discarded off the left so far
	eof         bool  // true once the reader has reported EOF

	line      int   // 1-indexed line number at the start of the window
	lineStart int64 // absolute offset (in the logical input) of that line's first byte
}

// Create binds buf as the window and r as the source of further bytes. buf
// starts out empty (Len() == 0); call ReadMore to fill it.
func Create(r io.Reader, buf []byte) *Buffer {
	return &Buffer{r: r, buf: buf, line: 1}
}

// Bytes returns the currently valid window, buf[:Len()]. The returned slice
// aliases the bound buffer and is invalidated by the next ReadMore or Shift.
func (b *Buffer) Bytes() []byte { return b.buf[:b.nBytes] }

// Len reports how many valid bytes the window currently holds.
func (b *Buffer) Len() int { return b.nBytes }

// Cap reports the total capacity of the bound buffer.
func (b *Buffer) Cap() int { return len(b.buf) }

// ShiftedOut reports the total number of bytes discarded off the left since
// creation; CurrentIndex adds this to a local window index to get an
// absolute stream offset.
func (b *Buffer) ShiftedOut() int64 { return b.nShiftedOut }

// AtEOF reports whether the underlying reader has reported end of input.
// Bytes already in the window (Len() > 0) may still be unprocessed.
func (b *Buffer) AtEOF() bool { return b.eof }

// CurrentIndex converts a local index into buf into an absolute byte offset
// within the logical input.
func (b *Buffer) CurrentIndex(localIndex int) int64 { return b.nShiftedOut + int64(localIndex) }

// ReadMore reads into the unused suffix of the window (buf[Len():]) without
// moving existing bytes, and returns the number of bytes appended. It
// returns (0, nil) once the window is full or the reader has reached EOF;
// callers distinguish "no room" from "true EOF" via AtEOF.
func (b *Buffer) ReadMore() (int, error) {
	if b.eof {
		return 0, nil
	}
	room := len(b.buf) - b.nBytes
	if room <= 0 {
		return 0, nil
	}
	n, err := b.r.Read(b.buf[b.nBytes : b.nBytes+room])
	if n > 0 {
		b.nBytes += n
	}
	switch {
	case err == io.EOF:
		b.eof = true
		return n, nil
	case err != nil:
		return n, err
	case n == 0:
		// A reader is allowed to return (0, nil); treat it the same as EOF
		// rather than spinning. Real readers should avoid this, but we must
		// not loop forever if one does.
		b.eof = true
		return 0, nil
	}
	return n, nil
}

// Shift copies buf[fromPos:Len()] down to begin at toPos, updates Len() and
// ShiftedOut accordingly, and advances the line/column anchor by scanning
// the bytes between toPos and fromPos (the portion being discarded) for
// newlines.
//
// toPos is typically 0; a nonzero toPos preserves buf[:toPos] across the
// shift, for a caller that needs a handful of leading bytes to survive
// alongside the freshly shifted-in tail.
func (b *Buffer) Shift(toPos, fromPos int) {
	if fromPos < toPos || fromPos > b.nBytes || toPos < 0 {
		panic("streambuf: invalid shift range")
	}
	for i := toPos; i < fromPos; i++ {
		if b.buf[i] == '\n' {
			b.line++
			b.lineStart = b.nShiftedOut + int64(i) + 1
		}
	}
	n := b.nBytes - fromPos
	copy(b.buf[toPos:toPos+n], b.buf[fromPos:b.nBytes])
	b.nShiftedOut += int64(fromPos - toPos)
	b.nBytes = toPos + n
}

// SkipWhitespace advances past ASCII whitespace (space, tab, LF, CR)
// starting at fromPos, refilling and shifting as needed. It returns the
// local index of the first non-whitespace byte, or eof=true if the input
// ends first.
func (b *Buffer) SkipWhitespace(fromPos int) (pos int, eof bool) {
	pos = fromPos
	for {
		for pos < b.nBytes {
			switch b.buf[pos] {
			case ' ', '\t', '\n', '\r':
				pos++
			default:
				return pos, false
			}
		}
		if b.eof {
			return pos, true
		}
		b.Shift(0, pos)
		pos = 0
		if n, _ := b.ReadMore(); n == 0 && b.eof {
			return pos, true
		}
	}
}

// Position computes a best-effort (line, column) for the absolute offset
// CurrentIndex(localIndex), both 1-indexed. It counts newlines already
// shifted out plus any remaining newlines in buf[:localIndex].
func (b *Buffer) Position(localIndex int) (line, col int) {
	line = b.line
	lineStart := b.lineStart
	end := localIndex
	if end > b.nBytes {
		end = b.nBytes
	}
	for i := 0; i < end; i++ {
		if b.buf[i] == '\n' {
			line++
			lineStart = b.nShiftedOut + int64(i) + 1
		}
	}
	col = int(b.CurrentIndex(localIndex)-lineStart) + 1
	return line, col
}

// Grow reallocates the bound buffer to at least n bytes, copying the
// currently valid window (buf[:Len()]) into the new backing array, if the
// buffer is smaller than n. It is a no-op otherwise.
//
// ReadMore never makes room on its own once the window is physically full;
// Grow is for the rare caller-owned-buffer-too-small case -- a single token
// (e.g. a 12-byte surrogate-pair escape) that cannot fit in the capacity the
// caller originally chose.
func (b *Buffer) Grow(n int) {
	if len(b.buf) >= n {
		return
	}
	next := make([]byte, n)
	copy(next, b.buf[:b.nBytes])
	b.buf = next
}

// FromBytes adapts an in-memory document into the io.Reader contract this
// package and package tokenizer consume, for tests and for callers who
// already hold the whole document but still want to exercise the streaming
// path (e.g. the small-buffer-equivalence property).
func FromBytes(data []byte) io.Reader { return bytes.NewReader(data) }

// FromIOReader is the identity adapter: any io.Reader already satisfies the
// pull-reader contract this package expects. It exists so call sites can
// name their intent explicitly next to FromBytes.
func FromIOReader(r io.Reader) io.Reader { return r }
