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

// Package tokenizer wraps internal/slicetok's stateless, buffer-oriented JSON
// tokenizer with a refill/shift/retry loop over a streambuf.Buffer, turning
// it into a pull/peek tokenizer that can parse a document arbitrarily larger
// than its working window: component C of the streaming JSON toolkit.
package tokenizer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf16"

	"github.com/streamjson/streamjson/internal/slicetok"
	"github.com/streamjson/streamjson/streambuf"
)

// Kind classifies the token the tokenizer is positioned on. It is
// internal/slicetok's Kind widened with KindEOF, which Peek returns when the
// stream has nothing left but whitespace.
type Kind = slicetok.Kind

const (
	KindNull        = slicetok.KindNull
	KindBool        = slicetok.KindBool
	KindNumber      = slicetok.KindNumber
	KindString      = slicetok.KindString
	KindArrayBegin  = slicetok.KindArrayBegin
	KindArrayEnd    = slicetok.KindArrayEnd
	KindObjectBegin = slicetok.KindObjectBegin
	KindObjectEnd   = slicetok.KindObjectEnd
	KindComma       = slicetok.KindComma
	KindColon       = slicetok.KindColon
	// KindEOF has no internal/slicetok counterpart: it marks true end of
	// input reached while skipping whitespace between values.
	KindEOF Kind = 100
)

// ErrorKind is the public error taxonomy every layer of this module reports
// through, per the error-handling design: the pool has its own four kinds,
// but tokenizer and scanner both surface errors through this one set.
type ErrorKind int

const (
	ErrorIO ErrorKind = iota
	ErrorMalformedJson
	ErrorWrongType
	ErrorEndOfInput
	ErrorNestingExceeded
	ErrorAction
	ErrorUnbalancedJson
	ErrorInternalInvariant
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorIO:
		return "IoError"
	case ErrorMalformedJson:
		return "MalformedJson"
	case ErrorWrongType:
		return "WrongType"
	case ErrorEndOfInput:
		return "EndOfInput"
	case ErrorNestingExceeded:
		return "NestingExceeded"
	case ErrorAction:
		return "ActionError"
	case ErrorUnbalancedJson:
		return "UnbalancedJson"
	default:
		return "InternalInvariant"
	}
}

// Error is the single error type returned by every public operation in this
// module and in package scanner. It always carries an absolute byte offset
// into the logical input; ErrorPosition turns that into a best-effort
// (line, column).
type Error struct {
	Kind  ErrorKind
	Index int64

	Reason   slicetok.Reason // set when Kind == ErrorMalformedJson
	Expected string          // set when Kind == ErrorWrongType
	Actual   Kind             // set when Kind == ErrorWrongType
	Limit    int              // set when Kind == ErrorNestingExceeded
	Depth    int              // set when Kind == ErrorNestingExceeded

	Err     error // wrapped cause, set when Kind == ErrorIO
	Payload error // wrapped callback error, set when Kind == ErrorAction
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrorIO:
		return fmt.Sprintf("tokenizer: io error at byte %d: %v", e.Index, e.Err)
	case ErrorMalformedJson:
		return fmt.Sprintf("tokenizer: malformed json (%s) at byte %d", e.Reason, e.Index)
	case ErrorWrongType:
		return fmt.Sprintf("tokenizer: wrong type at byte %d: expected %s, found %v", e.Index, e.Expected, e.Actual)
	case ErrorNestingExceeded:
		return fmt.Sprintf("tokenizer: nesting exceeded (limit %d, depth %d) at byte %d", e.Limit, e.Depth, e.Index)
	case ErrorAction:
		return fmt.Sprintf("tokenizer: action error at byte %d: %v", e.Index, e.Payload)
	case ErrorUnbalancedJson:
		return fmt.Sprintf("tokenizer: unbalanced json at byte %d", e.Index)
	case ErrorInternalInvariant:
		return fmt.Sprintf("tokenizer: internal invariant violated at byte %d", e.Index)
	default:
		return fmt.Sprintf("tokenizer: unexpected end of input at byte %d", e.Index)
	}
}

func (e *Error) Unwrap() error {
	switch e.Kind {
	case ErrorIO:
		return e.Err
	case ErrorAction:
		return e.Payload
	default:
		return nil
	}
}

// Value is the result of NextValue: a generic decoded scalar, or just a Kind
// for container begin tokens that the caller must descend into explicitly
// via KnownArray/KnownObject.
type Value struct {
	Kind    Kind
	Bool    bool
	Int     int64
	Float   float64
	IsFloat bool
	Str     []byte
}

// Tokenizer is a pull/peek JSON tokenizer over a streambuf.Buffer. The zero
// value is not usable; construct one with New.
type Tokenizer struct {
	buf    *streambuf.Buffer
	cursor int
	scratch []byte
}

// New wraps buf, which must not yet have been read from by any other caller.
func New(buf *streambuf.Buffer) *Tokenizer {
	return &Tokenizer{buf: buf}
}

func (t *Tokenizer) window() []byte { return t.buf.Bytes()[t.cursor:] }

// CurrentIndex reports the absolute byte offset the tokenizer is positioned
// at within the logical input.
func (t *Tokenizer) CurrentIndex() int64 { return t.buf.CurrentIndex(t.cursor) }

// ErrorPosition computes a best-effort (line, column) for an absolute index
// previously returned in an Error. It is only accurate while index still
// falls within the buffer's current window or its immediate history; very
// old indices past many refills lose precision, per the "best-effort"
// position contract.
func (t *Tokenizer) ErrorPosition(index int64) (line, col int) {
	local := int(index - t.buf.ShiftedOut())
	return t.buf.Position(local)
}

func (t *Tokenizer) skipWS() (eof bool) {
	pos, eof := t.buf.SkipWhitespace(t.cursor)
	t.cursor = pos
	return eof
}

// refill shifts the unconsumed window down to index 0 and pulls in more
// bytes. If the shifted window still fills the whole buffer (a single token
// longer than the buffer), the buffer is grown first, so a false return
// always means the underlying reader has truly run out.
func (t *Tokenizer) refill() (refilled bool, err error) {
	t.buf.Shift(0, t.cursor)
	t.cursor = 0
	if t.buf.Len() == t.buf.Cap() && !t.buf.AtEOF() {
		t.buf.Grow(t.buf.Cap() * 2)
	}
	n, rerr := t.buf.ReadMore()
	if rerr != nil {
		return false, t.ioErr(rerr)
	}
	return n > 0, nil
}

func (t *Tokenizer) ioErr(cause error) error {
	return &Error{Kind: ErrorIO, Index: t.CurrentIndex(), Err: cause}
}

func (t *Tokenizer) malformedAt(reason slicetok.Reason) error {
	return &Error{Kind: ErrorMalformedJson, Reason: reason, Index: t.CurrentIndex()}
}

func (t *Tokenizer) wrongType(expected string, actual Kind) error {
	return &Error{Kind: ErrorWrongType, Expected: expected, Actual: actual, Index: t.CurrentIndex()}
}

func (t *Tokenizer) endOfInput() error {
	return &Error{Kind: ErrorEndOfInput, Index: t.CurrentIndex()}
}

// wrapSlicetokErr converts a non-EOB internal/slicetok error (already known
// not to be an *slicetok.EOBError) into an *Error with an absolute index.
func (t *Tokenizer) wrapSlicetokErr(err error) error {
	var merr *slicetok.MalformedError
	if errors.As(err, &merr) {
		return &Error{Kind: ErrorMalformedJson, Reason: merr.Reason, Index: t.buf.CurrentIndex(t.cursor + merr.Index)}
	}
	var werr *slicetok.WrongTypeError
	if errors.As(err, &werr) {
		return &Error{Kind: ErrorWrongType, Expected: werr.Expected, Actual: werr.Actual, Index: t.CurrentIndex()}
	}
	return err
}

// eobToFinalError upgrades an EOBError to a terminal error once refill has
// confirmed true end of input: EofWhileParsingString for strings (an
// unterminated string is always malformed, reported at the end of input),
// EndOfInput for everything else.
func (t *Tokenizer) eobToFinalError(eob *slicetok.EOBError) error {
	if eob.Kind == slicetok.EOBString {
		return &Error{Kind: ErrorMalformedJson, Reason: slicetok.ReasonEofWhileParsingString, Index: t.buf.CurrentIndex(t.buf.Len())}
	}
	return t.endOfInput()
}

// recoverEOB handles one error from an internal/slicetok scan call. done is
// true when the caller should stop looping, either because err was not
// recoverable (finalErr is the wrapped, terminal error) or because refilling
// reached true end of input (finalErr is the upgraded terminal error).
func (t *Tokenizer) recoverEOB(err error) (done bool, finalErr error) {
	var eob *slicetok.EOBError
	if !errors.As(err, &eob) {
		return true, t.wrapSlicetokErr(err)
	}
	refilled, rerr := t.refill()
	if rerr != nil {
		return true, rerr
	}
	if !refilled {
		return true, t.eobToFinalError(eob)
	}
	return false, nil
}

// Peek classifies the upcoming token without consuming it, skipping leading
// whitespace first. It returns KindEOF once only whitespace (or nothing)
// remains.
func (t *Tokenizer) Peek() (Kind, error) {
	if eof := t.skipWS(); eof {
		return KindEOF, nil
	}
	k, err := slicetok.Peek(t.window())
	if err != nil {
		return 0, t.wrapSlicetokErr(err)
	}
	return k, nil
}

// NextNull consumes a "null" literal after verifying the type via Peek.
func (t *Tokenizer) NextNull() error {
	k, err := t.Peek()
	if err != nil {
		return err
	}
	if k != KindNull {
		return t.wrongType("null", k)
	}
	return t.KnownNull()
}

// KnownNull consumes a "null" literal, assuming the caller already verified
// the type via Peek.
func (t *Tokenizer) KnownNull() error {
	for {
		n, err := slicetok.ScanNull(t.window())
		if err == nil {
			t.cursor += n
			return nil
		}
		if done, ferr := t.recoverEOB(err); done {
			return ferr
		}
	}
}

// NextBool consumes a "true"/"false" literal after verifying the type.
func (t *Tokenizer) NextBool() (bool, error) {
	k, err := t.Peek()
	if err != nil {
		return false, err
	}
	if k != KindBool {
		return false, t.wrongType("bool", k)
	}
	return t.KnownBool()
}

// KnownBool consumes a "true"/"false" literal, assuming the type is known.
func (t *Tokenizer) KnownBool() (bool, error) {
	for {
		v, n, err := slicetok.ScanBool(t.window())
		if err == nil {
			t.cursor += n
			return v, nil
		}
		if done, ferr := t.recoverEOB(err); done {
			return false, ferr
		}
	}
}

// numberSpan scans a JSON number, handling the case where the number
// legitimately completes at true end of input rather than at a delimiter.
func (t *Tokenizer) numberSpan() (span []byte, isFloat bool, err error) {
	for {
		n, nf, serr := slicetok.ScanNumber(t.window())
		if serr == nil {
			span = t.window()[:n]
			t.cursor += n
			return span, nf, nil
		}
		var eob *slicetok.EOBError
		if !errors.As(serr, &eob) {
			return nil, false, t.wrapSlicetokErr(serr)
		}
		refilled, rerr := t.refill()
		if rerr != nil {
			return nil, false, rerr
		}
		if !refilled {
			span = t.window()[:eob.N]
			t.cursor += eob.N
			return span, eob.IsFloat, nil
		}
	}
}

// NextInt consumes an integer-valued number after verifying the type.
func (t *Tokenizer) NextInt() (int64, error) {
	k, err := t.Peek()
	if err != nil {
		return 0, err
	}
	if k != KindNumber {
		return 0, t.wrongType("number", k)
	}
	return t.KnownInt()
}

// KnownInt consumes an integer-valued number, assuming the type is known.
// It fails with ErrorWrongType if the number has a fraction or exponent.
func (t *Tokenizer) KnownInt() (int64, error) {
	span, isFloat, err := t.numberSpan()
	if err != nil {
		return 0, err
	}
	if isFloat {
		return 0, t.wrongType("int", KindNumber)
	}
	v, perr := slicetok.ParseInt(span)
	if perr != nil {
		return 0, t.malformedAt(slicetok.ReasonInvalidNumber)
	}
	return v, nil
}

// NextFloat consumes a number (integer or float) after verifying the type.
func (t *Tokenizer) NextFloat() (float64, error) {
	k, err := t.Peek()
	if err != nil {
		return 0, err
	}
	if k != KindNumber {
		return 0, t.wrongType("number", k)
	}
	return t.KnownFloat()
}

// KnownFloat consumes a number, assuming the type is known.
func (t *Tokenizer) KnownFloat() (float64, error) {
	span, _, err := t.numberSpan()
	if err != nil {
		return 0, err
	}
	v, perr := slicetok.ParseFloat(span)
	if perr != nil {
		return 0, t.malformedAt(slicetok.ReasonInvalidNumber)
	}
	return v, nil
}

// stringSpan scans a string literal and returns the raw bytes strictly
// between its quotes, undecoded. The returned slice aliases the tokenizer's
// window and is invalidated by the next call on this tokenizer.
func (t *Tokenizer) stringSpan() ([]byte, error) {
	for {
		n, err := slicetok.ScanStringSpan(t.window())
		if err == nil {
			raw := t.window()[1 : n-1]
			t.cursor += n
			return raw, nil
		}
		if done, ferr := t.recoverEOB(err); done {
			return nil, ferr
		}
	}
}

// NextBytes returns the raw on-wire bytes of a string (undecoded) after
// verifying the type.
func (t *Tokenizer) NextBytes() ([]byte, error) {
	k, err := t.Peek()
	if err != nil {
		return nil, err
	}
	if k != KindString {
		return nil, t.wrongType("string", k)
	}
	return t.stringSpan()
}

// KnownBytes is NextBytes assuming the type is known.
func (t *Tokenizer) KnownBytes() ([]byte, error) { return t.stringSpan() }

// KnownStr decodes a string's JSON escapes, assuming the type is known. The
// returned slice is owned by the tokenizer's decode scratch buffer and is
// invalidated by the next call on this tokenizer.
func (t *Tokenizer) KnownStr() ([]byte, error) {
	startAbs := t.CurrentIndex()
	raw, err := t.stringSpan()
	if err != nil {
		return nil, err
	}
	t.scratch = t.scratch[:0]
	decoded, derr := slicetok.DecodeStringContent(t.scratch, raw)
	if derr != nil {
		var merr *slicetok.MalformedError
		if errors.As(derr, &merr) {
			return nil, &Error{Kind: ErrorMalformedJson, Reason: merr.Reason, Index: startAbs + 1 + int64(merr.Index)}
		}
		return nil, derr
	}
	t.scratch = decoded
	return t.scratch, nil
}

// NextStr decodes a string's JSON escapes after verifying the type.
func (t *Tokenizer) NextStr() ([]byte, error) {
	k, err := t.Peek()
	if err != nil {
		return nil, err
	}
	if k != KindString {
		return nil, t.wrongType("string", k)
	}
	return t.KnownStr()
}

// readKey decodes a string assumed to be an object key, then consumes the
// following colon (and any whitespace before it).
func (t *Tokenizer) readKey() ([]byte, error) {
	key, err := t.KnownStr()
	if err != nil {
		return nil, err
	}
	if eof := t.skipWS(); eof {
		return nil, t.endOfInput()
	}
	if t.window()[0] != ':' {
		return nil, t.malformedAt(slicetok.ReasonUnexpectedToken)
	}
	t.cursor++
	return key, nil
}

// NextKey reads an object key (decoded) and consumes the following colon.
func (t *Tokenizer) NextKey() ([]byte, error) {
	k, err := t.Peek()
	if err != nil {
		return nil, err
	}
	if k != KindString {
		return nil, t.wrongType("string", k)
	}
	return t.readKey()
}

// NextArray consumes '[' after verifying the type, and reports whether a
// first element follows (false means the array was empty and ']' has
// already been consumed).
func (t *Tokenizer) NextArray() (hasElement bool, err error) {
	k, err := t.Peek()
	if err != nil {
		return false, err
	}
	if k != KindArrayBegin {
		return false, t.wrongType("array", k)
	}
	return t.KnownArray()
}

// KnownArray is NextArray assuming the type is known.
func (t *Tokenizer) KnownArray() (hasElement bool, err error) {
	t.cursor++ // '['
	if eof := t.skipWS(); eof {
		return false, t.endOfInput()
	}
	if t.window()[0] == ']' {
		t.cursor++
		return false, nil
	}
	return true, nil
}

// ArrayStep is called after an element has been fully consumed. It consumes
// either a ',' (reporting another element follows) or a ']' (reporting the
// array is done).
func (t *Tokenizer) ArrayStep() (hasElement bool, err error) {
	if eof := t.skipWS(); eof {
		return false, t.endOfInput()
	}
	switch t.window()[0] {
	case ',':
		t.cursor++
		return true, nil
	case ']':
		t.cursor++
		return false, nil
	default:
		return false, t.malformedAt(slicetok.ReasonUnexpectedToken)
	}
}

// NextObject consumes '{' after verifying the type. hasMember is false when
// the object was empty (and '}' has already been consumed); otherwise key is
// the first member's decoded key, positioned on its value.
func (t *Tokenizer) NextObject() (key []byte, hasMember bool, err error) {
	k, err := t.Peek()
	if err != nil {
		return nil, false, err
	}
	if k != KindObjectBegin {
		return nil, false, t.wrongType("object", k)
	}
	return t.KnownObject()
}

// KnownObject is NextObject assuming the type is known.
func (t *Tokenizer) KnownObject() (key []byte, hasMember bool, err error) {
	t.cursor++ // '{'
	if eof := t.skipWS(); eof {
		return nil, false, t.endOfInput()
	}
	if t.window()[0] == '}' {
		t.cursor++
		return nil, false, nil
	}
	if t.window()[0] != '"' {
		return nil, false, t.malformedAt(slicetok.ReasonUnexpectedToken)
	}
	key, err = t.readKey()
	return key, true, err
}

// ObjectStep is called after a member's value has been fully consumed.
func (t *Tokenizer) ObjectStep() (key []byte, hasMember bool, err error) {
	if eof := t.skipWS(); eof {
		return nil, false, t.endOfInput()
	}
	switch t.window()[0] {
	case ',':
		t.cursor++
		if eof := t.skipWS(); eof {
			return nil, false, t.endOfInput()
		}
		if t.window()[0] != '"' {
			return nil, false, t.malformedAt(slicetok.ReasonUnexpectedToken)
		}
		key, err = t.readKey()
		return key, true, err
	case '}':
		t.cursor++
		return nil, false, nil
	default:
		return nil, false, t.malformedAt(slicetok.ReasonUnexpectedToken)
	}
}

// NextValue decodes whatever scalar is at the cursor, or returns just the
// Kind for container-begin tokens, which the caller descends into via
// KnownArray/KnownObject.
func (t *Tokenizer) NextValue() (Value, error) {
	k, err := t.Peek()
	if err != nil {
		return Value{}, err
	}
	switch k {
	case KindEOF:
		return Value{Kind: KindEOF}, nil
	case KindNull:
		if err := t.KnownNull(); err != nil {
			return Value{}, err
		}
		return Value{Kind: k}, nil
	case KindBool:
		v, err := t.KnownBool()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: k, Bool: v}, nil
	case KindNumber:
		span, isFloat, err := t.numberSpan()
		if err != nil {
			return Value{}, err
		}
		if isFloat {
			f, perr := slicetok.ParseFloat(span)
			if perr != nil {
				return Value{}, t.malformedAt(slicetok.ReasonInvalidNumber)
			}
			return Value{Kind: k, Float: f, IsFloat: true}, nil
		}
		i, perr := slicetok.ParseInt(span)
		if perr != nil {
			return Value{}, t.malformedAt(slicetok.ReasonInvalidNumber)
		}
		return Value{Kind: k, Int: i}, nil
	case KindString:
		s, err := t.KnownStr()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: k, Str: s}, nil
	default:
		return Value{Kind: k}, nil
	}
}

// NextSkip consumes and discards whatever value is at the cursor, recursing
// into arrays and objects via the same public pull API.
func (t *Tokenizer) NextSkip() error {
	k, err := t.Peek()
	if err != nil {
		return err
	}
	switch k {
	case KindEOF:
		return t.endOfInput()
	case KindNull:
		return t.KnownNull()
	case KindBool:
		_, err := t.KnownBool()
		return err
	case KindNumber:
		_, _, err := t.numberSpan()
		return err
	case KindString:
		_, err := t.stringSpan()
		return err
	case KindArrayBegin:
		has, err := t.KnownArray()
		if err != nil {
			return err
		}
		for has {
			if err := t.NextSkip(); err != nil {
				return err
			}
			has, err = t.ArrayStep()
			if err != nil {
				return err
			}
		}
		return nil
	case KindObjectBegin:
		_, has, err := t.KnownObject()
		if err != nil {
			return err
		}
		for has {
			if err := t.NextSkip(); err != nil {
				return err
			}
			_, has, err = t.ObjectStep()
			if err != nil {
				return err
			}
		}
		return nil
	default:
		return t.malformedAt(slicetok.ReasonUnexpectedToken)
	}
}

// Finish verifies nothing but trailing whitespace remains.
func (t *Tokenizer) Finish() error {
	if eof := t.skipWS(); !eof {
		return &Error{Kind: ErrorUnbalancedJson, Index: t.CurrentIndex()}
	}
	return nil
}

// scanLongChunk scans data[pos:] for the string's closing quote, blindly
// skipping the byte after any backslash (mirroring
// internal/slicetok.ScanStringSpan). end is the safe boundary: either the
// quote's index (found=true) or the point where scanning had to stop because
// a trailing backslash might start an escape that spans the window
// (found=false).
func scanLongChunk(data []byte, pos int) (end int, found bool) {
	i := pos
	for i < len(data) {
		switch data[i] {
		case '"':
			return i, true
		case '\\':
			if i+1 >= len(data) {
				return i, false
			}
			i += 2
		default:
			i++
		}
	}
	return i, false
}

func utf8SeqLen(lead byte) int {
	switch {
	case lead&0xE0 == 0xC0:
		return 2
	case lead&0xF0 == 0xE0:
		return 3
	case lead&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}

// isSurrogateEscape reports whether the 4 hex digits of a \uXXXX escape
// decode to a UTF-16 surrogate (high or low), meaning it cannot be a
// complete rune on its own: a high surrogate needs a following \uXXXX low
// surrogate to combine into one rune, exactly what decodeUnicodeEscape
// looks for. An invalid hex value is treated as a plain 6-byte escape; the
// actual decode call reports the InvalidEscape error.
func isSurrogateEscape(hex []byte) bool {
	v, err := strconv.ParseUint(string(hex), 16, 16)
	if err != nil {
		return false
	}
	return utf16.IsSurrogate(rune(v))
}

// trimDecodeBoundary walks data[start:end] and returns the largest prefix
// end that contains no partial trailing escape sequence (including a
// partial \uXXXX, or a \uXXXX high surrogate still waiting on its paired
// low surrogate) and no partial trailing multi-byte UTF-8 sequence, so the
// prefix is always safe to hand to DecodeStringContent on its own.
func trimDecodeBoundary(data []byte, start, end int) int {
	i, safe := start, start
	for i < end {
		c := data[i]
		switch {
		case c == '\\':
			if i+1 >= end {
				return safe
			}
			if data[i+1] == 'u' {
				if i+6 > end {
					return safe
				}
				escLen := 6
				if isSurrogateEscape(data[i+2 : i+6]) {
					if i+12 > end {
						return safe
					}
					escLen = 12
				}
				i += escLen
			} else {
				i += 2
			}
			safe = i
		case c < 0x80:
			i++
			safe = i
		default:
			n := utf8SeqLen(c)
			if n == 0 || i+n > end {
				return safe
			}
			i += n
			safe = i
		}
	}
	return safe
}

func (t *Tokenizer) wrapDecodeErrAt(err error, chunkStart int) error {
	var merr *slicetok.MalformedError
	if errors.As(err, &merr) {
		return &Error{Kind: ErrorMalformedJson, Reason: merr.Reason, Index: t.buf.CurrentIndex(chunkStart) + int64(merr.Index)}
	}
	return err
}

// writeLongRaw is the shared implementation of WriteLongBytes and
// WriteLongStr. The cursor must be on the string's opening quote; that quote
// is dropped immediately (nothing below ever needs to re-read it) so the
// full window capacity is available for the undecided tail of a chunk and
// whatever ReadMore appends next.
func (t *Tokenizer) writeLongRaw(w io.Writer, decode bool) error {
	t.buf.Shift(0, t.cursor+1) // past the opening quote
	t.cursor = 0
	pos := 0
	for {
		data := t.buf.Bytes()
		rawEnd, found := scanLongChunk(data, pos)
		flushEnd := rawEnd
		if decode && !found {
			flushEnd = trimDecodeBoundary(data, pos, rawEnd)
		}
		if flushEnd > pos {
			chunk := data[pos:flushEnd]
			if decode {
				t.scratch = t.scratch[:0]
				decoded, derr := slicetok.DecodeStringContent(t.scratch, chunk)
				if derr != nil {
					return t.wrapDecodeErrAt(derr, pos)
				}
				if _, werr := w.Write(decoded); werr != nil {
					return t.ioErr(werr)
				}
			} else {
				if _, werr := w.Write(chunk); werr != nil {
					return t.ioErr(werr)
				}
			}
		}
		if found {
			t.cursor = rawEnd + 1 // past the closing quote
			t.buf.Shift(0, t.cursor)
			t.cursor = 0
			return nil
		}
		t.buf.Shift(0, flushEnd)
		pos = 0
		n, rerr := t.buf.ReadMore()
		if rerr != nil {
			return t.ioErr(rerr)
		}
		if n == 0 {
			if t.buf.AtEOF() {
				return t.malformedAt(slicetok.ReasonEofWhileParsingString)
			}
			// The window is merely full, not at true end of input: an
			// escape or multi-byte sequence that straddles the boundary
			// doesn't fit in the caller's original buffer. Grow it rather
			// than mistake "no room yet" for "no bytes left".
			t.buf.Grow(t.buf.Cap() * 2)
		}
	}
}

// WriteLongBytes streams a string's raw on-wire bytes (escapes unchanged,
// quotes excluded) to w without ever holding the whole string in memory.
func (t *Tokenizer) WriteLongBytes(w io.Writer) error {
	k, err := t.Peek()
	if err != nil {
		return err
	}
	if k != KindString {
		return t.wrongType("string", k)
	}
	return t.writeLongRaw(w, false)
}

// WriteLongStr streams a string's decoded UTF-8 content to w, the same way
// but resolving JSON escapes (including \uXXXX surrogate pairs) as it goes.
func (t *Tokenizer) WriteLongStr(w io.Writer) error {
	k, err := t.Peek()
	if err != nil {
		return err
	}
	if k != KindString {
		return t.wrongType("string", k)
	}
	return t.writeLongRaw(w, true)
}

// SkipLiteralToken attempts to match and consume exactly lit at the cursor
// (no whitespace skip first), used to tolerate SSE-style framing interleaved
// with JSON documents. It reports false without advancing on any mismatch,
// including truncation at true end of input.
func (t *Tokenizer) SkipLiteralToken(lit []byte) (bool, error) {
	for {
		w := t.window()
		if len(w) >= len(lit) {
			if bytes.Equal(w[:len(lit)], lit) {
				t.cursor += len(lit)
				return true, nil
			}
			return false, nil
		}
		if !bytes.HasPrefix(lit, w) {
			return false, nil
		}
		refilled, err := t.refill()
		if err != nil {
			return false, err
		}
		if !refilled {
			return false, nil
		}
	}
}

// LookaheadWhile returns the buffered prefix satisfying pred byte-by-byte,
// without advancing the cursor, refilling as needed. It stops early (a short
// result) at true end of input.
func (t *Tokenizer) LookaheadWhile(pred func(byte) bool) []byte {
	for {
		w := t.window()
		i := 0
		for i < len(w) && pred(w[i]) {
			i++
		}
		if i < len(w) || t.buf.AtEOF() {
			return w[:i]
		}
		refilled, err := t.refill()
		if err != nil || !refilled {
			return t.window()[:i]
		}
	}
}

// LookaheadN ensures n bytes are buffered and returns them without
// advancing, refilling as needed. A short result means true end of input.
func (t *Tokenizer) LookaheadN(n int) []byte {
	for {
		w := t.window()
		if len(w) >= n {
			return w[:n]
		}
		if t.buf.AtEOF() {
			return w
		}
		refilled, err := t.refill()
		if err != nil || !refilled {
			return t.window()
		}
	}
}
