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

// Package slicetok is the stateless, slice-oriented JSON tokenizer primitive
// that package tokenizer wraps with a refill/shift/retry loop.
//
// Every function here takes a byte slice and looks only at its own prefix:
// nothing is buffered, nothing is retained across calls, and a token that
// would cross the end of the slice is reported as an *EOBError* rather than
// guessed at. This mirrors the "out of scope, assumed available" primitive
// spec.md describes; no published Go module has quite this shape (value
// tokenizers either own their I/O buffering or require the whole document up
// front), so it lives here as an unexported implementation detail of
// package tokenizer rather than as a public dependency.
package slicetok

import (
	"fmt"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

// Kind classifies the JSON token found at the start of a slice.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArrayBegin
	KindArrayEnd
	KindObjectBegin
	KindObjectEnd
	KindComma
	KindColon
)

// EOBKind identifies which kind of token ran out of buffer, so the retry
// loop in package tokenizer can decide how to realign the window.
type EOBKind int

const (
	EOBValue EOBKind = iota
	EOBLiteral
	EOBNumber
	EOBString
	EOBHexEscape
)

func (k EOBKind) String() string {
	switch k {
	case EOBValue:
		return "value"
	case EOBLiteral:
		return "literal"
	case EOBNumber:
		return "number"
	case EOBString:
		return "string"
	case EOBHexEscape:
		return "hex-escape"
	default:
		return "unknown"
	}
}

// EOBError reports that a token's bytes ran past the end of the slice
// handed to a Scan/Peek function. It is recoverable: package tokenizer
// catches it, refills its window, and retries the call.
type EOBError struct {
	Kind EOBKind
	// N is the number of bytes of this token already confirmed valid. Only
	// meaningful for EOBNumber, where a number may legitimately end at true
	// end-of-input rather than at a delimiter.
	N int
	// IsFloat carries ScanNumber's fraction/exponent classification as of
	// byte N, since a true end-of-input means the caller must finalize the
	// number from N and IsFloat without calling ScanNumber again.
	IsFloat bool
}

func (e *EOBError) Error() string {
	return fmt.Sprintf("slicetok: unexpected end of buffer while parsing %s", e.Kind)
}

// Is reports that EOBError matches the ErrUnexpectedEOB sentinel, so callers
// can use errors.Is(err, ErrUnexpectedEOB) without a type switch.
func (e *EOBError) Is(target error) bool { return target == ErrUnexpectedEOB }

// ErrUnexpectedEOB is the sentinel every *EOBError matches via errors.Is.
var ErrUnexpectedEOB = fmt.Errorf("slicetok: unexpected end of buffer")

// Reason categorizes a MalformedError.
type Reason string

const (
	ReasonInvalidLiteral        Reason = "InvalidLiteral"
	ReasonInvalidNumber         Reason = "InvalidNumber"
	ReasonInvalidEscape         Reason = "InvalidEscape"
	ReasonControlCharacter      Reason = "ControlCharacterInString"
	ReasonUnexpectedToken       Reason = "UnexpectedToken"
	ReasonEofWhileParsingString Reason = "EofWhileParsingString"
)

// MalformedError reports JSON that is definitively invalid -- never
// recovered by refilling, unlike EOBError.
type MalformedError struct {
	Reason Reason
	// Index is the index within the slice passed to the failing call where
	// the problem was found.
	Index int
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("slicetok: malformed json (%s) at index %d", e.Reason, e.Index)
}

// WrongTypeError reports that the token found does not match what the
// caller asked for (e.g. NextStr called when the next token is a number).
type WrongTypeError struct {
	Expected string
	Actual   Kind
}

func (e *WrongTypeError) Error() string {
	return fmt.Sprintf("slicetok: wrong type: expected %s, found %v", e.Expected, e.Actual)
}

// Peek classifies the token at data[0] without consuming anything. It
// requires at least one byte; an empty slice is reported as EOBValue.
func Peek(data []byte) (Kind, error) {
	if len(data) == 0 {
		return 0, &EOBError{Kind: EOBValue}
	}
	switch data[0] {
	case '"':
		return KindString, nil
	case '{':
		return KindObjectBegin, nil
	case '}':
		return KindObjectEnd, nil
	case '[':
		return KindArrayBegin, nil
	case ']':
		return KindArrayEnd, nil
	case ',':
		return KindComma, nil
	case ':':
		return KindColon, nil
	case 'n':
		return KindNull, nil
	case 't', 'f':
		return KindBool, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return KindNumber, nil
	default:
		return 0, &MalformedError{Reason: ReasonUnexpectedToken, Index: 0}
	}
}

func matchLiteral(data []byte, lit string) (n int, err error) {
	if len(data) < len(lit) {
		if string(data) == lit[:len(data)] {
			return 0, &EOBError{Kind: EOBLiteral}
		}
		return 0, &MalformedError{Reason: ReasonInvalidLiteral, Index: 0}
	}
	if string(data[:len(lit)]) != lit {
		return 0, &MalformedError{Reason: ReasonInvalidLiteral, Index: 0}
	}
	return len(lit), nil
}

// ScanNull consumes a "null" literal, returning its byte length.
func ScanNull(data []byte) (n int, err error) { return matchLiteral(data, "null") }

// ScanBool consumes a "true" or "false" literal.
func ScanBool(data []byte) (value bool, n int, err error) {
	if len(data) == 0 {
		return false, 0, &EOBError{Kind: EOBLiteral}
	}
	if data[0] == 't' {
		n, err = matchLiteral(data, "true")
		return true, n, err
	}
	n, err = matchLiteral(data, "false")
	return false, n, err
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// ScanNumber consumes a JSON number per RFC 8259 and reports whether it
// contains a fraction or exponent (isFloat). If the slice ends before a
// definitive terminator is seen, it returns an *EOBError with Kind
// EOBNumber and N set to the number of bytes already confirmed -- a true
// end-of-input at that point means the number is simply complete, which is
// package tokenizer's call to make, not this package's.
func ScanNumber(data []byte) (n int, isFloat bool, err error) {
	i := 0
	if i < len(data) && data[i] == '-' {
		i++
	}
	if i >= len(data) {
		return i, isFloat, &EOBError{Kind: EOBNumber, N: i, IsFloat: isFloat}
	}
	switch {
	case data[i] == '0':
		i++
		if i < len(data) && isDigit(data[i]) {
			return 0, false, &MalformedError{Reason: ReasonInvalidNumber, Index: i}
		}
	case data[i] >= '1' && data[i] <= '9':
		i++
		for i < len(data) && isDigit(data[i]) {
			i++
		}
	default:
		return 0, false, &MalformedError{Reason: ReasonInvalidNumber, Index: i}
	}

	if i >= len(data) {
		return i, isFloat, &EOBError{Kind: EOBNumber, N: i, IsFloat: isFloat}
	}
	if data[i] == '.' {
		isFloat = true
		i++
		start := i
		for i < len(data) && isDigit(data[i]) {
			i++
		}
		if i == start {
			if i >= len(data) {
				return i, isFloat, &EOBError{Kind: EOBNumber, N: i, IsFloat: isFloat}
			}
			return 0, false, &MalformedError{Reason: ReasonInvalidNumber, Index: i}
		}
		if i >= len(data) {
			return i, isFloat, &EOBError{Kind: EOBNumber, N: i, IsFloat: isFloat}
		}
	}
	if data[i] == 'e' || data[i] == 'E' {
		isFloat = true
		i++
		if i < len(data) && (data[i] == '+' || data[i] == '-') {
			i++
		}
		start := i
		for i < len(data) && isDigit(data[i]) {
			i++
		}
		if i == start {
			if i >= len(data) {
				return i, isFloat, &EOBError{Kind: EOBNumber, N: i, IsFloat: isFloat}
			}
			return 0, false, &MalformedError{Reason: ReasonInvalidNumber, Index: i}
		}
		if i >= len(data) {
			return i, isFloat, &EOBError{Kind: EOBNumber, N: i, IsFloat: isFloat}
		}
	}
	return i, isFloat, nil
}

// ParseInt parses the exact byte span ScanNumber identified as an int64.
func ParseInt(span []byte) (int64, error) { return strconv.ParseInt(string(span), 10, 64) }

// ParseFloat parses the exact byte span ScanNumber identified as a float64.
func ParseFloat(span []byte) (float64, error) { return strconv.ParseFloat(string(span), 64) }

// ScanStringSpan requires data[0] == '"' and returns the total byte length
// of the string literal including both quotes, without decoding escapes. A
// backslash is trusted to start a two-byte escape (its second byte is
// skipped blindly); ScanStringSpan does not validate \uXXXX hex digits or
// escape legality -- that is DecodeStringContent's job, called only when a
// caller actually wants the decoded value.
func ScanStringSpan(data []byte) (n int, err error) {
	if len(data) == 0 || data[0] != '"' {
		return 0, &MalformedError{Reason: ReasonUnexpectedToken, Index: 0}
	}
	i := 1
	for {
		if i >= len(data) {
			return 0, &EOBError{Kind: EOBString}
		}
		c := data[i]
		switch {
		case c == '"':
			return i + 1, nil
		case c == '\\':
			i++
			if i >= len(data) {
				return 0, &EOBError{Kind: EOBString}
			}
			i++
		case c < 0x20:
			return 0, &MalformedError{Reason: ReasonControlCharacter, Index: i}
		default:
			i++
		}
	}
}

// DecodeStringContent decodes JSON escapes (including \uXXXX surrogate
// pairs) in raw -- the bytes strictly between a string's quotes, assumed
// complete -- appending the UTF-8 result to dst and returning the new
// slice.
func DecodeStringContent(dst, raw []byte) ([]byte, error) {
	i := 0
	for i < len(raw) {
		c := raw[i]
		if c != '\\' {
			dst = append(dst, c)
			i++
			continue
		}
		i++
		if i >= len(raw) {
			return nil, &MalformedError{Reason: ReasonInvalidEscape, Index: i}
		}
		switch raw[i] {
		case '"', '\\', '/':
			dst = append(dst, raw[i])
			i++
		case 'n':
			dst = append(dst, '\n')
			i++
		case 't':
			dst = append(dst, '\t')
			i++
		case 'r':
			dst = append(dst, '\r')
			i++
		case 'b':
			dst = append(dst, '\b')
			i++
		case 'f':
			dst = append(dst, '\f')
			i++
		case 'u':
			i++
			r, consumed, err := decodeUnicodeEscape(raw, i)
			if err != nil {
				return nil, err
			}
			dst = utf8.AppendRune(dst, r)
			i += consumed
		default:
			return nil, &MalformedError{Reason: ReasonInvalidEscape, Index: i}
		}
	}
	return dst, nil
}

func decodeUnicodeEscape(raw []byte, i int) (rune, int, error) {
	r1, err := hex4(raw, i)
	if err != nil {
		return 0, 0, err
	}
	if !utf16.IsSurrogate(rune(r1)) {
		return rune(r1), 4, nil
	}
	if i+4+2 > len(raw) || raw[i+4] != '\\' || raw[i+4+1] != 'u' {
		return utf8.RuneError, 4, nil
	}
	r2, err := hex4(raw, i+6)
	if err != nil {
		return 0, 0, err
	}
	combined := utf16.DecodeRune(rune(r1), rune(r2))
	if combined == utf8.RuneError {
		return utf8.RuneError, 4, nil
	}
	return combined, 10, nil
}

func hex4(raw []byte, i int) (uint16, error) {
	if i+4 > len(raw) {
		return 0, &MalformedError{Reason: ReasonInvalidEscape, Index: i}
	}
	v, err := strconv.ParseUint(string(raw[i:i+4]), 16, 16)
	if err != nil {
		return 0, &MalformedError{Reason: ReasonInvalidEscape, Index: i}
	}
	return uint16(v), nil
}
