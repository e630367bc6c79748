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

	"github.com/streamjson/streamjson/tokenizer"
)

// IDTransform is a FindAction that matches every pseudoname and always
// returns a nil Callback, forcing the scanner to walk and skip the entire
// document unmodified. Useful as a Scan smoke test and as the default no-op
// for identity-pass use cases that exercise the scanner without transforming
// anything.
func IDTransform(pseudoname []byte, ctx *ContextIter) Callback { return nil }

// IDEndTransform is IDTransform's FindEndAction counterpart.
func IDEndTransform(pseudoname []byte, ctx *ContextIter) EndCallback { return nil }

// CopyAtom appends the current value's exact on-wire JSON text to dst and
// returns the grown slice, advancing the tokenizer past it. It accepts any
// atomic kind (null, bool, number, string) and fails with ErrorWrongType on
// a container. Strings are copied via WriteLongBytes (re-wrapped in quotes)
// so arbitrarily long strings never need to fit in memory at once; other
// atoms are small enough that a lookahead followed by NextSkip suffices.
func CopyAtom(tok *tokenizer.Tokenizer, dst []byte) ([]byte, error) {
	k, err := tok.Peek()
	if err != nil {
		return nil, err
	}
	switch k {
	case tokenizer.KindString:
		dst = append(dst, '"')
		buf := bytes.NewBuffer(dst)
		if err := tok.WriteLongBytes(buf); err != nil {
			return nil, err
		}
		return append(buf.Bytes(), '"'), nil
	case tokenizer.KindNull, tokenizer.KindBool, tokenizer.KindNumber:
		raw := tok.LookaheadWhile(isAtomByte)
		dst = append(dst, raw...)
		if err := tok.NextSkip(); err != nil {
			return nil, err
		}
		return dst, nil
	default:
		return nil, &tokenizer.Error{Kind: tokenizer.ErrorWrongType, Expected: "atom", Actual: k, Index: tok.CurrentIndex()}
	}
}

// isAtomByte reports whether b could be part of a null/bool/number literal,
// i.e. it is not one of the delimiters that can follow one.
func isAtomByte(b byte) bool {
	switch b {
	case ',', ']', '}', ':', ' ', '\t', '\n', '\r':
		return false
	default:
		return true
	}
}
