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

// Package scanner walks a JSON stream via package tokenizer, maintaining the
// enclosing key/structure path in a slicepool.Pool, and dispatches
// user-supplied callbacks keyed on that path: component D of the streaming
// JSON toolkit.
package scanner

import (
	"github.com/streamjson/streamjson/slicepool"
	"github.com/streamjson/streamjson/tokenizer"
)

// Pseudonames occupy a context-path slot where no real JSON key exists. They
// are byte literals starting with '#' so they never collide with a real key.
var (
	PseudoTop    = []byte("#top")
	PseudoObject = []byte("#object")
	PseudoArray  = []byte("#array")
	PseudoAtom   = []byte("#atom")
)

// DefaultMaxNesting is the context-path depth Options.MaxNesting defaults to
// when left at zero.
const DefaultMaxNesting = 20

// Action is the result a Callback reports about the value under the cursor.
type Action int

const (
	// ActionNone means the callback did not touch the stream; the scanner
	// consumes the value itself (descending into containers, or calling
	// NextSkip on atoms).
	ActionNone Action = iota
	// ActionValueConsumed means the callback fully consumed the value;
	// the scanner must not itself consume it.
	ActionValueConsumed
)

// Callback is invoked with the tokenizer positioned on a value and the
// caller's baton. It may read the value (advancing the tokenizer) or leave
// it untouched, reporting which via Action.
type Callback func(tok *tokenizer.Tokenizer, baton any) (Action, error)

// EndCallback is invoked after a value has been fully consumed or walked.
type EndCallback func(baton any) error

// FindAction is a pure function invoked at the moment the scanner is
// positioned on the value of pseudoname (a real key or a structural
// pseudoname); it may inspect the enclosing path via ctx. A nil return means
// no callback applies and the scanner should consume the value itself.
type FindAction func(pseudoname []byte, ctx *ContextIter) Callback

// FindEndAction is FindAction's counterpart, invoked after the value has
// been fully consumed or walked.
type FindEndAction func(pseudoname []byte, ctx *ContextIter) EndCallback

// Options configures a Scan call.
type Options struct {
	// SSETokens are literal byte sequences (e.g. "data:", "DONE") skipped
	// at the top level between JSON documents, tolerating server-sent
	// events framing interleaved with the JSON stream.
	SSETokens [][]byte
	// StopEarly, when true, makes Scan return as soon as the first
	// top-level value has been consumed.
	StopEarly bool
	// MaxNesting caps the context path's depth; zero means
	// DefaultMaxNesting.
	MaxNesting int
}

func (o Options) maxNesting() int {
	if o.MaxNesting <= 0 {
		return DefaultMaxNesting
	}
	return o.MaxNesting
}

// frameHeader is the associated value pushed alongside every context-path
// frame's name, per spec's "context path representation" design note.
// IsElemBegin marks that this frame's first child's begin dispatch is still
// pending; the tokenizer's own refill loop already makes every call
// idempotent across a refill, so the field is carried for fidelity with the
// documented frame model rather than for any bookkeeping this scanner needs.
type frameHeader struct {
	IsObject    bool
	IsArray     bool
	IsElemBegin bool
}

// Scan walks the JSON stream exposed by tok, starting at a single context
// frame #top, invoking findAction when positioned on each value and
// findEndAction once that value has been fully consumed or walked. pool
// holds the context path and must be sized for opts' (or the default)
// MaxNesting before Scan is called; Scan clears it first.
//
// Tokenizer errors, callback errors, nesting-limit errors and unbalanced-JSON
// errors all propagate with the stream position attached; there is no
// partial-state recovery.
func Scan(tok *tokenizer.Tokenizer, pool *slicepool.Pool, findAction FindAction, findEndAction FindEndAction, baton any, opts Options) error {
	pool.Clear()
	maxNesting := opts.maxNesting()

	for {
		k, err := tok.Peek()
		if err != nil {
			matched, serr := trySSE(tok, opts.SSETokens)
			if serr != nil {
				return serr
			}
			if matched {
				continue
			}
			return err
		}
		if k == tokenizer.KindEOF {
			return nil
		}

		if err := dispatchValue(tok, pool, findAction, findEndAction, baton, PseudoTop, maxNesting); err != nil {
			return err
		}
		if opts.StopEarly {
			return nil
		}
	}
}

// trySSE attempts each configured SSE literal in order at the current
// cursor (which skip_whitespace has already advanced to the first
// non-whitespace byte, courtesy of the failed Peek that preceded this call).
func trySSE(tok *tokenizer.Tokenizer, literals [][]byte) (matched bool, err error) {
	for _, lit := range literals {
		ok, serr := tok.SkipLiteralToken(lit)
		if serr != nil {
			return false, serr
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// dispatchValue handles the single value position at the tokenizer's cursor,
// whose resolved name is pseudoname: the real key for an object member, a
// structural pseudoname for an array element, or PseudoTop for the lone
// top-level document. It pushes this position's frame, dispatches begin and
// end callbacks around it, and descends into containers the callback left
// untouched.
func dispatchValue(tok *tokenizer.Tokenizer, pool *slicepool.Pool, findAction FindAction, findEndAction FindEndAction, baton any, pseudoname []byte, maxNesting int) error {
	k, err := tok.Peek()
	if err != nil {
		return err
	}
	isObject := k == tokenizer.KindObjectBegin
	isArray := k == tokenizer.KindArrayBegin

	if pool.Len()+1 > maxNesting {
		return &tokenizer.Error{
			Kind:  tokenizer.ErrorNestingExceeded,
			Index: tok.CurrentIndex(),
			Limit: maxNesting,
			Depth: pool.Len() + 1,
		}
	}
	if _, err := slicepool.PushAssoc(pool, frameHeader{IsObject: isObject, IsArray: isArray, IsElemBegin: true}, pseudoname); err != nil {
		return err
	}
	defer pool.Pop()

	consumed := false
	if cb := findAction(pseudoname, newContextIter(pool)); cb != nil {
		action, cerr := cb(tok, baton)
		if cerr != nil {
			return actionErr(tok, cerr)
		}
		consumed = action == ActionValueConsumed
	}

	if !consumed {
		switch {
		case isObject:
			if err := walkObject(tok, pool, findAction, findEndAction, baton, maxNesting); err != nil {
				return err
			}
		case isArray:
			if err := walkArray(tok, pool, findAction, findEndAction, baton, maxNesting); err != nil {
				return err
			}
		default:
			if err := tok.NextSkip(); err != nil {
				return err
			}
		}
	}

	if endCb := findEndAction(pseudoname, newContextIter(pool)); endCb != nil {
		if eerr := endCb(baton); eerr != nil {
			return actionErr(tok, eerr)
		}
	}
	return nil
}

// walkObject consumes an object's members, assuming the cursor is on its
// opening brace, dispatching each member's value under its decoded key.
func walkObject(tok *tokenizer.Tokenizer, pool *slicepool.Pool, findAction FindAction, findEndAction FindEndAction, baton any, maxNesting int) error {
	key, has, err := tok.KnownObject()
	if err != nil {
		return err
	}
	for has {
		if err := dispatchValue(tok, pool, findAction, findEndAction, baton, key, maxNesting); err != nil {
			return err
		}
		key, has, err = tok.ObjectStep()
		if err != nil {
			return err
		}
	}
	return nil
}

// walkArray consumes an array's elements, assuming the cursor is on its
// opening bracket, dispatching each element under a structural pseudoname
// matching its own kind.
func walkArray(tok *tokenizer.Tokenizer, pool *slicepool.Pool, findAction FindAction, findEndAction FindEndAction, baton any, maxNesting int) error {
	has, err := tok.KnownArray()
	if err != nil {
		return err
	}
	for has {
		name, err := arrayElementPseudoname(tok)
		if err != nil {
			return err
		}
		if err := dispatchValue(tok, pool, findAction, findEndAction, baton, name, maxNesting); err != nil {
			return err
		}
		has, err = tok.ArrayStep()
		if err != nil {
			return err
		}
	}
	return nil
}

// arrayElementPseudoname resolves the structural pseudoname for the element
// at the cursor: #object/#array for container elements, #atom otherwise.
func arrayElementPseudoname(tok *tokenizer.Tokenizer) ([]byte, error) {
	k, err := tok.Peek()
	if err != nil {
		return nil, err
	}
	switch k {
	case tokenizer.KindObjectBegin:
		return PseudoObject, nil
	case tokenizer.KindArrayBegin:
		return PseudoArray, nil
	default:
		return PseudoAtom, nil
	}
}

func actionErr(tok *tokenizer.Tokenizer, payload error) error {
	return &tokenizer.Error{Kind: tokenizer.ErrorAction, Index: tok.CurrentIndex(), Payload: payload}
}
