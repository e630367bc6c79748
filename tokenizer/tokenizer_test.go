package tokenizer_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/streamjson/streamjson/streambuf"
	"github.com/streamjson/streamjson/tokenizer"
)

func newTok(doc string, bufSize int) *tokenizer.Tokenizer {
	b := streambuf.Create(streambuf.FromBytes([]byte(doc)), make([]byte, bufSize))
	return tokenizer.New(b)
}

func TestPeekReturnsKindEOFAtTrueEnd(t *testing.T) {
	tok := newTok("   ", 4)
	k, err := tok.Peek()
	if err != nil || k != tokenizer.KindEOF {
		t.Fatalf("got %v, %v, want KindEOF, nil", k, err)
	}
}

func TestNextNullBoolAcrossTinyBuffer(t *testing.T) {
	tok := newTok(" null ", 2)
	if err := tok.NextNull(); err != nil {
		t.Fatal(err)
	}
	tok2 := newTok("false", 2)
	v, err := tok2.NextBool()
	if err != nil || v {
		t.Fatalf("got %v, %v, want false, nil", v, err)
	}
}

func TestNumberCompletesAtTrueEOF(t *testing.T) {
	tok := newTok("3.14", 3)
	f, err := tok.NextFloat()
	if err != nil || f != 3.14 {
		t.Fatalf("got %v, %v, want 3.14, nil", f, err)
	}
}

func TestNumberDelimitedByComma(t *testing.T) {
	tok := newTok("-42,", 2)
	v, err := tok.NextInt()
	if err != nil || v != -42 {
		t.Fatalf("got %v, %v, want -42, nil", v, err)
	}
}

func TestStringRoundTripAcrossTinyBuffer(t *testing.T) {
	tok := newTok(`"hello world"`, 3)
	s, err := tok.NextStr()
	if err != nil || string(s) != "hello world" {
		t.Fatalf("got %q, %v, want %q, nil", s, err, "hello world")
	}
}

func TestStringDecodesEscapesAcrossTinyBuffer(t *testing.T) {
	tok := newTok(`"a\nbéc"`, 3)
	s, err := tok.NextStr()
	if err != nil {
		t.Fatal(err)
	}
	want := "a\nbéc"
	if string(s) != want {
		t.Fatalf("got %q, want %q", s, want)
	}
}

func TestArrayRoundTrip(t *testing.T) {
	tok := newTok(`[1,2,3]`, 2)
	has, err := tok.NextArray()
	if err != nil || !has {
		t.Fatalf("NextArray = %v, %v", has, err)
	}
	var got []int64
	for has {
		v, err := tok.NextInt()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, v)
		has, err = tok.ArrayStep()
		if err != nil {
			t.Fatal(err)
		}
	}
	want := []int64{1, 2, 3}
	if len(got) != len(want) || got[0] != want[0] || got[2] != want[2] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEmptyArrayAndObject(t *testing.T) {
	tok := newTok(`[]`, 2)
	has, err := tok.NextArray()
	if err != nil || has {
		t.Fatalf("got %v, %v, want false, nil", has, err)
	}
	tok2 := newTok(`{}`, 2)
	key, has, err := tok2.NextObject()
	if err != nil || has || key != nil {
		t.Fatalf("got %q, %v, %v, want nil, false, nil", key, has, err)
	}
}

func TestObjectRoundTripAcrossTinyBuffer(t *testing.T) {
	doc := `{"name":"John Doe","age":43}`
	tok := newTok(doc, 4)
	key, has, err := tok.NextObject()
	if err != nil {
		t.Fatal(err)
	}
	var name string
	var age int64
	for has {
		switch string(key) {
		case "name":
			v, err := tok.NextStr()
			if err != nil {
				t.Fatal(err)
			}
			name = string(v)
		case "age":
			v, err := tok.NextInt()
			if err != nil {
				t.Fatal(err)
			}
			age = v
		}
		key, has, err = tok.ObjectStep()
		if err != nil {
			t.Fatal(err)
		}
	}
	if name != "John Doe" || age != 43 {
		t.Fatalf("got name=%q age=%d, want John Doe 43", name, age)
	}
}

func TestNextValueOnScalarsAndContainers(t *testing.T) {
	tok := newTok(`true`, 4)
	v, err := tok.NextValue()
	if err != nil || !v.Bool {
		t.Fatalf("got %+v, %v", v, err)
	}
	tok2 := newTok(`[1]`, 4)
	v2, err := tok2.NextValue()
	if err != nil || v2.Kind != tokenizer.KindArrayBegin {
		t.Fatalf("got %+v, %v, want ArrayBegin", v2, err)
	}
}

func TestNextSkipDescendsNestedStructures(t *testing.T) {
	tok := newTok(`{"a":[1,{"b":2},3],"c":"x"}`, 3)
	key, has, err := tok.NextObject()
	if err != nil {
		t.Fatal(err)
	}
	for has {
		if err := tok.NextSkip(); err != nil {
			t.Fatalf("skip %q: %v", key, err)
		}
		key, has, err = tok.ObjectStep()
		if err != nil {
			t.Fatal(err)
		}
	}
	if err := tok.Finish(); err != nil {
		t.Fatal(err)
	}
}

func TestWriteLongBytesPassesThroughLargeStringOverTinyBuffer(t *testing.T) {
	body := strings.Repeat("a", 10000)
	doc := `"` + body + `"`
	tok := newTok(doc, 8)
	var out bytes.Buffer
	if err := tok.WriteLongBytes(&out); err != nil {
		t.Fatal(err)
	}
	if out.String() != body {
		t.Fatalf("got %d bytes, want %d", out.Len(), len(body))
	}
}

func TestWriteLongBytesPreservesEscapesVerbatim(t *testing.T) {
	doc := `"a\"b\\c"`
	tok := newTok(doc, 3)
	var out bytes.Buffer
	if err := tok.WriteLongBytes(&out); err != nil {
		t.Fatal(err)
	}
	want := `a\"b\\c`
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestWriteLongStrDecodesAcrossSmallBuffer(t *testing.T) {
	doc := `"café au lait with a very long sentence to force several refills indeed"`
	tok := newTok(doc, 4)
	var out bytes.Buffer
	if err := tok.WriteLongStr(&out); err != nil {
		t.Fatal(err)
	}
	want := "café au lait with a very long sentence to force several refills indeed"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestWriteLongStrHandlesMultiByteUTF8SplitAcrossRefill(t *testing.T) {
	doc := `"` + strings.Repeat("x", 5) + `😀` + strings.Repeat("y", 5) + `"`
	tok := newTok(doc, 3)
	var out bytes.Buffer
	if err := tok.WriteLongStr(&out); err != nil {
		t.Fatal(err)
	}
	want := strings.Repeat("x", 5) + "\U0001F600" + strings.Repeat("y", 5)
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestWriteLongStrHandlesEscapedSurrogatePairSplitAcrossRefill(t *testing.T) {
	doc := "\"" + strings.Repeat("x", 5) + "\\ud83d\\ude00" + strings.Repeat("y", 5) + "\""
	tok := newTok(doc, 3)
	var out bytes.Buffer
	if err := tok.WriteLongStr(&out); err != nil {
		t.Fatal(err)
	}
	want := strings.Repeat("x", 5) + "\U0001F600" + strings.Repeat("y", 5)
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestUnterminatedStringIsEofWhileParsingString(t *testing.T) {
	tok := newTok(`{"x": "unterminated`, 64)
	_, _, err := tok.NextObject()
	if err != nil {
		t.Fatal(err)
	}
	_, err = tok.NextStr()
	var terr *tokenizer.Error
	if !errors.As(err, &terr) || terr.Kind != tokenizer.ErrorMalformedJson || terr.Reason != "EofWhileParsingString" {
		t.Fatalf("got %v, want MalformedJson/EofWhileParsingString", err)
	}
}

func TestSkipLiteralTokenMatchesAndMismatches(t *testing.T) {
	tok := newTok(`data: {}`, 3)
	ok, err := tok.SkipLiteralToken([]byte("data:"))
	if err != nil || !ok {
		t.Fatalf("got %v, %v, want true, nil", ok, err)
	}
	tok2 := newTok(`{}`, 3)
	ok2, err := tok2.SkipLiteralToken([]byte("data:"))
	if err != nil || ok2 {
		t.Fatalf("got %v, %v, want false, nil", ok2, err)
	}
}

func TestLookaheadWhileAndN(t *testing.T) {
	tok := newTok(`   x`, 2)
	got := tok.LookaheadWhile(func(b byte) bool { return b == ' ' })
	if string(got) != "   " {
		t.Fatalf("got %q, want 3 spaces", got)
	}
	tok2 := newTok(`abcdef`, 2)
	n := tok2.LookaheadN(4)
	if string(n) != "abcd" {
		t.Fatalf("got %q, want %q", n, "abcd")
	}
}

func TestFinishDetectsTrailingGarbage(t *testing.T) {
	tok := newTok(`1 2`, 4)
	if _, err := tok.NextInt(); err != nil {
		t.Fatal(err)
	}
	if err := tok.Finish(); err == nil {
		t.Fatal("expected UnbalancedJson on trailing garbage")
	}
}

func TestFinishAcceptsTrailingWhitespace(t *testing.T) {
	tok := newTok(`1   `, 4)
	if _, err := tok.NextInt(); err != nil {
		t.Fatal(err)
	}
	if err := tok.Finish(); err != nil {
		t.Fatal(err)
	}
}
