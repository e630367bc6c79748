package slicetok

import (
	"errors"
	"testing"
)

func TestPeekClassifiesEachKind(t *testing.T) {
	cases := map[string]Kind{
		`"x"`: KindString,
		`{`:   KindObjectBegin,
		`}`:   KindObjectEnd,
		`[`:   KindArrayBegin,
		`]`:   KindArrayEnd,
		`,`:   KindComma,
		`:`:   KindColon,
		`null`: KindNull,
		`true`:  KindBool,
		`false`: KindBool,
		`-12`:   KindNumber,
		`0`:     KindNumber,
	}
	for in, want := range cases {
		got, err := Peek([]byte(in))
		if err != nil {
			t.Fatalf("Peek(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("Peek(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPeekEmptySliceIsEOB(t *testing.T) {
	_, err := Peek(nil)
	if !errors.Is(err, ErrUnexpectedEOB) {
		t.Fatalf("got %v, want ErrUnexpectedEOB", err)
	}
}

func TestPeekRejectsGarbage(t *testing.T) {
	_, err := Peek([]byte("#"))
	var merr *MalformedError
	if !errors.As(err, &merr) || merr.Reason != ReasonUnexpectedToken {
		t.Fatalf("got %v, want UnexpectedToken", err)
	}
}

func TestScanNullRoundTrip(t *testing.T) {
	n, err := ScanNull([]byte("null,"))
	if err != nil || n != 4 {
		t.Fatalf("ScanNull = %d, %v, want 4, nil", n, err)
	}
}

func TestScanNullEOB(t *testing.T) {
	_, err := ScanNull([]byte("nu"))
	var eob *EOBError
	if !errors.As(err, &eob) || eob.Kind != EOBLiteral {
		t.Fatalf("got %v, want EOBError{Kind: EOBLiteral}", err)
	}
}

func TestScanNullRejectsMismatch(t *testing.T) {
	_, err := ScanNull([]byte("nope"))
	var merr *MalformedError
	if !errors.As(err, &merr) || merr.Reason != ReasonInvalidLiteral {
		t.Fatalf("got %v, want InvalidLiteral", err)
	}
}

func TestScanBoolBothLiterals(t *testing.T) {
	v, n, err := ScanBool([]byte("true]"))
	if err != nil || !v || n != 4 {
		t.Fatalf("true: got %v, %d, %v", v, n, err)
	}
	v, n, err = ScanBool([]byte("false]"))
	if err != nil || v || n != 5 {
		t.Fatalf("false: got %v, %d, %v", v, n, err)
	}
}

func TestScanBoolEOB(t *testing.T) {
	_, _, err := ScanBool([]byte("fal"))
	var eob *EOBError
	if !errors.As(err, &eob) || eob.Kind != EOBLiteral {
		t.Fatalf("got %v, want EOBError{Kind: EOBLiteral}", err)
	}
}

func TestScanNumberIntegers(t *testing.T) {
	n, isFloat, err := ScanNumber([]byte("-42,"))
	if err != nil || n != 3 || isFloat {
		t.Fatalf("got %d, %v, %v, want 3, false, nil", n, isFloat, err)
	}
}

func TestScanNumberFloatAndExponent(t *testing.T) {
	n, isFloat, err := ScanNumber([]byte("3.14e-2}"))
	if err != nil || n != 7 || !isFloat {
		t.Fatalf("got %d, %v, %v, want 7, true, nil", n, isFloat, err)
	}
}

func TestScanNumberEOBAtEveryBoundary(t *testing.T) {
	cases := []string{"-", "12", "3.", "3.14e", "3.14e+"}
	for _, in := range cases {
		_, _, err := ScanNumber([]byte(in))
		var eob *EOBError
		if !errors.As(err, &eob) {
			t.Fatalf("ScanNumber(%q) = %v, want EOBError", in, err)
		}
	}
}

func TestScanNumberEOBRecordsIsFloat(t *testing.T) {
	_, _, err := ScanNumber([]byte("3.14"))
	var eob *EOBError
	if !errors.As(err, &eob) || !eob.IsFloat || eob.N != 4 {
		t.Fatalf("got %+v, want IsFloat=true N=4", eob)
	}
}

func TestScanNumberMalformed(t *testing.T) {
	cases := []string{"01", "-a", "1.a", "1ea"}
	for _, in := range cases {
		_, _, err := ScanNumber([]byte(in))
		var merr *MalformedError
		if !errors.As(err, &merr) {
			t.Fatalf("ScanNumber(%q) = %v, want MalformedError", in, err)
		}
	}
}

func TestScanStringSpanRoundTrip(t *testing.T) {
	n, err := ScanStringSpan([]byte(`"hello"]`))
	if err != nil || n != 7 {
		t.Fatalf("got %d, %v, want 7, nil", n, err)
	}
}

func TestScanStringSpanSkipsEscapes(t *testing.T) {
	n, err := ScanStringSpan([]byte(`"a\"b"x`))
	if err != nil || n != 6 {
		t.Fatalf("got %d, %v, want 6, nil", n, err)
	}
}

func TestScanStringSpanEOBMissingQuote(t *testing.T) {
	_, err := ScanStringSpan([]byte(`"abc`))
	var eob *EOBError
	if !errors.As(err, &eob) || eob.Kind != EOBString {
		t.Fatalf("got %v, want EOBError{Kind: EOBString}", err)
	}
}

func TestScanStringSpanEOBMidEscape(t *testing.T) {
	_, err := ScanStringSpan([]byte(`"abc\`))
	var eob *EOBError
	if !errors.As(err, &eob) || eob.Kind != EOBString {
		t.Fatalf("got %v, want EOBError{Kind: EOBString}", err)
	}
}

func TestScanStringSpanRejectsControlCharacter(t *testing.T) {
	_, err := ScanStringSpan([]byte("\"a\nb\""))
	var merr *MalformedError
	if !errors.As(err, &merr) || merr.Reason != ReasonControlCharacter {
		t.Fatalf("got %v, want ControlCharacterInString", err)
	}
}

func TestDecodeStringContentPlain(t *testing.T) {
	got, err := DecodeStringContent(nil, []byte("hello"))
	if err != nil || string(got) != "hello" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestDecodeStringContentSimpleEscapes(t *testing.T) {
	got, err := DecodeStringContent(nil, []byte(`a\nb\tc\"d\\e`))
	if err != nil {
		t.Fatal(err)
	}
	want := "a\nb\tc\"d\\e"
	if string(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecodeStringContentUnicodeEscape(t *testing.T) {
	got, err := DecodeStringContent(nil, []byte("A\\u00e9"))
	if err != nil {
		t.Fatal(err)
	}
	want := "Aé"
	if string(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecodeStringContentSurrogatePair(t *testing.T) {
	// U+1F600 GRINNING FACE, written as its JSON \uXXXX UTF-16 surrogate pair.
	got, err := DecodeStringContent(nil, []byte("\\ud83d\\ude00"))
	if err != nil {
		t.Fatal(err)
	}
	want := "\U0001F600"
	if string(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecodeStringContentAppendsToExistingDst(t *testing.T) {
	dst := []byte("prefix-")
	got, err := DecodeStringContent(dst, []byte(`abc`))
	if err != nil || string(got) != "prefix-abc" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestDecodeStringContentRejectsBadEscape(t *testing.T) {
	_, err := DecodeStringContent(nil, []byte(`\q`))
	var merr *MalformedError
	if !errors.As(err, &merr) || merr.Reason != ReasonInvalidEscape {
		t.Fatalf("got %v, want InvalidEscape", err)
	}
}

func TestDecodeStringContentRejectsTruncatedHex(t *testing.T) {
	_, err := DecodeStringContent(nil, []byte(`\u12`))
	var merr *MalformedError
	if !errors.As(err, &merr) || merr.Reason != ReasonInvalidEscape {
		t.Fatalf("got %v, want InvalidEscape", err)
	}
}
