package logger

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestCompactRID(t *testing.T) {
	if got := CompactRID("1001:42:42"); got != "rt.16.16" {
		t.Fatalf("CompactRID = %q", got)
	}
	for _, raw := range []string{"", "a:b:c", "1:2", "1::3"} {
		if got := CompactRID(raw); got != raw {
			t.Fatalf("CompactRID(%q) = %q, want unchanged", raw, got)
		}
	}
}

func TestSanitizeLimit(t *testing.T) {
	in := "héllo\x00\u200bwörld\tok\n"
	if got := Sanitize(in); got != "héllowörld\tok\n" {
		t.Fatalf("Sanitize = %q", got)
	}
	if got := SanitizeLimit("привет мир", 6); got != "привет" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
	if got := SanitizeLimit("x", 0); got != "" {
		t.Fatalf("SanitizeLimit zero = %q", got)
	}
}

func TestSummarizeStrings(t *testing.T) {
	got, cut := SummarizeStrings([]string{"a", "b", "c"}, 2)
	if got != "a, b" || !cut {
		t.Fatalf("SummarizeStrings = %q, %v", got, cut)
	}
	got, cut = SummarizeStrings([]string{"a"}, 5)
	if got != "a" || cut {
		t.Fatalf("SummarizeStrings = %q, %v", got, cut)
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(2, 5)
	passed := 0
	for range 10 {
		if s.Allow() {
			passed++
		}
	}
	if passed != 4 {
		t.Fatalf("passed %d of 10, want 4", passed)
	}
	s.Set(0, 0)
	if !s.Allow() {
		t.Fatal("zero ratio should pass everything")
	}
	if num, den := parseRatioSpec(" 1 / 20 "); num != 1 || den != 20 {
		t.Fatalf("parseRatioSpec = %d/%d", num, den)
	}
	if num, den := parseRatioSpec("10"); num != 1 || den != 10 {
		t.Fatalf("parseRatioSpec = %d/%d", num, den)
	}
	if num, den := parseRatioSpec("x/2"); num != 0 || den != 0 {
		t.Fatalf("parseRatioSpec = %d/%d", num, den)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestAsyncWriterFlushesAndKeepsFirstError(t *testing.T) {
	var a, b bytes.Buffer
	w := newAsyncWriter([]io.Writer{&a, nil, &b}, 16)
	for range 100 {
		if err := w.Write([]byte("line\n")); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if n := strings.Count(a.String(), "line\n"); n != 100 {
		t.Fatalf("sink a got %d lines", n)
	}
	if a.String() != b.String() {
		t.Fatal("sinks differ")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	bad := newAsyncWriter([]io.Writer{failingWriter{}}, 1)
	_ = bad.Write([]byte("0123456789"))
	if err := bad.Close(); err == nil {
		t.Fatal("expected sink error")
	}
}

func TestAsyncWriterRejectsWritesAfterClose(t *testing.T) {
	w := newAsyncWriter([]io.Writer{io.Discard}, 0)
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Write([]byte("late\n")); !errors.Is(err, errWriterClosed) {
		t.Fatalf("write after close = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush after close: %v", err)
	}
}
