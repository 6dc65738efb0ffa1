package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ratio is a sampling rate of num events out of every den.
type ratio struct{ num, den uint64 }

// ratioSampler passes the first num of every den debug events. A zero ratio
// passes everything.
type ratioSampler struct {
	rate    atomic.Pointer[ratio]
	counter atomic.Uint64
}

func newRatioSampler(num, den int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(num, den)
	return s
}

// Set replaces the ratio and restarts the count.
func (s *ratioSampler) Set(num, den int) {
	r := &ratio{}
	if num > 0 && den > 0 {
		r.num, r.den = uint64(min(num, den)), uint64(den)
	}
	s.rate.Store(r)
	s.counter.Store(0)
}

// Allow reports whether the next event passes.
func (s *ratioSampler) Allow() bool {
	r := s.rate.Load()
	if r == nil || r.den == 0 {
		return true
	}
	return (s.counter.Add(1)-1)%r.den < r.num
}

// parseRatioSpec reads "n/d" or "d" (meaning 1/d). Invalid specs disable
// sampling.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if a, b, ok := strings.Cut(spec, "/"); ok {
		num, err1 := strconv.Atoi(strings.TrimSpace(a))
		den, err2 := strconv.Atoi(strings.TrimSpace(b))
		if err1 != nil || err2 != nil {
			return 0, 0
		}
		return num, den
	}
	if v, err := strconv.Atoi(spec); err == nil && v > 0 {
		return 1, v
	}
	return 0, 0
}
