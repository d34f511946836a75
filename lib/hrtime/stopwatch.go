package hrtime

import "time"

// Stopwatch reads the OS monotonic clock directly, it is not affected
// by the wall clock adjustments.
type Stopwatch struct {
	start int64
}

func StartStopwatch() Stopwatch {
	return Stopwatch{start: monotonicNanos()}
}

func (sw Stopwatch) Elapsed() time.Duration {
	return time.Duration(monotonicNanos() - sw.start)
}

func (sw Stopwatch) ElapsedMs() float64 {
	return float64(sw.Elapsed().Nanoseconds()) / 1e6
}

// Reset restarts the stopwatch and returns the elapsed duration before.
func (sw *Stopwatch) Reset() time.Duration {
	now := monotonicNanos()
	elapsed := time.Duration(now - sw.start)
	sw.start = now
	return elapsed
}
