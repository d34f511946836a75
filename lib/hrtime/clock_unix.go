//go:build !windows
// +build !windows

package hrtime

import (
	"time"

	"github.com/samber/lo"
	"golang.org/x/sys/unix"
)

func monotonicNanos() int64 {
	ts := unix.Timespec{}
	lo.Must0(unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts))
	return ts.Nano()
}

// Resolution of the monotonic clock.
func Resolution() time.Duration {
	res := unix.Timespec{}
	if err := unix.ClockGetres(unix.CLOCK_MONOTONIC, &res); err != nil {
		return time.Microsecond
	}
	return time.Duration(res.Nano())
}
