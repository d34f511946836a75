//go:build windows
// +build windows

package hrtime

// References:
// https://github.com/loov/hrtime

import (
	"errors"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32 = windows.NewLazyDLL("kernel32.dll")
	procQPF  = kernel32.NewProc("QueryPerformanceFrequency")
	procQPC  = kernel32.NewProc("QueryPerformanceCounter")
)

// https://learn.microsoft.com/en-us/windows/win32/api/profileapi/nf-profileapi-queryperformancefrequency
func getFrequency() int64 {
	var freq int64
	r1, _, err := procQPF.Call(uintptr(unsafe.Pointer(&freq)))
	if err != nil && !errors.Is(err, windows.SEVERITY_SUCCESS) || r1 != 1 {
		panic(err)
	}
	return freq
}

// https://learn.microsoft.com/en-us/windows/win32/api/profileapi/nf-profileapi-queryperformancecounter
func getCounter() int64 {
	var counter int64
	r1, _, err := procQPC.Call(uintptr(unsafe.Pointer(&counter)))
	if err != nil && !errors.Is(err, windows.SEVERITY_SUCCESS) || r1 != 1 {
		panic(err)
	}
	return counter
}

var (
	procFreq    = getFrequency()
	procCounter = getCounter()
)

func monotonicNanos() int64 {
	ticks := getCounter() - procCounter
	return ticks/procFreq*int64(time.Second) + ticks%procFreq*int64(time.Second)/procFreq
}

func Resolution() time.Duration {
	return time.Duration(int64(time.Second) / procFreq)
}
