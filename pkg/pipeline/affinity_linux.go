//go:build linux

package pipeline

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCPU binds the calling thread to a single CPU. Callers must hold
// runtime.LockOSThread for the pin to stay meaningful.
func pinToCPU(cpu int) error {
	if n := runtime.NumCPU(); n > 0 {
		cpu = cpu % n
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
