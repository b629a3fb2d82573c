package priority

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// niceness requested for the process; negative values need CAP_SYS_NICE.
const niceness = -10

func elevate() error {
	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, niceness); err != nil {
		return fmt.Errorf("setpriority %d: %w", niceness, err)
	}

	var set unix.CPUSet
	set.Zero()
	for i := 0; i < runtime.NumCPU(); i++ {
		set.Set(i)
	}
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("set cpu affinity: %w", err)
	}
	return nil
}
