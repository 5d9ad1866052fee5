package platform

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"masterly/internal/core/timer"
)

type idleProbe struct {
	ioregPath string
}

type unsupportedIdleProbe struct{}

func newIdleProbe() IdleProbe {
	path, err := exec.LookPath("ioreg")
	if err != nil {
		return unsupportedIdleProbe{}
	}
	return &idleProbe{ioregPath: path}
}

// IdleDuration reads HIDIdleTime, the nanoseconds since the last HID
// event, from the IOHIDSystem registry entry.
func (probe *idleProbe) IdleDuration() (time.Duration, error) {
	output, err := exec.Command(probe.ioregPath, "-c", "IOHIDSystem", "-d", "4").Output()
	if err != nil {
		return 0, fmt.Errorf("ioreg: %w", err)
	}
	for _, line := range strings.Split(string(output), "\n") {
		if !strings.Contains(line, "HIDIdleTime") {
			continue
		}
		_, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		idleNanos, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse HIDIdleTime: %w", err)
		}
		if idleNanos < 0 {
			idleNanos = 0
		}
		return time.Duration(idleNanos), nil
	}
	return 0, fmt.Errorf("HIDIdleTime not present in ioreg output")
}

func (unsupportedIdleProbe) IdleDuration() (time.Duration, error) {
	return 0, timer.ErrProbeUnsupported
}
