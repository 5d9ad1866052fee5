package platform

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"masterly/internal/core/timer"
)

type idleProbe struct {
	xprintidlePath string
}

type unsupportedIdleProbe struct{}

func newIdleProbe() IdleProbe {
	path, err := exec.LookPath("xprintidle")
	if err != nil {
		return unsupportedIdleProbe{}
	}
	return &idleProbe{xprintidlePath: path}
}

func (probe *idleProbe) IdleDuration() (time.Duration, error) {
	sessionType := strings.ToLower(os.Getenv("XDG_SESSION_TYPE"))
	if sessionType == "wayland" && probe.xprintidlePath == "" {
		return 0, timer.ErrProbeUnsupported
	}
	output, err := exec.Command(probe.xprintidlePath).Output()
	if err != nil {
		return 0, fmt.Errorf("xprintidle: %w", err)
	}
	value := strings.TrimSpace(string(output))
	idleMillis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse idle milliseconds: %w", err)
	}
	if idleMillis < 0 {
		idleMillis = 0
	}
	return time.Duration(idleMillis) * time.Millisecond, nil
}

func (unsupportedIdleProbe) IdleDuration() (time.Duration, error) {
	return 0, timer.ErrProbeUnsupported
}
