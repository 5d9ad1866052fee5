//go:build linux || darwin

package platform

import (
	"fmt"
	"os/exec"
	"strings"

	"masterly/internal/core/timer"
)

type processProbe struct {
	psPath string
}

type unsupportedProcessProbe struct{}

func newProcessProbe() ProcessProbe {
	path, err := exec.LookPath("ps")
	if err != nil {
		return unsupportedProcessProbe{}
	}
	return &processProbe{psPath: path}
}

func (probe *processProbe) Processes() ([]string, error) {
	output, err := exec.Command(probe.psPath, "-axo", "comm=").Output()
	if err != nil {
		return nil, fmt.Errorf("ps: %w", err)
	}

	var names []string
	for _, line := range strings.Split(string(output), "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		// ps reports the full executable path on some systems.
		if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
			name = name[idx+1:]
		}
		names = append(names, name)
	}
	return names, nil
}

func (unsupportedProcessProbe) Processes() ([]string, error) {
	return nil, timer.ErrProbeUnsupported
}
