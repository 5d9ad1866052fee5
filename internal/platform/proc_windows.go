package platform

import (
	"encoding/csv"
	"fmt"
	"os/exec"
	"strings"

	"masterly/internal/core/timer"
)

type processProbe struct {
	tasklistPath string
}

type unsupportedProcessProbe struct{}

func newProcessProbe() ProcessProbe {
	path, err := exec.LookPath("tasklist")
	if err != nil {
		return unsupportedProcessProbe{}
	}
	return &processProbe{tasklistPath: path}
}

func (probe *processProbe) Processes() ([]string, error) {
	output, err := exec.Command(probe.tasklistPath, "/fo", "csv", "/nh").Output()
	if err != nil {
		return nil, fmt.Errorf("tasklist: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(string(output)))
	reader.FieldsPerRecord = -1

	var names []string
	for {
		record, err := reader.Read()
		if err != nil {
			break
		}
		if len(record) == 0 || record[0] == "" {
			continue
		}
		names = append(names, record[0])
	}
	return names, nil
}

func (unsupportedProcessProbe) Processes() ([]string, error) {
	return nil, timer.ErrProbeUnsupported
}
