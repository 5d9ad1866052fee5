package timer

import "strings"

// Distraction describes why the current set of running applications
// fails productivity mode. The zero value means the user is focused.
type Distraction struct {
	// BlockedApp is the blocklist entry that matched a running process.
	BlockedApp string
	// NoAllowedApp is set when the allowlist is non-empty and none of
	// its entries matched a running process.
	NoAllowedApp bool
}

// IsDistracted reports whether an auto-pause condition holds.
func (distraction Distraction) IsDistracted() bool {
	return distraction.BlockedApp != "" || distraction.NoAllowedApp
}

// EvaluateProcesses checks running process names against the allow and
// block lists. Entries are case-insensitive substring matchers, not
// exact names: "chrome" matches "Google Chrome Helper".
func EvaluateProcesses(processes, allowed, blocked []string) Distraction {
	lowered := make([]string, 0, len(processes))
	for _, name := range processes {
		lowered = append(lowered, strings.ToLower(name))
	}

	var distraction Distraction
	for _, entry := range blocked {
		pattern := strings.ToLower(strings.TrimSpace(entry))
		if pattern == "" {
			continue
		}
		if matchesAny(lowered, pattern) {
			distraction.BlockedApp = entry
			break
		}
	}

	allowedMatch := true
	for _, entry := range allowed {
		pattern := strings.ToLower(strings.TrimSpace(entry))
		if pattern == "" {
			continue
		}
		allowedMatch = false
		if matchesAny(lowered, pattern) {
			allowedMatch = true
			break
		}
	}
	distraction.NoAllowedApp = !allowedMatch

	return distraction
}

func matchesAny(processes []string, pattern string) bool {
	for _, name := range processes {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}
