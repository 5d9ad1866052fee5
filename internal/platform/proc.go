package platform

// ProcessProbe returns the names of currently running applications.
type ProcessProbe interface {
	Processes() ([]string, error)
}

// NewProcessProbe returns a platform-specific process probe.
func NewProcessProbe() ProcessProbe {
	return newProcessProbe()
}
