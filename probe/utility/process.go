package utility

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessIdentity resolves a pid to its command name and full command line.
// Used to enrich alerts whose in-kernel comm capture came back empty, and by
// the operator's whois command. PID is int32 to match gopsutil's API.
func ProcessIdentity(pid int32) (name string, cmdline string, err error) {
	p, err := process.NewProcess(pid)
	if err != nil {
		return "", "", fmt.Errorf("no such process %d: %w", pid, err)
	}

	name, err = p.Name()
	if err != nil {
		return "", "", fmt.Errorf("read name of PID %d: %w", pid, err)
	}

	// Best effort: a process may exit between the two reads.
	cmdline, _ = p.Cmdline()
	return name, cmdline, nil
}
