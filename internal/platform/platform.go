// Package platform reports facts about the process runtime environment.
package platform

import (
	"os"
	"strings"
	"sync"
)

var (
	containerOnce sync.Once
	inContainer   bool
)

// InContainer reports whether the process appears to be running inside a
// container. The probe checks for the /.dockerenv marker file and for docker
// entries in the process cgroup file. The result is computed once per process.
func InContainer() bool {
	containerOnce.Do(func() {
		inContainer = probeContainer("/.dockerenv", "/proc/self/cgroup")
	})
	return inContainer
}

func probeContainer(markerPath, cgroupPath string) bool {
	if _, err := os.Stat(markerPath); err == nil {
		return true
	}
	data, err := os.ReadFile(cgroupPath)
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.Contains(line, "docker") {
			return true
		}
	}
	return false
}
