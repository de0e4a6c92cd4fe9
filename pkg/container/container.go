package container

import (
	"os"
	"strings"
)

const (
	dockerEnvFile = "/.dockerenv"
	initCGroup    = "/proc/1/cgroup"
)

// IsContainerised reports whether the watcher itself appears to run in a
// container, in which case the engine socket has to be bind mounted in
func IsContainerised() bool {
	if fileExists(dockerEnvFile) {
		return true
	}
	data, err := os.ReadFile(initCGroup)
	if err != nil {
		return false
	}
	return cgroupIsContainer(string(data))
}

// SocketAvailable reports whether path exists and is a unix socket
func SocketAvailable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSocket != 0
}

func cgroupIsContainer(content string) bool {
	for _, marker := range []string{"docker", "containerd", "kubepods"} {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
