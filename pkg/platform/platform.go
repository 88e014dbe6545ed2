// Package platform detects the host OS family and CPU architecture and maps
// them onto the tags used by the binary registry.
package platform

import (
	"errors"
	"fmt"
	"runtime"
)

// Platform is a registry OS tag.
type Platform string

// Arch is a registry CPU architecture tag.
type Arch string

const (
	Darwin  Platform = "darwin"
	Linux   Platform = "linux"
	Windows Platform = "windows"

	X8664 Arch = "x86_64"
	ARM64 Arch = "arm64"
)

// ErrUnsupportedPlatform reports a host the registry has no tag for.
// Detection never guesses: an unrecognized host fails loudly.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Detect maps the running OS onto a registry platform tag.
func Detect() (Platform, error) {
	return detectOS(runtime.GOOS)
}

// DetectArch maps the running CPU architecture onto a registry arch tag.
func DetectArch() (Arch, error) {
	return detectArch(runtime.GOARCH)
}

func detectOS(goos string) (Platform, error) {
	switch goos {
	case "darwin":
		return Darwin, nil
	case "linux":
		return Linux, nil
	case "windows":
		return Windows, nil
	default:
		return "", fmt.Errorf("%w: os %q", ErrUnsupportedPlatform, goos)
	}
}

func detectArch(goarch string) (Arch, error) {
	switch goarch {
	case "amd64":
		return X8664, nil
	case "arm64":
		return ARM64, nil
	default:
		return "", fmt.Errorf("%w: architecture %q", ErrUnsupportedPlatform, goarch)
	}
}
