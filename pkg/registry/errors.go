package registry

import (
	"fmt"
	"strings"

	"github.com/launchpad-sh/launchpad/pkg/platform"
)

// SupportChannel is printed whenever a missing precompiled binary needs a
// human escalation path.
const SupportChannel = "https://github.com/launchpad-sh/launchpad/issues"

// ManifestUnavailableError reports that the remote binary manifest could not
// be fetched or decoded. It is distinct from "package not found": the
// acquisition subsystem itself could not function this run.
type ManifestUnavailableError struct {
	URL string
	Err error
}

func (e *ManifestUnavailableError) Error() string {
	return fmt.Sprintf("binary manifest unavailable (%s): %v", e.URL, e.Err)
}

func (e *ManifestUnavailableError) Unwrap() error { return e.Err }

// NoPrecompiledBinaryError reports that every variant in the fallback chain
// was exhausted for a (package, platform, arch) combination. The message is
// user-facing and names everything needed to ask for support.
type NoPrecompiledBinaryError struct {
	Package  string
	Platform platform.Platform
	Arch     platform.Arch
	Tried    []string
}

func (e *NoPrecompiledBinaryError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no precompiled binary for %s on %s/%s", e.Package, e.Platform, e.Arch)
	if len(e.Tried) > 0 {
		fmt.Fprintf(&b, " (tried variants: %s)", strings.Join(e.Tried, ", "))
	}
	fmt.Fprintf(&b, "\nPlease open an issue at %s naming the package, platform, and architecture above so a build can be added.", SupportChannel)
	return b.String()
}
