package registry

import (
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/launchpad-sh/launchpad/pkg/manifest"
	"github.com/launchpad-sh/launchpad/pkg/platform"
)

// Artifact is one downloadable binary build.
type Artifact struct {
	Version string `json:"version"`
	Variant string `json:"variant"`
	// URL may be absolute or relative to the registry base URL.
	URL    string `json:"url"`
	SHA256 string `json:"sha256"`
	// Format is one of "tar.gz", "tar.zst", "bin".
	Format string `json:"format"`
}

// Manifest is the remote registry index: package -> platform -> arch ->
// available artifacts. It is fetched fresh per acquisition run and never
// treated as persistent state.
type Manifest struct {
	Packages map[string]map[platform.Platform]map[platform.Arch][]Artifact `json:"packages"`
}

// Lookup returns the artifacts published for a package on one host tuple.
func (m *Manifest) Lookup(pkg string, p platform.Platform, a platform.Arch) []Artifact {
	byPlatform, ok := m.Packages[pkg]
	if !ok {
		return nil
	}
	byArch, ok := byPlatform[p]
	if !ok {
		return nil
	}
	return byArch[a]
}

// PackageNames returns the packages with at least one artifact for the host
// tuple, sorted. An empty result is not an error.
func (m *Manifest) PackageNames(p platform.Platform, a platform.Arch) []string {
	var names []string
	for pkg := range m.Packages {
		if len(m.Lookup(pkg, p, a)) > 0 {
			names = append(names, pkg)
		}
	}
	sort.Strings(names)
	return names
}

// pickArtifact selects the highest-version artifact of the given variant that
// satisfies the constraint. Artifacts with unparseable versions are skipped.
func pickArtifact(artifacts []Artifact, variant string, c manifest.Constraint) *Artifact {
	var best *Artifact
	var bestVersion *semver.Version
	for i := range artifacts {
		art := &artifacts[i]
		if art.Variant != variant {
			continue
		}
		v, err := semver.NewVersion(art.Version)
		if err != nil {
			continue
		}
		if !c.Check(v) {
			continue
		}
		if bestVersion == nil || v.GreaterThan(bestVersion) {
			best, bestVersion = art, v
		}
	}
	return best
}
