package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/launchpad-sh/launchpad/pkg/envstore"
	"github.com/launchpad-sh/launchpad/pkg/manifest"
	"github.com/launchpad-sh/launchpad/pkg/platform"
)

// Installer acquires precompiled binaries from one registry into one
// environment. It caches the manifest for the duration of a single
// acquisition run; the manifest is re-fetched on the next run.
type Installer struct {
	Client   *Client
	Env      *envstore.Env
	Platform platform.Platform
	Arch     platform.Arch
	Log      *zap.Logger

	cached *Manifest
}

func (in *Installer) logger() *zap.Logger {
	if in.Log != nil {
		return in.Log
	}
	return zap.NewNop()
}

func (in *Installer) manifest(ctx context.Context) (*Manifest, error) {
	if in.cached != nil {
		return in.cached, nil
	}
	m, err := in.Client.FetchManifest(ctx)
	if err != nil {
		return nil, err
	}
	in.cached = m
	return m, nil
}

// Acquire resolves, downloads, verifies, and installs one package. The
// requested variant is tried first, then its fallback chain; the first
// variant with an artifact satisfying the constraint for the host wins.
// An exhausted chain fails with *NoPrecompiledBinaryError; a manifest fetch
// failure with *ManifestUnavailableError.
func (in *Installer) Acquire(ctx context.Context, name, variant string, c manifest.Constraint) (envstore.InstalledPackage, error) {
	chain, err := ResolveFallbacks(variant)
	if err != nil {
		return envstore.InstalledPackage{}, err
	}
	m, err := in.manifest(ctx)
	if err != nil {
		return envstore.InstalledPackage{}, err
	}

	artifacts := m.Lookup(name, in.Platform, in.Arch)
	for _, candidate := range chain {
		art := pickArtifact(artifacts, candidate, c)
		if art == nil {
			continue
		}
		in.logger().Debug("resolved artifact",
			zap.String("package", name),
			zap.String("variant", candidate),
			zap.String("version", art.Version))
		return in.install(ctx, name, art)
	}

	return envstore.InstalledPackage{}, &NoPrecompiledBinaryError{
		Package:  name,
		Platform: in.Platform,
		Arch:     in.Arch,
		Tried:    chain,
	}
}

// install downloads an artifact into a staging directory, verifies its
// digest, and atomically commits it. Any failure aborts the stage so a retry
// starts clean.
func (in *Installer) install(ctx context.Context, name string, art *Artifact) (envstore.InstalledPackage, error) {
	v, err := semver.NewVersion(art.Version)
	if err != nil {
		return envstore.InstalledPackage{}, fmt.Errorf("install %s: artifact version %q: %w", name, art.Version, err)
	}

	stage, err := in.Env.Stage(name)
	if err != nil {
		return envstore.InstalledPackage{}, err
	}

	body, err := in.Client.download(ctx, art.URL)
	if err != nil {
		in.Env.Abort(stage)
		return envstore.InstalledPackage{}, fmt.Errorf("install %s@%s: %w", name, v, err)
	}
	defer body.Close()

	// Extraction happens inside the quarantined staging directory; the
	// digest is checked over the full download before anything is committed.
	hasher := sha256.New()
	if err := extract(stage, name, art.Format, io.TeeReader(body, hasher)); err != nil {
		in.Env.Abort(stage)
		return envstore.InstalledPackage{}, fmt.Errorf("install %s@%s: %w", name, v, err)
	}
	if want := strings.ToLower(strings.TrimSpace(art.SHA256)); want != "" {
		got := hex.EncodeToString(hasher.Sum(nil))
		if got != want {
			in.Env.Abort(stage)
			return envstore.InstalledPackage{}, fmt.Errorf("install %s@%s: checksum mismatch (got %s, want %s)", name, v, got, want)
		}
	}

	pkg, err := in.Env.Commit(stage, name, v)
	if err != nil {
		return envstore.InstalledPackage{}, err
	}
	in.logger().Info("installed package",
		zap.String("package", name),
		zap.String("version", v.String()))
	return pkg, nil
}
