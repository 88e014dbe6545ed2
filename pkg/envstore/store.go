// Package envstore owns the on-disk environment store: one directory per
// project fingerprint, each holding a bin/ directory plus per-package version
// subdirectories. Installs are staged and renamed into place so a package is
// either fully absent or fully present to any concurrent reader.
package envstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/adrg/xdg"

	"github.com/launchpad-sh/launchpad/pkg/fingerprint"
)

const stagingPrefix = ".staging-"

// Root returns the environment store root: $LAUNCHPAD_HOME/envs when set,
// otherwise <xdg data dir>/launchpad/envs.
func Root() string {
	if home := strings.TrimSpace(os.Getenv("LAUNCHPAD_HOME")); home != "" {
		return filepath.Join(home, "envs")
	}
	return filepath.Join(xdg.DataHome, "launchpad", "envs")
}

// InstalledPackage is one fully installed package version discovered in an
// environment.
type InstalledPackage struct {
	Name    string
	Version *semver.Version
	// BinPath is the directory holding the package's executables.
	BinPath string
}

// Env is one on-disk environment keyed by a project fingerprint.
type Env struct {
	// Dir is <root>/<fingerprint id>.
	Dir string
	// BinDir is the directory exported onto PATH.
	BinDir string
}

// Open returns the environment for a fingerprint, creating its directory
// skeleton on first use.
func Open(root string, fp fingerprint.Fingerprint) (*Env, error) {
	dir := filepath.Join(root, fp.ID())
	env := &Env{Dir: dir, BinDir: filepath.Join(dir, "bin")}
	if err := os.MkdirAll(env.BinDir, 0o755); err != nil {
		return nil, fmt.Errorf("open environment: %w", err)
	}
	if err := os.MkdirAll(env.pkgsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("open environment: %w", err)
	}
	return env, nil
}

func (e *Env) pkgsDir() string { return filepath.Join(e.Dir, "pkgs") }

// VersionDir returns the install directory for a (package, version) pair.
func (e *Env) VersionDir(name string, v *semver.Version) string {
	return filepath.Join(e.pkgsDir(), name, v.String())
}

// Scan lists the fully installed packages in the environment. Staging
// directories and entries that are not valid versions are invisible: a
// half-finished install never appears as installed.
func (e *Env) Scan() ([]InstalledPackage, error) {
	entries, err := os.ReadDir(e.pkgsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan environment: %w", err)
	}

	var out []InstalledPackage
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		versions, err := os.ReadDir(filepath.Join(e.pkgsDir(), name))
		if err != nil {
			continue
		}
		for _, ve := range versions {
			if !ve.IsDir() || strings.HasPrefix(ve.Name(), stagingPrefix) {
				continue
			}
			v, err := semver.NewVersion(ve.Name())
			if err != nil {
				continue
			}
			dir := filepath.Join(e.pkgsDir(), name, ve.Name())
			out = append(out, InstalledPackage{
				Name:    name,
				Version: v,
				BinPath: binDirOf(dir),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Version.LessThan(out[j].Version)
	})
	return out, nil
}

// binDirOf locates the executable directory inside an installed package:
// <dir>/bin when present, otherwise the package root.
func binDirOf(dir string) string {
	bin := filepath.Join(dir, "bin")
	if fi, err := os.Stat(bin); err == nil && fi.IsDir() {
		return bin
	}
	return dir
}

// Stage creates a fresh staging directory for an install of name. Stale
// staging directories from interrupted attempts are removed first so a
// cancelled install never blocks a retry.
func (e *Env) Stage(name string) (string, error) {
	pkgDir := filepath.Join(e.pkgsDir(), name)
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	e.reapStaging(pkgDir)
	stage, err := os.MkdirTemp(pkgDir, stagingPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	return stage, nil
}

// reapStaging removes leftover staging directories. Partial install state is
// untrusted and always rebuilt.
func (e *Env) reapStaging(pkgDir string) {
	entries, err := os.ReadDir(pkgDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), stagingPrefix) {
			os.RemoveAll(filepath.Join(pkgDir, entry.Name()))
		}
	}
}

// Commit atomically promotes a staging directory to the installed version
// directory and links the package's executables into bin/. An existing
// install of the same version is replaced.
func (e *Env) Commit(stage, name string, v *semver.Version) (InstalledPackage, error) {
	dest := e.VersionDir(name, v)
	if err := os.RemoveAll(dest); err != nil {
		return InstalledPackage{}, fmt.Errorf("commit %s@%s: %w", name, v, err)
	}
	if err := os.Rename(stage, dest); err != nil {
		os.RemoveAll(stage)
		return InstalledPackage{}, fmt.Errorf("commit %s@%s: %w", name, v, err)
	}
	pkg := InstalledPackage{Name: name, Version: v, BinPath: binDirOf(dest)}
	if err := e.LinkBin(pkg); err != nil {
		return InstalledPackage{}, err
	}
	return pkg, nil
}

// Abort discards a staging directory after a failed or cancelled install.
func (e *Env) Abort(stage string) {
	os.RemoveAll(stage)
}

// LinkBin (re)points bin/ entries at the executables of an installed package.
// Existing links for the same entry names are replaced, so re-linking after
// an upgrade or downgrade is idempotent.
func (e *Env) LinkBin(pkg InstalledPackage) error {
	entries, err := os.ReadDir(pkg.BinPath)
	if err != nil {
		return fmt.Errorf("link %s: %w", pkg.Name, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fi, err := entry.Info()
		if err != nil || fi.Mode()&0o111 == 0 {
			continue
		}
		src := filepath.Join(pkg.BinPath, entry.Name())
		dst := filepath.Join(e.BinDir, entry.Name())
		os.Remove(dst)
		if err := os.Symlink(src, dst); err != nil {
			// Fallback for filesystems without symlink support.
			if err := copyFile(src, dst, fi.Mode()); err != nil {
				return fmt.Errorf("link %s: %w", pkg.Name, err)
			}
		}
	}
	return nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, mode.Perm())
}
