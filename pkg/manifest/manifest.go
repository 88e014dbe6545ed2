// Package manifest loads a project's declared dependency file and parses it
// into an ordered list of {name, constraint} pairs. The raw bytes are kept
// alongside the parsed form: fingerprinting covers the exact file content,
// not its normalized shape.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileNames are the manifest file names probed in a project root, in order.
var FileNames = []string{"deps.toml", "dependencies.toml", "launchpad.toml"}

// ErrInvalidManifestFile reports an unparseable dependency file. Activation
// proceeds with zero dependencies and a warning rather than aborting.
var ErrInvalidManifestFile = errors.New("invalid dependency manifest")

// Dependency is one declared dependency.
type Dependency struct {
	Name       string
	Constraint Constraint
	// Variant selects a binary flavor; empty means the registry default.
	Variant string
}

// File is a loaded dependency manifest.
type File struct {
	Path string
	// Raw is the exact file content, used for fingerprinting.
	Raw []byte
	// Deps preserves declaration order from the file.
	Deps []Dependency
}

// Find returns the manifest path for a project root, or "" when the project
// declares no dependencies.
func Find(dir string) string {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

// Load reads and parses the project's dependency manifest. A missing file
// returns (nil, nil). An unreadable or unparseable file returns a File whose
// Raw bytes are still populated when available, together with an error
// wrapping ErrInvalidManifestFile, so the caller can fingerprint the broken
// content and continue with zero dependencies.
func Load(dir string) (*File, error) {
	path := Find(dir)
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidManifestFile, path, err)
	}
	deps, err := Parse(data)
	if err != nil {
		return &File{Path: path, Raw: data}, fmt.Errorf("%w: %s: %v", ErrInvalidManifestFile, path, err)
	}
	return &File{Path: path, Raw: data, Deps: deps}, nil
}

// depEntry is the long form of a dependency value:
// php = { version = "^8.4", variant = "laravel-mysql" }
type depEntry struct {
	Version string `toml:"version"`
	Variant string `toml:"variant"`
}

// Parse decodes manifest bytes into dependencies, preserving file order.
func Parse(data []byte) ([]Dependency, error) {
	var doc struct {
		Dependencies map[string]toml.Primitive `toml:"dependencies"`
	}
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	deps := make([]Dependency, 0, len(doc.Dependencies))
	for _, key := range md.Keys() {
		if len(key) != 2 || key[0] != "dependencies" {
			continue
		}
		name := key[1]
		prim, ok := doc.Dependencies[name]
		if !ok {
			continue
		}

		var raw string
		entry := depEntry{}
		if err := md.PrimitiveDecode(prim, &raw); err == nil {
			entry.Version = raw
		} else if err := md.PrimitiveDecode(prim, &entry); err != nil {
			return nil, fmt.Errorf("dependency %q: %w", name, err)
		}

		c, err := ParseConstraint(entry.Version)
		if err != nil {
			return nil, fmt.Errorf("dependency %q: %w", name, err)
		}
		deps = append(deps, Dependency{Name: name, Constraint: c, Variant: entry.Variant})
	}
	return deps, nil
}
