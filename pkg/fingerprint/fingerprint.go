// Package fingerprint derives the deterministic identifier that keys cached
// environments. A fingerprint covers the canonical project path and, when a
// dependency manifest exists, its exact byte content, so installs for
// different dependency sets never collide.
package fingerprint

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const (
	pathHashLen   = 8
	digestHashLen = 16
)

// Fingerprint identifies one project+manifest pair.
type Fingerprint struct {
	// Base is derived from the directory name plus a short hash of the
	// resolved path.
	Base string
	// ManifestDigest is a short hash of the raw manifest bytes. Empty when
	// the project has no manifest.
	ManifestDigest string
}

// ID returns the on-disk environment directory name for this fingerprint.
func (f Fingerprint) ID() string {
	if f.ManifestDigest == "" {
		return f.Base
	}
	return f.Base + "-" + f.ManifestDigest
}

// Compute derives a fingerprint from a resolved project path and the raw
// manifest content. manifestContent nil means no manifest exists; an empty
// but present manifest still contributes a digest. The function is pure:
// identical inputs always produce identical fingerprints, and a one-byte
// manifest edit changes the digest.
func Compute(resolvedPath string, manifestContent []byte) Fingerprint {
	fp := Fingerprint{
		Base: fmt.Sprintf("%s_%s", sanitizeBase(filepath.Base(resolvedPath)), shortHash([]byte(resolvedPath), pathHashLen)),
	}
	if manifestContent != nil {
		fp.ManifestDigest = shortHash(manifestContent, digestHashLen)
	}
	return fp
}

// ResolveProjectPath canonicalizes a project directory: absolute, cleaned,
// symlinks followed. When symlink resolution fails (dangling link, permission)
// the absolute path is used as-is rather than failing the activation.
func ResolveProjectPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve project path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return filepath.Clean(abs), nil
}

// shortHash returns the first n hex characters of the BLAKE2b-256 digest.
func shortHash(data []byte, n int) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])[:n]
}

// sanitizeBase keeps directory names filesystem- and shell-safe when used as
// part of an environment directory name.
func sanitizeBase(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "project"
	}
	return b.String()
}
