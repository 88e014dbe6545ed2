package registry

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// extract unpacks an artifact stream into the staging directory according to
// its declared format.
func extract(stage, pkgName, format string, r io.Reader) error {
	switch format {
	case "tar.gz", "tgz":
		gz, err := gzip.NewReader(r)
		if err != nil {
			return fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		return untar(stage, gz)
	case "tar.zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return fmt.Errorf("zstd: %w", err)
		}
		defer zr.Close()
		return untar(stage, zr)
	case "bin", "":
		// Single raw executable, installed under bin/<package>.
		binDir := filepath.Join(stage, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			return err
		}
		return writeFile(filepath.Join(binDir, filepath.Base(pkgName)), r, 0o755)
	default:
		return fmt.Errorf("unsupported artifact format %q", format)
	}
}

// untar extracts a tar stream, rejecting entries that would escape the
// staging directory.
func untar(stage string, r io.Reader) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("tar: %w", err)
		}

		dest, err := safeJoin(stage, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return err
			}
			if err := writeFile(dest, tr, os.FileMode(hdr.Mode).Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(hdr.Linkname) {
				return fmt.Errorf("tar: absolute symlink %q", hdr.Name)
			}
			target := filepath.Join(filepath.Dir(dest), hdr.Linkname)
			if target != stage && !strings.HasPrefix(target, stage+string(os.PathSeparator)) {
				return fmt.Errorf("tar: symlink %q escapes archive root", hdr.Name)
			}
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return err
			}
			os.Remove(dest)
			if err := os.Symlink(hdr.Linkname, dest); err != nil {
				return err
			}
		default:
			// Hard links, devices, fifos are not expected in binary bundles.
			continue
		}
	}
}

// safeJoin joins a tar entry name onto base, rejecting path traversal.
func safeJoin(base, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("tar: absolute entry %q", name)
	}
	dest := filepath.Join(base, name)
	if dest != base && !strings.HasPrefix(dest, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("tar: entry %q escapes archive root", name)
	}
	return dest, nil
}

func writeFile(dest string, r io.Reader, mode os.FileMode) error {
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
