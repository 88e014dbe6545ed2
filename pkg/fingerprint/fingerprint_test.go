package fingerprint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestComputeDeterministic(t *testing.T) {
	a := Compute("/home/user/projects/api", []byte("deps"))
	b := Compute("/home/user/projects/api", []byte("deps"))
	if a != b {
		t.Fatalf("same inputs produced different fingerprints: %+v vs %+v", a, b)
	}
}

func TestComputeBaseNamesDirectory(t *testing.T) {
	fp := Compute("/home/user/projects/api", nil)
	if !strings.HasPrefix(fp.Base, "api_") {
		t.Fatalf("base %q does not start with directory name", fp.Base)
	}
	if fp.ManifestDigest != "" {
		t.Fatalf("no manifest should leave digest empty, got %q", fp.ManifestDigest)
	}
	if fp.ID() != fp.Base {
		t.Fatalf("ID without manifest = %q, want %q", fp.ID(), fp.Base)
	}
}

func TestComputeOneByteManifestChange(t *testing.T) {
	base := Compute("/srv/app", []byte("bun.sh = \"^1.2.20\"\n"))
	edit := Compute("/srv/app", []byte("bun.sh = \"^1.2.21\"\n"))
	if base.ManifestDigest == edit.ManifestDigest {
		t.Fatal("one-byte manifest change did not change the digest")
	}
	if base.Base != edit.Base {
		t.Fatal("manifest change must not affect the path-derived base")
	}
}

func TestComputeWhitespaceEditChangesDigest(t *testing.T) {
	// Raw bytes, not parsed form: whitespace-only edits invalidate too.
	a := Compute("/srv/app", []byte("node = \"22\"\n"))
	b := Compute("/srv/app", []byte("node  = \"22\"\n"))
	if a.ManifestDigest == b.ManifestDigest {
		t.Fatal("whitespace-only edit did not change the digest")
	}
}

func TestComputeDifferentPathsDiffer(t *testing.T) {
	a := Compute("/home/user/api", []byte("deps"))
	b := Compute("/home/other/api", []byte("deps"))
	if a.Base == b.Base {
		t.Fatal("different resolved paths produced the same base")
	}
}

func TestComputeEmptyManifestStillDigested(t *testing.T) {
	fp := Compute("/srv/app", []byte{})
	if fp.ManifestDigest == "" {
		t.Fatal("present-but-empty manifest should still produce a digest")
	}
	if !strings.Contains(fp.ID(), "-") {
		t.Fatalf("ID %q should append the digest", fp.ID())
	}
}

func TestResolveProjectPathFollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	if err := os.Mkdir(real, 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	fromLink, err := ResolveProjectPath(link)
	if err != nil {
		t.Fatalf("ResolveProjectPath(link): %v", err)
	}
	fromReal, err := ResolveProjectPath(real)
	if err != nil {
		t.Fatalf("ResolveProjectPath(real): %v", err)
	}
	if fromLink != fromReal {
		t.Fatalf("symlink resolved to %q, real to %q", fromLink, fromReal)
	}
}

func TestSanitizeBase(t *testing.T) {
	fp := Compute("/srv/my app (v2)", nil)
	for _, r := range fp.Base {
		ok := r == '-' || r == '_' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			t.Fatalf("base %q contains unsafe character %q", fp.Base, r)
		}
	}
}
