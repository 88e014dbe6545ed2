package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Masterminds/semver/v3"
)

const sample = `[dependencies]
"bun.sh" = "^1.2.20"
node = "22.1.0"
php = { version = "^8.4", variant = "laravel-mysql" }
`

func TestParseOrderedDependencies(t *testing.T) {
	deps, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(deps) != 3 {
		t.Fatalf("expected 3 dependencies, got %d", len(deps))
	}
	wantOrder := []string{"bun.sh", "node", "php"}
	for i, name := range wantOrder {
		if deps[i].Name != name {
			t.Fatalf("dependency %d = %q, want %q", i, deps[i].Name, name)
		}
	}
	if deps[0].Constraint.IsExact() {
		t.Fatal("^1.2.20 must parse as a range, not a pin")
	}
	if !deps[1].Constraint.IsExact() {
		t.Fatal("22.1.0 must parse as a pin")
	}
	if deps[2].Variant != "laravel-mysql" {
		t.Fatalf("php variant = %q, want laravel-mysql", deps[2].Variant)
	}
}

func TestParseInvalidConstraint(t *testing.T) {
	_, err := Parse([]byte("[dependencies]\nnode = \"not-a-version!!\"\n"))
	if err == nil {
		t.Fatal("expected error for invalid constraint")
	}
}

func TestLoadMissingFile(t *testing.T) {
	f, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load without manifest: %v", err)
	}
	if f != nil {
		t.Fatalf("expected nil file, got %+v", f)
	}
}

func TestLoadInvalidFileKeepsRawBytes(t *testing.T) {
	dir := t.TempDir()
	raw := []byte("this is not toml = = =")
	if err := os.WriteFile(filepath.Join(dir, "deps.toml"), raw, 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := Load(dir)
	if !errors.Is(err, ErrInvalidManifestFile) {
		t.Fatalf("expected ErrInvalidManifestFile, got %v", err)
	}
	if f == nil || string(f.Raw) != string(raw) {
		t.Fatal("raw bytes must survive a parse failure for fingerprinting")
	}
}

func TestLoadValidFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "deps.toml"), []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(f.Deps) != 3 {
		t.Fatalf("expected 3 dependencies, got %d", len(f.Deps))
	}
	if string(f.Raw) != sample {
		t.Fatal("Raw must be the exact file content")
	}
}

func TestConstraintPinCheck(t *testing.T) {
	c, err := ParseConstraint("1.2.19")
	if err != nil {
		t.Fatalf("ParseConstraint: %v", err)
	}
	if !c.IsExact() {
		t.Fatal("1.2.19 should be a pin")
	}
	if !c.Check(semver.MustParse("1.2.19")) {
		t.Fatal("pin should match its own version")
	}
	if c.Check(semver.MustParse("1.2.20")) {
		t.Fatal("pin must not match a different version")
	}
}

func TestConstraintCaretRange(t *testing.T) {
	c, err := ParseConstraint("^1.2.20")
	if err != nil {
		t.Fatalf("ParseConstraint: %v", err)
	}
	if c.IsExact() {
		t.Fatal("^1.2.20 should be a range")
	}
	for v, want := range map[string]bool{
		"1.2.20": true,
		"1.4.0":  true,
		"1.2.19": false,
		"2.0.0":  false,
	} {
		if got := c.Check(semver.MustParse(v)); got != want {
			t.Fatalf("^1.2.20 check %s = %v, want %v", v, got, want)
		}
	}
}

func TestConstraintEmpty(t *testing.T) {
	if _, err := ParseConstraint("  "); err == nil {
		t.Fatal("expected error for empty constraint")
	}
}
