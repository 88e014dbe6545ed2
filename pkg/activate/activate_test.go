package activate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/launchpad-sh/launchpad/pkg/platform"
	"github.com/launchpad-sh/launchpad/pkg/reconcile"
	"github.com/launchpad-sh/launchpad/pkg/registry"
)

// fixture is a minimal registry publishing raw "bin" artifacts for the
// current host, counting every HTTP request.
type fixture struct {
	ts       *httptest.Server
	manifest *registry.Manifest
	blobs    map[string][]byte
	requests int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		manifest: &registry.Manifest{Packages: map[string]map[platform.Platform]map[platform.Arch][]registry.Artifact{}},
		blobs:    map[string][]byte{},
	}
	f.ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests++
		if r.URL.Path == "/manifest.json" {
			_ = json.NewEncoder(w).Encode(f.manifest)
			return
		}
		if blob, ok := f.blobs[r.URL.Path]; ok {
			_, _ = w.Write(blob)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(f.ts.Close)
	return f
}

func (f *fixture) publish(t *testing.T, pkg, version string) {
	t.Helper()
	host, err := platform.Detect()
	if err != nil {
		t.Skipf("unsupported test host: %v", err)
	}
	arch, err := platform.DetectArch()
	if err != nil {
		t.Skipf("unsupported test host: %v", err)
	}

	blob := []byte("#!/bin/sh\necho " + pkg + " " + version + "\n")
	path := "/artifacts/" + pkg + "-" + version
	f.blobs[path] = blob
	sum := sha256.Sum256(blob)

	byPlatform, ok := f.manifest.Packages[pkg]
	if !ok {
		byPlatform = map[platform.Platform]map[platform.Arch][]registry.Artifact{}
		f.manifest.Packages[pkg] = byPlatform
	}
	byArch, ok := byPlatform[host]
	if !ok {
		byArch = map[platform.Arch][]registry.Artifact{}
		byPlatform[host] = byArch
	}
	byArch[arch] = append(byArch[arch], registry.Artifact{
		Version: version,
		Variant: registry.DefaultVariant,
		URL:     path,
		SHA256:  hex.EncodeToString(sum[:]),
		Format:  "bin",
	})
}

func (f *fixture) options(t *testing.T) Options {
	t.Helper()
	return Options{
		Root:        t.TempDir(),
		RegistryURL: f.ts.URL,
	}
}

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "deps.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestActivateWithoutManifest(t *testing.T) {
	f := newFixture(t)
	res := Activate(context.Background(), t.TempDir(), f.options(t))

	if !res.Ready {
		t.Fatalf("no-manifest activation must be ready, warnings: %v", res.Warnings)
	}
	if res.BinDir == "" {
		t.Fatal("activation must always yield a usable bin dir")
	}
	if f.requests != 0 {
		t.Fatalf("no dependencies, but %d registry requests were made", f.requests)
	}
}

func TestActivateInvalidManifestWarnsAndProceeds(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	writeManifest(t, dir, "not valid = toml = at all")

	res := Activate(context.Background(), dir, f.options(t))
	if !res.Ready {
		t.Fatal("invalid manifest should degrade to zero dependencies, not fail")
	}
	if len(res.Warnings) == 0 {
		t.Fatal("invalid manifest must produce a warning")
	}
	if res.BinDir == "" {
		t.Fatal("activation must always yield a usable bin dir")
	}
}

func TestActivateIdempotentSecondRunFastPath(t *testing.T) {
	f := newFixture(t)
	f.publish(t, "bun", "1.2.21")
	dir := t.TempDir()
	writeManifest(t, dir, "[dependencies]\nbun = \"^1.2.20\"\n")
	opts := f.options(t)

	first := Activate(context.Background(), dir, opts)
	if !first.Ready || first.FastPath {
		t.Fatalf("first run should install on the slow path: %+v", first)
	}
	requestsAfterFirst := f.requests
	if requestsAfterFirst == 0 {
		t.Fatal("first run should have hit the registry")
	}

	second := Activate(context.Background(), dir, opts)
	if !second.Ready || !second.FastPath {
		t.Fatalf("second run should reuse the environment: %+v", second)
	}
	if f.requests != requestsAfterFirst {
		t.Fatalf("fast path made network calls: %d -> %d", requestsAfterFirst, f.requests)
	}
	if second.BinDir != first.BinDir {
		t.Fatalf("bin dir changed between runs: %q vs %q", first.BinDir, second.BinDir)
	}
}

func TestActivatePinDowngradeScenario(t *testing.T) {
	f := newFixture(t)
	f.publish(t, "bun", "1.2.19")
	f.publish(t, "bun", "1.2.21")
	dir := t.TempDir()
	opts := f.options(t)

	// The range resolves to 1.2.21.
	writeManifest(t, dir, "[dependencies]\nbun = \"^1.2.20\"\n")
	res := Activate(context.Background(), dir, opts)
	if !res.Ready {
		t.Fatalf("initial install failed: %v", res.Warnings)
	}

	// Rewriting the constraint to an exact lower pin must take the slow path
	// and install exactly 1.2.19.
	writeManifest(t, dir, "[dependencies]\nbun = \"1.2.19\"\n")
	res = Activate(context.Background(), dir, opts)
	if !res.Ready || res.FastPath {
		t.Fatalf("pin rewrite should reinstall on the slow path: %+v", res)
	}

	// Same pin again: fast path, no acquisition.
	requestsBefore := f.requests
	res = Activate(context.Background(), dir, opts)
	if !res.Ready || !res.FastPath {
		t.Fatalf("repeat pin should take the fast path: %+v", res)
	}
	if f.requests != requestsBefore {
		t.Fatal("repeat pin activation touched the network")
	}

	insp, err := Inspect(dir, opts)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if len(insp.Decisions) != 1 || insp.Decisions[0].Action != reconcile.FastPath {
		t.Fatalf("unexpected decisions: %+v", insp.Decisions)
	}
	if got := insp.Decisions[0].Installed.Version.String(); got != "1.2.19" {
		t.Fatalf("pinned env has %s, want 1.2.19", got)
	}
}

func TestActivatePartialFailureStaysUsable(t *testing.T) {
	f := newFixture(t)
	f.publish(t, "bun", "1.2.19")
	dir := t.TempDir()
	writeManifest(t, dir, "[dependencies]\nbun = \"1.2.19\"\nnode = \"22.1.0\"\n")

	res := Activate(context.Background(), dir, f.options(t))
	if res.Ready {
		t.Fatal("missing node binary should leave the run not ready")
	}
	if res.BinDir == "" {
		t.Fatal("partial failure must still export a bin dir")
	}
	joined := strings.Join(res.Warnings, "\n")
	if !strings.Contains(joined, "node") {
		t.Fatalf("warnings should name the failed dependency: %v", res.Warnings)
	}
	// bun succeeded despite node failing.
	if _, err := os.Stat(filepath.Join(res.BinDir, "bun")); err != nil {
		t.Fatalf("sibling install missing: %v", err)
	}
}

func TestActivateRegistryDownKeepsShellUsable(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	writeManifest(t, dir, "[dependencies]\nbun = \"1.2.19\"\n")
	opts := f.options(t)
	f.ts.Close()

	res := Activate(context.Background(), dir, opts)
	if res.Ready {
		t.Fatal("unreachable registry cannot produce a ready environment")
	}
	if res.BinDir == "" {
		t.Fatal("activation must still export a bin dir when the registry is down")
	}
	if len(res.Warnings) == 0 {
		t.Fatal("registry failure must surface as a warning")
	}
}

func TestInspectNeverInstalls(t *testing.T) {
	f := newFixture(t)
	f.publish(t, "bun", "1.2.19")
	dir := t.TempDir()
	writeManifest(t, dir, "[dependencies]\nbun = \"1.2.19\"\n")

	insp, err := Inspect(dir, f.options(t))
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if f.requests != 0 {
		t.Fatalf("Inspect hit the network %d times", f.requests)
	}
	if len(insp.Decisions) != 1 || insp.Decisions[0].Action != reconcile.NeedsInstall {
		t.Fatalf("unexpected decisions: %+v", insp.Decisions)
	}
}
