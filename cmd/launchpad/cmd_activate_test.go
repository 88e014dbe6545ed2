package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/launchpad-sh/launchpad/pkg/config"
)

func runCommand(t *testing.T, newCmd func() *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	cmd := newCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestActivateShellOutputNoManifest(t *testing.T) {
	home := t.TempDir()
	proj := t.TempDir()
	t.Setenv("LAUNCHPAD_HOME", home)
	config.Init("")

	out, _, err := runCommand(t, newActivateCmd, "--shell", proj)
	if err != nil {
		t.Fatalf("activate --shell: %v", err)
	}
	if !strings.Contains(out, "__launchpad_env_bin='") {
		t.Errorf("missing env bin export in %q", out)
	}
	if !strings.Contains(out, "__launchpad_ready=1") {
		t.Errorf("expected ready=1 in %q", out)
	}
}

func TestActivateShellNeverFails(t *testing.T) {
	home := t.TempDir()
	proj := t.TempDir()
	if err := os.WriteFile(filepath.Join(proj, "deps.toml"), []byte("[dependencies]\nnode = \"1.0.0\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Registry that is already gone.
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	t.Setenv("LAUNCHPAD_HOME", home)
	t.Setenv("LAUNCHPAD_REGISTRY_URL", url)
	config.Init("")

	out, errOut, err := runCommand(t, newActivateCmd, "--shell", proj)
	if err != nil {
		t.Fatalf("activation must not fail the shell: %v", err)
	}
	if !strings.Contains(out, "__launchpad_env_bin='") {
		t.Errorf("degraded activation must still export a bin dir, got %q", out)
	}
	if !strings.Contains(out, "__launchpad_ready=0") {
		t.Errorf("expected ready=0 in %q", out)
	}
	if !strings.Contains(errOut, "warning:") {
		t.Errorf("expected a warning on stderr, got %q", errOut)
	}
}

func TestStatusReportsPendingInstall(t *testing.T) {
	home := t.TempDir()
	proj := t.TempDir()
	if err := os.WriteFile(filepath.Join(proj, "deps.toml"), []byte("[dependencies]\nphp = \"^8.3\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LAUNCHPAD_HOME", home)
	config.Init("")

	out, _, err := runCommand(t, newStatusCmd, proj)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "php") || !strings.Contains(out, "not installed") {
		t.Errorf("status output missing pending install marker:\n%s", out)
	}
	if !strings.Contains(out, "would install") {
		t.Errorf("status output missing summary line:\n%s", out)
	}
}

func TestDeactivatePrintsNothing(t *testing.T) {
	config.Init("")

	out, errOut, err := runCommand(t, newDeactivateCmd)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	// Must be safe inside an eval: no output at all.
	if out != "" || errOut != "" {
		t.Errorf("deactivate must print nothing, got stdout %q stderr %q", out, errOut)
	}
}

func TestShellcodeOutput(t *testing.T) {
	config.Init("")

	out, _, err := runCommand(t, newShellcodeCmd)
	if err != nil {
		t.Fatalf("shellcode: %v", err)
	}
	for _, want := range []string{"__launchpad_chpwd", "LAUNCHPAD_ORIGINAL_PATH", "PROMPT_COMMAND"} {
		if !strings.Contains(out, want) {
			t.Errorf("shellcode missing %q", want)
		}
	}

	fish, _, err := runCommand(t, newShellcodeCmd, "--fish")
	if err != nil {
		t.Fatalf("shellcode --fish: %v", err)
	}
	if !strings.Contains(fish, "--on-variable PWD") {
		t.Errorf("fish shellcode missing PWD hook:\n%s", fish)
	}
}
