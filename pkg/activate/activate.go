// Package activate is the activation boundary: it ties fingerprinting, the
// environment store, reconciliation, and acquisition together, and converts
// every fault into a warning plus a still-usable PATH export. Nothing in here
// may raise past the CLI in a way that would leave a shell without a prompt.
package activate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/launchpad-sh/launchpad/pkg/envstore"
	"github.com/launchpad-sh/launchpad/pkg/fingerprint"
	"github.com/launchpad-sh/launchpad/pkg/manifest"
	"github.com/launchpad-sh/launchpad/pkg/platform"
	"github.com/launchpad-sh/launchpad/pkg/reconcile"
	"github.com/launchpad-sh/launchpad/pkg/registry"
)

// Options configures an activation run.
type Options struct {
	// Root is the environment store root; empty means envstore.Root().
	Root        string
	RegistryURL string
	// Client overrides the registry client built from RegistryURL.
	Client         *registry.Client
	InstallTimeout time.Duration
	InstallWorkers int
	Log            *zap.Logger
}

func (o *Options) logger() *zap.Logger {
	if o.Log != nil {
		return o.Log
	}
	return zap.NewNop()
}

// Result is what the shell layer consumes: a bin directory to export (empty
// only when even the environment directory could not be created), a simple
// ready signal, and human-readable warnings.
type Result struct {
	Project     string
	Fingerprint fingerprint.Fingerprint
	BinDir      string
	// Ready means every declared dependency resolved.
	Ready bool
	// FastPath means the run reused the environment without any network or
	// acquirer activity.
	FastPath bool
	Warnings []string
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Activate prepares the environment for a project directory. It never
// returns an error: failures degrade to warnings and the best achievable
// PATH state. A failed acquisition is reported once here and retried
// naturally on the next activation event.
func Activate(ctx context.Context, dir string, opts Options) *Result {
	log := opts.logger()
	res := &Result{}

	resolved, err := fingerprint.ResolveProjectPath(dir)
	if err != nil {
		res.warnf("cannot resolve project path %s: %v", dir, err)
		return res
	}
	res.Project = resolved

	var raw []byte
	var deps []manifest.Dependency
	mf, mErr := manifest.Load(resolved)
	if mf != nil {
		raw = mf.Raw
		deps = mf.Deps
	}
	if mErr != nil {
		// Unparseable manifest: proceed with zero dependencies.
		res.warnf("%v (continuing with no dependencies)", mErr)
		deps = nil
	}

	res.Fingerprint = fingerprint.Compute(resolved, raw)

	root := opts.Root
	if root == "" {
		root = envstore.Root()
	}
	env, err := envstore.Open(root, res.Fingerprint)
	if err != nil {
		res.warnf("cannot open environment: %v", err)
		return res
	}
	res.BinDir = env.BinDir

	installed, err := env.Scan()
	if err != nil {
		res.warnf("cannot scan environment: %v", err)
	}

	plan := reconcile.NewPlan(deps, installed)
	if plan.FastPath() {
		res.Ready = true
		res.FastPath = true
		log.Debug("fast path",
			zap.String("project", resolved),
			zap.String("env", res.Fingerprint.ID()))
		return res
	}

	// Slow path. Everything below may touch the network; every failure stays
	// a warning.
	host, err := platform.Detect()
	if err != nil {
		res.warnf("%v", err)
		return res
	}
	arch, err := platform.DetectArch()
	if err != nil {
		res.warnf("%v", err)
		return res
	}

	client := opts.Client
	if client == nil {
		client, err = registry.NewClient(opts.RegistryURL, registry.ClientOptions{Logger: log})
		if err != nil {
			res.warnf("registry client: %v", err)
			return res
		}
	}

	if opts.InstallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.InstallTimeout)
		defer cancel()
	}

	installer := &registry.Installer{
		Client:   client,
		Env:      env,
		Platform: host,
		Arch:     arch,
		Log:      log,
	}
	_, execErr := reconcile.Execute(ctx, plan, installer, opts.InstallWorkers, log)
	if execErr != nil {
		res.warnf("%v", execErr)
		return res
	}

	res.Ready = true
	return res
}

// Inspection is a read-only view of what an activation would do.
type Inspection struct {
	Project     string
	Fingerprint fingerprint.Fingerprint
	EnvDir      string
	BinDir      string
	Decisions   []reconcile.Decision
	Warnings    []string
}

// Inspect reports the per-dependency decisions for a directory without
// installing anything or touching the network.
func Inspect(dir string, opts Options) (*Inspection, error) {
	resolved, err := fingerprint.ResolveProjectPath(dir)
	if err != nil {
		return nil, err
	}

	insp := &Inspection{Project: resolved}
	var raw []byte
	var deps []manifest.Dependency
	mf, mErr := manifest.Load(resolved)
	if mf != nil {
		raw = mf.Raw
		deps = mf.Deps
	}
	if mErr != nil {
		insp.Warnings = append(insp.Warnings, mErr.Error())
	}
	insp.Fingerprint = fingerprint.Compute(resolved, raw)

	root := opts.Root
	if root == "" {
		root = envstore.Root()
	}
	env, err := envstore.Open(root, insp.Fingerprint)
	if err != nil {
		return nil, err
	}
	insp.EnvDir = env.Dir
	insp.BinDir = env.BinDir

	installed, err := env.Scan()
	if err != nil {
		return nil, err
	}
	insp.Decisions = reconcile.NewPlan(deps, installed).Decisions
	return insp, nil
}
