// Package reconcile compares declared dependency constraints against the
// packages installed in an environment and decides, per dependency, between
// the fast path (reuse) and the slow path (install, upgrade, or downgrade).
package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/launchpad-sh/launchpad/pkg/envstore"
	"github.com/launchpad-sh/launchpad/pkg/manifest"
)

// Action is the terminal per-dependency decision for one activation.
type Action int

const (
	FastPath Action = iota
	NeedsInstall
	NeedsUpgrade
	NeedsDowngrade
)

func (a Action) String() string {
	switch a {
	case FastPath:
		return "fast-path"
	case NeedsInstall:
		return "needs-install"
	case NeedsUpgrade:
		return "needs-upgrade"
	case NeedsDowngrade:
		return "needs-downgrade"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Decision is the resolution for one dependency.
type Decision struct {
	Dep    manifest.Dependency
	Action Action
	// Installed is the package backing a fast path, or the mismatched
	// install that triggered an upgrade/downgrade. Nil for fresh installs.
	Installed *envstore.InstalledPackage
}

// Decide resolves one dependency against the installed set. It only reads
// metadata: no network, no acquirer.
func Decide(dep manifest.Dependency, installed []envstore.InstalledPackage) Decision {
	var mine []envstore.InstalledPackage
	for _, pkg := range installed {
		if pkg.Name == dep.Name {
			mine = append(mine, pkg)
		}
	}

	if pin := dep.Constraint.Exact(); pin != nil {
		for i := range mine {
			if mine[i].Version.Equal(pin) {
				return Decision{Dep: dep, Action: FastPath, Installed: &mine[i]}
			}
		}
		if len(mine) == 0 {
			return Decision{Dep: dep, Action: NeedsInstall}
		}
		// Compare against the highest installed version. Upgrade and
		// downgrade resolve identically: acquire the exact pin fresh.
		highest := &mine[0]
		for i := range mine {
			if mine[i].Version.GreaterThan(highest.Version) {
				highest = &mine[i]
			}
		}
		if highest.Version.GreaterThan(pin) {
			return Decision{Dep: dep, Action: NeedsDowngrade, Installed: highest}
		}
		return Decision{Dep: dep, Action: NeedsUpgrade, Installed: highest}
	}

	// Range constraint: the highest satisfying install wins the fast path.
	var best *envstore.InstalledPackage
	for i := range mine {
		if !dep.Constraint.Check(mine[i].Version) {
			continue
		}
		if best == nil || mine[i].Version.GreaterThan(best.Version) {
			best = &mine[i]
		}
	}
	if best != nil {
		return Decision{Dep: dep, Action: FastPath, Installed: best}
	}
	return Decision{Dep: dep, Action: NeedsInstall}
}

// Plan is the whole-environment reconciliation result.
type Plan struct {
	Decisions []Decision
}

// NewPlan decides every declared dependency against the installed set.
func NewPlan(deps []manifest.Dependency, installed []envstore.InstalledPackage) *Plan {
	p := &Plan{Decisions: make([]Decision, 0, len(deps))}
	for _, dep := range deps {
		p.Decisions = append(p.Decisions, Decide(dep, installed))
	}
	return p
}

// FastPath reports whether the environment as a whole can be reused: every
// dependency individually resolved to the fast path.
func (p *Plan) FastPath() bool {
	for _, d := range p.Decisions {
		if d.Action != FastPath {
			return false
		}
	}
	return true
}

// Acquirer installs one package satisfying a constraint. Implemented by
// registry.Installer.
type Acquirer interface {
	Acquire(ctx context.Context, name, variant string, c manifest.Constraint) (envstore.InstalledPackage, error)
}

// PartialReconciliationError reports the dependencies that failed to resolve
// while others succeeded. It is non-fatal: the activation still exports
// whatever PATH state is achievable.
type PartialReconciliationError struct {
	Failures map[string]error
}

func (e *PartialReconciliationError) Error() string {
	names := make([]string, 0, len(e.Failures))
	for name := range e.Failures {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %v", name, e.Failures[name]))
	}
	return fmt.Sprintf("%d dependencies failed to resolve: %s",
		len(e.Failures), strings.Join(parts, "; "))
}

// Result is the outcome of executing a plan.
type Result struct {
	// Installed holds every dependency's backing package after execution,
	// reused or freshly acquired.
	Installed []envstore.InstalledPackage
	// Failed maps dependency names to their install errors.
	Failed map[string]error
}

// Execute runs a plan. The fast path reads nothing beyond the plan itself.
// The slow path acquires every dependency needing work with bounded
// parallelism; a failure for one dependency never cancels the others. When
// any dependency fails the returned error is a *PartialReconciliationError
// alongside a Result describing what remains usable.
func Execute(ctx context.Context, plan *Plan, acq Acquirer, workers int, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	res := &Result{Failed: map[string]error{}}

	if plan.FastPath() {
		for _, d := range plan.Decisions {
			if d.Installed != nil {
				res.Installed = append(res.Installed, *d.Installed)
			}
		}
		log.Debug("environment reused on fast path", zap.Int("deps", len(plan.Decisions)))
		return res, nil
	}

	if workers <= 0 {
		workers = 4
	}
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	// Deliberately no errgroup.WithContext: sibling installs are isolated
	// faults, not cancellation triggers for each other.
	g.SetLimit(workers)

	for _, d := range plan.Decisions {
		d := d
		if d.Action == FastPath {
			mu.Lock()
			if d.Installed != nil {
				res.Installed = append(res.Installed, *d.Installed)
			}
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			log.Info("resolving dependency",
				zap.String("package", d.Dep.Name),
				zap.String("constraint", d.Dep.Constraint.String()),
				zap.Stringer("action", d.Action))
			pkg, err := acq.Acquire(ctx, d.Dep.Name, d.Dep.Variant, d.Dep.Constraint)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed[d.Dep.Name] = err
				return nil
			}
			res.Installed = append(res.Installed, pkg)
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(res.Installed, func(i, j int) bool { return res.Installed[i].Name < res.Installed[j].Name })
	if len(res.Failed) > 0 {
		return res, &PartialReconciliationError{Failures: res.Failed}
	}
	return res, nil
}
