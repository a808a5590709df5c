// Package patch applies a series of patches to a kernel or driver source tree and
// optionally builds the result.
package patch

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/lisa-tools/shell"
)

// Options ...
type Options struct {
	// Git applies the patches with git apply instead of patch(1).
	Git bool
	// Build runs make in the tree once every patch applied.
	Build bool
	// Jobs is the make parallelism, values below 1 mean 1.
	Jobs int
}

// Applier ...
type Applier struct {
	runner shell.Runner
	opts   Options
	logger log.Logger
}

// NewApplier ...
func NewApplier(runner shell.Runner, opts Options, logger log.Logger) Applier {
	return Applier{
		runner: runner,
		opts:   opts,
		logger: logger,
	}
}

// Apply checks and applies the patches to tree in the given order. It stops at the first
// patch that does not apply; the patches before it stay applied.
func (a Applier) Apply(ctx context.Context, tree string, patches []string) error {
	for i, pth := range patches {
		a.logger.Printf("(%d/%d) Applying %s", i+1, len(patches), filepath.Base(pth))

		if _, err := a.runner.Run(ctx, tree, a.tool(), a.checkArgs(pth)...); err != nil {
			return fmt.Errorf("patch %s does not apply: %w", pth, err)
		}
		out, err := a.runner.Run(ctx, tree, a.tool(), a.applyArgs(pth)...)
		if err != nil {
			return fmt.Errorf("failed to apply %s: %w", pth, err)
		}
		if out != "" {
			a.logger.Debugf("%s", out)
		}
	}

	if a.opts.Build {
		return a.build(ctx, tree)
	}
	return nil
}

func (a Applier) build(ctx context.Context, tree string) error {
	jobs := a.opts.Jobs
	if jobs < 1 {
		jobs = 1
	}

	a.logger.Printf("Building %s", tree)
	if _, err := a.runner.Run(ctx, "", "make", "-C", tree, "-j"+strconv.Itoa(jobs)); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	a.logger.Donef("Build finished")
	return nil
}

func (a Applier) tool() string {
	if a.opts.Git {
		return "git"
	}
	return "patch"
}

func (a Applier) checkArgs(pth string) []string {
	if a.opts.Git {
		return []string{"apply", "--check", pth}
	}
	return []string{"-p1", "--forward", "--dry-run", "-i", pth}
}

func (a Applier) applyArgs(pth string) []string {
	if a.opts.Git {
		return []string{"apply", pth}
	}
	return []string{"-p1", "--forward", "-i", pth}
}
