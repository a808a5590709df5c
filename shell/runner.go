// Package shell runs external tools (PowerShell, patch, git, make) and reports failures
// together with the tool's combined output.
package shell

import (
	"context"
	"fmt"

	"github.com/bitrise-io/go-utils/errorutil"
	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/log"
)

// Runner executes a command in dir and returns its trimmed combined output. Run returns
// as soon as ctx is done, with an error wrapping ctx.Err().
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

type commandRunner struct {
	factory command.Factory
	logger  log.Logger
}

// NewRunner returns a Runner backed by the given command factory.
func NewRunner(factory command.Factory, logger log.Logger) Runner {
	return commandRunner{
		factory: factory,
		logger:  logger,
	}
}

type result struct {
	out string
	err error
}

func (r commandRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	cmd := r.factory.Create(name, args, &command.Opts{Dir: dir})
	r.logger.Debugf("$ %s", cmd.PrintableCommandArgs())

	done := make(chan result, 1)
	go func() {
		out, err := cmd.RunAndReturnTrimmedCombinedOutput()
		done <- result{out: out, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		// the command factory exposes no handle to kill the process, it is left to exit on its own
		r.logger.Warnf("Abandoned %s: %s", cmd.PrintableCommandArgs(), ctx.Err())
		return "", fmt.Errorf("%s: %w", cmd.PrintableCommandArgs(), ctx.Err())
	case res = <-done:
	}

	if res.err != nil {
		if errorutil.IsExitStatusError(res.err) {
			return res.out, fmt.Errorf("%s failed: %s", cmd.PrintableCommandArgs(), res.out)
		}
		return res.out, fmt.Errorf("%s failed: %w", cmd.PrintableCommandArgs(), res.err)
	}
	return res.out, nil
}
