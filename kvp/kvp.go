// Package kvp reads Hyper-V Key-Value Pair exchange items a running Linux guest publishes
// to its host.
package kvp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/lisa-tools/shell"
)

// ErrGuestUnresponsive is returned when the guest did not publish the requested items
// before the context expired.
var ErrGuestUnresponsive = errors.New("guest is unresponsive")

const defaultPollInterval = 10 * time.Second

// Querier queries guest metadata over KVP and controls the guest's power state.
type Querier interface {
	Query(ctx context.Context, vmName, host string, keys []string) (map[string]string, error)
	StopVM(vmName, host string) error
}

// HyperV queries KVP items through PowerShell on the hypervisor.
type HyperV struct {
	runner       shell.Runner
	logger       log.Logger
	snapshot     string
	pollInterval time.Duration
}

// NewHyperV returns a Querier. When snapshot is set the guest is reverted to it before
// being started.
func NewHyperV(runner shell.Runner, snapshot string, pollInterval time.Duration, logger log.Logger) *HyperV {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &HyperV{
		runner:       runner,
		logger:       logger,
		snapshot:     snapshot,
		pollInterval: pollInterval,
	}
}

// Query starts the guest if needed and polls its intrinsic exchange items until every
// key is present or ctx is done.
func (h *HyperV) Query(ctx context.Context, vmName, host string, keys []string) (map[string]string, error) {
	if h.snapshot != "" {
		h.logger.Printf("Reverting %s to snapshot %s", vmName, h.snapshot)
		if _, err := h.powerShell(ctx, restoreSnapshotScript(vmName, host, h.snapshot)); err != nil {
			return nil, queryError(ctx, vmName, host, "failed to restore snapshot", err)
		}
	}

	if _, err := h.powerShell(ctx, startScript(vmName, host)); err != nil {
		return nil, queryError(ctx, vmName, host, "failed to start "+vmName, err)
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, unresponsive(vmName, host, err)
		}

		out, err := h.powerShell(ctx, itemsScript(vmName, host))
		if err != nil {
			return nil, queryError(ctx, vmName, host, "failed to read KVP items of "+vmName, err)
		}

		items := parseItems(out)
		if missing := missingKeys(items, keys); len(missing) > 0 {
			h.logger.Debugf("KVP query %d on %s: waiting for %s", attempt, vmName, strings.Join(missing, ", "))
		} else {
			selected := make(map[string]string, len(keys))
			for _, key := range keys {
				selected[key] = items[key]
			}
			return selected, nil
		}

		select {
		case <-ctx.Done():
			return nil, unresponsive(vmName, host, ctx.Err())
		case <-time.After(h.pollInterval):
		}
	}
}

// StopVM turns the guest off.
func (h *HyperV) StopVM(vmName, host string) error {
	if _, err := h.powerShell(context.Background(), stopScript(vmName, host)); err != nil {
		return fmt.Errorf("failed to stop %s: %w", vmName, err)
	}
	return nil
}

func (h *HyperV) powerShell(ctx context.Context, script string) (string, error) {
	return h.runner.Run(ctx, "", "powershell", "-NoProfile", "-NonInteractive", "-Command", script)
}

// queryError reports a failed PowerShell call as ErrGuestUnresponsive once ctx is done.
func queryError(ctx context.Context, vmName, host, msg string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return unresponsive(vmName, host, ctxErr)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func unresponsive(vmName, host string, err error) error {
	return fmt.Errorf("%w: %s on %s: %s", ErrGuestUnresponsive, vmName, host, err)
}

func parseItems(out string) map[string]string {
	items := map[string]string{}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		key, value, found := strings.Cut(line, "=")
		if !found || key == "" {
			continue
		}
		items[key] = value
	}
	return items
}

func missingKeys(items map[string]string, keys []string) []string {
	var missing []string
	for _, key := range keys {
		if _, ok := items[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}
