package main

import (
	"fmt"
	"strings"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/lisa-tools/patch"
	"github.com/bitrise-steplib/lisa-tools/shell"
	"github.com/spf13/cobra"
)

func newPatchCommand(logger *leveledLogger) *cobra.Command {
	var (
		tree string
		opts patch.Options
	)

	cmd := &cobra.Command{
		Use:   "patch --tree DIR PATCH...",
		Short: "Apply patches to a kernel source tree and optionally build it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			envRepository := env.NewRepository()
			modifier := pathutil.NewPathModifier()
			checker := pathutil.NewPathChecker()

			absTree, err := modifier.AbsPath(tree)
			if err != nil {
				return fmt.Errorf("failed to expand path: %s, error: %w", tree, err)
			}
			if isDir, err := checker.IsDirExists(absTree); err != nil {
				return err
			} else if !isDir {
				return fmt.Errorf("source tree (%s) is not a directory", absTree)
			}

			patches, err := patch.NewFilePathProcessor(envRepository, modifier, checker).ProcessFilePaths(strings.Join(args, "\n"))
			if err != nil {
				return err
			}

			runner := shell.NewRunner(command.NewFactory(envRepository), logger)
			if err := patch.NewApplier(runner, opts, logger).Apply(cmd.Context(), absTree, patches); err != nil {
				return err
			}

			logger.Donef("Applied %d patches", len(patches))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&tree, "tree", "", "kernel or driver source tree")
	flags.BoolVar(&opts.Git, "git", false, "apply with git apply")
	flags.BoolVar(&opts.Build, "build", false, "run make in the tree after applying")
	flags.IntVar(&opts.Jobs, "jobs", 1, "make parallelism")
	_ = cmd.MarkFlagRequired("tree")

	return cmd
}
