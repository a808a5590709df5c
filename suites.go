package main

import (
	"fmt"
	"strings"

	"github.com/bitrise-steplib/lisa-tools/suite"
	"github.com/spf13/cobra"
)

func newSuitesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suites [NAME]",
		Short: "List the registered test suites or the cases of one suite",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				for _, name := range suite.Names() {
					cases, err := suite.Cases(name)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s (%d cases)\n", name, len(cases))
				}
				return nil
			}

			cases, err := suite.Cases(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintln(out, strings.Join(cases, "\n"))
			return nil
		},
	}
}
