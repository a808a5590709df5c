package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bitrise-io/go-steputils/v2/stepconf"
	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/lisa-tools/config"
	"github.com/bitrise-steplib/lisa-tools/database"
	"github.com/bitrise-steplib/lisa-tools/kvp"
	"github.com/bitrise-steplib/lisa-tools/shell"
	"github.com/bitrise-steplib/lisa-tools/test"
	"github.com/bitrise-steplib/lisa-tools/test/testrun"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"
)

var errInvalidInput = errors.New("invalid input")

type pathChecker interface {
	IsPathExists(pth string) (bool, error)
	IsDirExists(pth string) (bool, error)
}

type rootOptions struct {
	skipKVP    bool
	configPath string
	logLevel   int
	perfDir    string
	snapshot   string
	dryRun     bool
}

func fail(logger log.Logger, format string, v ...interface{}) {
	logger.Errorf(format, v...)
	os.Exit(1)
}

func main() {
	logger := newLeveledLogger(log.NewLogger())

	if err := newRootCommand(logger, pathutil.NewPathChecker()).ExecuteContext(context.Background()); err != nil {
		if errors.Is(err, errInvalidInput) {
			os.Exit(1)
		}
		fail(logger, "%s", err)
	}
}

func newRootCommand(logger *leveledLogger, checker pathChecker) *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:   "lisa-tools <xml_file> <log_file>",
		Short: "Parse a LISA test run and store its results",
		Long: `Parses the LISA test plan XML and the ICA log of a run, merges them into one row per
test case and VM and inserts the rows into the configured database table.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.setLevel(opts.logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateInputs(checker, args); err != nil {
				logger.Debugf("%s", err)
				cmd.PrintErrln("Invalid input")
				_ = cmd.Usage()
				return errInvalidInput
			}
			if opts.dryRun {
				// stdout carries the JSON rows only
				logger.redirect(cmd.ErrOrStderr())
			}
			return runPipeline(cmd.Context(), logger, checker, opts, args[0], args[1], cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.skipKVP, "skipkvp", "k", false, "do not query the guests over KVP")
	flags.StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "database config file")
	flags.StringVarP(&opts.perfDir, "perf", "p", "", "directory of performance logs to store alongside the results")
	flags.StringVarP(&opts.snapshot, "snapshot", "s", "", "restore this VM snapshot before the KVP query and stop the VM after it")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "print the rows as JSON instead of inserting them")
	cmd.PersistentFlags().IntVarP(&opts.logLevel, "loglevel", "l", levelInfo, "0 errors, 1 warnings, 2 info, 3 debug")

	cmd.AddCommand(newSuitesCommand())
	cmd.AddCommand(newPatchCommand(logger))

	return cmd
}

// validateInputs requires exactly the xml and log files, both existing regular files.
func validateInputs(checker pathChecker, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected 2 arguments, got %d", len(args))
	}
	for _, pth := range args {
		exists, err := checker.IsPathExists(pth)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", pth, err)
		}
		if !exists {
			return fmt.Errorf("%s does not exist", pth)
		}
		isDir, err := checker.IsDirExists(pth)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", pth, err)
		}
		if isDir {
			return fmt.Errorf("%s is a directory", pth)
		}
	}
	return nil
}

// loadConfig reads the config file. A dry run does not touch the database, so there a
// missing file falls back to the process environment.
func loadConfig(logger *leveledLogger, checker pathChecker, opts rootOptions) (config.Config, error) {
	if opts.dryRun {
		if exists, err := checker.IsPathExists(opts.configPath); err == nil && !exists {
			logger.Debugf("No config file at %s, reading the environment only", opts.configPath)
			return config.Parse(env.NewRepository())
		}
	}
	return config.Load(opts.configPath)
}

func runPipeline(ctx context.Context, logger *leveledLogger, checker pathChecker, opts rootOptions, xmlPth, logPth string, out io.Writer) error {
	cfg, err := loadConfig(logger, checker, opts)
	if err != nil {
		return fmt.Errorf("issue with config: %w", err)
	}
	if !opts.dryRun && logger.level >= levelInfo {
		stepconf.Print(cfg)
		logger.Println()
	}

	run := testrun.New(logger, testrun.WithMissingResultPolicy(cfg.MissingResultPolicy()))

	logger.Infof("Parsing test plan")
	if err := run.UpdateFromXML(xmlPth); err != nil {
		return err
	}
	logger.Infof("Parsing ICA log")
	if err := run.UpdateFromICA(logPth); err != nil {
		return err
	}

	if !opts.skipKVP {
		logger.Infof("Querying guests over KVP")
		runner := shell.NewRunner(command.NewFactory(env.NewRepository()), logger)
		querier := kvp.NewHyperV(runner, opts.snapshot, cfg.KVPPollDuration(), logger)

		kvpCtx, cancel := context.WithTimeout(ctx, cfg.KVPTimeoutDuration())
		err := run.UpdateFromVM(kvpCtx, querier, testrun.DefaultKVPKeys, opts.snapshot != "")
		cancel()
		if err != nil {
			return err
		}
	}

	var batch database.Batch
	if batch.Rows, err = run.ParseForDBInsertion(); err != nil {
		return err
	}
	logger.Debugf("Result rows: %# v", pretty.Formatter(batch.Rows))

	if opts.perfDir != "" {
		logger.Infof("Converting performance logs")
		report, err := test.ParsePerfResults(opts.perfDir, logger)
		if err != nil {
			return fmt.Errorf("failed to parse performance results: %w", err)
		}
		if batch.PerfRows, err = run.ParsePerfForDBInsertion(report); err != nil {
			return err
		}
		logger.Debugf("Performance rows: %# v", pretty.Formatter(batch.PerfRows))
	}

	if opts.dryRun {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(batch)
	}

	if err := cfg.ValidateDatabase(); err != nil {
		return fmt.Errorf("issue with config: %w", err)
	}

	logger.Infof("Inserting %d result and %d performance rows", len(batch.Rows), len(batch.PerfRows))
	pool, err := database.NewPool(ctx, cfg.DatabaseURL())
	if err != nil {
		return err
	}
	defer pool.Close()

	tables := database.Tables{Results: cfg.TableName, Perf: cfg.PerfTableName}
	if cfg.CreateTables {
		if err := database.EnsureSchema(ctx, pool, tables); err != nil {
			return err
		}
	}
	if err := database.NewStore(pool, tables, logger).Save(ctx, batch); err != nil {
		return err
	}

	logger.Donef("Success")
	return nil
}
