package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/lisa-tools/database"
	"github.com/bitrise-steplib/lisa-tools/mocks"
	"github.com/bitrise-steplib/lisa-tools/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_validateInputs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name: "Existing files",
			args: []string{"run.xml", "ica.log"},
		},
		{
			name:    "Missing log",
			args:    []string{"run.xml", "missing.log"},
			wantErr: "missing.log does not exist",
		},
		{
			name:    "Directory",
			args:    []string{"results", "ica.log"},
			wantErr: "results is a directory",
		},
		{
			name:    "Checker error",
			args:    []string{"run.xml", "broken.log"},
			wantErr: "failed to check broken.log: permission denied",
		},
		{
			name:    "Too few arguments",
			args:    []string{"run.xml"},
			wantErr: "expected 2 arguments, got 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := new(mocks.PathChecker)
			checker.On("IsPathExists", "run.xml").Return(true, nil)
			checker.On("IsPathExists", "ica.log").Return(true, nil)
			checker.On("IsPathExists", "results").Return(true, nil)
			checker.On("IsPathExists", "missing.log").Return(false, nil)
			checker.On("IsPathExists", "broken.log").Return(false, errors.New("permission denied"))
			checker.On("IsDirExists", "results").Return(true, nil)
			checker.On("IsDirExists", "run.xml").Return(false, nil)
			checker.On("IsDirExists", "ica.log").Return(false, nil)

			err := validateInputs(checker, tt.args)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCommand(newLeveledLogger(log.NewLogger()), pathutil.NewPathChecker())
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func executeSplit(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(newLeveledLogger(log.NewLogger()), pathutil.NewPathChecker())
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand_DryRunWritesOnlyJSONToStdout(t *testing.T) {
	stdout, stderr, err := executeSplit(t, "testdata/network.xml", "testdata/ica.log", "-k", "--dry-run", "-c", "testdata/db.config")
	require.NoError(t, err)

	var batch database.Batch
	require.NoError(t, json.Unmarshal([]byte(stdout), &batch))
	require.Len(t, batch.Rows, 1)
	assert.Contains(t, stderr, "Parsing test plan")
	assert.Contains(t, stderr, "internalnetwork")
	assert.NotContains(t, stderr, "secret")
}

func TestRootCommand_DryRunWithoutConfigFile(t *testing.T) {
	stdout, _, err := executeSplit(t, "testdata/network.xml", "testdata/ica.log", "-k", "--dry-run", "-c", "testdata/missing.config", "-l", "0")
	require.NoError(t, err)

	var batch database.Batch
	require.NoError(t, json.Unmarshal([]byte(stdout), &batch))
	require.Len(t, batch.Rows, 1)
	assert.Equal(t, "NET-02", batch.Rows[0].TestID)
}

func TestRootCommand_DryRun(t *testing.T) {
	out, err := execute(t, "testdata/network.xml", "testdata/ica.log", "-k", "--dry-run", "-c", "testdata/db.config", "-l", "0")
	require.NoError(t, err)

	var batch database.Batch
	require.NoError(t, json.Unmarshal([]byte(out), &batch))
	require.Len(t, batch.Rows, 1)
	assert.Equal(t, "NET-02", batch.Rows[0].TestID)
	assert.Equal(t, "success", batch.Rows[0].TestResult)
	assert.Equal(t, "20160101", batch.Rows[0].TestDate)
	assert.Empty(t, batch.PerfRows)
}

func TestRootCommand_DryRunIsIdempotent(t *testing.T) {
	args := []string{"testdata/network.xml", "testdata/ica.log", "-k", "--dry-run", "-c", "testdata/db.config", "-l", "0"}

	first, err := execute(t, args...)
	require.NoError(t, err)
	second, err := execute(t, args...)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRootCommand_DryRunWithPerf(t *testing.T) {
	out, err := execute(t, "testdata/network.xml", "testdata/ica.log", "-k", "--dry-run", "-c", "testdata/db.config", "-l", "0", "-p", "testdata/perf")
	require.NoError(t, err)

	var batch database.Batch
	require.NoError(t, json.Unmarshal([]byte(out), &batch))
	require.NotEmpty(t, batch.PerfRows)
	for _, row := range batch.PerfRows {
		assert.Equal(t, "ntttcp", row.Tool)
		assert.Equal(t, "Network", row.TestArea)
		assert.Equal(t, "localhost", row.HostName)
	}
}

func TestRootCommand_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing file", args: []string{"testdata/network.xml", "testdata/missing.log"}},
		{name: "directory", args: []string{"testdata", "testdata/ica.log"}},
		{name: "no arguments", args: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.ErrorIs(t, err, errInvalidInput)
			assert.Contains(t, out, "Invalid input")
			assert.Contains(t, out, "Usage:")
		})
	}
}

func TestRootCommand_MissingConfig(t *testing.T) {
	_, err := execute(t, "testdata/network.xml", "testdata/ica.log", "-k", "-c", "testdata/missing.config", "-l", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "issue with config")
}

func TestSuitesCommand(t *testing.T) {
	out, err := execute(t, "suites")
	require.NoError(t, err)
	for _, name := range suite.Names() {
		assert.Contains(t, out, name+" (")
	}

	out, err = execute(t, "suites", "network")
	require.NoError(t, err)
	assert.Contains(t, out, "external\ninternalnetwork\n")

	_, err = execute(t, "suites", "nope")
	require.ErrorIs(t, err, suite.ErrUnknownSuite)
}

func TestPatchCommand_RequiresTree(t *testing.T) {
	_, err := execute(t, "patch", "0001.patch")
	require.Error(t, err)
}
