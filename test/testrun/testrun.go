// Package testrun merges a test plan with the outcomes of its ICA log into rows keyed by
// test case and VM.
package testrun

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/lisa-tools/kvp"
	"github.com/bitrise-steplib/lisa-tools/suite"
	"github.com/bitrise-steplib/lisa-tools/test/icalog"
	"github.com/bitrise-steplib/lisa-tools/test/names"
	"github.com/bitrise-steplib/lisa-tools/test/perfreport"
	"github.com/bitrise-steplib/lisa-tools/test/testplan"
	"github.com/docker/go-units"
)

// MissingResultPolicy decides what happens to a (test case, VM) pair the log has no
// result for.
type MissingResultPolicy string

const (
	// SkipMissing drops the row.
	SkipMissing MissingResultPolicy = "skip"
	// MarkUnknown emits the row with UnknownResult.
	MarkUnknown MissingResultPolicy = "unknown"
)

const (
	// UnknownResult is the TestResult of rows without a logged outcome under MarkUnknown.
	UnknownResult = "unknown"
	// DefaultLocation is the TestLocation of VMs not declaring a testLocation.
	DefaultLocation = "Hyper-V"

	coveredParam   = "TC_COVERED"
	testDateLayout = "20060102"
)

// month/day/year as written by the ICA summary, single digit fields are accepted
var timestampLayouts = []string{
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
}

// DefaultKVPKeys are the guest items read by UpdateFromVM.
var DefaultKVPKeys = []string{"OSBuildNumber", "OSName", "OSMajorVersion"}

// TestRun is the aggregate of one LISA run.
type TestRun struct {
	SuiteName  string
	Timestamp  string
	LogPath    string
	LISVersion string
	// VMs and TestCases are keyed by normalized name.
	VMs       map[string]*VM
	TestCases map[string]*TestCase

	policy MissingResultPolicy
	logger log.Logger
}

// Option configures a TestRun.
type Option func(*TestRun)

// WithMissingResultPolicy sets how pairs without a logged result are emitted.
func WithMissingResultPolicy(policy MissingResultPolicy) Option {
	return func(r *TestRun) {
		r.policy = policy
	}
}

// New returns an empty TestRun using SkipMissing unless configured otherwise.
func New(logger log.Logger, opts ...Option) *TestRun {
	r := &TestRun{
		VMs:       map[string]*VM{},
		TestCases: map[string]*TestCase{},
		policy:    SkipMissing,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// UpdateFromXML creates the suite, VM and test case skeletons from the test plan at pth.
func (r *TestRun) UpdateFromXML(pth string) error {
	plan, err := testplan.Parse(pth)
	if err != nil {
		return fmt.Errorf("failed to parse test plan (%s): %w", pth, err)
	}

	r.SuiteName = plan.SuiteName()

	for key, machine := range plan.VMs() {
		location := machine.Location
		if location == "" {
			location = DefaultLocation
		}
		r.VMs[key] = &VM{
			Name:     machine.Name,
			GuestOS:  machine.OS,
			Host:     machine.Host,
			Location: location,
		}
	}

	_, suiteErr := suite.Cases(r.SuiteName)
	if suiteErr != nil {
		r.logger.Debugf("Suite %s is not in the suite registry", r.SuiteName)
	}

	tests := plan.Tests()
	for _, key := range sortedKeys(tests) {
		test := tests[key]
		covered, _ := test.Param(coveredParam)

		r.TestCases[key] = &TestCase{
			Name:         test.Name,
			Covered:      covered,
			SetupScripts: test.SetupScripts,
			Params:       test.Params,
			Files:        test.Files,
			Results:      map[string]string{},
		}

		if suiteErr == nil && !suite.Contains(r.SuiteName, test.Name) {
			r.logger.Warnf("Test case %s is not a registered case of suite %s", test.Name, r.SuiteName)
		}
	}

	return nil
}

// UpdateFromICA fills in the timestamp, versions, host metadata and results from the ICA
// log at pth. Tests and VMs the test plan does not declare are ignored.
func (r *TestRun) UpdateFromICA(pth string) error {
	if info, err := os.Stat(pth); err == nil {
		r.logger.Debugf("Parsing ICA log %s (%s)", pth, units.HumanSize(float64(info.Size())))
	}

	parsed, err := icalog.ParseFile(pth)
	if err != nil {
		return fmt.Errorf("failed to parse ICA log (%s): %w", pth, err)
	}

	if parsed.Timestamp != "" {
		r.Timestamp = parsed.Timestamp
	} else {
		r.logger.Warnf("No test run timestamp found in %s", pth)
	}
	if parsed.LogPath != "" {
		r.LogPath = parsed.LogPath
	}
	if parsed.LISVersion != "" {
		r.LISVersion = parsed.LISVersion
	}

	for _, name := range sortedKeys(parsed.VMs) {
		host := parsed.VMs[name]
		vm, ok := r.VMs[names.Key(name)]
		if !ok {
			r.logger.Warnf("VM %s found in the log is not declared in the test plan, ignoring it", name)
			continue
		}
		if host.Server != "" {
			vm.Host = host.Server
		}
		if host.OS != "" {
			vm.HostOS = host.OS
		}
	}

	for _, result := range parsed.Results {
		tc, ok := r.TestCases[result.Test]
		if !ok {
			r.logger.Warnf("Test %s found in the log is not declared in the test plan, ignoring its result", result.Test)
			continue
		}

		vmKey := names.Key(result.VM)
		if _, ok := r.VMs[vmKey]; !ok {
			r.logger.Warnf("Result of %s belongs to undeclared VM %q, ignoring it", tc.Name, result.VM)
			continue
		}
		tc.Results[vmKey] = result.Status
	}

	return nil
}

// UpdateFromVM reads the given KVP items of every VM and overwrites the guest OS type
// with the distribution the guest reports. When stopVM is set the guest is shut down
// after the query. The caller bounds the queries with ctx.
func (r *TestRun) UpdateFromVM(ctx context.Context, querier kvp.Querier, keys []string, stopVM bool) error {
	for _, key := range sortedKeys(r.VMs) {
		vm := r.VMs[key]

		r.logger.Printf("Querying KVP items of %s on %s", vm.Name, vm.Host)
		items, err := querier.Query(ctx, vm.Name, vm.Host, keys)
		if err != nil {
			return fmt.Errorf("failed to query %s: %w", vm.Name, err)
		}
		vm.KVP = items

		if guestOS := joinNonEmpty(items["OSName"], items["OSMajorVersion"]); guestOS != "" {
			vm.GuestOS = guestOS
		}

		if stopVM {
			r.logger.Printf("Stopping %s", vm.Name)
			if err := querier.StopVM(vm.Name, vm.Host); err != nil {
				return err
			}
		}
	}
	return nil
}

// ParseForDBInsertion emits one row per (test case, VM) pair ordered by test case, then
// VM. Pairs without a result follow the MissingResultPolicy.
func (r *TestRun) ParseForDBInsertion() ([]Row, error) {
	testDate, err := r.testDate()
	if err != nil {
		return nil, err
	}

	rows := []Row{}
	for _, tcKey := range sortedKeys(r.TestCases) {
		tc := r.TestCases[tcKey]
		for _, vmKey := range sortedKeys(r.VMs) {
			vm := r.VMs[vmKey]

			result, ok := tc.Results[vmKey]
			if !ok {
				if r.policy != MarkUnknown {
					r.logger.Debugf("No result for %s on %s, skipping", tc.Name, vm.Name)
					continue
				}
				result = UnknownResult
			}

			rows = append(rows, Row{
				LogPath:      r.LogPath,
				TestID:       tc.Covered,
				TestLocation: vm.Location,
				HostName:     vm.Host,
				HostVersion:  vm.HostOS,
				GuestOSType:  vm.GuestOS,
				LISVersion:   r.LISVersion,
				TestCaseName: tc.Name,
				TestResult:   result,
				TestArea:     r.SuiteName,
				TestDate:     testDate,
			})
		}
	}
	return rows, nil
}

// ParsePerfForDBInsertion attaches the run metadata to performance records. Host and
// guest columns are only filled when the run has a single VM.
func (r *TestRun) ParsePerfForDBInsertion(report perfreport.PerfReport) ([]PerfRow, error) {
	testDate, err := r.testDate()
	if err != nil {
		return nil, err
	}

	var vm VM
	if len(r.VMs) == 1 {
		for _, v := range r.VMs {
			vm = *v
		}
	}

	rows := []PerfRow{}
	for _, record := range report.Records {
		rows = append(rows, PerfRow{
			TestArea:    r.SuiteName,
			TestDate:    testDate,
			HostName:    vm.Host,
			GuestOSType: vm.GuestOS,
			LISVersion:  r.LISVersion,
			Source:      record.Source,
			Tool:        record.Tool,
			Metric:      record.Metric,
			Value:       record.Value,
			Unit:        record.Unit,
		})
	}
	return rows, nil
}

func (r *TestRun) testDate() (string, error) {
	if r.Timestamp == "" {
		return "", nil
	}

	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		if t, err = time.Parse(layout, r.Timestamp); err == nil {
			return t.Format(testDateLayout), nil
		}
	}
	return "", fmt.Errorf("invalid test run timestamp (%s): %w", r.Timestamp, err)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func joinNonEmpty(values ...string) string {
	var parts []string
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, " ")
}
