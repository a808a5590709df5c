package testplan

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Network(t *testing.T) {
	plan, err := Parse("testdata/network.xml")
	require.NoError(t, err)

	assert.Equal(t, "Network", plan.SuiteName())

	wantTests := map[string]Test{
		"external": {
			Name:         "External",
			SetupScripts: []string{`setupScripts\NET_ADD_NIC_MAC.ps1`},
			Params: []Param{
				{Name: "NIC", Value: "nicSetup"},
				{Name: "TC_COVERED", Value: "NET-02"},
			},
			Files: []string{"remote-scripts/ica/NET_EXTERNAL.sh", "remote-scripts/ica/utils.sh"},
		},
	}
	if diff := cmp.Diff(wantTests, plan.Tests()); diff != "" {
		t.Errorf("Tests() mismatch (-want +got):\n%s", diff)
	}

	wantVMs := map[string]Machine{
		"vmname": {Name: "VMName", Host: "localhost", OS: "Linux"},
	}
	if diff := cmp.Diff(wantVMs, plan.VMs()); diff != "" {
		t.Errorf("VMs() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_SetupFilesAndParams(t *testing.T) {
	plan, err := Parse("testdata/setup_files.xml")
	require.NoError(t, err)

	tests := plan.Tests()
	require.Contains(t, tests, "hot_add_disk")

	test := tests["hot_add_disk"]
	assert.Equal(t, "Hot_Add_Disk", test.Name)
	assert.Equal(t, []string{`setupscripts\RevertSnapshot.ps1`, `setupscripts\AddVhdxHardDisk.ps1`}, test.SetupScripts)
	assert.Nil(t, test.Files)

	covered, ok := test.Param("TC_COVERED")
	assert.True(t, ok)
	assert.Equal(t, "STOR-17,STOR-18", covered)

	scsi, ok := test.Param("SCSI")
	assert.True(t, ok)
	assert.Equal(t, "0,1,Dynamic", scsi)

	flag, ok := test.Param("FLAG")
	assert.True(t, ok)
	assert.Equal(t, "", flag)

	_, ok = test.Param("MISSING")
	assert.False(t, ok)

	assert.Equal(t, map[string]Machine{
		"storage-vm": {Name: "storage-vm", Host: "hyperv-host-01", OS: "Linux", Location: "Redmond"},
	}, plan.VMs())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		invalidFormat bool
	}{
		{name: "missing file", path: "testdata/does_not_exist.xml"},
		{name: "malformed xml", path: "testdata/malformed.xml"},
		{name: "no vms declared", path: "testdata/missing_vms.xml", invalidFormat: true},
		{name: "suite test without definition", path: "testdata/undefined_test.xml", invalidFormat: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Parse(tt.path)
			require.Error(t, err)
			assert.Nil(t, plan)
			assert.Equal(t, tt.invalidFormat, errors.Is(err, ErrInvalidFormat))
		})
	}
}

func Test_parse_wrongRoot(t *testing.T) {
	_, err := parse([]byte(`<testsuites><testsuite name="a"/></testsuites>`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidFormat))
}

func Test_validate(t *testing.T) {
	tests := []struct {
		name    string
		doc     XML
		wantErr string
	}{
		{
			name:    "no suites",
			doc:     XML{},
			wantErr: "invalid test plan: no testSuites/suite element",
		},
		{
			name:    "suite without name",
			doc:     XML{Suites: []Suite{{}}},
			wantErr: "invalid test plan: suite without suiteName",
		},
		{
			name: "vm without host",
			doc: XML{
				Suites: []Suite{{Name: "Core"}},
				VMs:    []VM{{Name: "vm1"}},
			},
			wantErr: "invalid test plan: vm (vm1) without hvServer",
		},
		{
			name: "valid",
			doc: XML{
				Suites:    []Suite{{Name: "Core", Tests: []string{"Heartbeat"}}},
				TestCases: []TestCase{{Name: "heartbeat"}},
				VMs:       []VM{{Name: "vm1", Server: "localhost"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tt.wantErr)
		})
	}
}
