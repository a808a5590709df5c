package testrun

import "github.com/bitrise-steplib/lisa-tools/test/testplan"

// VM is a guest under test.
type VM struct {
	Name string
	// GuestOS is the operating system family declared in the test plan, or the
	// distribution reported by the guest over KVP.
	GuestOS  string
	Host     string
	HostOS   string
	Location string
	KVP      map[string]string
}

// TestCase is a test declared by the test plan together with its per VM results.
type TestCase struct {
	Name         string
	Covered      string
	SetupScripts []string
	Params       []testplan.Param
	Files        []string
	// Results is keyed by the normalized VM name.
	Results map[string]string
}

// Columns lists the result table columns in the order of Row.Values.
var Columns = []string{
	"LogPath",
	"TestID",
	"TestLocation",
	"HostName",
	"HostVersion",
	"GuestOSType",
	"LISVersion",
	"TestCaseName",
	"TestResult",
	"TestArea",
	"TestDate",
}

// Row is one (test case, VM) outcome ready for insertion.
type Row struct {
	LogPath      string `json:"LogPath"`
	TestID       string `json:"TestID"`
	TestLocation string `json:"TestLocation"`
	HostName     string `json:"HostName"`
	HostVersion  string `json:"HostVersion"`
	GuestOSType  string `json:"GuestOSType"`
	LISVersion   string `json:"LISVersion"`
	TestCaseName string `json:"TestCaseName"`
	TestResult   string `json:"TestResult"`
	TestArea     string `json:"TestArea"`
	TestDate     string `json:"TestDate"`
}

// Values returns the row in Columns order.
func (r Row) Values() []any {
	return []any{
		r.LogPath,
		r.TestID,
		r.TestLocation,
		r.HostName,
		r.HostVersion,
		r.GuestOSType,
		r.LISVersion,
		r.TestCaseName,
		r.TestResult,
		r.TestArea,
		r.TestDate,
	}
}

// PerfColumns lists the performance table columns in the order of PerfRow.Values.
var PerfColumns = []string{
	"TestArea",
	"TestDate",
	"HostName",
	"GuestOSType",
	"LISVersion",
	"Source",
	"Tool",
	"Metric",
	"Value",
	"Unit",
}

// PerfRow is one performance measurement with the metadata of the run.
type PerfRow struct {
	TestArea    string  `json:"TestArea"`
	TestDate    string  `json:"TestDate"`
	HostName    string  `json:"HostName"`
	GuestOSType string  `json:"GuestOSType"`
	LISVersion  string  `json:"LISVersion"`
	Source      string  `json:"Source"`
	Tool        string  `json:"Tool"`
	Metric      string  `json:"Metric"`
	Value       float64 `json:"Value"`
	Unit        string  `json:"Unit"`
}

// Values returns the row in PerfColumns order.
func (r PerfRow) Values() []any {
	return []any{
		r.TestArea,
		r.TestDate,
		r.HostName,
		r.GuestOSType,
		r.LISVersion,
		r.Source,
		r.Tool,
		r.Metric,
		r.Value,
		r.Unit,
	}
}
