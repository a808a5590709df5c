package testplan

import (
	"encoding/xml"
	"strings"
)

// XML is the root element of a LISA test plan.
type XML struct {
	XMLName   xml.Name   `xml:"config"`
	Suites    []Suite    `xml:"testSuites>suite"`
	TestCases []TestCase `xml:"testCases>test"`
	VMs       []VM       `xml:"VMs>vm"`
}

// Suite ...
type Suite struct {
	Name  string   `xml:"suiteName"`
	Tests []string `xml:"suiteTests>suiteTest"`
}

// TestCase ...
type TestCase struct {
	Name        string      `xml:"testName"`
	SetupScript SetupScript `xml:"setupScript"`
	Files       string      `xml:"files"`
	Params      []string    `xml:"testParams>param"`
}

// SetupScript is either a single script path as character data
// or a list of <file> children.
type SetupScript struct {
	Value string   `xml:",chardata"`
	Files []string `xml:"file"`
}

// VM ...
type VM struct {
	Name     string `xml:"vmName"`
	Server   string `xml:"hvServer"`
	OS       string `xml:"os"`
	Location string `xml:"testLocation"`
}

// Scripts returns the non-empty setup script paths in declaration order.
func (s SetupScript) Scripts() []string {
	var scripts []string
	if value := strings.TrimSpace(s.Value); value != "" {
		scripts = append(scripts, value)
	}
	for _, file := range s.Files {
		if file = strings.TrimSpace(file); file != "" {
			scripts = append(scripts, file)
		}
	}
	return scripts
}

// Param is a single NAME=VALUE test parameter.
type Param struct {
	Name  string
	Value string
}

// Test is the definition of a test case referenced by a suite.
type Test struct {
	Name         string
	SetupScripts []string
	Params       []Param
	Files        []string
}

// Param returns the value of the first parameter with the given name.
func (t Test) Param(name string) (string, bool) {
	for _, p := range t.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Machine is the declaration of a guest under test.
type Machine struct {
	Name     string
	Host     string
	OS       string
	Location string
}
