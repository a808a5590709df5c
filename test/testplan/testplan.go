// Package testplan reads LISA test plan XML files: the declared test suites, the test
// case definitions they reference and the virtual machines the suites run on.
package testplan

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/bitrise-io/go-utils/fileutil"
	"github.com/bitrise-steplib/lisa-tools/test/names"
	"github.com/pkg/errors"
)

// ErrInvalidFormat is returned when a well-formed document misses required elements.
var ErrInvalidFormat = errors.New("invalid test plan")

// Plan is a validated test plan document.
type Plan struct {
	doc XML
}

// Parse reads and validates the test plan at pth.
func Parse(pth string) (*Plan, error) {
	data, err := fileutil.ReadBytesFromFile(pth)
	if err != nil {
		return nil, err
	}

	return parse(data)
}

func parse(data []byte) (*Plan, error) {
	var doc XML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode test plan")
	}

	if err := doc.validate(); err != nil {
		return nil, err
	}

	return &Plan{doc: doc}, nil
}

func (x XML) validate() error {
	if len(x.Suites) == 0 {
		return fmt.Errorf("%w: no testSuites/suite element", ErrInvalidFormat)
	}

	defined := map[string]bool{}
	for _, tc := range x.TestCases {
		if strings.TrimSpace(tc.Name) == "" {
			return fmt.Errorf("%w: test without testName", ErrInvalidFormat)
		}
		defined[names.Key(tc.Name)] = true
	}

	for _, suite := range x.Suites {
		if strings.TrimSpace(suite.Name) == "" {
			return fmt.Errorf("%w: suite without suiteName", ErrInvalidFormat)
		}
		for _, test := range suite.Tests {
			if !defined[names.Key(test)] {
				return fmt.Errorf("%w: suite test (%s) has no testCases/test definition", ErrInvalidFormat, strings.TrimSpace(test))
			}
		}
	}

	if len(x.VMs) == 0 {
		return fmt.Errorf("%w: no VMs/vm element", ErrInvalidFormat)
	}
	for _, vm := range x.VMs {
		if strings.TrimSpace(vm.Name) == "" {
			return fmt.Errorf("%w: vm without vmName", ErrInvalidFormat)
		}
		if strings.TrimSpace(vm.Server) == "" {
			return fmt.Errorf("%w: vm (%s) without hvServer", ErrInvalidFormat, vm.Name)
		}
	}

	return nil
}

// SuiteName returns the name of the first declared suite.
func (p *Plan) SuiteName() string {
	return strings.TrimSpace(p.doc.Suites[0].Name)
}

// Tests returns the test cases referenced by the suites, keyed by their normalized name.
func (p *Plan) Tests() map[string]Test {
	definitions := map[string]TestCase{}
	for _, tc := range p.doc.TestCases {
		key := names.Key(tc.Name)
		if _, ok := definitions[key]; !ok {
			definitions[key] = tc
		}
	}

	tests := map[string]Test{}
	for _, suite := range p.doc.Suites {
		for _, suiteTest := range suite.Tests {
			key := names.Key(suiteTest)
			tc := definitions[key]
			tests[key] = Test{
				Name:         strings.TrimSpace(tc.Name),
				SetupScripts: tc.SetupScript.Scripts(),
				Params:       parseParams(tc.Params),
				Files:        splitList(tc.Files),
			}
		}
	}

	return tests
}

// VMs returns the declared machines keyed by their normalized name.
func (p *Plan) VMs() map[string]Machine {
	machines := map[string]Machine{}
	for _, vm := range p.doc.VMs {
		machines[names.Key(vm.Name)] = Machine{
			Name:     strings.TrimSpace(vm.Name),
			Host:     strings.TrimSpace(vm.Server),
			OS:       strings.TrimSpace(vm.OS),
			Location: strings.TrimSpace(vm.Location),
		}
	}
	return machines
}

func parseParams(raw []string) []Param {
	var params []Param
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		name, value, _ := strings.Cut(item, "=")
		params = append(params, Param{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}
	return params
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
