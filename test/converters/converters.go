// Package converters contains the interface a performance log converter has to implement.
// A converter is handed the files of a results directory, Detect reports whether it
// recognises any of them, and Convert turns the detected files into a PerfReport.
package converters

import (
	"github.com/bitrise-steplib/lisa-tools/test/converters/fio"
	"github.com/bitrise-steplib/lisa-tools/test/converters/ntttcp"
	"github.com/bitrise-steplib/lisa-tools/test/perfreport"
)

// Intf is the required interface a converter need to match
type Intf interface {
	Detect([]string) bool
	Convert() (perfreport.PerfReport, error)
}

// List lists all supported converters
func List() []Intf {
	return []Intf{
		&ntttcp.Converter{},
		&fio.Converter{},
	}
}
