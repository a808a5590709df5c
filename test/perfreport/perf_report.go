// Package perfreport is the normalized performance result structure every converter
// produces.
package perfreport

import "sort"

// PerfReport ...
type PerfReport struct {
	Records []Record
}

// Record is a single measured value.
type Record struct {
	// Source is the base name of the file the value was read from.
	Source string
	Tool   string
	Metric string
	Value  float64
	Unit   string
}

// Append adds the records of other to the report.
func (r *PerfReport) Append(other PerfReport) {
	r.Records = append(r.Records, other.Records...)
}

// Sort orders the records by source, then metric.
func (r *PerfReport) Sort() {
	sort.SliceStable(r.Records, func(i, j int) bool {
		a, b := r.Records[i], r.Records[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Metric < b.Metric
	})
}
