package perfreport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerfReport_AppendAndSort(t *testing.T) {
	var report PerfReport
	report.Append(PerfReport{Records: []Record{
		{Source: "b.log", Metric: "throughput"},
		{Source: "a.log", Metric: "write_iops"},
	}})
	report.Append(PerfReport{Records: []Record{
		{Source: "a.log", Metric: "read_iops"},
	}})

	report.Sort()

	assert.Equal(t, []Record{
		{Source: "a.log", Metric: "read_iops"},
		{Source: "a.log", Metric: "write_iops"},
		{Source: "b.log", Metric: "throughput"},
	}, report.Records)
}
