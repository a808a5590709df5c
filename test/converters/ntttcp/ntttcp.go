// Package ntttcp converts ntttcp-for-linux console logs.
package ntttcp

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/bitrise-steplib/lisa-tools/test/perfreport"
)

const tool = "ntttcp"

type metricPattern struct {
	metric string
	unit   string
	re     *regexp.Regexp
}

var (
	totalsPattern = regexp.MustCompile(`#+\s*Totals:\s*#+`)

	// connections are reported before the totals block
	connectionsPattern = metricPattern{metric: "connections", unit: "count", re: regexp.MustCompile(`(\d+) connections tested`)}

	totalsPatterns = []metricPattern{
		{metric: "duration", unit: "s", re: regexp.MustCompile(`test duration\s*:\s*([\d.]+)\s*seconds`)},
		{metric: "throughput", re: regexp.MustCompile(`throughput\s*:\s*([\d.]+)\s*([KMG]?bps)`)},
		{metric: "retrans_segs", unit: "count", re: regexp.MustCompile(`retrans segs\s*:\s*(\d+)`)},
		{metric: "cpu_busy", unit: "%", re: regexp.MustCompile(`cpu busy \(all\)\s*:\s*([\d.]+)%`)},
	}
)

// Converter holds the detected ntttcp logs.
type Converter struct {
	files []string
}

// Detect returns true if any of the files is an ntttcp log.
func (c *Converter) Detect(files []string) bool {
	c.files = nil
	for _, file := range files {
		base := strings.ToLower(filepath.Base(file))
		if strings.Contains(base, "ntttcp") && filepath.Ext(base) == ".log" {
			c.files = append(c.files, file)
		}
	}
	return len(c.files) > 0
}

// Convert reads the totals of every detected log.
func (c *Converter) Convert() (perfreport.PerfReport, error) {
	var report perfreport.PerfReport
	for _, file := range c.files {
		records, err := parseFile(file)
		if err != nil {
			return perfreport.PerfReport{}, fmt.Errorf("failed to parse ntttcp log (%s): %w", file, err)
		}
		report.Records = append(report.Records, records...)
	}
	return report, nil
}

func parseFile(pth string) ([]perfreport.Record, error) {
	f, err := os.Open(pth)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	source := filepath.Base(pth)
	newRecord := func(p metricPattern, match []string) (perfreport.Record, error) {
		value, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return perfreport.Record{}, err
		}
		unit := p.unit
		if unit == "" && len(match) > 2 {
			unit = match[2]
		}
		return perfreport.Record{Source: source, Tool: tool, Metric: p.metric, Value: value, Unit: unit}, nil
	}

	var (
		records  []perfreport.Record
		inTotals bool
	)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()

		if totalsPattern.MatchString(line) {
			inTotals = true
			continue
		}

		if m := connectionsPattern.re.FindStringSubmatch(line); m != nil {
			record, err := newRecord(connectionsPattern, m)
			if err != nil {
				return nil, err
			}
			records = append(records, record)
			continue
		}

		if !inTotals {
			continue
		}

		for _, p := range totalsPatterns {
			if m := p.re.FindStringSubmatch(line); m != nil {
				record, err := newRecord(p, m)
				if err != nil {
					return nil, err
				}
				records = append(records, record)
				break
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
