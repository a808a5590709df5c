// Package fio converts fio (flexible I/O tester) normal output logs.
package fio

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/bitrise-steplib/lisa-tools/test/perfreport"
	"github.com/docker/go-units"
)

const tool = "fio"

var (
	// read: IOPS=12.3k, BW=48.1MiB/s (50.4MB/s)(2886MiB/60001msec)
	directionPattern = regexp.MustCompile(`^\s*(read|write)\s*:\s*IOPS=([\d.]+[kKmMgG]?),\s*BW=([\d.]+[kKmMgGtT]?i?B)/s`)
	// lat (usec): min=45, max=8312, avg=81.05, stdev=32.10
	latencyPattern = regexp.MustCompile(`^\s*lat\s*\((nsec|usec|msec)\)\s*:.*\bavg=\s*([\d.]+)`)
)

// Converter holds the detected fio logs.
type Converter struct {
	files []string
}

// Detect returns true if any of the files is a fio log.
func (c *Converter) Detect(files []string) bool {
	c.files = nil
	for _, file := range files {
		base := strings.ToLower(filepath.Base(file))
		if strings.Contains(base, "fio") && filepath.Ext(base) == ".log" {
			c.files = append(c.files, file)
		}
	}
	return len(c.files) > 0
}

// Convert reads IOPS, bandwidth and average latency per direction of every detected log.
func (c *Converter) Convert() (perfreport.PerfReport, error) {
	var report perfreport.PerfReport
	for _, file := range c.files {
		records, err := parseFile(file)
		if err != nil {
			return perfreport.PerfReport{}, fmt.Errorf("failed to parse fio log (%s): %w", file, err)
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
	record := func(metric string, value float64, unit string) perfreport.Record {
		return perfreport.Record{Source: source, Tool: tool, Metric: metric, Value: value, Unit: unit}
	}

	var (
		records   []perfreport.Record
		direction string
	)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()

		if m := directionPattern.FindStringSubmatch(line); m != nil {
			direction = m[1]

			iops, err := units.FromHumanSize(m[2])
			if err != nil {
				return nil, fmt.Errorf("invalid IOPS (%s): %w", m[2], err)
			}
			bandwidth, err := units.RAMInBytes(m[3])
			if err != nil {
				return nil, fmt.Errorf("invalid bandwidth (%s): %w", m[3], err)
			}

			records = append(records,
				record(direction+"_iops", float64(iops), "IOPS"),
				record(direction+"_bw", float64(bandwidth), "B/s"),
			)
			continue
		}

		if m := latencyPattern.FindStringSubmatch(line); m != nil && direction != "" {
			avg, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				return nil, err
			}
			records = append(records, record(direction+"_lat_avg", avg, m[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
