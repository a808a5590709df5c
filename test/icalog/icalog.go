// Package icalog extracts test outcomes from the free-text summary log written by a
// LISA (ICA) test run.
package icalog

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/bitrise-steplib/lisa-tools/test/names"
)

const maxLineSize = 1024 * 1024

var (
	timestampPattern  = regexp.MustCompile(`LISA test run on\s+(.+?)\s*$`)
	vmsHeaderPattern  = regexp.MustCompile(`^VMs:\s*$`)
	vmNamePattern     = regexp.MustCompile(`^\s+(\S.*?)\s*$`)
	serverPattern     = regexp.MustCompile(`^\s*Server\s*:\s*(.*?)\s*$`)
	hostOSPattern     = regexp.MustCompile(`^\s*OS\s*:\s*(.*?)\s*$`)
	testResultPattern = regexp.MustCompile(`^\s*Test\s+(\S+)\s*:\s*(\S+)\s*$`)
	logPathPattern    = regexp.MustCompile(`Logs can be found at\s+(.+?)\s*$`)
	lisVersionPattern = regexp.MustCompile(`LIS Version\s*:\s*(.+?)\s*$`)
)

// Result is the outcome of one test on the VM it was attributed to.
type Result struct {
	// Test is the normalized test name.
	Test   string
	VM     string
	Status string
}

// Host describes the hypervisor a VM block in the log ran on.
type Host struct {
	Server string
	OS     string
}

// Log holds everything found in an ICA log. Fields whose markers are missing stay empty.
type Log struct {
	Timestamp  string
	LogPath    string
	LISVersion string
	// Results holds one entry per (test, VM) pair in log order. A repeated pair keeps
	// the later outcome.
	Results []Result
	// VMs is keyed by the VM name as written in the log.
	VMs map[string]Host
}

// ParseFile parses the ICA log at pth.
func ParseFile(pth string) (*Log, error) {
	f, err := os.Open(pth)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	return Parse(f)
}

// Parse scans r line by line. A Test line is attributed to the VM block that precedes it,
// tests found before any VM block have an empty VM. Inside the VMs block every indented
// line that is not a Server, OS or Test line names a VM, spaces included.
func Parse(r io.Reader) (*Log, error) {
	log := &Log{
		VMs: map[string]Host{},
	}
	index := map[[2]string]int{}

	var (
		inVMs     bool
		currentVM string
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			continue
		}
		// the VMs block is indented, any unindented line closes it
		if inVMs && !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			inVMs = false
		}

		if m := testResultPattern.FindStringSubmatch(line); m != nil {
			result := Result{
				Test:   names.Key(m[1]),
				VM:     currentVM,
				Status: strings.ToLower(m[2]),
			}
			key := [2]string{result.Test, names.Key(currentVM)}
			if i, ok := index[key]; ok {
				log.Results[i] = result
			} else {
				index[key] = len(log.Results)
				log.Results = append(log.Results, result)
			}
			continue
		}

		switch {
		case vmsHeaderPattern.MatchString(line):
			inVMs = true
		case timestampPattern.MatchString(line):
			log.Timestamp = timestampPattern.FindStringSubmatch(line)[1]
		case logPathPattern.MatchString(line):
			log.LogPath = logPathPattern.FindStringSubmatch(line)[1]
		case lisVersionPattern.MatchString(line):
			log.LISVersion = lisVersionPattern.FindStringSubmatch(line)[1]
		case inVMs && serverPattern.MatchString(line):
			if currentVM != "" {
				host := log.VMs[currentVM]
				host.Server = serverPattern.FindStringSubmatch(line)[1]
				log.VMs[currentVM] = host
			}
		case inVMs && hostOSPattern.MatchString(line):
			if currentVM != "" {
				host := log.VMs[currentVM]
				host.OS = hostOSPattern.FindStringSubmatch(line)[1]
				log.VMs[currentVM] = host
			}
		case inVMs && vmNamePattern.MatchString(line):
			currentVM = vmNamePattern.FindStringSubmatch(line)[1]
			if _, ok := log.VMs[currentVM]; !ok {
				log.VMs[currentVM] = Host{}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return log, nil
}
