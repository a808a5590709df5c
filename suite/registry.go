// Package suite is the build-time registry of LISA test suites and the test cases each
// suite runs, in execution order.
package suite

import (
	"errors"
	"sort"

	"github.com/bitrise-steplib/lisa-tools/test/names"
)

// ErrUnknownSuite is returned for suite names missing from the registry.
var ErrUnknownSuite = errors.New("unknown test suite")

var registry = map[string][]string{
	"BVT": {
		"check_lis_modules",
		"boot_check",
		"heartbeat",
		"kvp_basic",
		"shutdown",
	},
	"Core": {
		"heartbeat",
		"shutdown",
		"reboot_in_loop",
		"time_sync",
		"change_cpu_count",
	},
	"KVP": {
		"kvp_basic",
		"kvp_add_value",
		"kvp_delete_value",
		"kvp_pool_0",
	},
	"Network": {
		"external",
		"internalnetwork",
		"privatenetwork",
		"multinic",
		"jumbo_frames",
		"vlan_trunking",
	},
	"Storage": {
		"hot_add_disk",
		"hot_remove_disk",
		"vhdx_resize",
		"scsi_multiple_disks",
	},
	"Perf_NTTTCP": {
		"ntttcp_tcp",
		"ntttcp_udp",
	},
	"Perf_FIO": {
		"fio_4k_randread",
		"fio_4k_randwrite",
		"fio_1024k_seqread",
	},
}

// Names returns the registered suite names, sorted.
func Names() []string {
	suites := make([]string, 0, len(registry))
	for name := range registry {
		suites = append(suites, name)
	}
	sort.Strings(suites)
	return suites
}

// Cases returns the test case identifiers of the suite. Suite lookup is case-insensitive.
func Cases(suiteName string) ([]string, error) {
	for name, cases := range registry {
		if names.Equal(name, suiteName) {
			return append([]string(nil), cases...), nil
		}
	}
	return nil, ErrUnknownSuite
}

// Contains reports whether the suite is registered and runs the test case.
func Contains(suiteName, testCase string) bool {
	cases, err := Cases(suiteName)
	if err != nil {
		return false
	}
	for _, c := range cases {
		if names.Equal(c, testCase) {
			return true
		}
	}
	return false
}
