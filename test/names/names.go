// Package names holds the lookup key normalization shared by the test plan, the ICA log
// and the test run. VM and test case names are compared case-insensitively.
package names

import (
	"strings"

	"golang.org/x/text/cases"
)

// Key returns the case-folded lookup key of a VM or test case name.
func Key(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Equal reports whether two names refer to the same VM or test case.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}
