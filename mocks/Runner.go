package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Runner mocks shell.Runner. The context is not matched, the variadic args are matched
// as a single []string.
type Runner struct {
	mock.Mock
}

func (_m *Runner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	ret := _m.Called(dir, name, args)
	return ret.String(0), optionalError(ret, 1)
}
