package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Querier mocks kvp.Querier.
type Querier struct {
	mock.Mock
}

func (_m *Querier) Query(ctx context.Context, vmName, host string, keys []string) (map[string]string, error) {
	ret := _m.Called(ctx, vmName, host, keys)

	var items map[string]string
	if v := ret.Get(0); v != nil {
		items = v.(map[string]string)
	}
	return items, optionalError(ret, 1)
}

func (_m *Querier) StopVM(vmName, host string) error {
	ret := _m.Called(vmName, host)
	return optionalError(ret, 0)
}
