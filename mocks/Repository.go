package mocks

import "github.com/stretchr/testify/mock"

// Repository mocks env.Repository.
type Repository struct {
	mock.Mock
}

func (_m *Repository) List() []string {
	ret := _m.Called()

	var list []string
	if v := ret.Get(0); v != nil {
		list = v.([]string)
	}
	return list
}

func (_m *Repository) Unset(key string) error {
	ret := _m.Called(key)
	return optionalError(ret, 0)
}

func (_m *Repository) Get(key string) string {
	ret := _m.Called(key)
	return ret.String(0)
}

func (_m *Repository) Set(key, value string) error {
	ret := _m.Called(key, value)
	return optionalError(ret, 0)
}
