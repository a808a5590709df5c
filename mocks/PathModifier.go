package mocks

import "github.com/stretchr/testify/mock"

// PathModifier mocks relative to absolute path expansion.
type PathModifier struct {
	mock.Mock
}

func (_m *PathModifier) AbsPath(pth string) (string, error) {
	ret := _m.Called(pth)
	return ret.String(0), optionalError(ret, 1)
}
