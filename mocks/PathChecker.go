package mocks

import "github.com/stretchr/testify/mock"

// PathChecker mocks the existence checks done before a file is read.
type PathChecker struct {
	mock.Mock
}

func (_m *PathChecker) IsPathExists(pth string) (bool, error) {
	ret := _m.Called(pth)
	return ret.Bool(0), optionalError(ret, 1)
}

func (_m *PathChecker) IsDirExists(pth string) (bool, error) {
	ret := _m.Called(pth)
	return ret.Bool(0), optionalError(ret, 1)
}

func optionalError(ret mock.Arguments, index int) error {
	if len(ret) > index {
		return ret.Error(index)
	}
	return nil
}
