package nft

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRunner is a testify mock implementation of Runner for tests in
// this and other packages.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	callArgs := make([]interface{}, 0, len(args)+1)
	callArgs = append(callArgs, name)
	for _, a := range args {
		callArgs = append(callArgs, a)
	}
	result := m.Called(callArgs...)
	return result.Get(0).(Result), result.Error(1)
}

func (m *MockRunner) RunInput(ctx context.Context, input string, name string, args ...string) (Result, error) {
	callArgs := make([]interface{}, 0, len(args)+2)
	callArgs = append(callArgs, input, name)
	for _, a := range args {
		callArgs = append(callArgs, a)
	}
	result := m.Called(callArgs...)
	return result.Get(0).(Result), result.Error(1)
}

// ScriptRunner is a lightweight fake that answers invocations from a
// queue, recording everything it was asked to run. Useful when the
// exact argv is the thing under test.
type ScriptRunner struct {
	Responses []Result
	Errs      []error
	Calls     [][]string
	Inputs    []string
}

func (s *ScriptRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return s.next(append([]string{name}, args...), "")
}

func (s *ScriptRunner) RunInput(ctx context.Context, input string, name string, args ...string) (Result, error) {
	return s.next(append([]string{name}, args...), input)
}

func (s *ScriptRunner) next(argv []string, input string) (Result, error) {
	s.Calls = append(s.Calls, argv)
	s.Inputs = append(s.Inputs, input)
	i := len(s.Calls) - 1

	var res Result
	if i < len(s.Responses) {
		res = s.Responses[i]
	}
	var err error
	if i < len(s.Errs) {
		err = s.Errs[i]
	}
	return res, err
}
