package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/regviz/regviz-go/pkg/trace"
)

// MockLogger is a testify mock of trace.Logger.
type MockLogger struct {
	mock.Mock
}

type MockLogger_Expecter struct {
	mock *mock.Mock
}

func (_m *MockLogger) EXPECT() *MockLogger_Expecter {
	return &MockLogger_Expecter{mock: &_m.Mock}
}

// Log provides a mock function with given fields: event
func (_m *MockLogger) Log(event trace.Event) {
	_m.Called(event)
}

// MockLogger_Log_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Log'
type MockLogger_Log_Call struct {
	*mock.Call
}

// Log is a helper method to define mock.On call
//   - event trace.Event
func (_e *MockLogger_Expecter) Log(event interface{}) *MockLogger_Log_Call {
	return &MockLogger_Log_Call{Call: _e.mock.On("Log", event)}
}

func (_c *MockLogger_Log_Call) Run(run func(event trace.Event)) *MockLogger_Log_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(trace.Event))
	})
	return _c
}

func (_c *MockLogger_Log_Call) Return() *MockLogger_Log_Call {
	_c.Call.Return()
	return _c
}

func (_c *MockLogger_Log_Call) RunAndReturn(run func(trace.Event)) *MockLogger_Log_Call {
	_c.Run(run)
	return _c
}

// NewMockLogger creates a MockLogger and registers AssertExpectations as a cleanup.
func NewMockLogger(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockLogger {
	m := &MockLogger{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ trace.Logger = (*MockLogger)(nil)
