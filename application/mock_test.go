package application

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockControlGateway struct {
	mock.Mock
}

func (m *MockControlGateway) Status(ctx context.Context) (DeviceStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(DeviceStatus), args.Error(1)
}

func (m *MockControlGateway) TurnOn(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockControlGateway) TurnOff(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockControlGateway) Toggle(ctx context.Context) (PowerState, error) {
	args := m.Called(ctx)
	return args.Get(0).(PowerState), args.Error(1)
}

func (m *MockControlGateway) SetBrightness(ctx context.Context, level int) error {
	args := m.Called(ctx, level)
	return args.Error(0)
}

func (m *MockControlGateway) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ ControlGateway = &MockControlGateway{}
