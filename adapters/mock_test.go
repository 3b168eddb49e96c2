package adapters

import (
	"lightctl/application"

	"github.com/stretchr/testify/mock"
)

type MockEndpointStore struct {
	mock.Mock
}

func (m *MockEndpointStore) Get() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockEndpointStore) Set(url string) error {
	args := m.Called(url)
	return args.Error(0)
}

var _ application.EndpointStore = &MockEndpointStore{}
