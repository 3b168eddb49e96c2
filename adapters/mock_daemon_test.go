package adapters

import (
	"context"
	"net/http/httptest"
	"testing"

	"lightctl/application"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startMockDaemon(t *testing.T) (*MockDaemon, *HTTPGateway) {
	t.Helper()

	daemon := NewMockDaemon(MockDaemonParams{})
	server := httptest.NewServer(daemon.Handler())
	t.Cleanup(server.Close)

	return daemon, newTestGateway(t, server.URL)
}

func TestMockDaemon_InitialStatus(t *testing.T) {
	_, gateway := startMockDaemon(t)

	require.NoError(t, gateway.Health(context.Background()))

	status, err := gateway.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.OK)
	assert.Equal(t, application.PowerOff, status.Power)
	assert.Equal(t, 100, status.Brightness)
	assert.True(t, status.Connected)
}

func TestMockDaemon_ToggleFlips(t *testing.T) {
	_, gateway := startMockDaemon(t)

	power, err := gateway.Toggle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, application.PowerOn, power)

	power, err = gateway.Toggle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, application.PowerOff, power)
}

func TestMockDaemon_BrightnessOutOfRange(t *testing.T) {
	_, gateway := startMockDaemon(t)

	err := gateway.SetBrightness(context.Background(), 101)
	require.Error(t, err)

	reqErr, ok := application.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, application.KindServiceRejected, reqErr.Kind)
	assert.Equal(t, "Brightness must be 1-100", reqErr.Message)
}

func TestMockDaemon_Disconnected(t *testing.T) {
	daemon, gateway := startMockDaemon(t)
	daemon.SetConnected(false)

	err := gateway.TurnOn(context.Background())
	require.Error(t, err)

	reqErr, ok := application.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, application.KindServiceRejected, reqErr.Kind)
	assert.Equal(t, "Failed to connect to bulb", reqErr.Message)

	status, err := gateway.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.OK)
	assert.False(t, status.Connected)
	assert.Empty(t, status.Power)
}

// End to end: optimistic brightness, then a status fetch confirming it.
func TestMockDaemon_DispatchAndSync(t *testing.T) {
	_, gateway := startMockDaemon(t)

	cache := application.NewStatusCache()
	dispatcher, err := application.NewCommandDispatcher(application.CommandDispatcherParams{
		Gateway: gateway,
		Cache:   cache,
	})
	require.NoError(t, err)

	synchronizer, err := application.NewStatusSynchronizer(application.StatusSynchronizerParams{
		Gateway: gateway,
		Cache:   cache,
	})
	require.NoError(t, err)

	require.NoError(t, dispatcher.TurnOn(context.Background()))
	require.NoError(t, dispatcher.SetBrightness(context.Background(), 42))

	synchronizer.Fetch(context.Background())

	snapshot := cache.Snapshot()
	assert.Equal(t, application.PowerOn, snapshot.Status.Power)
	assert.Equal(t, 42, snapshot.Status.Brightness)
	assert.Equal(t, 42, snapshot.DisplayedBrightness)
	assert.True(t, snapshot.Status.Adjustable())
	assert.Empty(t, snapshot.LastError)
}
