package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T) (*CommandDispatcher, *MockControlGateway, *StatusCache) {
	t.Helper()

	mGateway := &MockControlGateway{}
	cache := NewStatusCache()
	dispatcher, err := NewCommandDispatcher(CommandDispatcherParams{
		Gateway: mGateway,
		Cache:   cache,
	})
	require.NoError(t, err)
	return dispatcher, mGateway, cache
}

func TestNewCommandDispatcher_NoGateway(t *testing.T) {
	dispatcher, err := NewCommandDispatcher(CommandDispatcherParams{
		Cache: NewStatusCache(),
	})
	require.Error(t, err)
	require.Nil(t, dispatcher)
}

func TestCommandDispatcher_TogglePower(t *testing.T) {
	dispatcher, mGateway, cache := newTestDispatcher(t)

	require.True(t, cache.Commit(cache.Next(), DeviceStatus{OK: true, Power: PowerOff, Brightness: 40, Connected: true}))

	mGateway.On("Toggle", mock.Anything).Return(PowerOn, nil).Once()

	power, err := dispatcher.TogglePower(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PowerOn, power)

	snapshot := cache.Snapshot()
	assert.Equal(t, PowerOn, snapshot.Status.Power)
	assert.True(t, snapshot.Status.Adjustable())
	assert.Equal(t, 40, snapshot.Status.Brightness)
	assert.False(t, snapshot.Busy)

	mGateway.AssertExpectations(t)
}

func TestCommandDispatcher_ToggleConfirmsServerValue(t *testing.T) {
	dispatcher, mGateway, cache := newTestDispatcher(t)

	require.True(t, cache.Commit(cache.Next(), DeviceStatus{OK: true, Power: PowerOff, Brightness: 40, Connected: true}))

	// The server is authoritative even when the confirmed state matches
	// the pre-toggle one.
	mGateway.On("Toggle", mock.Anything).Return(PowerOff, nil).Once()

	power, err := dispatcher.TogglePower(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PowerOff, power)
	assert.Equal(t, PowerOff, cache.Snapshot().Status.Power)

	mGateway.AssertExpectations(t)
}

func TestCommandDispatcher_ToggleFailure(t *testing.T) {
	dispatcher, mGateway, cache := newTestDispatcher(t)

	status := DeviceStatus{OK: true, Power: PowerOff, Brightness: 40, Connected: true}
	require.True(t, cache.Commit(cache.Next(), status))

	mGateway.On("Toggle", mock.Anything).
		Return(PowerState(""), NewRequestError(KindUnreachable, "")).Once()

	_, err := dispatcher.TogglePower(context.Background())
	require.Error(t, err)

	reqErr, ok := AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, KindUnreachable, reqErr.Kind)

	snapshot := cache.Snapshot()
	assert.Equal(t, status, snapshot.Status)
	assert.Equal(t, "control service unreachable", snapshot.LastError)
	assert.False(t, snapshot.Busy)

	mGateway.AssertExpectations(t)
}

func TestCommandDispatcher_ToggleRejectedWhilePending(t *testing.T) {
	dispatcher, mGateway, cache := newTestDispatcher(t)

	require.True(t, cache.TryBusy())

	_, err := dispatcher.TogglePower(context.Background())
	require.ErrorIs(t, err, ErrDispatchPending)

	mGateway.AssertNotCalled(t, "Toggle", mock.Anything)
}

func TestCommandDispatcher_TurnOnOff(t *testing.T) {
	dispatcher, mGateway, cache := newTestDispatcher(t)

	mGateway.On("TurnOn", mock.Anything).Return(nil).Once()
	require.NoError(t, dispatcher.TurnOn(context.Background()))
	assert.Equal(t, PowerOn, cache.Snapshot().Status.Power)

	mGateway.On("TurnOff", mock.Anything).Return(nil).Once()
	require.NoError(t, dispatcher.TurnOff(context.Background()))
	assert.Equal(t, PowerOff, cache.Snapshot().Status.Power)

	mGateway.AssertExpectations(t)
}

func TestCommandDispatcher_SetBrightness(t *testing.T) {
	dispatcher, mGateway, cache := newTestDispatcher(t)

	require.True(t, cache.Commit(cache.Next(), DeviceStatus{OK: true, Power: PowerOn, Brightness: 40, Connected: true}))

	mGateway.On("SetBrightness", mock.Anything, 80).Return(nil).Once()

	require.NoError(t, dispatcher.SetBrightness(context.Background(), 80))

	snapshot := cache.Snapshot()
	assert.Equal(t, 80, snapshot.Status.Brightness)
	assert.Equal(t, 80, snapshot.DisplayedBrightness)
	assert.False(t, snapshot.Busy)

	mGateway.AssertExpectations(t)
}

func TestCommandDispatcher_SetBrightnessFailureReverts(t *testing.T) {
	dispatcher, mGateway, cache := newTestDispatcher(t)

	require.True(t, cache.Commit(cache.Next(), DeviceStatus{OK: true, Power: PowerOn, Brightness: 40, Connected: true}))

	mGateway.On("SetBrightness", mock.Anything, 80).
		Return(NewRequestError(KindTimeout, "")).Once()

	err := dispatcher.SetBrightness(context.Background(), 80)
	require.Error(t, err)

	snapshot := cache.Snapshot()
	assert.Equal(t, 40, snapshot.Status.Brightness)
	assert.Equal(t, 40, snapshot.DisplayedBrightness)
	assert.Equal(t, "request timed out", snapshot.LastError)

	mGateway.AssertExpectations(t)
}

func TestCommandDispatcher_SetBrightnessOutOfRange(t *testing.T) {
	dispatcher, mGateway, _ := newTestDispatcher(t)

	for _, level := range []int{0, -5, 101} {
		require.Error(t, dispatcher.SetBrightness(context.Background(), level))
	}

	mGateway.AssertNotCalled(t, "SetBrightness", mock.Anything, mock.Anything)
}

func TestCommandDispatcher_PreviewBrightness(t *testing.T) {
	dispatcher, mGateway, cache := newTestDispatcher(t)

	require.True(t, cache.Commit(cache.Next(), DeviceStatus{OK: true, Power: PowerOn, Brightness: 40, Connected: true}))

	// Previews only touch the display, even while a command is pending.
	require.True(t, cache.TryBusy())
	require.NoError(t, dispatcher.PreviewBrightness(55))
	cache.ClearBusy()

	snapshot := cache.Snapshot()
	assert.Equal(t, 55, snapshot.DisplayedBrightness)
	assert.Equal(t, 40, snapshot.Status.Brightness)

	require.Error(t, dispatcher.PreviewBrightness(0))

	mGateway.AssertNotCalled(t, "SetBrightness", mock.Anything, mock.Anything)
}

func TestCommandDispatcher_BrightnessThenFetchAgree(t *testing.T) {
	dispatcher, mGateway, cache := newTestDispatcher(t)

	synchronizer, err := NewStatusSynchronizer(StatusSynchronizerParams{
		Gateway: mGateway,
		Cache:   cache,
	})
	require.NoError(t, err)

	mGateway.On("SetBrightness", mock.Anything, 63).Return(nil).Once()
	require.NoError(t, dispatcher.SetBrightness(context.Background(), 63))

	mGateway.On("Status", mock.Anything).
		Return(DeviceStatus{OK: true, Power: PowerOn, Brightness: 63, Connected: true}, nil).Once()
	synchronizer.Fetch(context.Background())

	snapshot := cache.Snapshot()
	assert.Equal(t, 63, snapshot.Status.Brightness)
	assert.Equal(t, 63, snapshot.DisplayedBrightness)

	mGateway.AssertExpectations(t)
}
