package modes

import (
	"context"
	"testing"
	"time"

	"guesthub/core/hub"
	"guesthub/core/hub/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testModes = []hub.Mode{
	{ID: "1", Name: "Home", Active: true},
	{ID: "2", Name: "Away", Active: false},
	{ID: "3", Name: "Guest", Active: false},
}

// newTestController returns a controller with a fake clock the test can
// advance.
func newTestController(client hub.Client, cooldownSeconds int) (*Controller, *time.Time) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c := NewController(client, Config{CooldownSeconds: cooldownSeconds}, zap.NewNop(), func() time.Time {
		return now
	})
	return c, &now
}

func TestActivateSwitchesMode(t *testing.T) {
	client := new(mocks.Client)
	c, _ := newTestController(client, 60)

	client.On("Modes", mock.Anything).Return(testModes, nil).Once()
	client.On("ActivateMode", mock.Anything, "3").Return(nil).Once()

	err := c.Activate(context.Background(), "Guest", "checkin:RES1")

	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestActivateIsCaseInsensitive(t *testing.T) {
	client := new(mocks.Client)
	c, _ := newTestController(client, 60)

	client.On("Modes", mock.Anything).Return(testModes, nil).Once()
	client.On("ActivateMode", mock.Anything, "2").Return(nil).Once()

	err := c.Activate(context.Background(), "AWAY", "checkout:RES1")

	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestActivateUnknownModeIsAnError(t *testing.T) {
	client := new(mocks.Client)
	c, _ := newTestController(client, 60)

	client.On("Modes", mock.Anything).Return(testModes, nil).Once()

	err := c.Activate(context.Background(), "Vacation", "checkin:RES1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	client.AssertNotCalled(t, "ActivateMode", mock.Anything, mock.Anything)
}

func TestActivateAlreadyActiveModeIsNoOp(t *testing.T) {
	client := new(mocks.Client)
	c, _ := newTestController(client, 60)

	client.On("Modes", mock.Anything).Return(testModes, nil).Once()

	err := c.Activate(context.Background(), "Home", "checkout:RES1")

	require.NoError(t, err)
	client.AssertNotCalled(t, "ActivateMode", mock.Anything, mock.Anything)
}

func TestActivateSuppressedWithinCooldown(t *testing.T) {
	client := new(mocks.Client)
	c, now := newTestController(client, 60)

	client.On("Modes", mock.Anything).Return(testModes, nil).Once()
	client.On("ActivateMode", mock.Anything, "3").Return(nil).Once()

	require.NoError(t, c.Activate(context.Background(), "Guest", "checkin:RES1"))

	// The identical request 30s later never reaches the hub.
	*now = now.Add(30 * time.Second)
	require.NoError(t, c.Activate(context.Background(), "Guest", "checkin:RES1"))
	client.AssertNumberOfCalls(t, "Modes", 1)
	client.AssertNumberOfCalls(t, "ActivateMode", 1)
}

func TestActivateDifferentReasonBypassesCooldown(t *testing.T) {
	client := new(mocks.Client)
	c, now := newTestController(client, 60)

	client.On("Modes", mock.Anything).Return(testModes, nil).Twice()
	client.On("ActivateMode", mock.Anything, "3").Return(nil).Twice()

	require.NoError(t, c.Activate(context.Background(), "Guest", "checkin:RES1"))

	*now = now.Add(10 * time.Second)
	require.NoError(t, c.Activate(context.Background(), "Guest", "checkin:RES2"))
	client.AssertExpectations(t)
}

func TestActivateAgainAfterCooldownElapsed(t *testing.T) {
	client := new(mocks.Client)
	c, now := newTestController(client, 60)

	client.On("Modes", mock.Anything).Return(testModes, nil).Twice()
	client.On("ActivateMode", mock.Anything, "3").Return(nil).Twice()

	require.NoError(t, c.Activate(context.Background(), "Guest", "checkin:RES1"))

	*now = now.Add(61 * time.Second)
	require.NoError(t, c.Activate(context.Background(), "Guest", "checkin:RES1"))
	client.AssertExpectations(t)
}

func TestActivateFailedAttemptDoesNotArmCooldown(t *testing.T) {
	client := new(mocks.Client)
	c, now := newTestController(client, 60)

	client.On("Modes", mock.Anything).Return(nil, assert.AnError).Once()
	require.Error(t, c.Activate(context.Background(), "Guest", "checkin:RES1"))

	// A retry right after the failure is not suppressed.
	*now = now.Add(time.Second)
	client.On("Modes", mock.Anything).Return(testModes, nil).Once()
	client.On("ActivateMode", mock.Anything, "3").Return(nil).Once()
	require.NoError(t, c.Activate(context.Background(), "Guest", "checkin:RES1"))
	client.AssertExpectations(t)
}

func TestActivateEmptyNameIsAnError(t *testing.T) {
	client := new(mocks.Client)
	c, _ := newTestController(client, 60)

	err := c.Activate(context.Background(), "", "checkin:RES1")

	require.Error(t, err)
	client.AssertNotCalled(t, "Modes", mock.Anything)
}
