package locks

import (
	"context"
	"testing"

	"guesthub/core/hub"
	"guesthub/core/hub/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestProgrammer builds a programmer with zero waits so retry loops run
// instantly under test.
func newTestProgrammer(client hub.Client, deviceIDs string) *Programmer {
	cfg := Config{
		DeviceIDs:           deviceIDs,
		Slot:                "3",
		MaxAttempts:         3,
		RetryBackoffSeconds: 0,
		SettleSeconds:       0,
	}
	return NewProgrammer(client, cfg, zap.NewNop())
}

func TestSetCodeVerifiedFirstAttempt(t *testing.T) {
	client := new(mocks.Client)
	p := newTestProgrammer(client, "lock-1")

	client.On("SetCode", mock.Anything, "lock-1", "3", "1234", "Guest").Return(nil).Once()
	client.On("Refresh", mock.Anything, "lock-1").Return(nil).Once()
	client.On("LockCodes", mock.Anything, "lock-1").
		Return(map[string]hub.LockCode{"3": {Name: "Guest", Code: "1234"}}, nil).Once()

	results := p.SetCode(context.Background(), "1234", "Guest")

	require.Len(t, results, 1)
	assert.True(t, results[0].Ok())
	client.AssertExpectations(t)
}

func TestSetCodeRetriesUntilVerified(t *testing.T) {
	client := new(mocks.Client)
	p := newTestProgrammer(client, "lock-1")

	client.On("SetCode", mock.Anything, "lock-1", "3", "1234", "Guest").Return(nil).Times(2)
	client.On("Refresh", mock.Anything, "lock-1").Return(nil).Times(2)
	// First read-back shows the old code, second shows the write took.
	client.On("LockCodes", mock.Anything, "lock-1").
		Return(map[string]hub.LockCode{"3": {Name: "Guest", Code: "9999"}}, nil).Once()
	client.On("LockCodes", mock.Anything, "lock-1").
		Return(map[string]hub.LockCode{"3": {Name: "Guest", Code: "1234"}}, nil).Once()

	results := p.SetCode(context.Background(), "1234", "Guest")

	require.Len(t, results, 1)
	assert.True(t, results[0].Ok())
	client.AssertExpectations(t)
}

func TestSetCodeGivesUpAfterMaxAttempts(t *testing.T) {
	client := new(mocks.Client)
	p := newTestProgrammer(client, "lock-1")

	client.On("SetCode", mock.Anything, "lock-1", "3", "1234", "Guest").Return(nil).Times(3)
	client.On("Refresh", mock.Anything, "lock-1").Return(nil).Times(3)
	// The slot never reflects the write.
	client.On("LockCodes", mock.Anything, "lock-1").
		Return(map[string]hub.LockCode{}, nil).Times(3)

	results := p.SetCode(context.Background(), "1234", "Guest")

	require.Len(t, results, 1)
	assert.False(t, results[0].Ok())
	assert.Contains(t, results[0].Err.Error(), "gave up after 3 attempts")
	client.AssertExpectations(t)
}

func TestSetCodeMalformedStateAbortsRetries(t *testing.T) {
	client := new(mocks.Client)
	p := newTestProgrammer(client, "lock-1")

	client.On("SetCode", mock.Anything, "lock-1", "3", "1234", "Guest").Return(nil).Once()
	client.On("Refresh", mock.Anything, "lock-1").Return(nil).Once()
	client.On("LockCodes", mock.Anything, "lock-1").
		Return(nil, hub.ErrMalformedLockCodes).Once()

	results := p.SetCode(context.Background(), "1234", "Guest")

	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, hub.ErrMalformedLockCodes)
	// No second attempt happened.
	client.AssertNumberOfCalls(t, "SetCode", 1)
}

func TestSetCodeFailureOnOneLockDoesNotStopOthers(t *testing.T) {
	client := new(mocks.Client)
	p := newTestProgrammer(client, "lock-1,lock-2")

	// lock-1 fails every write outright.
	client.On("SetCode", mock.Anything, "lock-1", "3", "1234", "Guest").Return(assert.AnError).Times(3)

	// lock-2 succeeds on the first attempt.
	client.On("SetCode", mock.Anything, "lock-2", "3", "1234", "Guest").Return(nil).Once()
	client.On("Refresh", mock.Anything, "lock-2").Return(nil).Once()
	client.On("LockCodes", mock.Anything, "lock-2").
		Return(map[string]hub.LockCode{"3": {Name: "Guest", Code: "1234"}}, nil).Once()

	results := p.SetCode(context.Background(), "1234", "Guest")

	require.Len(t, results, 2)
	assert.False(t, results[0].Ok())
	assert.Equal(t, "lock-1", results[0].DeviceID)
	assert.True(t, results[1].Ok())
	assert.Equal(t, "lock-2", results[1].DeviceID)
	client.AssertExpectations(t)
}

func TestRemoveCodeIsUnverified(t *testing.T) {
	client := new(mocks.Client)
	p := newTestProgrammer(client, "lock-1,lock-2")

	client.On("DeleteCode", mock.Anything, "lock-1", "3").Return(assert.AnError).Once()
	client.On("DeleteCode", mock.Anything, "lock-2", "3").Return(nil).Once()

	results := p.RemoveCode(context.Background())

	require.Len(t, results, 2)
	assert.False(t, results[0].Ok())
	assert.True(t, results[1].Ok())
	// No read-back, no retry.
	client.AssertNotCalled(t, "LockCodes", mock.Anything, mock.Anything)
	client.AssertNumberOfCalls(t, "DeleteCode", 2)
}

func TestConfigDevices(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"single", "lock-1", []string{"lock-1"}},
		{"multiple with spaces", " lock-1 , lock-2 ", []string{"lock-1", "lock-2"}},
		{"trailing comma", "lock-1,", []string{"lock-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Config{DeviceIDs: tt.raw}.Devices())
		})
	}
}
