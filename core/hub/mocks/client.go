package mocks

import (
	"context"

	"guesthub/core/hub"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of hub.Client
type Client struct {
	mock.Mock
}

func (m *Client) Devices(ctx context.Context) ([]hub.Device, error) {
	args := m.Called(ctx)
	if devices, ok := args.Get(0).([]hub.Device); ok {
		return devices, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) SetCode(ctx context.Context, deviceID, slot, code, name string) error {
	args := m.Called(ctx, deviceID, slot, code, name)
	return args.Error(0)
}

func (m *Client) DeleteCode(ctx context.Context, deviceID, slot string) error {
	args := m.Called(ctx, deviceID, slot)
	return args.Error(0)
}

func (m *Client) Refresh(ctx context.Context, deviceID string) error {
	args := m.Called(ctx, deviceID)
	return args.Error(0)
}

func (m *Client) LockCodes(ctx context.Context, deviceID string) (map[string]hub.LockCode, error) {
	args := m.Called(ctx, deviceID)
	if codes, ok := args.Get(0).(map[string]hub.LockCode); ok {
		return codes, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) Modes(ctx context.Context) ([]hub.Mode, error) {
	args := m.Called(ctx)
	if modes, ok := args.Get(0).([]hub.Mode); ok {
		return modes, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) ActivateMode(ctx context.Context, modeID string) error {
	args := m.Called(ctx, modeID)
	return args.Error(0)
}
