package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	saves     map[uuid.UUID]*SaveGame
	content   *ContentPack
	pingError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		saves: make(map[uuid.UUID]*SaveGame),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.pingError = err
}

// SetContent configures the content pack returned by LoadContent
func (m *MockStorage) SetContent(cp *ContentPack) {
	m.content = cp
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// SaveGame mocks saving a campaign
func (m *MockStorage) SaveGame(ctx context.Context, id uuid.UUID, sg *SaveGame) error {
	if sg == nil {
		return errors.New("save game cannot be nil")
	}
	m.saves[id] = sg
	return nil
}

// LoadGame mocks loading a campaign
func (m *MockStorage) LoadGame(ctx context.Context, id uuid.UUID) (*SaveGame, error) {
	sg, exists := m.saves[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	return sg, nil
}

// DeleteGame mocks deleting a campaign
func (m *MockStorage) DeleteGame(ctx context.Context, id uuid.UUID) error {
	delete(m.saves, id)
	return nil
}

// LoadContent returns the configured content pack
func (m *MockStorage) LoadContent(ctx context.Context) (*ContentPack, error) {
	if m.content == nil {
		return nil, errors.New("no content pack configured")
	}
	return m.content, nil
}
