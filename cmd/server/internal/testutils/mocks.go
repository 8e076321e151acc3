package testutils

import (
	"errors"
	"sync"
)

// MockSubscriber simulates a connected push client.
type MockSubscriber struct {
	IDVal    string
	Received []string
	SendErr  error
	Closed   bool
	Mu       sync.Mutex
}

func NewMockSubscriber(id string) *MockSubscriber {
	return &MockSubscriber{IDVal: id}
}

func (m *MockSubscriber) ID() string { return m.IDVal }

func (m *MockSubscriber) Send(b []byte) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	if m.Closed {
		return errors.New("subscriber closed")
	}
	m.Received = append(m.Received, string(b))
	return nil
}

func (m *MockSubscriber) Close() {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Closed = true
}

func (m *MockSubscriber) ReceivedCount() int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return len(m.Received)
}

func (m *MockSubscriber) LastReceived() string {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if len(m.Received) == 0 {
		return ""
	}
	return m.Received[len(m.Received)-1]
}

func (m *MockSubscriber) IsClosed() bool {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.Closed
}
