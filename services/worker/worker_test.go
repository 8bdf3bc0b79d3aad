package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"sjsage522/menufinder/helpers"
	"sjsage522/menufinder/internal/crawler"
	"sjsage522/menufinder/services/publisher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRefresher returns canned refresh results
type MockRefresher struct {
	mu      sync.Mutex
	recipes []crawler.Recipe
	err     error
	calls   int
}

func (m *MockRefresher) Refresh(ctx context.Context) ([]crawler.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.recipes, m.err
}

func (m *MockRefresher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockPublisher implements the publisher.Publisher interface for testing
type MockPublisher struct {
	mu         sync.Mutex
	messages   map[string][][]byte
	trimCalls  int
	publishErr error
}

// Ensure MockPublisher implements publisher.Publisher
var _ publisher.Publisher = (*MockPublisher)(nil)

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		messages: make(map[string][][]byte),
	}
}

func (m *MockPublisher) Publish(ctx context.Context, key string, message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}

	// Copy the message to ensure thread safety
	messageCopy := make([]byte, len(message))
	copy(messageCopy, message)

	m.messages[key] = append(m.messages[key], messageCopy)
	return nil
}

func (m *MockPublisher) TrimStreams(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trimCalls++
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

// MockLogger implements the helpers.LoggerInterface for testing
type MockLogger struct {
	mu     sync.Mutex
	errors []string
	infos  []string
}

// Ensure MockLogger implements helpers.LoggerInterface
var _ helpers.LoggerInterface = (*MockLogger)(nil)

func NewMockLogger() *MockLogger {
	return &MockLogger{
		errors: make([]string, 0),
		infos:  make([]string, 0),
	}
}

func (m *MockLogger) LogError(source string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, source+": "+err.Error())
}

func (m *MockLogger) LogInfo(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, fmt.Sprintf(format, args...))
}

func TestWorkerRefreshAndPublish(t *testing.T) {
	mockLogger := NewMockLogger()
	mockPublisher := NewMockPublisher()
	refresher := &MockRefresher{recipes: []crawler.Recipe{
		{ID: "trueid-1", Name: "ต้มยำกุ้ง", Provider: "TrueID", Image: "https://img.example.com/1.jpg"},
		{ID: "trueid-2", Name: "ผัดกะเพรา", Provider: "TrueID"},
		{ID: "x", Name: "ไม่มีที่มา"},
	}}

	w := NewWorker(refresher, mockPublisher, mockLogger, time.Second)
	w.refreshAndPublish(context.Background())

	require.Len(t, mockPublisher.messages["TrueID"], 2)
	require.Len(t, mockPublisher.messages["recipes"], 1)

	var published crawler.Recipe
	require.NoError(t, json.Unmarshal(mockPublisher.messages["TrueID"][0], &published))
	assert.Equal(t, "ต้มยำกุ้ง", published.Name)

	assert.Equal(t, 1, mockPublisher.trimCalls)
	assert.Empty(t, mockLogger.errors, "No errors should have been logged")
	assert.Contains(t, mockLogger.infos, "Published 3 new recipes")
}

func TestWorkerWithError(t *testing.T) {
	mockLogger := NewMockLogger()
	mockPublisher := NewMockPublisher()
	refresher := &MockRefresher{err: errors.New("test error")}

	w := NewWorker(refresher, mockPublisher, mockLogger, time.Second)
	w.refreshAndPublish(context.Background())

	require.NotEmpty(t, mockLogger.errors, "An error should have been logged")
	assert.Contains(t, mockLogger.errors[0], "Refresh")
	assert.Contains(t, mockLogger.errors[0], "test error")
	assert.Empty(t, mockPublisher.messages, "No messages should have been published")
	assert.Zero(t, mockPublisher.trimCalls)
}

func TestWorkerPublishError(t *testing.T) {
	mockLogger := NewMockLogger()
	mockPublisher := NewMockPublisher()
	mockPublisher.publishErr = errors.New("stream down")
	refresher := &MockRefresher{recipes: []crawler.Recipe{{ID: "1", Name: "ยำ", Provider: "Kapook"}}}

	w := NewWorker(refresher, mockPublisher, mockLogger, time.Second)
	w.refreshAndPublish(context.Background())

	require.Len(t, mockLogger.errors, 1)
	assert.Contains(t, mockLogger.errors[0], "Kapook: stream down")
	assert.Equal(t, 1, mockPublisher.trimCalls)
}

func TestWorkerStartStopsOnCancel(t *testing.T) {
	refresher := &MockRefresher{}
	w := NewWorker(refresher, NewMockPublisher(), NewMockLogger(), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	assert.Eventually(t, func() bool { return refresher.Calls() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
