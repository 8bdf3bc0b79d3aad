package crawler

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockCacheService implements a simple in-memory cache for testing
type MockCacheService struct {
	mu     sync.Mutex
	cache  map[string][]byte
	setErr error
}

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		cache: make(map[string][]byte),
	}
}

func (m *MockCacheService) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if val, ok := m.cache[key]; ok {
		return val, nil
	}
	return nil, &mockError{message: "cache miss"}
}

func (m *MockCacheService) Set(key string, value []byte, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.cache[key] = value
	return nil
}

func (m *MockCacheService) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, key)
	return nil
}

func (m *MockCacheService) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.cache[key]
	return ok
}

type mockError struct {
	message string
}

func (e *mockError) Error() string {
	return e.message
}

// mockCrawler serves canned recipes keyed by link
type mockCrawler struct {
	links   []string
	recipes map[string]*Recipe
	linkErr error
	scraped []string
}

func (m *mockCrawler) ScrapeRecipe(ctx context.Context, target string) (*Recipe, error) {
	m.scraped = append(m.scraped, target)
	if recipe, ok := m.recipes[target]; ok {
		return recipe, nil
	}
	return nil, fmt.Errorf("no recipe at %s", target)
}

func (m *mockCrawler) ExtractRecipeLinks(ctx context.Context, pageURL string) ([]string, error) {
	if m.linkErr != nil {
		return nil, m.linkErr
	}
	return m.links, nil
}

func (m *mockCrawler) GetName() string {
	return "MockCrawler"
}

func (m *mockCrawler) GetProvider() string {
	return "Mock"
}
