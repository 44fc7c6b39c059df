// Package testutil provides testing utilities for the webquery tools.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockResponse defines one scripted response from the mock upstream.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// MockUpstream is a configurable mock HTTP API for testing. Each path can
// be given a script of responses played in order; the final script entry
// repeats once the script is exhausted.
type MockUpstream struct {
	server *httptest.Server

	mu      sync.Mutex
	scripts map[string][]MockResponse
	served  map[string]int

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
}

// NewMockUpstream creates a new mock upstream server.
func NewMockUpstream() *MockUpstream {
	mock := &MockUpstream{
		scripts: make(map[string][]MockResponse),
		served:  make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()

		script, ok := mock.scripts[r.URL.Path]
		if !ok {
			mock.mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"mock":true}`))
			return
		}

		idx := mock.served[r.URL.Path]
		if idx >= len(script) {
			idx = len(script) - 1
		}
		mock.served[r.URL.Path]++
		resp := script[idx]
		mock.mu.Unlock()

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(resp.StatusCode)
		w.Write([]byte(resp.Body))
	}))

	return mock
}

// Script sets the response sequence for a path.
func (m *MockUpstream) Script(path string, responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[path] = responses
	m.served[path] = 0
}

// Requests returns the total request count.
func (m *MockUpstream) Requests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RequestCount
}

// Reset clears tracking counters and script positions.
func (m *MockUpstream) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
	for path := range m.served {
		m.served[path] = 0
	}
}

// URL returns the mock server URL.
func (m *MockUpstream) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockUpstream) Close() {
	m.server.Close()
}
