// Package testutil provides testing utilities for the mynx client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockReddit is a configurable mock Reddit server for testing.
type MockReddit struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
	RequestTimes      []time.Time
}

// NewMockReddit creates a new mock Reddit server.
func NewMockReddit() *MockReddit {
	mock := &MockReddit{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.RequestTimes = append(mock.RequestTimes, time.Now())
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockReddit) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockReddit) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockReddit) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
	m.RequestTimes = nil
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockReddit) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// SetHandler sets a custom handler for a specific path.
func (m *MockReddit) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockReddit) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		status := resp.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetListingPages serves a paginated listing endpoint: each page is
// keyed by the "after" cursor of the request, the way real listings
// walk. Pages absent from the map come back empty.
func (m *MockReddit) SetListingPages(path string, pages map[string]string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body, ok := pages[r.URL.Query().Get("after")]
		if !ok {
			body = ListingJSON()
		}
		w.Write([]byte(body))
	})
}

// SetLoginResponse configures a successful login for the given user.
func (m *MockReddit) SetLoginResponse(user, modhash, cookie string) {
	m.SetResponse("/api/login/"+user, MockResponse{
		StatusCode: http.StatusOK,
		Body: fmt.Sprintf(`{"json": {"errors": [], "data": {"modhash": %q, "cookie": %q}}}`,
			modhash, cookie),
	})
}

// defaultHandler serves an empty listing for unconfigured paths.
func (m *MockReddit) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(ListingJSON()))
}

// LinkJSON builds the wire form of a t3 link.
func LinkJSON(id, title, subreddit string, createdUTC float64) string {
	return fmt.Sprintf(`{"kind": "t3", "data": {"id": %q, "name": "t3_%s", "title": %q, "subreddit": %q, "created_utc": %g, "ups": 1, "downs": 0}}`,
		id, id, title, subreddit, createdUTC)
}

// CommentJSON builds the wire form of a t1 comment.
func CommentJSON(id, body string, ups, downs int) string {
	return fmt.Sprintf(`{"kind": "t1", "data": {"id": %q, "name": "t1_%s", "body": %q, "ups": %d, "downs": %d}}`,
		id, id, body, ups, downs)
}

// ListingJSON wraps child thing JSON fragments in a Listing envelope.
func ListingJSON(children ...string) string {
	return fmt.Sprintf(`{"kind": "Listing", "data": {"children": [%s]}}`,
		strings.Join(children, ", "))
}
