package scryfall

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ramonehamilton/card-binder/internal/metrics"
)

func newTestClient(serverURL string) *Client {
	return NewClient(Options{
		BaseURL:   serverURL,
		RateLimit: time.Millisecond,
	})
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Options{})

	if client.baseURL != DefaultBaseURL {
		t.Errorf("Expected base URL %s, got %s", DefaultBaseURL, client.baseURL)
	}

	if client.rateLimiter == nil {
		t.Error("rateLimiter is nil")
	}

	if client.userAgent != DefaultUserAgent {
		t.Errorf("Expected user agent %s, got %s", DefaultUserAgent, client.userAgent)
	}

	if client.pageTimeout != requestTimeout {
		t.Errorf("Expected page timeout %v, got %v", requestTimeout, client.pageTimeout)
	}
}

func TestClient_SetPrintsURL(t *testing.T) {
	client := NewClient(Options{BaseURL: "https://example.test/"})

	raw := client.SetPrintsURL("fin")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("invalid URL %q: %v", raw, err)
	}

	if u.Host != "example.test" || u.Path != "/cards/search" {
		t.Errorf("Unexpected URL %s", raw)
	}

	q := u.Query()
	if q.Get("q") != "set:fin" {
		t.Errorf("Expected q=set:fin, got %s", q.Get("q"))
	}
	if q.Get("order") != "set" {
		t.Errorf("Expected order=set, got %s", q.Get("order"))
	}
	if q.Get("unique") != "prints" {
		t.Errorf("Expected unique=prints, got %s", q.Get("unique"))
	}
}

func TestClient_SearchPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cards/search" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"object": "list",
			"total_cards": 2,
			"has_more": true,
			"next_page": "https://api.scryfall.com/cards/search?page=2",
			"data": [
				{"id": "a", "name": "Cloud, Midgar Mercenary", "set": "fin", "set_name": "Final Fantasy",
				 "collector_number": "015", "rarity": "mythic", "layout": "normal",
				 "image_uris": {"normal": "https://img.test/a.jpg"}, "mana_cost": "{W}{W}"},
				{"id": "b", "name": "Cecil, Dark Knight // Cecil, Redeemed Paladin", "set": "fin",
				 "set_name": "Final Fantasy", "collector_number": "91", "rarity": "rare", "layout": "transform",
				 "card_faces": [
					{"name": "Cecil, Dark Knight", "image_uris": {"normal": "https://img.test/b0.jpg"}},
					{"name": "Cecil, Redeemed Paladin", "image_uris": {"normal": "https://img.test/b1.jpg"}}
				 ]}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.SearchPage(context.Background(), client.SetPrintsURL("fin"))
	if err != nil {
		t.Fatalf("SearchPage failed: %v", err)
	}

	if !result.HasMore {
		t.Error("Expected HasMore to be true")
	}

	if len(result.Data) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(result.Data))
	}

	if result.Data[0].ImageURIs == nil || result.Data[0].ImageURIs.Normal != "https://img.test/a.jpg" {
		t.Errorf("Unexpected image URIs for first card: %+v", result.Data[0].ImageURIs)
	}

	if len(result.Data[1].CardFaces) != 2 {
		t.Errorf("Expected 2 faces, got %d", len(result.Data[1].CardFaces))
	}
}

func TestClient_SearchPage_MissingContinuation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","has_more":true,"data":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.SearchPage(context.Background(), server.URL); err == nil {
		t.Fatal("Expected error when has_more is set without next_page")
	}
}

func TestClient_NotFoundError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"object":"error","code":"not_found","status":404,"details":"No cards found"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.SearchPage(context.Background(), server.URL)

	if err == nil {
		t.Fatal("Expected error for 404, got nil")
	}

	if !IsNotFound(err) {
		t.Errorf("Expected NotFoundError, got: %T", err)
	}
}

func TestClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"object":"error","code":"bad_request","status":400,"details":"Invalid query"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	var result SearchResult
	err := client.doRequest(context.Background(), server.URL, &result)

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("Expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.Status != 400 {
		t.Errorf("Expected status 400, got %d", apiErr.Status)
	}
}

func TestClient_RateLimitRetry(t *testing.T) {
	var attemptCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attemptCount, 1) < 2 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"object":"error","code":"rate_limit","status":429}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"object":"list","has_more":false,"data":[{"id":"test","name":"Test Card"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.SearchPage(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected success after retry, got error: %v", err)
	}

	if atomic.LoadInt32(&attemptCount) != 2 {
		t.Errorf("Expected 2 attempts, got %d", attemptCount)
	}

	if result.Data[0].Name != "Test Card" {
		t.Errorf("Expected card name 'Test Card', got '%s'", result.Data[0].Name)
	}
}

func TestClient_ServerErrorIsNotRetried(t *testing.T) {
	var attemptCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attemptCount, 1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`oops`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.SearchPage(context.Background(), server.URL); err == nil {
		t.Fatal("Expected error for HTTP 500")
	}

	if n := atomic.LoadInt32(&attemptCount); n != 1 {
		t.Errorf("Expected a single attempt, got %d", n)
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{invalid json}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.SearchPage(context.Background(), server.URL); err == nil {
		t.Fatal("Expected error for invalid JSON, got nil")
	}
}

func TestClient_PageTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(Options{
		BaseURL:     server.URL,
		RateLimit:   time.Millisecond,
		PageTimeout: 50 * time.Millisecond,
	})

	start := time.Now()
	_, err := client.SearchPage(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Timeout took too long: %v", elapsed)
	}
}

func TestClient_UserAgentAndAccept(t *testing.T) {
	var receivedUserAgent, receivedAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUserAgent = r.Header.Get("User-Agent")
		receivedAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL, UserAgent: "Binder-Test/0.1"})
	if _, err := client.SearchPage(context.Background(), server.URL); err != nil {
		t.Fatalf("SearchPage failed: %v", err)
	}

	if receivedUserAgent != "Binder-Test/0.1" {
		t.Errorf("Expected User-Agent 'Binder-Test/0.1', got '%s'", receivedUserAgent)
	}

	if receivedAccept != "application/json" {
		t.Errorf("Expected Accept header 'application/json', got '%s'", receivedAccept)
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "NotFoundError",
			err:      &NotFoundError{URL: "test"},
			expected: true,
		},
		{
			name:     "Other error",
			err:      &APIError{Status: 500},
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsNotFound(tt.err)
			if result != tt.expected {
				t.Errorf("IsNotFound() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestClient_RecordsMetrics(t *testing.T) {
	var attemptCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attemptCount, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"object":"list","has_more":false,"data":[]}`))
	}))
	defer server.Close()

	m := metrics.New()
	client := NewClient(Options{BaseURL: server.URL, RateLimit: time.Millisecond, Metrics: m})

	if _, err := client.SearchPage(context.Background(), server.URL); err != nil {
		t.Fatalf("SearchPage failed: %v", err)
	}

	snap := m.Snapshot()
	if snap.APIRequests != 2 || snap.APIErrors != 1 || snap.APIRetries != 1 {
		t.Errorf("Unexpected counters: requests=%d errors=%d retries=%d", snap.APIRequests, snap.APIErrors, snap.APIRetries)
	}
}
