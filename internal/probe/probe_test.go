package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEndpointURL(t *testing.T) {
	assertion := assert.New(t)
	assertion.Equal("https://primary.example.com/health", EndpointURL("primary.example.com", "/health"))
}

func TestHealthy(t *testing.T) {
	assertion := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/slow":
			time.Sleep(200 * time.Millisecond)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer server.Close()

	checker := NewHTTPHealthChecker(50 * time.Millisecond)
	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{"healthy", server.URL + "/health", true},
		{"unavailable", server.URL + "/down", false},
		{"timeout", server.URL + "/slow", false},
		{"invalid url", "://missing-scheme", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assertion.Equal(test.expected, checker.Healthy(context.Background(), test.url))
		})
	}
}

func TestNewApiProber(t *testing.T) {
	assertion := assert.New(t)

	_, err := NewApiProber(ApiProbeConfig{Endpoint: " "})
	assertion.Error(err)

	prober, err := NewApiProber(ApiProbeConfig{Endpoint: "https://api.example.com", Method: "post"})
	assertion.NoError(err)
	assertion.Equal(http.MethodPost, prober.config.Method)
	assertion.Equal(http.StatusOK, prober.config.ExpectedStatus)
	assertion.Equal(DefaultTimeout, prober.config.Timeout)
}

func TestProbe(t *testing.T) {
	assertion := assert.New(t)

	var mu sync.Mutex
	headers := http.Header{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		headers = r.Header.Clone()
		mu.Unlock()
		if strings.HasSuffix(r.URL.Path, "/missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tests := []struct {
		name            string
		endpoint        string
		expectedStatus  int
		expectedSuccess bool
		expectedCode    int
	}{
		{"expected status", server.URL + "/api", 0, true, http.StatusOK},
		{"unexpected status", server.URL + "/missing", 0, false, http.StatusNotFound},
		{"expected not found", server.URL + "/missing", http.StatusNotFound, true, http.StatusNotFound},
		{"unreachable", "http://127.0.0.1:1/api", 0, false, 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			prober, err := NewApiProber(ApiProbeConfig{
				Endpoint:       test.endpoint,
				ExpectedStatus: test.expectedStatus,
				Project:        "app",
				Environment:    "dev",
				Timeout:        time.Second,
			})
			assertion.NoError(err)

			result := prober.Probe(context.Background())
			assertion.Equal(test.expectedSuccess, result.Success)
			assertion.Equal(test.expectedCode, result.StatusCode)
			assertion.Equal(!test.expectedSuccess, result.Error != "")
			_, err = uuid.Parse(result.RequestId)
			assertion.NoError(err)
			assertion.GreaterOrEqual(result.ResponseTimeMs, 0.0)
		})
	}

	mu.Lock()
	defer mu.Unlock()
	assertion.Equal(UserAgent, headers.Get("User-Agent"))
	assertion.Equal("app", headers.Get(HeaderProject))
	assertion.Equal("dev", headers.Get(HeaderEnvironment))
	assertion.NotEmpty(headers.Get(HeaderRequestId))
}
