package probe

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"
)

const DefaultTimeout = 10 * time.Second

// HealthChecker reports whether an endpoint answers 200
type HealthChecker interface {
	Healthy(ctx context.Context, url string) bool
}

type _HTTPHealthChecker struct {
	client *http.Client
}

// NewHTTPHealthChecker returns a checker that gives up after timeout
func NewHTTPHealthChecker(timeout time.Duration) HealthChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &_HTTPHealthChecker{
		client: &http.Client{Timeout: timeout},
	}
}

// Healthy is true only for a 200 response. request errors are logged.
func (c *_HTTPHealthChecker) Healthy(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("health check failed for [%s] : [%v]\n", url, err)
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("health check failed for [%s] : [%v]\n", url, err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// EndpointURL builds https://<endpoint><path>
func EndpointURL(endpoint, path string) string {
	return "https://" + endpoint + path
}
