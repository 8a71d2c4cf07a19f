package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	UserAgent         = "AWS-Synthetics-Canary"
	HeaderProject     = "X-Canary-Project"
	HeaderEnvironment = "X-Canary-Environment"
	HeaderRequestId   = "X-Canary-Request-Id"
	DefaultHTTPMethod = http.MethodGet
	DefaultStatus     = http.StatusOK
)

type ApiProbeConfig struct {
	Endpoint       string
	Method         string
	ExpectedStatus int
	Project        string
	Environment    string
	Timeout        time.Duration
}

// ApiProbeResult is the outcome of one probe request
type ApiProbeResult struct {
	Success        bool    `json:"success"`
	StatusCode     int     `json:"statusCode"`
	ResponseTimeMs float64 `json:"responseTimeMs"`
	RequestId      string  `json:"requestId"`
	Error          string  `json:"error,omitempty"`
}

type ApiProber struct {
	config ApiProbeConfig
	client *http.Client
	now    func() time.Time
}

func NewApiProber(config ApiProbeConfig) (*ApiProber, error) {
	if strings.TrimSpace(config.Endpoint) == "" {
		return nil, errors.New("api endpoint is required")
	}
	if config.Method == "" {
		config.Method = DefaultHTTPMethod
	}
	config.Method = strings.ToUpper(config.Method)
	if config.ExpectedStatus == 0 {
		config.ExpectedStatus = DefaultStatus
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &ApiProber{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		now:    time.Now,
	}, nil
}

// Probe sends one tagged request and measures its latency. an unexpected
// status is a failed probe.
func (p *ApiProber) Probe(ctx context.Context) ApiProbeResult {
	result := ApiProbeResult{RequestId: uuid.NewString()}

	req, err := http.NewRequestWithContext(ctx, p.config.Method, p.config.Endpoint, nil)
	if err != nil {
		result.Error = fmt.Sprintf("failed to build request: %v", err)
		return result
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set(HeaderProject, p.config.Project)
	req.Header.Set(HeaderEnvironment, p.config.Environment)
	req.Header.Set(HeaderRequestId, result.RequestId)

	start := p.now()
	resp, err := p.client.Do(req)
	result.ResponseTimeMs = float64(p.now().Sub(start).Microseconds()) / 1000
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	result.StatusCode = resp.StatusCode
	if resp.StatusCode != p.config.ExpectedStatus {
		result.Error = fmt.Sprintf("unexpected status code %d, expected %d", resp.StatusCode, p.config.ExpectedStatus)
		return result
	}
	result.Success = true
	return result
}
