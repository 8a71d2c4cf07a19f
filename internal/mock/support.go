package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/support"
	supportTypes "github.com/aws/aws-sdk-go-v2/service/support/types"
)

var (
	TestCheckId      = "Pfx0RwqBli"
	TestErrorCheckId = "ErrCheck01"
)

// MockSupportApi serves Checks and Results. the check TestErrorCheckId fails
// on refresh and on result lookup.
type MockSupportApi struct {
	mu           sync.Mutex
	Checks       []supportTypes.TrustedAdvisorCheckDescription
	Results      map[string]*supportTypes.TrustedAdvisorCheckResult
	DescribeErr  error
	RefreshedIds []string
}

// describe trusted advisor checks
func (m *MockSupportApi) DescribeTrustedAdvisorChecks(ctx context.Context, params *support.DescribeTrustedAdvisorChecksInput, optFns ...func(*support.Options)) (*support.DescribeTrustedAdvisorChecksOutput, error) {
	if m.DescribeErr != nil {
		return nil, m.DescribeErr
	}
	if aws.ToString(params.Language) == "" {
		return nil, errors.New("language is required")
	}
	return &support.DescribeTrustedAdvisorChecksOutput{Checks: m.Checks}, nil
}

// describe trusted advisor check result
func (m *MockSupportApi) DescribeTrustedAdvisorCheckResult(ctx context.Context, params *support.DescribeTrustedAdvisorCheckResultInput, optFns ...func(*support.Options)) (*support.DescribeTrustedAdvisorCheckResultOutput, error) {
	checkId := aws.ToString(params.CheckId)
	if checkId == TestErrorCheckId {
		return nil, errors.New("check result unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result, ok := m.Results[checkId]
	if !ok {
		return nil, errors.New("unknown check id")
	}
	return &support.DescribeTrustedAdvisorCheckResultOutput{Result: result}, nil
}

// refresh trusted advisor check
func (m *MockSupportApi) RefreshTrustedAdvisorCheck(ctx context.Context, params *support.RefreshTrustedAdvisorCheckInput, optFns ...func(*support.Options)) (*support.RefreshTrustedAdvisorCheckOutput, error) {
	checkId := aws.ToString(params.CheckId)
	if checkId == TestErrorCheckId {
		return nil, errors.New("check is not refreshable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RefreshedIds = append(m.RefreshedIds, checkId)
	return &support.RefreshTrustedAdvisorCheckOutput{
		Status: &supportTypes.TrustedAdvisorCheckRefreshStatus{
			CheckId: aws.String(checkId),
			Status:  aws.String("enqueued"),
		},
	}, nil
}

func (m *MockSupportApi) RefreshedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RefreshedIds)
}
