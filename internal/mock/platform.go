package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	route53Types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

var (
	TestAccountId         = "012345678910"
	TestHostedZoneId      = "Z0123456789ABCDEFGHIJ"
	TestChangeId          = "/change/C0123456789"
	TestFunctionName      = "xray-insights"
	TestErrorFunctionName = "error-function"
)

// MockRoute53Api serves RecordSets. ChangeErrs is consumed one entry per
// ChangeResourceRecordSets call, nil entries succeed.
type MockRoute53Api struct {
	mu           sync.Mutex
	RecordSets   []route53Types.ResourceRecordSet
	ListErr      error
	ChangeErrs   []error
	ChangeInputs []*route53.ChangeResourceRecordSetsInput
	PendingPolls int // GetChange answers PENDING this many times before INSYNC
}

// list resource record sets
func (m *MockRoute53Api) ListResourceRecordSets(ctx context.Context, params *route53.ListResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return &route53.ListResourceRecordSetsOutput{
		ResourceRecordSets: m.RecordSets,
		MaxItems:           params.MaxItems,
	}, nil
}

// change resource record sets
func (m *MockRoute53Api) ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := len(m.ChangeInputs)
	m.ChangeInputs = append(m.ChangeInputs, params)
	if call < len(m.ChangeErrs) && m.ChangeErrs[call] != nil {
		return nil, m.ChangeErrs[call]
	}
	return &route53.ChangeResourceRecordSetsOutput{
		ChangeInfo: &route53Types.ChangeInfo{
			Id:     aws.String(TestChangeId),
			Status: route53Types.ChangeStatusPending,
		},
	}, nil
}

// get change
func (m *MockRoute53Api) GetChange(ctx context.Context, params *route53.GetChangeInput, optFns ...func(*route53.Options)) (*route53.GetChangeOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := route53Types.ChangeStatusInsync
	if m.PendingPolls > 0 {
		m.PendingPolls--
		status = route53Types.ChangeStatusPending
	}
	return &route53.GetChangeOutput{
		ChangeInfo: &route53Types.ChangeInfo{
			Id:     params.Id,
			Status: status,
		},
	}, nil
}

type MockStsApi struct {
	Err error
}

// get caller identity
func (m *MockStsApi) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &sts.GetCallerIdentityOutput{
		Account: aws.String(TestAccountId),
		Arn:     aws.String("arn:aws:sts::" + TestAccountId + ":assumed-role/infra-testing/session"),
	}, nil
}

type MockLambdaApi struct {
	mu          sync.Mutex
	Invocations []*lambda.InvokeInput
}

// invoke. fails for TestErrorFunctionName
func (m *MockLambdaApi) Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error) {
	if aws.ToString(params.FunctionName) == TestErrorFunctionName {
		return nil, errors.New("function not found")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invocations = append(m.Invocations, params)
	return &lambda.InvokeOutput{StatusCode: 202}, nil
}

// MockHealthChecker answers from Results, one entry per call to a url. the
// last entry repeats, unknown urls are unhealthy.
type MockHealthChecker struct {
	mu      sync.Mutex
	Results map[string][]bool
	Checked []string
}

func (m *MockHealthChecker) Healthy(ctx context.Context, url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Checked = append(m.Checked, url)
	results := m.Results[url]
	if len(results) == 0 {
		return false
	}
	healthy := results[0]
	if len(results) > 1 {
		m.Results[url] = results[1:]
	}
	return healthy
}
