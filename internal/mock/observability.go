package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cloudwatchTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/synthetics"
	syntheticsTypes "github.com/aws/aws-sdk-go-v2/service/synthetics/types"
	"github.com/aws/aws-sdk-go-v2/service/xray"
	xrayTypes "github.com/aws/aws-sdk-go-v2/service/xray/types"
)

var (
	TestCanaryName      = "api-health-canary"
	TestErrorCanaryName = "error-canary"
	TestErrorNamespace  = "ErrorNamespace"
)

type MockSyntheticsApi struct {
	mu       sync.Mutex
	Canary   *syntheticsTypes.Canary
	Runs     []syntheticsTypes.CanaryRun
	Started  []string
	StartErr error
}

// get canary
func (m *MockSyntheticsApi) GetCanary(ctx context.Context, params *synthetics.GetCanaryInput, optFns ...func(*synthetics.Options)) (*synthetics.GetCanaryOutput, error) {
	if aws.ToString(params.Name) == TestErrorCanaryName {
		return nil, errors.New("canary not found")
	}
	return &synthetics.GetCanaryOutput{Canary: m.Canary}, nil
}

// get canary runs, newest first
func (m *MockSyntheticsApi) GetCanaryRuns(ctx context.Context, params *synthetics.GetCanaryRunsInput, optFns ...func(*synthetics.Options)) (*synthetics.GetCanaryRunsOutput, error) {
	runs := m.Runs
	if params.MaxResults != nil && int(*params.MaxResults) < len(runs) {
		runs = runs[:*params.MaxResults]
	}
	return &synthetics.GetCanaryRunsOutput{CanaryRuns: runs}, nil
}

// start canary
func (m *MockSyntheticsApi) StartCanary(ctx context.Context, params *synthetics.StartCanaryInput, optFns ...func(*synthetics.Options)) (*synthetics.StartCanaryOutput, error) {
	if m.StartErr != nil {
		return nil, m.StartErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Started = append(m.Started, aws.ToString(params.Name))
	return &synthetics.StartCanaryOutput{}, nil
}

// MockCloudWatchApi serves datapoints keyed by namespace and metric name.
// reads and writes against TestErrorNamespace fail.
type MockCloudWatchApi struct {
	mu         sync.Mutex
	Datapoints map[string][]cloudwatchTypes.Datapoint
	GetInputs  []*cloudwatch.GetMetricStatisticsInput
	PutInputs  []*cloudwatch.PutMetricDataInput
}

func MetricKey(namespace, metricName string) string {
	return namespace + "|" + metricName
}

// get metric statistics
func (m *MockCloudWatchApi) GetMetricStatistics(ctx context.Context, params *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error) {
	namespace := aws.ToString(params.Namespace)
	if namespace == TestErrorNamespace {
		return nil, errors.New("throttling")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetInputs = append(m.GetInputs, params)
	return &cloudwatch.GetMetricStatisticsOutput{
		Label:      params.MetricName,
		Datapoints: m.Datapoints[MetricKey(namespace, aws.ToString(params.MetricName))],
	}, nil
}

// put metric data
func (m *MockCloudWatchApi) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	if aws.ToString(params.Namespace) == TestErrorNamespace {
		return nil, errors.New("throttling")
	}
	if len(params.MetricData) > 1000 {
		return nil, errors.New("too many metrics in one request")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutInputs = append(m.PutInputs, params)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

// PutMetricNames flattens every published datum name
func (m *MockCloudWatchApi) PutMetricNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := []string{}
	for _, input := range m.PutInputs {
		for _, datum := range input.MetricData {
			names = append(names, aws.ToString(datum.MetricName))
		}
	}
	return names
}

// PutMetricValue returns the last published value for name
func (m *MockCloudWatchApi) PutMetricValue(name string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, found := 0.0, false
	for _, input := range m.PutInputs {
		for _, datum := range input.MetricData {
			if aws.ToString(datum.MetricName) == name {
				value, found = aws.ToFloat64(datum.Value), true
			}
		}
	}
	return value, found
}

type MockXRayApi struct {
	Summaries []xrayTypes.TraceSummary
	Services  []xrayTypes.Service
	TraceErr  error
	GraphErr  error
	Filters   []string
}

// get trace summaries, a single page
func (m *MockXRayApi) GetTraceSummaries(ctx context.Context, params *xray.GetTraceSummariesInput, optFns ...func(*xray.Options)) (*xray.GetTraceSummariesOutput, error) {
	if m.TraceErr != nil {
		return nil, m.TraceErr
	}
	m.Filters = append(m.Filters, aws.ToString(params.FilterExpression))
	return &xray.GetTraceSummariesOutput{TraceSummaries: m.Summaries}, nil
}

// get service graph
func (m *MockXRayApi) GetServiceGraph(ctx context.Context, params *xray.GetServiceGraphInput, optFns ...func(*xray.Options)) (*xray.GetServiceGraphOutput, error) {
	if m.GraphErr != nil {
		return nil, m.GraphErr
	}
	return &xray.GetServiceGraphOutput{
		StartTime: params.StartTime,
		EndTime:   params.EndTime,
		Services:  m.Services,
	}, nil
}
