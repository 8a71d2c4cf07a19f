package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cloudwatchTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/mock"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/reporting"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/stretchr/testify/assert"
)

func newTestReportsBucket() *mock.MockS3Api {
	mockS3 := mock.NewMockS3Api()
	recent := testNow.Add(-24 * time.Hour)
	stale := testNow.AddDate(0, 0, -30)
	mockS3.AddObject("security-reports/app/prod/inspector-20240303-050607.json", []byte(`{"severitySummary":{"High":1,"Medium":2,"Low":5,"Informational":0}}`), recent)
	mockS3.AddObject("security-reports/app/prod/guardduty-20240303-060607.json", []byte(`{"severityCategory":"HIGH"}`), recent)
	mockS3.AddObject("security-reports/app/prod/guardduty-20240203-060607.json", []byte(`{"severityCategory":"HIGH"}`), stale)
	mockS3.AddObject("security-reports/app/prod/broken-20240303-060607.json", []byte(`{not json`), recent)
	mockS3.AddObject("architecture-reports/app/prod/trusted-advisor-results-20240302-050607.json", []byte(`{}`), testNow.AddDate(0, 0, -2))
	mockS3.AddObject("architecture-reports/app/prod/well-architected-review-20240303-050607.json", []byte(`{}`), recent)
	return mockS3
}

func newTestReportMetrics() *mock.MockCloudWatchApi {
	return &mock.MockCloudWatchApi{
		Datapoints: map[string][]cloudwatchTypes.Datapoint{
			mock.MetricKey(syntheticsNamespace, "SuccessPercent"): {
				{Average: aws.Float64(90), Minimum: aws.Float64(80)},
				{Average: aws.Float64(100), Minimum: aws.Float64(100)},
			},
			mock.MetricKey("XRayInsights/app/prod", "AverageResponseTime"): {{Average: aws.Float64(200)}, {Average: aws.Float64(300)}},
			mock.MetricKey("XRayInsights/app/prod", "ErrorRate"):           {{Average: aws.Float64(10)}},
		},
	}
}

func TestReportGeneratorHandler(t *testing.T) {
	assertion := assert.New(t)

	t.Setenv(shared.EnvReportsBucket, mock.TestBucketName)
	t.Setenv(shared.EnvProject, "app")
	t.Setenv(shared.EnvEnvironment, "prod")

	mockS3 := newTestReportsBucket()
	mockCloudWatch := newTestReportMetrics()
	handler := newReportGeneratorHandler(newTestApiMgr(t, map[string]interface{}{
		sdkapimgr.S3Service:         mockS3,
		sdkapimgr.CloudWatchService: mockCloudWatch,
	}), testRegion)
	handler.now = fixedClock

	response, err := handler.Handle(context.Background(), ReportGeneratorEvent{})
	assertion.NoError(err)
	assertion.Equal(200, response.StatusCode)

	jsonKey := "reports/app/prod/weekly-report-20240304-050607.json"
	pdfKey := "reports/app/prod/weekly-report-20240304-050607.pdf"
	body := decodeBody(t, response)
	assertion.Equal("Weekly report generated successfully", body["message"])
	assertion.Equal(shared.S3Uri(mock.TestBucketName, jsonKey), body["jsonReportPath"])
	assertion.Equal(shared.S3Uri(mock.TestBucketName, pdfKey), body["pdfReportPath"])

	put, ok := mockS3.GetPut(jsonKey)
	assertion.True(ok)
	var report reporting.Report
	assertion.NoError(json.Unmarshal(put.Body, &report))
	assertion.Equal("2024-02-26T05:06:07Z", report.TimeRange.Start)

	security := report.Sections[reporting.SectionSecurity].(map[string]interface{})
	assertion.Equal(2.0, security["reportCount"])
	assertion.Equal(9.0, security["totalFindings"])
	assertion.Equal(2.0, security["criticalFindings"])

	functionality := report.Sections[reporting.SectionFunctionality].(map[string]interface{})
	assertion.Equal(95.0, functionality["averageSuccessRate"])
	assertion.Equal(80.0, functionality["lowestSuccessRate"])

	architecture := report.Sections[reporting.SectionArchitecture].(map[string]interface{})
	assertion.Equal(2.0, architecture["reportCount"])
	assertion.Equal("2024-03-03T05:06:07Z", architecture["lastReportTimestamp"])

	observability := report.Sections[reporting.SectionObservability].(map[string]interface{})
	assertion.Equal(250.0, observability["averageResponseTime"])
	assertion.Equal(0.0, observability["p95ResponseTime"])
	assertion.Equal(10.0, observability["errorRate"])

	assertion.NotEmpty(mockCloudWatch.GetInputs)
	for _, input := range mockCloudWatch.GetInputs {
		assertion.Equal(int32(86400), aws.ToInt32(input.Period), aws.ToString(input.MetricName))
	}

	summary := report.ExecutiveSummary
	assertion.Equal(74.0, summary.SecurityScore)
	assertion.Equal(95.0, summary.FunctionalityScore)
	assertion.Equal(90.0, summary.ObservabilityScore)
	assertion.InDelta(86.33, summary.OverallScore, 0.01)
	assertion.Equal(reporting.HealthGood, summary.HealthStatus)

	put, ok = mockS3.GetPut(pdfKey)
	assertion.True(ok)
	assertion.Equal(shared.ContentTypePdf, put.ContentType)
	assertion.True(bytes.HasPrefix(put.Body, []byte("%PDF")))

	// a warm handler serves the security reports from its cache
	misses := handler.reportCache.GetCacheMisses()
	response, err = handler.Handle(context.Background(), ReportGeneratorEvent{ReportType: "Daily"})
	assertion.NoError(err)
	assertion.Equal("Daily report generated successfully", decodeBody(t, response)["message"])
	assertion.Equal(int32(2), handler.reportCache.GetCacheHits())
	assertion.Equal(misses+1, handler.reportCache.GetCacheMisses())
	_, ok = mockS3.GetPut("reports/app/prod/daily-report-20240304-050607.json")
	assertion.True(ok)
}

func TestReportGeneratorHandlerSectionErrors(t *testing.T) {
	assertion := assert.New(t)

	t.Setenv(shared.EnvReportsBucket, mock.TestBucketName)
	t.Setenv(shared.EnvProject, "app")
	t.Setenv(shared.EnvEnvironment, "prod")

	mockS3 := newTestReportsBucket()
	handler := newReportGeneratorHandler(newTestApiMgr(t, map[string]interface{}{
		sdkapimgr.S3Service: mockS3,
	}), testRegion)
	handler.now = fixedClock

	response, err := handler.Handle(context.Background(), ReportGeneratorEvent{ReportType: "monthly"})
	assertion.NoError(err)
	assertion.Equal(200, response.StatusCode)

	put, ok := mockS3.GetPut("reports/app/prod/monthly-report-20240304-050607.json")
	assertion.True(ok)
	var report reporting.Report
	assertion.NoError(json.Unmarshal(put.Body, &report))
	for _, name := range []string{reporting.SectionFunctionality, reporting.SectionObservability} {
		section := report.Sections[name].(map[string]interface{})
		assertion.NotEmpty(section["error"], name)
	}
	security := report.Sections[reporting.SectionSecurity].(map[string]interface{})
	assertion.Equal(3.0, security["reportCount"])
	assertion.Equal(0.0, report.ExecutiveSummary.FunctionalityScore)
	assertion.Equal(100.0, report.ExecutiveSummary.ObservabilityScore)
}

func TestReportGeneratorHandlerErrors(t *testing.T) {
	assertion := assert.New(t)

	tests := []struct {
		name         string
		bucket       string
		expectedCode int
	}{
		{"missing bucket", "", 500},
		{"report write error", mock.TestErrorBucketName, 500},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Setenv(shared.EnvReportsBucket, test.bucket)
			handler := newReportGeneratorHandler(newTestApiMgr(t, map[string]interface{}{
				sdkapimgr.S3Service:         mock.NewMockS3Api(),
				sdkapimgr.CloudWatchService: &mock.MockCloudWatchApi{},
			}), testRegion)
			response, err := handler.Handle(context.Background(), ReportGeneratorEvent{})
			assertion.NoError(err)
			assertion.Equal(test.expectedCode, response.StatusCode)
		})
	}

	handler := newReportGeneratorHandler(sdkapimgr.NewAwsApiMgr(), testRegion)
	_, err := handler.Handle(context.Background(), XRayInsightsEvent{})
	assertion.Error(err)
}
