package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	route53Types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/mock"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/stretchr/testify/assert"
)

const (
	testDomainName      = "app.example.com"
	testPrimaryEndpoint = "primary.example.com"
	testDrEndpoint      = "dr.example.com"
	testPrimaryURL      = "https://primary.example.com/health"
	testDrURL           = "https://dr.example.com/health"
)

// every call advances a second
func steppingClock(start time.Time) func() time.Time {
	current := start.Add(-time.Second)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func setFailoverEnv(t *testing.T) {
	t.Setenv(shared.EnvPrimaryRegion, "us-east-1")
	t.Setenv(shared.EnvDrRegion, "us-west-2")
	t.Setenv(shared.EnvDomainName, testDomainName)
	t.Setenv(shared.EnvHealthCheckPath, "/health")
	t.Setenv(shared.EnvRoute53HostedZoneId, mock.TestHostedZoneId)
	t.Setenv(shared.EnvPrimaryEndpoint, testPrimaryEndpoint)
	t.Setenv(shared.EnvDrEndpoint, testDrEndpoint)
	t.Setenv(shared.EnvSnsTopicArn, mock.TestTopicArn)
	t.Setenv(shared.EnvResultsBucket, mock.TestBucketName)
	t.Setenv(shared.EnvProject, "app")
	t.Setenv(shared.EnvEnvironment, "prod")
}

func TestFailoverTestHandler(t *testing.T) {
	assertion := assert.New(t)
	setFailoverEnv(t)

	originalRecord := route53Types.ResourceRecordSet{
		Name:            aws.String(testDomainName + "."),
		Type:            route53Types.RRTypeA,
		TTL:             aws.Int64(300),
		ResourceRecords: []route53Types.ResourceRecord{{Value: aws.String("192.0.2.10")}},
	}
	throttled := errors.New("throttled")

	tests := []struct {
		name                 string
		primary              []bool
		dr                   []bool
		route53Api           *mock.MockRoute53Api
		sleepErr             error
		expectedStatus       string
		expectedSteps        int
		expectedChanges      int
		expectedSubject      string
		expectedNotification string
	}{
		{"successful failover and failback", []bool{true}, []bool{true}, &mock.MockRoute53Api{RecordSets: []route53Types.ResourceRecordSet{originalRecord}, PendingPolls: 2}, nil, shared.StatusSuccess, 8, 2, "Failover test completed successfully in ", shared.StatusSuccess},
		{"primary unhealthy", []bool{false}, []bool{true}, &mock.MockRoute53Api{}, nil, shared.StatusSkipped, 3, 0, "Failover test skipped - primary region not healthy", shared.StatusFailure},
		{"dr not ready", []bool{true}, []bool{false}, &mock.MockRoute53Api{}, nil, shared.StatusSkipped, 3, 0, "Failover test skipped - DR region not ready", shared.StatusFailure},
		{"failover change error", []bool{true}, []bool{true}, &mock.MockRoute53Api{ChangeErrs: []error{throttled}}, nil, shared.StatusFailure, 4, 1, "Failover to DR region failed", shared.StatusFailure},
		{"dr not serving traffic", []bool{true}, []bool{true, false}, &mock.MockRoute53Api{}, nil, shared.StatusPartialSuccess, 9, 2, "Failover test completed with some issues in ", shared.StatusPartialSuccess},
		{"failback change error", []bool{true}, []bool{true}, &mock.MockRoute53Api{ChangeErrs: []error{nil, throttled}}, nil, shared.StatusFailure, 7, 2, "Failback to primary region failed - URGENT: Manual intervention required", shared.StatusFailure},
		{"record listing error", []bool{true}, []bool{true}, &mock.MockRoute53Api{ListErr: throttled}, nil, shared.StatusError, 3, 0, "Error during failover test: throttled", shared.StatusFailure},
		{"interrupted wait restores primary", []bool{true}, []bool{true}, &mock.MockRoute53Api{}, context.Canceled, shared.StatusError, 5, 2, "Error during failover test: context canceled", shared.StatusFailure},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			mockS3 := mock.NewMockS3Api()
			mockSns := &mock.MockSnsApi{}
			healthChecker := &mock.MockHealthChecker{Results: map[string][]bool{
				testPrimaryURL: test.primary,
				testDrURL:      test.dr,
			}}
			handler := newFailoverTestHandler(newTestApiMgr(t, map[string]interface{}{
				sdkapimgr.Route53Service: test.route53Api,
				sdkapimgr.SnsService:     mockSns,
				sdkapimgr.S3Service:      mockS3,
			}), testRegion, healthChecker)
			handler.now = steppingClock(testNow)
			sleeps := []time.Duration{}
			handler.sleep = func(ctx context.Context, d time.Duration) error {
				sleeps = append(sleeps, d)
				return test.sleepErr
			}

			response, err := handler.Handle(context.Background(), FailoverTestEvent{})
			assertion.NoError(err)
			assertion.Equal(200, response.StatusCode)

			var results FailoverTestResults
			assertion.NoError(json.Unmarshal([]byte(response.Body), &results))
			assertion.Equal("failover-test-1709528767", results.TestId)
			assertion.Equal("2024-03-04 05:06:07", results.StartTime)
			assertion.Equal(test.expectedStatus, results.OverallStatus)
			assertion.Len(results.Steps, test.expectedSteps)
			assertion.Len(test.route53Api.ChangeInputs, test.expectedChanges)

			assertion.Equal(1, mockSns.PublishedCount())
			published := mockSns.Published[0]
			assertion.True(strings.HasPrefix(aws.ToString(published.Subject), test.expectedSubject), aws.ToString(published.Subject))
			var notification failoverNotification
			assertion.NoError(json.Unmarshal([]byte(aws.ToString(published.Message)), &notification))
			assertion.Equal(test.expectedNotification, notification.Status)
			assertion.Equal(failoverMessages[test.expectedNotification], notification.Message)
			assertion.Equal(results.TestId, notification.Details.TestId)

			put, ok := mockS3.GetPut("failover-tests/app/prod/failover-test-1709528767.csv")
			assertion.True(ok)
			assertion.Equal(shared.ContentTypeCsv, put.ContentType)
			assertion.Equal(test.expectedSteps+1, strings.Count(string(put.Body), "\n"))

			if test.expectedChanges > 0 {
				failover := test.route53Api.ChangeInputs[0]
				assertion.Equal(mock.TestHostedZoneId, aws.ToString(failover.HostedZoneId))
				assertion.Equal(failoverComment, aws.ToString(failover.ChangeBatch.Comment))
				change := failover.ChangeBatch.Changes[0]
				assertion.Equal(route53Types.ChangeActionUpsert, change.Action)
				assertion.Equal(testDrEndpoint, aws.ToString(change.ResourceRecordSet.AliasTarget.DNSName))
				assertion.True(change.ResourceRecordSet.AliasTarget.EvaluateTargetHealth)
			}
			if test.expectedChanges > 1 {
				failback := test.route53Api.ChangeInputs[1]
				assertion.Equal(failbackComment, aws.ToString(failback.ChangeBatch.Comment))
				record := failback.ChangeBatch.Changes[0].ResourceRecordSet
				if len(test.route53Api.RecordSets) > 0 {
					assertion.Equal(originalRecord, *record)
				} else {
					assertion.Equal(testPrimaryEndpoint, aws.ToString(record.AliasTarget.DNSName))
				}
			}

			switch test.expectedStatus {
			case shared.StatusSuccess:
				assertion.Equal([]time.Duration{changePollInterval, changePollInterval, dnsPropagationWait, dnsPropagationWait}, sleeps)
				assertion.NotEmpty(results.EndTime)
				assertion.Greater(results.DurationSeconds, 0.0)
				assertion.Equal("DNS change INSYNC. Waited 60 seconds for DNS propagation", results.Steps[3].Details)
			case shared.StatusError:
				assertion.NotEmpty(results.Error)
			}
		})
	}
}

func TestFailoverTestHandlerErrors(t *testing.T) {
	assertion := assert.New(t)

	handler := newFailoverTestHandler(sdkapimgr.NewAwsApiMgr(), testRegion, &mock.MockHealthChecker{})
	_, err := handler.Handle(context.Background(), ApiProbeEvent{})
	assertion.Error(err)

	tests := []struct {
		name   string
		unset  string
		apis   map[string]interface{}
		errMsg string
	}{
		{"missing domain", shared.EnvDomainName, map[string]interface{}{}, shared.EnvVarsNotSetErrMsg},
		{"missing topic", shared.EnvSnsTopicArn, map[string]interface{}{}, shared.EnvVarsNotSetErrMsg},
		{"missing dr endpoint", shared.EnvDrEndpoint, map[string]interface{}{}, shared.EnvVarsNotSetErrMsg},
		{"invalid hosted zone", shared.EnvRoute53HostedZoneId, map[string]interface{}{}, shared.EnvVarsNotSetErrMsg},
		{"missing route53 client", "", map[string]interface{}{sdkapimgr.SnsService: &mock.MockSnsApi{}}, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			setFailoverEnv(t)
			if test.unset != "" {
				t.Setenv(test.unset, "")
			}
			healthChecker := &mock.MockHealthChecker{}
			handler := newFailoverTestHandler(newTestApiMgr(t, test.apis), testRegion, healthChecker)
			response, err := handler.Handle(context.Background(), FailoverTestEvent{})
			assertion.NoError(err)
			assertion.Equal(500, response.StatusCode)
			if test.errMsg != "" {
				assertion.Equal(test.errMsg, decodeBody(t, response)["error"])
			}
			assertion.Empty(healthChecker.Checked)
		})
	}
}
