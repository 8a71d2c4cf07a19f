package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	xrayTypes "github.com/aws/aws-sdk-go-v2/service/xray/types"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/mock"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/stretchr/testify/assert"
)

func traceSummary(seconds float64, hasError, hasFault bool) xrayTypes.TraceSummary {
	return xrayTypes.TraceSummary{
		ResponseTime: aws.Float64(seconds),
		HasError:     aws.Bool(hasError),
		HasFault:     aws.Bool(hasFault),
		HasThrottle:  aws.Bool(false),
	}
}

func TestXRayInsightsHandler(t *testing.T) {
	assertion := assert.New(t)

	t.Setenv(shared.EnvProject, "app")
	t.Setenv(shared.EnvEnvironment, "prod")

	mockXRay := &mock.MockXRayApi{
		Summaries: []xrayTypes.TraceSummary{
			traceSummary(0.1, false, false),
			traceSummary(0.2, true, false),
			traceSummary(0.3, false, true),
			traceSummary(0.4, false, false),
		},
		Services: []xrayTypes.Service{
			{
				Name: aws.String("api"),
				Type: aws.String("AWS::ApiGateway::Stage"),
				SummaryStatistics: &xrayTypes.ServiceStatistics{
					TotalCount:        aws.Int64(4),
					TotalResponseTime: aws.Float64(1.0),
				},
			},
			{Name: aws.String("orders")},
		},
	}
	mockCloudWatch := &mock.MockCloudWatchApi{}
	handler := newXRayInsightsHandler(newTestApiMgr(t, map[string]interface{}{
		sdkapimgr.XRayService:       mockXRay,
		sdkapimgr.CloudWatchService: mockCloudWatch,
	}), testRegion)
	handler.now = fixedClock

	response, err := handler.Handle(context.Background(), XRayInsightsEvent{Payload: map[string]interface{}{"testRunId": "20240304050607-prod"}})
	assertion.NoError(err)
	assertion.Equal(200, response.StatusCode)
	assertion.Equal([]string{`service("app") AND annotation.environment = "prod"`}, mockXRay.Filters)

	var insights XRayInsights
	assertion.NoError(json.Unmarshal([]byte(response.Body), &insights))
	assertion.Equal("2024-03-03T05:06:07Z", insights.TimeRange.Start)
	assertion.Equal("2024-03-04T05:06:07Z", insights.TimeRange.End)
	assertion.Equal(4, insights.Summary.TraceCount)
	assertion.InDelta(250.0, insights.Summary.AverageResponseTime, 0.001)
	assertion.InDelta(400.0, insights.Summary.P95ResponseTime, 0.001)
	assertion.Equal(25.0, insights.Summary.ErrorRate)
	assertion.Equal(25.0, insights.Summary.FaultRate)
	assertion.Len(insights.ServiceInsights, 2)
	assertion.InDelta(250.0, insights.ServiceInsights[0].AverageResponseTime, 0.001)

	assertion.Equal("XRayInsights/app/prod", aws.ToString(mockCloudWatch.PutInputs[0].Namespace))
	assertion.Equal([]string{"AverageResponseTime", "P95ResponseTime", "ErrorRate", "FaultRate", "RequestCount", "RequestCount"}, mockCloudWatch.PutMetricNames())
	last := mockCloudWatch.PutInputs[0].MetricData[5]
	assertion.Equal("Service", aws.ToString(last.Dimensions[0].Name))
	assertion.Equal("orders", aws.ToString(last.Dimensions[0].Value))
}

func TestXRayInsightsHandlerNoTraces(t *testing.T) {
	assertion := assert.New(t)

	mockCloudWatch := &mock.MockCloudWatchApi{}
	handler := newXRayInsightsHandler(newTestApiMgr(t, map[string]interface{}{
		sdkapimgr.XRayService:       &mock.MockXRayApi{},
		sdkapimgr.CloudWatchService: mockCloudWatch,
	}), testRegion)

	response, err := handler.Handle(context.Background(), XRayInsightsEvent{})
	assertion.NoError(err)
	assertion.Equal(200, response.StatusCode)
	assertion.Equal("No traces found", decodeBody(t, response)["message"])
	assertion.Empty(mockCloudWatch.PutInputs)
}

func TestXRayInsightsHandlerErrors(t *testing.T) {
	assertion := assert.New(t)

	summaries := []xrayTypes.TraceSummary{traceSummary(0.1, false, false)}
	tests := []struct {
		name         string
		xrayApi      *mock.MockXRayApi
		environment  string
		expectedCode int
	}{
		{"trace summaries error", &mock.MockXRayApi{TraceErr: errors.New("throttled")}, "prod", 500},
		{"service graph error", &mock.MockXRayApi{Summaries: summaries, GraphErr: errors.New("throttled")}, "prod", 500},
		{"metric publishing failure is a warning", &mock.MockXRayApi{Summaries: summaries}, "prod", 200},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Setenv(shared.EnvEnvironment, test.environment)
			handler := newXRayInsightsHandler(newTestApiMgr(t, map[string]interface{}{
				sdkapimgr.XRayService: test.xrayApi,
			}), testRegion)
			response, err := handler.Handle(context.Background(), XRayInsightsEvent{})
			assertion.NoError(err)
			assertion.Equal(test.expectedCode, response.StatusCode)
		})
	}

	handler := newXRayInsightsHandler(sdkapimgr.NewAwsApiMgr(), testRegion)
	_, err := handler.Handle(context.Background(), ApiProbeEvent{})
	assertion.Error(err)
}
