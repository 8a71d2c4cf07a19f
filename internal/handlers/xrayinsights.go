package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cloudwatchTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/xray"
	xrayTypes "github.com/aws/aws-sdk-go-v2/service/xray/types"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/reporting"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/worker"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/xrayapi"
)

const insightsWindow = 24 * time.Hour

type _XRayInsightsHandler struct {
	apiMgr sdkapimgr.SdkApiMgr
	region string
	now    func() time.Time
}

// XRayInsightsEvent is a schedule or an orchestrator invocation carrying testRunId
type XRayInsightsEvent struct {
	Payload map[string]interface{}
}

type InsightsTimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type XRayInsights struct {
	Project         string                     `json:"project"`
	Environment     string                     `json:"environment"`
	TimeRange       InsightsTimeRange          `json:"timeRange"`
	Summary         reporting.TraceStats       `json:"summary"`
	ServiceInsights []reporting.ServiceInsight `json:"serviceInsights"`
}

func NewXRayInsightsHandler(cfg aws.Config) (Handler, error) {
	apiMgr, err := newApiMgr(cfg, sdkapimgr.XRayService, sdkapimgr.CloudWatchService)
	if err != nil {
		return nil, err
	}
	return newXRayInsightsHandler(apiMgr, cfg.Region), nil
}

func newXRayInsightsHandler(apiMgr sdkapimgr.SdkApiMgr, region string) *_XRayInsightsHandler {
	return &_XRayInsightsHandler{
		apiMgr: apiMgr,
		region: region,
		now:    time.Now,
	}
}

func (h *_XRayInsightsHandler) Handle(ctx context.Context, params interface{}) (shared.Response, error) {
	event, ok := params.(XRayInsightsEvent)
	if !ok {
		return shared.Response{}, errors.New("type assertion failure.  event is not type xray insights event")
	}
	if testRunId, ok := event.Payload["testRunId"].(string); ok {
		log.Printf("collecting insights for test run : [%s]\n", testRunId)
	}

	project, environment := projectAndEnvironment()
	xrayClient, err := sdkapimgr.Get[xrayapi.XRayApi](h.apiMgr, h.region, sdkapimgr.XRayService)
	if err != nil {
		return shared.NewErrorResponse(500, err.Error()), nil
	}

	end := h.now()
	start := end.Add(-insightsWindow)
	summaries, err := traceSummaries(ctx, xrayClient, reporting.TraceFilter(project, environment), start, end)
	if err != nil {
		log.Printf("error getting trace summaries : [%v]\n", err)
		return shared.NewErrorResponse(500, err.Error()), nil
	}
	if len(summaries) == 0 {
		log.Println("no traces found")
		return shared.NewResponse(200, "No traces found"), nil
	}
	log.Printf("analyzing [%d] traces\n", len(summaries))

	graph, err := xrayClient.GetServiceGraph(ctx, &xray.GetServiceGraphInput{
		StartTime: aws.Time(start),
		EndTime:   aws.Time(end),
	})
	if err != nil {
		log.Printf("error getting service graph : [%v]\n", err)
		return shared.NewErrorResponse(500, err.Error()), nil
	}

	insights := XRayInsights{
		Project:     project,
		Environment: environment,
		TimeRange: InsightsTimeRange{
			Start: start.UTC().Format(time.RFC3339),
			End:   end.UTC().Format(time.RFC3339),
		},
		Summary:         reporting.NewTraceStats(summaries),
		ServiceInsights: reporting.NewServiceInsights(graph.Services),
	}

	requests := []worker.MetricWorkerRequest{
		worker.NewMetricRequest("AverageResponseTime", insights.Summary.AverageResponseTime, cloudwatchTypes.StandardUnitMilliseconds),
		worker.NewMetricRequest("P95ResponseTime", insights.Summary.P95ResponseTime, cloudwatchTypes.StandardUnitMilliseconds),
		worker.NewMetricRequest("ErrorRate", insights.Summary.ErrorRate, cloudwatchTypes.StandardUnitPercent),
		worker.NewMetricRequest("FaultRate", insights.Summary.FaultRate, cloudwatchTypes.StandardUnitPercent),
	}
	for _, service := range insights.ServiceInsights {
		requests = append(requests, worker.NewMetricRequest("RequestCount", float64(service.RequestCount), cloudwatchTypes.StandardUnitCount, "Service", service.Name))
	}
	namespace := "XRayInsights/" + project + "/" + environment
	if _, errs := publishMetrics(ctx, h.apiMgr, h.region, namespace, requests); len(errs) > 0 {
		log.Printf("warning : failed to publish insight metrics : [%v]\n", errs)
	}

	return shared.NewResponse(200, insights), nil
}

// every page of trace summaries matching filter, sampling disabled
func traceSummaries(ctx context.Context, xrayClient xrayapi.XRayApi, filter string, start, end time.Time) ([]xrayTypes.TraceSummary, error) {
	summaries := []xrayTypes.TraceSummary{}
	paginator := xray.NewGetTraceSummariesPaginator(xrayClient, &xray.GetTraceSummariesInput{
		StartTime:        aws.Time(start),
		EndTime:          aws.Time(end),
		FilterExpression: aws.String(filter),
		Sampling:         aws.Bool(false),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, page.TraceSummaries...)
	}
	return summaries, nil
}
