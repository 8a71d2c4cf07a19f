package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cloudwatchTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/synthetics"
	"golang.org/x/sync/errgroup"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/cloudwatchapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/s3api"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/syntheticsapi"
)

const syntheticsNamespace = "CloudWatchSynthetics"

type _CanaryResultsHandler struct {
	apiMgr sdkapimgr.SdkApiMgr
	region string
	now    func() time.Time
}

type CanaryResultsEvent struct {
	CloudWatchEvent events.CloudWatchEvent
}

type canaryDetail struct {
	CanaryName string `json:"canary-name"`
}

type CanaryResult struct {
	CanaryName  string  `json:"canaryName"`
	Timestamp   string  `json:"timestamp"`
	Status      string  `json:"status"`
	SuccessRate float64 `json:"successRate"`
	Duration    float64 `json:"duration"`
	RunId       string  `json:"runId"`
	Artifacts   string  `json:"artifacts"`
}

func NewCanaryResultsHandler(cfg aws.Config) (Handler, error) {
	apiMgr, err := newApiMgr(cfg, sdkapimgr.S3Service, sdkapimgr.SyntheticsService, sdkapimgr.CloudWatchService)
	if err != nil {
		return nil, err
	}
	return newCanaryResultsHandler(apiMgr, cfg.Region), nil
}

func newCanaryResultsHandler(apiMgr sdkapimgr.SdkApiMgr, region string) *_CanaryResultsHandler {
	return &_CanaryResultsHandler{
		apiMgr: apiMgr,
		region: region,
		now:    time.Now,
	}
}

func (h *_CanaryResultsHandler) Handle(ctx context.Context, params interface{}) (shared.Response, error) {
	event, ok := params.(CanaryResultsEvent)
	if !ok {
		return shared.Response{}, errors.New("type assertion failure.  event is not type canary results event")
	}

	var detail canaryDetail
	if len(event.CloudWatchEvent.Detail) > 0 {
		if err := json.Unmarshal(event.CloudWatchEvent.Detail, &detail); err != nil {
			log.Printf("error parsing event detail : [%v]\n", err)
		}
	}
	if detail.CanaryName == "" {
		log.Println("could not extract canary name from event")
		return shared.NewResponse(400, shared.InvalidEventFormatErrMsg), nil
	}

	codeBucket := shared.GetEnv(shared.EnvCodeBucket, "")
	project, environment := projectAndEnvironment()
	if codeBucket == "" {
		return shared.NewErrorResponse(500, shared.EnvVarsNotSetErrMsg), nil
	}

	syntheticsClient, err := sdkapimgr.Get[syntheticsapi.SyntheticsApi](h.apiMgr, h.region, sdkapimgr.SyntheticsService)
	if err != nil {
		return shared.NewErrorResponse(500, err.Error()), nil
	}
	if _, err := syntheticsClient.GetCanary(ctx, &synthetics.GetCanaryInput{Name: aws.String(detail.CanaryName)}); err != nil {
		log.Printf("error getting canary [%s] : [%v]\n", detail.CanaryName, err)
		return shared.NewErrorResponse(500, err.Error()), nil
	}
	runs, err := syntheticsClient.GetCanaryRuns(ctx, &synthetics.GetCanaryRunsInput{
		Name:       aws.String(detail.CanaryName),
		MaxResults: aws.Int32(1),
	})
	if err != nil {
		log.Printf("error getting runs of canary [%s] : [%v]\n", detail.CanaryName, err)
		return shared.NewErrorResponse(500, err.Error()), nil
	}
	if len(runs.CanaryRuns) == 0 {
		return shared.NewResponse(200, "No canary runs found"), nil
	}
	latest := runs.CanaryRuns[0]

	now := h.now()
	timestamp := now.Format(shared.ReportTimestampLayout)
	result := CanaryResult{
		CanaryName: detail.CanaryName,
		Timestamp:  timestamp,
		RunId:      aws.ToString(latest.Id),
		Artifacts:  aws.ToString(latest.ArtifactS3Location),
	}
	if latest.Status != nil {
		result.Status = string(latest.Status.State)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		value, err := h.latestAverage(groupCtx, detail.CanaryName, "SuccessPercent", now)
		result.SuccessRate = value
		return err
	})
	group.Go(func() error {
		value, err := h.latestAverage(groupCtx, detail.CanaryName, "Duration", now)
		result.Duration = value
		return err
	})
	if err := group.Wait(); err != nil {
		log.Printf("error reading canary metrics : [%v]\n", err)
		return shared.NewErrorResponse(500, err.Error()), nil
	}

	if result.Status != shared.StatusPassed {
		log.Printf("warning : canary [%s] status [%s]\n", detail.CanaryName, result.Status)
	}

	resultKey := shared.ReportPrefix(shared.FunctionalityPrefix, project, environment) + detail.CanaryName + "/" + timestamp + ".json"
	s3Client, err := sdkapimgr.Get[s3api.S3Api](h.apiMgr, h.region, sdkapimgr.S3Service)
	if err == nil {
		err = s3api.PutJSON(ctx, s3Client, codeBucket, resultKey, result)
	}
	if err != nil {
		log.Printf("error storing canary result : [%v]\n", err)
		return shared.NewErrorResponse(500, err.Error()), nil
	}

	return shared.NewResponse(200, map[string]interface{}{
		"canaryName": result.CanaryName,
		"status":     result.Status,
		"resultPath": shared.S3Uri(codeBucket, resultKey),
	}), nil
}

// average of the first datapoint over the last hour, 0 without datapoints
func (h *_CanaryResultsHandler) latestAverage(ctx context.Context, canaryName, metricName string, now time.Time) (float64, error) {
	cloudwatchClient, err := sdkapimgr.Get[cloudwatchapi.CloudWatchApi](h.apiMgr, h.region, sdkapimgr.CloudWatchService)
	if err != nil {
		return 0, err
	}
	output, err := cloudwatchClient.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(syntheticsNamespace),
		MetricName: aws.String(metricName),
		Dimensions: []cloudwatchTypes.Dimension{
			{Name: aws.String("CanaryName"), Value: aws.String(canaryName)},
		},
		StartTime:  aws.Time(now.Add(-time.Hour)),
		EndTime:    aws.Time(now),
		Period:     aws.Int32(60),
		Statistics: []cloudwatchTypes.Statistic{cloudwatchTypes.StatisticAverage},
	})
	if err != nil {
		return 0, err
	}
	if len(output.Datapoints) == 0 {
		return 0, nil
	}
	return aws.ToFloat64(output.Datapoints[0].Average), nil
}
