package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	cloudwatchTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/probe"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/worker"
)

type _ApiProbeHandler struct {
	apiMgr sdkapimgr.SdkApiMgr
	region string
}

// ApiProbeEvent is the synthetics schedule, its content is ignored
type ApiProbeEvent struct {
	Payload map[string]interface{}
}

func NewApiProbeHandler(cfg aws.Config) (Handler, error) {
	apiMgr, err := newApiMgr(cfg, sdkapimgr.CloudWatchService)
	if err != nil {
		return nil, err
	}
	return newApiProbeHandler(apiMgr, cfg.Region), nil
}

func newApiProbeHandler(apiMgr sdkapimgr.SdkApiMgr, region string) *_ApiProbeHandler {
	return &_ApiProbeHandler{
		apiMgr: apiMgr,
		region: region,
	}
}

func (h *_ApiProbeHandler) Handle(ctx context.Context, params interface{}) (shared.Response, error) {
	if _, ok := params.(ApiProbeEvent); !ok {
		return shared.Response{}, errors.New("type assertion failure.  event is not type api probe event")
	}

	project, environment := projectAndEnvironment()
	expectedStatus := probe.DefaultStatus
	if value := shared.GetEnv(shared.EnvExpectedStatus, ""); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("invalid expected status [%s] : [%v]\n", value, err)
			return shared.NewErrorResponse(500, configurationErrMsg), nil
		}
		expectedStatus = parsed
	}
	prober, err := probe.NewApiProber(probe.ApiProbeConfig{
		Endpoint:       shared.GetEnv(shared.EnvApiEndpoint, ""),
		Method:         shared.GetEnv(shared.EnvHttpMethod, probe.DefaultHTTPMethod),
		ExpectedStatus: expectedStatus,
		Project:        project,
		Environment:    environment,
	})
	if err != nil {
		log.Printf("error creating api prober : [%v]\n", err)
		return shared.NewErrorResponse(500, shared.EnvVarsNotSetErrMsg), nil
	}

	result := prober.Probe(ctx)
	log.Printf("probe [%s] status : [%d] latency : [%.2f ms]\n", result.RequestId, result.StatusCode, result.ResponseTimeMs)

	var requests []worker.MetricWorkerRequest
	if result.Success {
		requests = []worker.MetricWorkerRequest{
			worker.NewMetricRequest("ResponseTime", result.ResponseTimeMs, cloudwatchTypes.StandardUnitMilliseconds),
			worker.NewMetricRequest("StatusCode", float64(result.StatusCode), cloudwatchTypes.StandardUnitNone),
			worker.NewMetricRequest("Success", 1, cloudwatchTypes.StandardUnitCount),
		}
	} else {
		log.Printf("api probe failed : [%s]\n", result.Error)
		requests = []worker.MetricWorkerRequest{
			worker.NewMetricRequest("Success", 0, cloudwatchTypes.StandardUnitCount),
			worker.NewMetricRequest("Error", 1, cloudwatchTypes.StandardUnitCount),
		}
	}
	namespace := "CanaryMetrics/" + project + "/" + environment
	if _, errs := publishMetrics(ctx, h.apiMgr, h.region, namespace, requests); len(errs) > 0 {
		log.Printf("warning : failed to publish probe metrics : [%v]\n", errs)
	}

	if !result.Success {
		return shared.NewResponse(500, result), nil
	}
	return shared.NewResponse(200, result), nil
}
