package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/reporting"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/s3api"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/worker"
)

type _TrustedAdvisorRefreshHandler struct {
	apiMgr sdkapimgr.SdkApiMgr
	region string
	now    func() time.Time
}

// TrustedAdvisorRefreshEvent is the scheduled event, its content is ignored
type TrustedAdvisorRefreshEvent struct {
	Payload map[string]interface{}
}

func NewTrustedAdvisorRefreshHandler(cfg aws.Config) (Handler, error) {
	apiMgr, err := newApiMgr(cfg, sdkapimgr.S3Service, sdkapimgr.SupportService)
	if err != nil {
		return nil, err
	}
	return newTrustedAdvisorRefreshHandler(apiMgr, cfg.Region), nil
}

func newTrustedAdvisorRefreshHandler(apiMgr sdkapimgr.SdkApiMgr, region string) *_TrustedAdvisorRefreshHandler {
	return &_TrustedAdvisorRefreshHandler{
		apiMgr: apiMgr,
		region: region,
		now:    time.Now,
	}
}

func (h *_TrustedAdvisorRefreshHandler) Handle(ctx context.Context, params interface{}) (shared.Response, error) {
	if _, ok := params.(TrustedAdvisorRefreshEvent); !ok {
		return shared.Response{}, errors.New("type assertion failure.  event is not type trusted advisor refresh event")
	}

	reportBucket := shared.GetEnv(shared.EnvReportBucket, "")
	project, environment := projectAndEnvironment()
	if reportBucket == "" {
		return shared.NewErrorResponse(500, shared.EnvVarsNotSetErrMsg), nil
	}

	checks, err := describeTrustedAdvisorChecks(ctx, h.apiMgr)
	if err != nil {
		log.Printf("error listing trusted advisor checks : [%v]\n", err)
		return shared.NewErrorResponse(500, err.Error()), nil
	}

	infos := make([]reporting.CheckInfo, 0, len(checks))
	for _, check := range checks {
		infos = append(infos, checkInfo(check))
	}
	timestamp := h.now().Format(shared.ReportTimestampLayout)
	checkInfoKey := shared.ReportKey(shared.ArchitectureReportsPrefix, project, environment, "trusted-advisor-checks", timestamp, "json")
	s3Client, err := sdkapimgr.Get[s3api.S3Api](h.apiMgr, h.region, sdkapimgr.S3Service)
	if err == nil {
		err = s3api.PutJSON(ctx, s3Client, reportBucket, checkInfoKey, infos)
	}
	if err != nil {
		log.Printf("error storing check info : [%v]\n", err)
		return shared.NewErrorResponse(500, err.Error()), nil
	}

	outcomes, err := runTrustedAdvisorChecks(ctx, h.apiMgr, worker.TrustedAdvisorRefresh, checks)
	if err != nil {
		return shared.NewErrorResponse(500, err.Error()), nil
	}
	refreshed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			log.Printf("error refreshing check [%s] : [%v]\n", aws.ToString(outcome.Check.Name), outcome.Err)
			continue
		}
		refreshed++
	}
	log.Printf("refreshed [%d] of [%d] checks\n", refreshed, len(checks))

	return shared.NewResponse(200, map[string]interface{}{
		"message":       fmt.Sprintf("Refreshed %d Trusted Advisor checks", refreshed),
		"checkInfoPath": shared.S3Uri(reportBucket, checkInfoKey),
	}), nil
}
