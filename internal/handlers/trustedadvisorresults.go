package handlers

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/reporting"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/s3api"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/worker"
)

type _TrustedAdvisorResultsHandler struct {
	apiMgr sdkapimgr.SdkApiMgr
	region string
	now    func() time.Time
}

// TrustedAdvisorResultsEvent is the scheduled event, its content is ignored
type TrustedAdvisorResultsEvent struct {
	Payload map[string]interface{}
}

func NewTrustedAdvisorResultsHandler(cfg aws.Config) (Handler, error) {
	apiMgr, err := newApiMgr(cfg, sdkapimgr.S3Service, sdkapimgr.SupportService)
	if err != nil {
		return nil, err
	}
	return newTrustedAdvisorResultsHandler(apiMgr, cfg.Region), nil
}

func newTrustedAdvisorResultsHandler(apiMgr sdkapimgr.SdkApiMgr, region string) *_TrustedAdvisorResultsHandler {
	return &_TrustedAdvisorResultsHandler{
		apiMgr: apiMgr,
		region: region,
		now:    time.Now,
	}
}

func (h *_TrustedAdvisorResultsHandler) Handle(ctx context.Context, params interface{}) (shared.Response, error) {
	if _, ok := params.(TrustedAdvisorResultsEvent); !ok {
		return shared.Response{}, errors.New("type assertion failure.  event is not type trusted advisor results event")
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
	outcomes, err := runTrustedAdvisorChecks(ctx, h.apiMgr, worker.TrustedAdvisorDescribeResult, checks)
	if err != nil {
		return shared.NewErrorResponse(500, err.Error()), nil
	}

	now := h.now()
	timestamp := now.Format(shared.ReportTimestampLayout)
	report := reporting.TrustedAdvisorReport{
		Project:       project,
		Environment:   environment,
		Timestamp:     timestamp,
		FlaggedChecks: []reporting.FlaggedCheck{},
	}
	for _, outcome := range outcomes {
		if outcome.Err != nil || outcome.Result == nil {
			log.Printf("warning : no result for check [%s] : [%v]\n", aws.ToString(outcome.Check.Name), outcome.Err)
			continue
		}
		status := aws.ToString(outcome.Result.Status)
		report.Summary.Add(status)
		if status != reporting.CheckStatusOk {
			report.FlaggedChecks = append(report.FlaggedChecks, reporting.NewFlaggedCheck(checkInfo(outcome.Check), outcome.Result))
		}
	}
	log.Printf("trusted advisor summary : [%+v]\n", report.Summary)

	s3Client, err := sdkapimgr.Get[s3api.S3Api](h.apiMgr, h.region, sdkapimgr.S3Service)
	if err != nil {
		return shared.NewErrorResponse(500, err.Error()), nil
	}
	reportKey := shared.ReportKey(shared.ArchitectureReportsPrefix, project, environment, "trusted-advisor-results", timestamp, "json")
	if err := s3api.PutJSON(ctx, s3Client, reportBucket, reportKey, report); err != nil {
		log.Printf("error storing trusted advisor results : [%v]\n", err)
		return shared.NewErrorResponse(500, err.Error()), nil
	}

	html, err := reporting.RenderTrustedAdvisorHTML(report)
	if err != nil {
		return shared.NewErrorResponse(500, err.Error()), nil
	}
	htmlKey := shared.ReportKey(shared.ArchitectureReportsPrefix, project, environment, "trusted-advisor-summary", timestamp, "html")
	if err := s3api.PutBytes(ctx, s3Client, reportBucket, htmlKey, shared.ContentTypeHtml, html); err != nil {
		log.Printf("error storing trusted advisor summary : [%v]\n", err)
		return shared.NewErrorResponse(500, err.Error()), nil
	}

	h.writeFlaggedResources(ctx, report, reportBucket, project, environment, timestamp)

	return shared.NewResponse(200, map[string]interface{}{
		"reportPath":      shared.S3Uri(reportBucket, reportKey),
		"htmlSummaryPath": shared.S3Uri(reportBucket, htmlKey),
		"summary":         report.Summary,
	}), nil
}

// one csv per region of flagged resources. failures are logged only.
func (h *_TrustedAdvisorResultsHandler) writeFlaggedResources(ctx context.Context, report reporting.TrustedAdvisorReport, bucket, project, environment, timestamp string) {
	byRegion := report.FlaggedResourcesByRegion()
	if len(byRegion) == 0 {
		return
	}
	regions := make([]string, 0, len(byRegion))
	for region := range byRegion {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	prefix := shared.ReportPrefix(shared.ArchitectureReportsPrefix, project, environment) + "trusted-advisor-flagged-" + timestamp
	errorChan := make(chan error, len(regions))
	collector := worker.NewErrorCollector(errorChan)
	wg := new(sync.WaitGroup)
	requestChans := map[string]chan interface{}{}
	for _, region := range regions {
		requestChan := make(chan interface{}, len(byRegion[region]))
		_, err := worker.NewCSVWorker(worker.CsvWorkerConfig{
			Region: h.region,
			WorkerConfig: worker.WorkerConfig{
				Ctx:          ctx,
				Id:           "flagged-resources-" + region,
				Wg:           wg,
				RequestChan:  requestChan,
				ErrorChan:    errorChan,
				SdkClientMgr: h.apiMgr,
			},
			OutputConfig: worker.OutputConfiguration{
				Headers:    reporting.FlaggedResourceHeaders,
				Filename:   region + ".csv",
				Prefix:     prefix,
				BucketName: bucket,
				Writes3:    true,
			},
		})
		if err != nil {
			log.Printf("error creating csv worker for region [%s] : [%v]\n", region, err)
			continue
		}
		requestChans[region] = requestChan
	}
	for region, requestChan := range requestChans {
		for _, row := range byRegion[region] {
			requestChan <- worker.CsvWorkerRequest{CsvRecord: row}
		}
		close(requestChan)
	}
	wg.Wait()
	close(errorChan)
	if errs := collector.Wait(); len(errs) > 0 {
		log.Printf("[%d] errors writing flagged resources\n", len(errs))
	}
}
