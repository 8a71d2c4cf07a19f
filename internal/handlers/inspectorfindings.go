package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/inspector"
	inspectorTypes "github.com/aws/aws-sdk-go-v2/service/inspector/types"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/findings"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/inspectorapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/s3api"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sesapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
)

type _InspectorFindingsHandler struct {
	apiMgr sdkapimgr.SdkApiMgr
	region string
	now    func() time.Time
}

type InspectorFindingsEvent struct {
	CloudWatchEvent events.CloudWatchEvent
}

type inspectorRunDetail struct {
	RunArn string `json:"run-arn"`
}

func NewInspectorFindingsHandler(cfg aws.Config) (Handler, error) {
	apiMgr, err := newApiMgr(cfg, sdkapimgr.S3Service, sdkapimgr.InspectorService, sdkapimgr.SesService)
	if err != nil {
		return nil, err
	}
	return newInspectorFindingsHandler(apiMgr, cfg.Region), nil
}

func newInspectorFindingsHandler(apiMgr sdkapimgr.SdkApiMgr, region string) *_InspectorFindingsHandler {
	return &_InspectorFindingsHandler{
		apiMgr: apiMgr,
		region: region,
		now:    time.Now,
	}
}

func (h *_InspectorFindingsHandler) Handle(ctx context.Context, params interface{}) (shared.Response, error) {
	event, ok := params.(InspectorFindingsEvent)
	if !ok {
		return shared.Response{}, errors.New("type assertion failure.  event is not type inspector findings event")
	}

	var detail inspectorRunDetail
	if len(event.CloudWatchEvent.Detail) > 0 {
		if err := json.Unmarshal(event.CloudWatchEvent.Detail, &detail); err != nil {
			log.Printf("error parsing event detail : [%v]\n", err)
		}
	}
	if detail.RunArn == "" {
		log.Println("could not extract assessment run arn from event")
		return shared.NewResponse(400, shared.InvalidEventFormatErrMsg), nil
	}
	runRegion, err := shared.ExtractRegionFromARN(detail.RunArn)
	if err != nil {
		log.Printf("invalid assessment run arn : [%v]\n", err)
		return shared.NewResponse(400, shared.InvalidEventFormatErrMsg), nil
	}
	log.Printf("assessment run arn : [%s] region : [%s]\n", detail.RunArn, runRegion)

	reportBucket := shared.GetEnv(shared.EnvReportBucket, "")
	notificationEmail := shared.GetEnv(shared.EnvNotificationEmail, "")
	project, environment := projectAndEnvironment()
	if reportBucket == "" {
		return shared.NewErrorResponse(500, shared.EnvVarsNotSetErrMsg), nil
	}

	inspectorClient, err := sdkapimgr.Get[inspectorapi.InspectorApi](h.apiMgr, h.region, sdkapimgr.InspectorService)
	if err != nil {
		return shared.NewErrorResponse(500, err.Error()), nil
	}
	findingArns, described, err := h.describeRunFindings(ctx, inspectorClient, detail.RunArn)
	if err != nil {
		log.Printf("error retrieving inspector findings : [%v]\n", err)
		return shared.NewErrorResponse(500, "Error retrieving findings: "+err.Error()), nil
	}

	timestamp := h.now().Format(shared.ReportTimestampLayout)
	report := findings.NewInspectorReport(detail.RunArn, timestamp, project, environment, len(findingArns), described)
	log.Printf("severity summary : [%+v]\n", report.SeveritySummary)

	reportKey := shared.ReportKey(shared.SecurityReportsPrefix, project, environment, "inspector", timestamp, "json")
	reportUri := shared.S3Uri(reportBucket, reportKey)
	s3Client, err := sdkapimgr.Get[s3api.S3Api](h.apiMgr, h.region, sdkapimgr.S3Service)
	if err == nil {
		err = s3api.PutJSON(ctx, s3Client, reportBucket, reportKey, report)
	}
	if err != nil {
		log.Printf("error storing report in s3 : [%v]\n", err)
	} else {
		log.Printf("inspector report stored at : [%s]\n", reportUri)
	}

	if report.SeveritySummary.Actionable() && notificationEmail != "" {
		subject, body := findings.InspectorEmail(report, reportUri)
		sesClient, err := sdkapimgr.Get[sesapi.SesApi](h.apiMgr, h.region, sdkapimgr.SesService)
		if err == nil {
			err = sendEmail(ctx, sesClient, notificationEmail, subject, body)
		}
		if err != nil {
			log.Printf("error sending email notification : [%v]\n", err)
		}
	}

	return shared.NewResponse(200, map[string]interface{}{
		"reportPath":    reportUri,
		"findingCounts": report.SeveritySummary,
	}), nil
}

// list every finding arn of the run, then describe them in api sized batches
func (h *_InspectorFindingsHandler) describeRunFindings(ctx context.Context, inspectorClient inspectorapi.InspectorApi, runArn string) ([]string, []inspectorTypes.Finding, error) {
	findingArns := []string{}
	paginator := inspector.NewListFindingsPaginator(inspectorClient, &inspector.ListFindingsInput{
		AssessmentRunArns: []string{runArn},
		MaxResults:        aws.Int32(findings.ListFindingsPageSize),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, nil, err
		}
		findingArns = append(findingArns, page.FindingArns...)
	}
	log.Printf("listed [%d] findings\n", len(findingArns))

	described := []inspectorTypes.Finding{}
	for _, batch := range findings.Chunk(findingArns, findings.DescribeFindingsBatchSize) {
		output, err := inspectorClient.DescribeFindings(ctx, &inspector.DescribeFindingsInput{
			FindingArns: batch,
		})
		if err != nil {
			return nil, nil, err
		}
		described = append(described, output.Findings...)
	}
	return findingArns, described, nil
}
