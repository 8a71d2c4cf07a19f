package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/guardduty"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/findings"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/guarddutyapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/s3api"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sesapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
)

type _GuardDutyFindingsHandler struct {
	apiMgr sdkapimgr.SdkApiMgr
	region string
	now    func() time.Time
}

type GuardDutyFindingsEvent struct {
	CloudWatchEvent events.CloudWatchEvent
}

func NewGuardDutyFindingsHandler(cfg aws.Config) (Handler, error) {
	apiMgr, err := newApiMgr(cfg, sdkapimgr.S3Service, sdkapimgr.GuardDutyService, sdkapimgr.SesService)
	if err != nil {
		return nil, err
	}
	return newGuardDutyFindingsHandler(apiMgr, cfg.Region), nil
}

func newGuardDutyFindingsHandler(apiMgr sdkapimgr.SdkApiMgr, region string) *_GuardDutyFindingsHandler {
	return &_GuardDutyFindingsHandler{
		apiMgr: apiMgr,
		region: region,
		now:    time.Now,
	}
}

func (h *_GuardDutyFindingsHandler) Handle(ctx context.Context, params interface{}) (shared.Response, error) {
	event, ok := params.(GuardDutyFindingsEvent)
	if !ok {
		return shared.Response{}, errors.New("type assertion failure.  event is not type guardduty findings event")
	}

	finding, err := findings.ParseGuardDutyDetail(event.CloudWatchEvent.Detail)
	if err != nil {
		log.Printf("invalid guardduty event : [%v]\n", err)
		return shared.NewResponse(400, shared.InvalidEventFormatErrMsg), nil
	}
	log.Printf("guardduty finding : [%s] type : [%s]\n", finding.Id, finding.Type)

	reportBucket := shared.GetEnv(shared.EnvReportBucket, "")
	notificationEmail := shared.GetEnv(shared.EnvNotificationEmail, "")
	project, environment := projectAndEnvironment()
	if reportBucket == "" {
		return shared.NewErrorResponse(500, shared.EnvVarsNotSetErrMsg), nil
	}

	if finding.NeedsEnrichment() {
		if err := h.enrich(ctx, &finding); err != nil {
			log.Printf("error fetching finding [%s] from guardduty : [%v]\n", finding.Id, err)
		}
	}

	timestamp := h.now().Format(shared.ReportTimestampLayout)
	report := findings.NewGuardDutyReport(finding, timestamp, project, environment)
	log.Printf("severity : [%v] category : [%s]\n", report.Severity, report.SeverityCategory)

	reportKey := shared.ReportKey(shared.SecurityReportsPrefix, project, environment, "guardduty", timestamp, "json")
	reportUri := shared.S3Uri(reportBucket, reportKey)
	s3Client, err := sdkapimgr.Get[s3api.S3Api](h.apiMgr, h.region, sdkapimgr.S3Service)
	if err != nil {
		return shared.NewErrorResponse(500, err.Error()), nil
	}
	if err := s3api.PutJSON(ctx, s3Client, reportBucket, reportKey, report); err != nil {
		log.Printf("error storing guardduty report : [%v]\n", err)
		return shared.NewErrorResponse(500, err.Error()), nil
	}
	log.Printf("guardduty report stored at : [%s]\n", reportUri)

	if finding.Actionable() && notificationEmail != "" {
		subject, body := findings.GuardDutyEmail(report, finding.ResourceType(), reportUri)
		sesClient, err := sdkapimgr.Get[sesapi.SesApi](h.apiMgr, h.region, sdkapimgr.SesService)
		if err == nil {
			err = sendEmail(ctx, sesClient, notificationEmail, subject, body)
		}
		if err != nil {
			log.Printf("error sending email notification : [%v]\n", err)
		}
	}

	return shared.NewResponse(200, map[string]interface{}{
		"reportPath": reportUri,
		"findingId":  report.FindingId,
		"severity":   report.SeverityCategory,
	}), nil
}

// events that only carry ids are filled in from guardduty
func (h *_GuardDutyFindingsHandler) enrich(ctx context.Context, finding *findings.GuardDutyFinding) error {
	guardDutyClient, err := sdkapimgr.Get[guarddutyapi.GuardDutyApi](h.apiMgr, h.region, sdkapimgr.GuardDutyService)
	if err != nil {
		return err
	}
	output, err := guardDutyClient.GetFindings(ctx, &guardduty.GetFindingsInput{
		DetectorId: aws.String(finding.DetectorId),
		FindingIds: []string{finding.Id},
	})
	if err != nil {
		return err
	}
	if len(output.Findings) == 0 {
		return errors.New("finding not found")
	}
	finding.Enrich(output.Findings[0])
	return nil
}
