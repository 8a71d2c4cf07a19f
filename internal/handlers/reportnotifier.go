package handlers

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/reporting"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/s3api"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/snsapi"
)

const s3EventSource = "aws:s3"

type _ReportNotifierHandler struct {
	apiMgr sdkapimgr.SdkApiMgr
	region string
}

type ReportNotifierEvent struct {
	S3Event events.S3Event
}

func NewReportNotifierHandler(cfg aws.Config) (Handler, error) {
	apiMgr, err := newApiMgr(cfg, sdkapimgr.S3Service, sdkapimgr.SnsService)
	if err != nil {
		return nil, err
	}
	return newReportNotifierHandler(apiMgr, cfg.Region), nil
}

func newReportNotifierHandler(apiMgr sdkapimgr.SdkApiMgr, region string) *_ReportNotifierHandler {
	return &_ReportNotifierHandler{
		apiMgr: apiMgr,
		region: region,
	}
}

func (h *_ReportNotifierHandler) Handle(ctx context.Context, params interface{}) (shared.Response, error) {
	event, ok := params.(ReportNotifierEvent)
	if !ok {
		return shared.Response{}, errors.New("type assertion failure.  event is not type report notifier event")
	}
	if len(event.S3Event.Records) == 0 {
		log.Println("no records in s3 event")
		return shared.NewResponse(400, shared.InvalidEventFormatErrMsg), nil
	}

	topicArn := shared.GetEnv(shared.EnvSnsTopicArn, "")
	project, environment := projectAndEnvironment()
	if topicArn == "" {
		return shared.NewErrorResponse(500, shared.EnvVarsNotSetErrMsg), nil
	}
	s3Client, err := sdkapimgr.Get[s3api.S3Api](h.apiMgr, h.region, sdkapimgr.S3Service)
	if err != nil {
		return shared.NewErrorResponse(500, err.Error()), nil
	}
	snsClient, err := sdkapimgr.Get[snsapi.SnsApi](h.apiMgr, h.region, sdkapimgr.SnsService)
	if err != nil {
		return shared.NewErrorResponse(500, err.Error()), nil
	}

	for _, record := range event.S3Event.Records {
		if record.EventSource != s3EventSource {
			log.Printf("skipping record from [%s]\n", record.EventSource)
			continue
		}
		bucket := record.S3.Bucket.Name
		key := objectKey(record.S3.Object)
		reportType, ok := reporting.ReportTypeOfKey(key)
		if !ok {
			log.Printf("skipping key [%s] : not a generated report\n", key)
			continue
		}

		// missing metadata still gets a notification, with size 0 and an unknown date
		object := reporting.ReportObject{Bucket: bucket, Key: key}
		head, err := s3Client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			log.Printf("warning : error reading metadata for [%s] : [%v]\n", key, err)
		} else {
			object.Size = aws.ToInt64(head.ContentLength)
			object.LastModified = head.LastModified
		}

		subject := reporting.NotificationSubject(reportType, project, environment)
		message := reporting.NotificationMessage(reportType, project, environment, object)
		if err := publish(ctx, snsClient, topicArn, subject, message); err != nil {
			log.Printf("error publishing notification for [%s] : [%v]\n", key, err)
			continue
		}
		log.Printf("sent [%s] report notification for [%s]\n", reportType, key)
	}

	return shared.NewResponse(200, "Notification(s) sent successfully"), nil
}

// s3 event keys are url encoded, spaces arrive as '+'
func objectKey(object events.S3Object) string {
	if object.URLDecodedKey != "" {
		return object.URLDecodedKey
	}
	key, err := url.QueryUnescape(object.Key)
	if err != nil {
		return strings.ReplaceAll(object.Key, "+", " ")
	}
	return key
}
