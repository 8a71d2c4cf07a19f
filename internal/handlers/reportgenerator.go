package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cloudwatchTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"golang.org/x/sync/errgroup"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/cache"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/cloudwatchapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/findings"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/reporting"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/s3api"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
)

// every metric in the report is read as one datapoint per day
const dailyPeriodSeconds = 86400

type _ReportGeneratorHandler struct {
	apiMgr      sdkapimgr.SdkApiMgr
	region      string
	reportCache cache.ReportCache
	now         func() time.Time
}

type ReportGeneratorEvent struct {
	ReportType string `json:"reportType"`
}

func NewReportGeneratorHandler(cfg aws.Config) (Handler, error) {
	apiMgr, err := newApiMgr(cfg, sdkapimgr.S3Service, sdkapimgr.CloudWatchService)
	if err != nil {
		return nil, err
	}
	return newReportGeneratorHandler(apiMgr, cfg.Region), nil
}

// the report cache lives as long as the handler, so a warm lambda reuses it
func newReportGeneratorHandler(apiMgr sdkapimgr.SdkApiMgr, region string) *_ReportGeneratorHandler {
	return &_ReportGeneratorHandler{
		apiMgr:      apiMgr,
		region:      region,
		reportCache: cache.NewReportCache(),
		now:         time.Now,
	}
}

// reportWindow is what every section collector needs
type reportWindow struct {
	bucket      string
	project     string
	environment string
	start       time.Time
	end         time.Time
}

func (h *_ReportGeneratorHandler) Handle(ctx context.Context, params interface{}) (shared.Response, error) {
	event, ok := params.(ReportGeneratorEvent)
	if !ok {
		return shared.Response{}, errors.New("type assertion failure.  event is not type report generator event")
	}

	reportsBucket := shared.GetEnv(shared.EnvReportsBucket, "")
	project, environment := projectAndEnvironment()
	if reportsBucket == "" {
		return shared.NewErrorResponse(500, shared.EnvVarsNotSetErrMsg), nil
	}
	reportType := strings.ToLower(strings.TrimSpace(event.ReportType))
	if reportType == "" {
		reportType = reporting.ReportTypeWeekly
	}

	now := h.now()
	start, end := reporting.TimeRange(reportType, now.UTC())
	window := reportWindow{
		bucket:      reportsBucket,
		project:     project,
		environment: environment,
		start:       start,
		end:         end,
	}
	log.Printf("generating [%s] report for [%s] [%s] from [%s] to [%s]\n", reportType, project, environment, start, end)

	sections := h.collectSections(ctx, window)
	report := reporting.NewReport(reportType, project, environment, start, end, sections)
	log.Printf("overall score : [%.1f] health : [%s]\n", report.ExecutiveSummary.OverallScore, report.ExecutiveSummary.HealthStatus)

	s3Client, err := sdkapimgr.Get[s3api.S3Api](h.apiMgr, h.region, sdkapimgr.S3Service)
	if err != nil {
		return shared.NewErrorResponse(500, err.Error()), nil
	}
	timestamp := now.Format(shared.ReportTimestampLayout)
	jsonKey := shared.ReportKey(shared.ReportsPrefix, project, environment, reportType+"-report", timestamp, "json")
	if err := s3api.PutJSON(ctx, s3Client, reportsBucket, jsonKey, report); err != nil {
		log.Printf("error storing report : [%v]\n", err)
		return shared.NewErrorResponse(500, err.Error()), nil
	}

	pdf, err := reporting.RenderPDF(report)
	if err != nil {
		log.Printf("error rendering pdf : [%v]\n", err)
		return shared.NewErrorResponse(500, err.Error()), nil
	}
	pdfKey := shared.ReportKey(shared.ReportsPrefix, project, environment, reportType+"-report", timestamp, "pdf")
	if err := s3api.PutBytes(ctx, s3Client, reportsBucket, pdfKey, shared.ContentTypePdf, pdf); err != nil {
		log.Printf("error storing pdf report : [%v]\n", err)
		return shared.NewErrorResponse(500, err.Error()), nil
	}
	log.Printf("report cache hits : [%d] misses : [%d]\n", h.reportCache.GetCacheHits(), h.reportCache.GetCacheMisses())

	return shared.NewResponse(200, map[string]interface{}{
		"message":        fmt.Sprintf("%s report generated successfully", shared.Title(reportType)),
		"jsonReportPath": shared.S3Uri(reportsBucket, jsonKey),
		"pdfReportPath":  shared.S3Uri(reportsBucket, pdfKey),
	}), nil
}

// gather the four sections concurrently. a failed section is recorded in
// Errors and leaves the others untouched.
func (h *_ReportGeneratorHandler) collectSections(ctx context.Context, window reportWindow) reporting.Sections {
	sections := reporting.Sections{Errors: map[string]string{}}
	var mu sync.Mutex
	fail := func(name string, err error) {
		log.Printf("error collecting [%s] section : [%v]\n", name, err)
		mu.Lock()
		defer mu.Unlock()
		sections.Errors[name] = err.Error()
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		section, err := h.securitySection(groupCtx, window)
		if err != nil {
			fail(reporting.SectionSecurity, err)
			return nil
		}
		sections.Security = &section
		return nil
	})
	group.Go(func() error {
		section, err := h.functionalitySection(groupCtx, window)
		if err != nil {
			fail(reporting.SectionFunctionality, err)
			return nil
		}
		sections.Functionality = &section
		return nil
	})
	group.Go(func() error {
		section, err := h.architectureSection(groupCtx, window)
		if err != nil {
			fail(reporting.SectionArchitecture, err)
			return nil
		}
		sections.Architecture = &section
		return nil
	})
	group.Go(func() error {
		section, err := h.observabilitySection(groupCtx, window)
		if err != nil {
			fail(reporting.SectionObservability, err)
			return nil
		}
		sections.Observability = &section
		return nil
	})
	_ = group.Wait()
	return sections
}

func (h *_ReportGeneratorHandler) securitySection(ctx context.Context, window reportWindow) (reporting.SecuritySection, error) {
	s3Client, err := sdkapimgr.Get[s3api.S3Api](h.apiMgr, h.region, sdkapimgr.S3Service)
	if err != nil {
		return reporting.SecuritySection{}, err
	}
	prefix := shared.ReportPrefix(shared.SecurityReportsPrefix, window.project, window.environment)
	objects, err := s3api.ListObjects(ctx, s3Client, window.bucket, prefix)
	if err != nil {
		return reporting.SecuritySection{}, err
	}

	summary := findings.SeveritySummary{}
	reportCount := 0
	for _, object := range objects {
		if !strings.HasSuffix(object.Key, ".json") || !reporting.InRange(object.LastModified, window.start, window.end) {
			continue
		}
		doc, err := h.reportCache.GetOrLoad(cache.ReportCacheKey{Bucket: window.bucket, Key: object.Key}, func() (cache.ReportDocument, error) {
			content, err := s3api.GetBytes(ctx, s3Client, window.bucket, object.Key)
			if err != nil {
				return cache.ReportDocument{}, err
			}
			decoded := map[string]interface{}{}
			if err := json.Unmarshal(content, &decoded); err != nil {
				return cache.ReportDocument{}, fmt.Errorf("failed to decode %s: %w", object.Key, err)
			}
			return cache.ReportDocument{Content: decoded, LastModified: object.LastModified}, nil
		})
		if err != nil {
			log.Printf("skipping security report [%s] : [%v]\n", object.Key, err)
			continue
		}
		reportCount++
		summary.Merge(severityOfDocument(doc.Content))
	}
	return reporting.NewSecuritySection(reportCount, summary), nil
}

// inspector reports carry a severitySummary, guardduty reports a severityCategory
func severityOfDocument(content map[string]interface{}) findings.SeveritySummary {
	summary := findings.SeveritySummary{}
	if counts, ok := content["severitySummary"].(map[string]interface{}); ok {
		count := func(name string) int {
			value, _ := counts[name].(float64)
			return int(value)
		}
		summary.High = count("High")
		summary.Medium = count("Medium")
		summary.Low = count("Low")
		summary.Informational = count("Informational")
		return summary
	}
	if category, ok := content["severityCategory"].(string); ok {
		summary.AddCategory(category)
	}
	return summary
}

func (h *_ReportGeneratorHandler) functionalitySection(ctx context.Context, window reportWindow) (reporting.FunctionalitySection, error) {
	datapoints, err := h.metricDatapoints(ctx, syntheticsNamespace, "SuccessPercent", window, dailyPeriodSeconds,
		[]cloudwatchTypes.Dimension{
			{Name: aws.String("Environment"), Value: aws.String(window.environment)},
			{Name: aws.String("Project"), Value: aws.String(window.project)},
		},
		cloudwatchTypes.StatisticAverage, cloudwatchTypes.StatisticMinimum)
	if err != nil {
		return reporting.FunctionalitySection{}, err
	}
	averages := []float64{}
	minimums := []float64{}
	for _, datapoint := range datapoints {
		averages = append(averages, aws.ToFloat64(datapoint.Average))
		if datapoint.Minimum != nil {
			minimums = append(minimums, *datapoint.Minimum)
		}
	}
	return reporting.NewFunctionalitySection(averages, minimums), nil
}

func (h *_ReportGeneratorHandler) architectureSection(ctx context.Context, window reportWindow) (reporting.ArchitectureSection, error) {
	s3Client, err := sdkapimgr.Get[s3api.S3Api](h.apiMgr, h.region, sdkapimgr.S3Service)
	if err != nil {
		return reporting.ArchitectureSection{}, err
	}
	prefix := shared.ReportPrefix(shared.ArchitectureReportsPrefix, window.project, window.environment)
	objects, err := s3api.ListObjects(ctx, s3Client, window.bucket, prefix)
	if err != nil {
		return reporting.ArchitectureSection{}, err
	}
	section := reporting.ArchitectureSection{}
	var latest time.Time
	for _, object := range objects {
		if !reporting.InRange(object.LastModified, window.start, window.end) {
			continue
		}
		section.ReportCount++
		if object.LastModified.After(latest) {
			latest = object.LastModified
		}
	}
	if !latest.IsZero() {
		timestamp := latest.UTC().Format(time.RFC3339)
		section.LastReportTimestamp = &timestamp
	}
	return section, nil
}

func (h *_ReportGeneratorHandler) observabilitySection(ctx context.Context, window reportWindow) (reporting.ObservabilitySection, error) {
	namespace := "XRayInsights/" + window.project + "/" + window.environment
	section := reporting.ObservabilitySection{}
	targets := []struct {
		metricName string
		value      *float64
	}{
		{"AverageResponseTime", &section.AverageResponseTime},
		{"P95ResponseTime", &section.P95ResponseTime},
		{"ErrorRate", &section.ErrorRate},
	}
	for _, target := range targets {
		datapoints, err := h.metricDatapoints(ctx, namespace, target.metricName, window, dailyPeriodSeconds, nil, cloudwatchTypes.StatisticAverage)
		if err != nil {
			return reporting.ObservabilitySection{}, err
		}
		values := make([]float64, 0, len(datapoints))
		for _, datapoint := range datapoints {
			values = append(values, aws.ToFloat64(datapoint.Average))
		}
		*target.value = reporting.Average(values)
	}
	return section, nil
}

func (h *_ReportGeneratorHandler) metricDatapoints(ctx context.Context, namespace, metricName string, window reportWindow, period int32, dimensions []cloudwatchTypes.Dimension, statistics ...cloudwatchTypes.Statistic) ([]cloudwatchTypes.Datapoint, error) {
	cloudwatchClient, err := sdkapimgr.Get[cloudwatchapi.CloudWatchApi](h.apiMgr, h.region, sdkapimgr.CloudWatchService)
	if err != nil {
		return nil, err
	}
	output, err := cloudwatchClient.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(namespace),
		MetricName: aws.String(metricName),
		Dimensions: dimensions,
		StartTime:  aws.Time(window.start),
		EndTime:    aws.Time(window.end),
		Period:     aws.Int32(period),
		Statistics: statistics,
	})
	if err != nil {
		return nil, err
	}
	return output.Datapoints, nil
}
