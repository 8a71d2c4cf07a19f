package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	route53Types "github.com/aws/aws-sdk-go-v2/service/route53/types"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/probe"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/reporting"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/route53api"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/snsapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/worker"
)

const (
	failoverComment        = "Automated failover test to DR"
	failbackComment        = "Automated failback to primary region"
	defaultHealthCheckPath = "/health"

	dnsPropagationWait = 60 * time.Second
	changePollInterval = 5 * time.Second
	maxChangePolls     = 24
)

var (
	failoverStepHeaders = []string{"step", "status", "timestamp", "details"}

	failoverMessages = map[string]string{
		shared.StatusSuccess:        "Monthly DR failover test completed successfully",
		shared.StatusPartialSuccess: "Monthly DR failover test completed with some issues",
		shared.StatusFailure:        "Monthly DR failover test encountered errors",
	}
)

type _FailoverTestHandler struct {
	apiMgr             sdkapimgr.SdkApiMgr
	region             string
	healthChecker      probe.HealthChecker
	now                func() time.Time
	sleep              func(ctx context.Context, d time.Duration) error
	propagationWait    time.Duration
	changePollInterval time.Duration
	maxChangePolls     int
}

// FailoverTestEvent is the monthly schedule event
type FailoverTestEvent struct {
	Payload map[string]interface{}
}

type FailoverStep struct {
	Step      string `json:"step"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Details   string `json:"details,omitempty"`
}

type FailoverTestResults struct {
	StartTime       string         `json:"start_time"`
	TestId          string         `json:"test_id"`
	Steps           []FailoverStep `json:"steps"`
	OverallStatus   string         `json:"overall_status"`
	EndTime         string         `json:"end_time,omitempty"`
	DurationSeconds float64        `json:"duration_seconds,omitempty"`
	Error           string         `json:"error,omitempty"`
}

type failoverNotification struct {
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Details FailoverTestResults `json:"details"`
}

type failoverConfig struct {
	primaryRegion   string
	drRegion        string
	domainName      string
	healthCheckPath string
	hostedZoneId    string
	primaryEndpoint string
	drEndpoint      string
	topicArn        string
	resultsBucket   string
}

func NewFailoverTestHandler(cfg aws.Config) (Handler, error) {
	apiMgr, err := newApiMgr(cfg, sdkapimgr.Route53Service, sdkapimgr.SnsService, sdkapimgr.S3Service)
	if err != nil {
		return nil, err
	}
	return newFailoverTestHandler(apiMgr, cfg.Region, probe.NewHTTPHealthChecker(probe.DefaultTimeout)), nil
}

func newFailoverTestHandler(apiMgr sdkapimgr.SdkApiMgr, region string, healthChecker probe.HealthChecker) *_FailoverTestHandler {
	return &_FailoverTestHandler{
		apiMgr:             apiMgr,
		region:             region,
		healthChecker:      healthChecker,
		now:                time.Now,
		sleep:              sleepContext,
		propagationWait:    dnsPropagationWait,
		changePollInterval: changePollInterval,
		maxChangePolls:     maxChangePolls,
	}
}

func loadFailoverConfig() (failoverConfig, bool) {
	config := failoverConfig{
		primaryRegion:   shared.GetEnv(shared.EnvPrimaryRegion, ""),
		drRegion:        shared.GetEnv(shared.EnvDrRegion, ""),
		domainName:      shared.GetEnv(shared.EnvDomainName, ""),
		healthCheckPath: shared.GetEnv(shared.EnvHealthCheckPath, defaultHealthCheckPath),
		hostedZoneId:    shared.GetEnv(shared.EnvRoute53HostedZoneId, ""),
		primaryEndpoint: shared.GetEnv(shared.EnvPrimaryEndpoint, ""),
		drEndpoint:      shared.GetEnv(shared.EnvDrEndpoint, ""),
		topicArn:        shared.GetEnv(shared.EnvSnsTopicArn, ""),
		resultsBucket:   shared.GetEnv(shared.EnvResultsBucket, ""),
	}
	for _, required := range []string{config.domainName, config.primaryEndpoint, config.drEndpoint} {
		if required == "" {
			return config, false
		}
	}
	return config, shared.IsValidHostedZoneId(config.hostedZoneId) && shared.IsValidSnsTopicArn(config.topicArn)
}

func (h *_FailoverTestHandler) Handle(ctx context.Context, params interface{}) (shared.Response, error) {
	_, ok := params.(FailoverTestEvent)
	if !ok {
		return shared.Response{}, errors.New("type assertion failure.  event is not type failover test event")
	}

	config, ok := loadFailoverConfig()
	if !ok {
		return shared.NewErrorResponse(500, shared.EnvVarsNotSetErrMsg), nil
	}
	route53Client, err := sdkapimgr.Get[route53api.Route53Api](h.apiMgr, h.region, sdkapimgr.Route53Service)
	if err != nil {
		return shared.NewErrorResponse(500, err.Error()), nil
	}
	snsClient, err := sdkapimgr.Get[snsapi.SnsApi](h.apiMgr, h.region, sdkapimgr.SnsService)
	if err != nil {
		return shared.NewErrorResponse(500, err.Error()), nil
	}

	start := h.now()
	test := &failoverTest{
		handler: h,
		config:  config,
		route53: route53Client,
		sns:     snsClient,
		start:   start,
		results: FailoverTestResults{
			StartTime:     start.Format(shared.DisplayTimestampLayout),
			TestId:        fmt.Sprintf("failover-test-%d", start.Unix()),
			Steps:         []FailoverStep{},
			OverallStatus: shared.StatusStarted,
		},
	}
	log.Printf("starting failover test [%s] : primary [%s] dr [%s]\n", test.results.TestId, config.primaryRegion, config.drRegion)

	if err := test.run(ctx); err != nil {
		test.abort(ctx, err)
	}
	log.Printf("failover test [%s] finished with status [%s]\n", test.results.TestId, test.results.OverallStatus)

	if config.resultsBucket != "" {
		project, environment := projectAndEnvironment()
		if err := h.writeSteps(ctx, config.resultsBucket, project, environment, test.results); err != nil {
			log.Printf("error writing failover steps : [%v]\n", err)
		}
	}
	return shared.NewResponse(200, test.results), nil
}

// write the steps as <test id>.csv through a csv worker
func (h *_FailoverTestHandler) writeSteps(ctx context.Context, bucket, project, environment string, results FailoverTestResults) error {
	requestChan := make(chan interface{}, len(results.Steps))
	errorChan := make(chan error, 1)
	collector := worker.NewErrorCollector(errorChan)
	wg := new(sync.WaitGroup)
	csvWorker, err := worker.NewCSVWorker(worker.CsvWorkerConfig{
		Region: h.region,
		WorkerConfig: worker.WorkerConfig{
			Ctx:          ctx,
			Id:           results.TestId,
			Wg:           wg,
			RequestChan:  requestChan,
			ErrorChan:    errorChan,
			SdkClientMgr: h.apiMgr,
		},
		OutputConfig: worker.OutputConfiguration{
			Headers:    failoverStepHeaders,
			Filename:   results.TestId + ".csv",
			Prefix:     shared.ReportPrefix(shared.FailoverTestsPrefix, project, environment),
			BucketName: bucket,
			Writes3:    true,
		},
	})
	if err != nil {
		close(errorChan)
		collector.Wait()
		return err
	}
	for _, step := range results.Steps {
		requestChan <- worker.CsvWorkerRequest{CsvRecord: []string{step.Step, step.Status, step.Timestamp, step.Details}}
	}
	close(requestChan)
	wg.Wait()
	close(errorChan)
	if errs := collector.Wait(); len(errs) > 0 {
		return errors.Join(errs...)
	}
	log.Printf("failover steps written to [%s]\n", shared.S3Uri(bucket, csvWorker.ObjectKey()))
	return nil
}

// failoverTest is the state of one run
type failoverTest struct {
	handler    *_FailoverTestHandler
	config     failoverConfig
	route53    route53api.Route53Api
	sns        snsapi.SnsApi
	start      time.Time
	original   *route53Types.ResourceRecordSet
	failedOver bool
	failedBack bool
	results    FailoverTestResults
}

// run executes the sequence. a returned error is unexpected and ends the test in ERROR,
// expected outcomes are recorded in results.
func (f *failoverTest) run(ctx context.Context) error {
	primaryURL := probe.EndpointURL(f.config.primaryEndpoint, f.config.healthCheckPath)
	drURL := probe.EndpointURL(f.config.drEndpoint, f.config.healthCheckPath)

	f.begin("Check primary region health")
	primaryHealthy := f.handler.healthChecker.Healthy(ctx, primaryURL)
	f.end(stepStatus(primaryHealthy), fmt.Sprintf("Primary endpoint %s healthy", isOrNot(primaryHealthy)))

	f.begin("Check DR region readiness")
	drReady := f.handler.healthChecker.Healthy(ctx, drURL)
	f.end(stepStatus(drReady), fmt.Sprintf("DR endpoint %s ready", isOrNot(drReady)))

	if !primaryHealthy {
		f.note("Primary region not healthy - skipping failover test", shared.StatusWarning)
		f.notify(ctx, shared.StatusFailure, "Failover test skipped - primary region not healthy")
		f.results.OverallStatus = shared.StatusSkipped
		return nil
	}
	if !drReady {
		f.note("DR region not ready - skipping failover test", shared.StatusWarning)
		f.notify(ctx, shared.StatusFailure, "Failover test skipped - DR region not ready")
		f.results.OverallStatus = shared.StatusSkipped
		return nil
	}

	f.begin("Initiate failover to DR region")
	original, err := f.currentRecord(ctx)
	if err != nil {
		return err
	}
	f.original = original
	changeId, err := f.change(ctx, failoverComment, f.aliasRecord(f.config.drEndpoint))
	if err != nil {
		log.Printf("failover to dr failed : [%v]\n", err)
		f.end(shared.StatusFailure, "Route 53 failover to DR region failed: "+err.Error())
		f.note("Failover to DR failed - ending test", shared.StatusFailure)
		f.notify(ctx, shared.StatusFailure, "Failover to DR region failed")
		f.results.OverallStatus = shared.StatusFailure
		return nil
	}
	f.failedOver = true
	f.end(shared.StatusSuccess, "Route 53 failover to DR region completed")

	if err := f.waitForPropagation(ctx, "Wait for DNS propagation", changeId); err != nil {
		return err
	}

	f.begin("Verify application is accessible from DR region")
	drServing := f.handler.healthChecker.Healthy(ctx, drURL)
	f.end(stepStatus(drServing), fmt.Sprintf("DR region %s serving traffic", isOrNot(drServing)))
	if !drServing {
		f.note("DR region not serving traffic - failback required", shared.StatusWarning)
	}

	f.begin("Initiate failback to primary region")
	changeId, err = f.failback(ctx)
	if err != nil {
		log.Printf("failback to primary failed : [%v]\n", err)
		f.end(shared.StatusFailure, "Route 53 failback to primary region failed: "+err.Error())
		f.note("Failback to primary failed - manual intervention required", shared.StatusFailure)
		f.notify(ctx, shared.StatusFailure, "Failback to primary region failed - URGENT: Manual intervention required")
		f.results.OverallStatus = shared.StatusFailure
		return nil
	}
	f.end(shared.StatusSuccess, "Route 53 failback to primary region completed")

	if err := f.waitForPropagation(ctx, "Wait for DNS propagation (failback)", changeId); err != nil {
		return err
	}

	f.begin("Verify application is accessible from primary region")
	primaryServing := f.handler.healthChecker.Healthy(ctx, primaryURL)
	f.end(stepStatus(primaryServing), fmt.Sprintf("Primary region %s serving traffic", isOrNot(primaryServing)))

	end := f.handler.now()
	duration := end.Sub(f.start).Seconds()
	f.results.EndTime = end.Format(shared.DisplayTimestampLayout)
	f.results.DurationSeconds = duration

	if f.allSucceeded() {
		f.results.OverallStatus = shared.StatusSuccess
		f.notify(ctx, shared.StatusSuccess, fmt.Sprintf("Failover test completed successfully in %.2f seconds", duration))
		return nil
	}
	f.results.OverallStatus = shared.StatusPartialSuccess
	f.notify(ctx, shared.StatusPartialSuccess, fmt.Sprintf("Failover test completed with some issues in %.2f seconds", duration))
	return nil
}

// abort ends the test in ERROR. dns still pointing at dr is restored first.
func (f *failoverTest) abort(ctx context.Context, err error) {
	log.Printf("error during failover test : [%v]\n", err)
	ctx = context.WithoutCancel(ctx)
	if f.failedOver && !f.failedBack {
		f.begin("Restore primary region after error")
		if _, failbackErr := f.failback(ctx); failbackErr != nil {
			log.Printf("failback after error failed : [%v]\n", failbackErr)
			f.end(shared.StatusFailure, "Route 53 failback to primary region failed: "+failbackErr.Error())
		} else {
			f.end(shared.StatusSuccess, "Route 53 failback to primary region completed")
		}
	}
	f.results.OverallStatus = shared.StatusError
	f.results.Error = err.Error()
	f.notify(ctx, shared.StatusFailure, "Error during failover test: "+err.Error())
}

func (f *failoverTest) begin(step string) {
	f.note(step, shared.StatusStarted)
}

func (f *failoverTest) note(step, status string) {
	f.results.Steps = append(f.results.Steps, FailoverStep{
		Step:      step,
		Status:    status,
		Timestamp: f.handler.now().Format(shared.DisplayTimestampLayout),
	})
}

// end completes the last step
func (f *failoverTest) end(status, details string) {
	last := &f.results.Steps[len(f.results.Steps)-1]
	last.Status = status
	last.Details = details
}

func (f *failoverTest) allSucceeded() bool {
	for _, step := range f.results.Steps {
		if step.Status != shared.StatusSuccess && step.Status != shared.StatusStarted {
			return false
		}
	}
	return true
}

// currentRecord returns the A record for the domain, nil when the zone has none
func (f *failoverTest) currentRecord(ctx context.Context) (*route53Types.ResourceRecordSet, error) {
	output, err := f.route53.ListResourceRecordSets(ctx, &route53.ListResourceRecordSetsInput{
		HostedZoneId:    aws.String(f.config.hostedZoneId),
		StartRecordName: aws.String(f.config.domainName),
		StartRecordType: route53Types.RRTypeA,
		MaxItems:        aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	for _, record := range output.ResourceRecordSets {
		if record.Type == route53Types.RRTypeA && sameRecordName(aws.ToString(record.Name), f.config.domainName) {
			return &record, nil
		}
	}
	log.Printf("no A record found for [%s]\n", f.config.domainName)
	return nil, nil
}

// route53 returns fully qualified names with a trailing dot
func sameRecordName(a, b string) bool {
	return strings.EqualFold(strings.TrimSuffix(a, "."), strings.TrimSuffix(b, "."))
}

func (f *failoverTest) aliasRecord(endpoint string) route53Types.ResourceRecordSet {
	return route53Types.ResourceRecordSet{
		Name: aws.String(f.config.domainName),
		Type: route53Types.RRTypeA,
		AliasTarget: &route53Types.AliasTarget{
			HostedZoneId:         aws.String(f.config.hostedZoneId),
			DNSName:              aws.String(endpoint),
			EvaluateTargetHealth: true,
		},
	}
}

// failback restores the captured record, or aliases the primary endpoint
func (f *failoverTest) failback(ctx context.Context) (string, error) {
	record := f.aliasRecord(f.config.primaryEndpoint)
	if f.original != nil {
		record = *f.original
	}
	changeId, err := f.change(ctx, failbackComment, record)
	if err != nil {
		return "", err
	}
	f.failedBack = true
	return changeId, nil
}

// upsert record and return the change id
func (f *failoverTest) change(ctx context.Context, comment string, record route53Types.ResourceRecordSet) (string, error) {
	output, err := f.route53.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(f.config.hostedZoneId),
		ChangeBatch: &route53Types.ChangeBatch{
			Comment: aws.String(comment),
			Changes: []route53Types.Change{
				{
					Action:            route53Types.ChangeActionUpsert,
					ResourceRecordSet: &record,
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if output.ChangeInfo == nil {
		return "", nil
	}
	return aws.ToString(output.ChangeInfo.Id), nil
}

// waitForPropagation polls the change until INSYNC, then waits for resolvers to catch up
func (f *failoverTest) waitForPropagation(ctx context.Context, step, changeId string) error {
	f.begin(step)
	status, err := f.waitForChange(ctx, changeId)
	if err != nil {
		return err
	}
	if err := f.handler.sleep(ctx, f.handler.propagationWait); err != nil {
		return err
	}
	f.end(shared.StatusSuccess, fmt.Sprintf("DNS change %s. Waited %.0f seconds for DNS propagation", status, f.handler.propagationWait.Seconds()))
	return nil
}

// waitForChange returns the last change status seen. polling gives up after
// maxChangePolls and GetChange errors are only logged.
func (f *failoverTest) waitForChange(ctx context.Context, changeId string) (string, error) {
	status := string(route53Types.ChangeStatusPending)
	if changeId == "" {
		return status, nil
	}
	for poll := 0; poll < f.handler.maxChangePolls; poll++ {
		output, err := f.route53.GetChange(ctx, &route53.GetChangeInput{Id: aws.String(changeId)})
		if err != nil {
			log.Printf("error polling change [%s] : [%v]\n", changeId, err)
			return status, nil
		}
		if output.ChangeInfo != nil {
			status = string(output.ChangeInfo.Status)
			if output.ChangeInfo.Status == route53Types.ChangeStatusInsync {
				return status, nil
			}
		}
		if err := f.handler.sleep(ctx, f.handler.changePollInterval); err != nil {
			return status, err
		}
	}
	log.Printf("change [%s] still [%s] after [%d] polls\n", changeId, status, f.handler.maxChangePolls)
	return status, nil
}

// notify publishes {status, message, details}. failures are logged.
func (f *failoverTest) notify(ctx context.Context, status, subject string) {
	notification := failoverNotification{
		Status:  status,
		Message: failoverMessages[status],
		Details: f.results,
	}
	if err := publishJSON(ctx, f.sns, f.config.topicArn, shared.TruncateString(subject, reporting.MaxSubjectLength), notification); err != nil {
		log.Printf("error sending [%s] notification : [%v]\n", status, err)
	}
}

func stepStatus(ok bool) string {
	if ok {
		return shared.StatusSuccess
	}
	return shared.StatusFailure
}

func isOrNot(ok bool) string {
	if ok {
		return "is"
	}
	return "is not"
}
