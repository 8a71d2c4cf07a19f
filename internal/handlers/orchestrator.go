package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/guardduty"
	"github.com/aws/aws-sdk-go-v2/service/inspector"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdaTypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/aws-sdk-go-v2/service/synthetics"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/guarddutyapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/inspectorapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/lambdaapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/s3api"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/stsapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/syntheticsapi"
)

const configurationErrMsg = "Configuration error"

type _OrchestratorHandler struct {
	apiMgr sdkapimgr.SdkApiMgr
	region string
	now    func() time.Time
}

// OrchestratorEvent is the scheduled or manual trigger. its payload is not read.
type OrchestratorEvent struct {
	Payload map[string]interface{}
}

type SecurityTestingConfig struct {
	InspectorAssessmentTemplateArn string `json:"inspector_assessment_template_arn"`
	GuardDutyEnabled               bool   `json:"guardduty_enabled"`
}

type FunctionalityTestingConfig struct {
	CanaryNames []string `json:"canary_names"`
}

type ObservabilityConfig struct {
	InsightsFunctionName string `json:"insights_function_name"`
}

// ComponentConfigs are recorded as given in the run metadata
type ComponentConfigs struct {
	Security      map[string]interface{} `json:"security"`
	Functionality map[string]interface{} `json:"functionality"`
	Architecture  map[string]interface{} `json:"architecture"`
	Observability map[string]interface{} `json:"observability"`
	Reporting     map[string]interface{} `json:"reporting"`
}

type TestRunMetadata struct {
	TestRunId   string           `json:"testRunId"`
	StartTime   string           `json:"startTime"`
	Environment string           `json:"environment"`
	AccountId   string           `json:"accountId"`
	Components  ComponentConfigs `json:"components"`
}

type OrchestratorActions struct {
	InspectorAssessmentRunArn string   `json:"inspectorAssessmentRunArn,omitempty"`
	GuardDutyDetectorIds      []string `json:"guardDutyDetectorIds,omitempty"`
	CanariesStarted           []string `json:"canariesStarted,omitempty"`
	InsightsInvoked           bool     `json:"insightsInvoked"`
}

type TestRunStatus struct {
	TestRunId string              `json:"testRunId"`
	Status    string              `json:"status"`
	Message   string              `json:"message"`
	Timestamp string              `json:"timestamp"`
	Actions   OrchestratorActions `json:"actions"`
}

func NewOrchestratorHandler(cfg aws.Config) (Handler, error) {
	apiMgr, err := newApiMgr(cfg,
		sdkapimgr.S3Service,
		sdkapimgr.InspectorService,
		sdkapimgr.GuardDutyService,
		sdkapimgr.SyntheticsService,
		sdkapimgr.LambdaService,
		sdkapimgr.StsService)
	if err != nil {
		return nil, err
	}
	return newOrchestratorHandler(apiMgr, cfg.Region), nil
}

func newOrchestratorHandler(apiMgr sdkapimgr.SdkApiMgr, region string) *_OrchestratorHandler {
	return &_OrchestratorHandler{
		apiMgr: apiMgr,
		region: region,
		now:    time.Now,
	}
}

// TestRunId is <YYYYmmddHHMMSS>-<environment>
func TestRunId(now time.Time, environment string) string {
	return now.Format(shared.TestRunTimestampLayout) + "-" + environment
}

// parse a json component config from env, unset means {}
func parseComponentConfig(envVar string, typed interface{}) (map[string]interface{}, error) {
	raw := shared.GetEnv(envVar, "{}")
	config := map[string]interface{}{}
	if err := json.Unmarshal([]byte(raw), &config); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", envVar, err)
	}
	if typed != nil {
		if err := json.Unmarshal([]byte(raw), typed); err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", envVar, err)
		}
	}
	return config, nil
}

func (o *_OrchestratorHandler) Handle(ctx context.Context, params interface{}) (shared.Response, error) {
	_, ok := params.(OrchestratorEvent)
	if !ok {
		return shared.Response{}, errors.New("type assertion failure.  event is not type orchestrator event")
	}

	environment := shared.GetEnv(shared.EnvEnvironment, shared.DefaultEnvironment)
	project := shared.GetEnv(shared.EnvProject, shared.DefaultProject)
	artifactsBucket := shared.GetEnv(shared.EnvTestArtifactsBucket, "")
	log.Printf("starting test orchestration for environment : [%s]\n", environment)
	if artifactsBucket == "" {
		return shared.NewErrorResponse(500, shared.EnvVarsNotSetErrMsg), nil
	}

	var (
		securityConfig      SecurityTestingConfig
		functionalityConfig FunctionalityTestingConfig
		observabilityConfig ObservabilityConfig
		components          ComponentConfigs
	)
	componentEnvVars := []struct {
		envVar string
		config *map[string]interface{}
		typed  interface{}
	}{
		{shared.EnvSecurityConfig, &components.Security, &securityConfig},
		{shared.EnvFunctionalityConfig, &components.Functionality, &functionalityConfig},
		{shared.EnvArchitectureConfig, &components.Architecture, nil},
		{shared.EnvObservabilityConfig, &components.Observability, &observabilityConfig},
		{shared.EnvReportingConfig, &components.Reporting, nil},
	}
	for _, component := range componentEnvVars {
		config, err := parseComponentConfig(component.envVar, component.typed)
		if err != nil {
			log.Printf("error parsing configuration : [%v]\n", err)
			return shared.NewResponse(500, configurationErrMsg), nil
		}
		*component.config = config
	}

	s3Client, err := sdkapimgr.Get[s3api.S3Api](o.apiMgr, o.region, sdkapimgr.S3Service)
	if err != nil {
		return shared.NewErrorResponse(500, err.Error()), nil
	}

	startTime := o.now()
	testRunId := TestRunId(startTime, environment)
	log.Printf("test run id : [%s]\n", testRunId)

	metadata := TestRunMetadata{
		TestRunId:   testRunId,
		StartTime:   startTime.Format(time.RFC3339),
		Environment: environment,
		AccountId:   o.accountId(ctx),
		Components:  components,
	}
	if err := s3api.PutJSON(ctx, s3Client, artifactsBucket, testRunKey(testRunId, "metadata.json"), metadata); err != nil {
		log.Printf("error storing test run metadata : [%v]\n", err)
	}

	actions := OrchestratorActions{}
	if securityConfig.InspectorAssessmentTemplateArn != "" {
		actions.InspectorAssessmentRunArn = o.startAssessmentRun(ctx, securityConfig.InspectorAssessmentTemplateArn, testRunId)
	}
	if securityConfig.GuardDutyEnabled {
		actions.GuardDutyDetectorIds = o.listDetectors(ctx)
	}
	if len(functionalityConfig.CanaryNames) > 0 {
		actions.CanariesStarted = o.startCanaries(ctx, functionalityConfig.CanaryNames)
	}
	if observabilityConfig.InsightsFunctionName != "" {
		actions.InsightsInvoked = o.invokeInsights(ctx, observabilityConfig.InsightsFunctionName, testRunId)
	}
	log.Printf("orchestration actions for project [%s] : [%+v]\n", project, actions)

	status := TestRunStatus{
		TestRunId: testRunId,
		Status:    shared.StatusStarted,
		Message:   "Test orchestration started for environment " + environment,
		Timestamp: o.now().Format(time.RFC3339),
		Actions:   actions,
	}
	if err := s3api.PutJSON(ctx, s3Client, artifactsBucket, testRunKey(testRunId, "status.json"), status); err != nil {
		log.Printf("error storing test results : [%v]\n", err)
	}

	return shared.NewResponse(200, map[string]string{
		"testRunId": testRunId,
		"message":   "Test orchestration initiated",
	}), nil
}

func testRunKey(testRunId, name string) string {
	return shared.TestRunsPrefix + "/" + testRunId + "/" + name
}

// account id of the caller, empty on error
func (o *_OrchestratorHandler) accountId(ctx context.Context) string {
	stsClient, err := sdkapimgr.Get[stsapi.StsApi](o.apiMgr, o.region, sdkapimgr.StsService)
	if err != nil {
		log.Printf("warning : [%v]\n", err)
		return ""
	}
	output, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		log.Printf("warning : unable to get caller identity : [%v]\n", err)
		return ""
	}
	account := aws.ToString(output.Account)
	if account == "" {
		account, _ = shared.ExtractAWSAccountFromARN(aws.ToString(output.Arn))
	}
	if !shared.IsValidAwsAccountId(account) {
		log.Printf("warning : invalid account id : [%s]\n", account)
		return ""
	}
	return account
}

func (o *_OrchestratorHandler) startAssessmentRun(ctx context.Context, templateArn, testRunId string) string {
	inspectorClient, err := sdkapimgr.Get[inspectorapi.InspectorApi](o.apiMgr, o.region, sdkapimgr.InspectorService)
	if err != nil {
		log.Printf("error starting inspector assessment : [%v]\n", err)
		return ""
	}
	log.Println("starting inspector assessment")
	output, err := inspectorClient.StartAssessmentRun(ctx, &inspector.StartAssessmentRunInput{
		AssessmentTemplateArn: aws.String(templateArn),
		AssessmentRunName:     aws.String("Test-Run-" + testRunId),
	})
	if err != nil {
		log.Printf("error starting inspector assessment : [%v]\n", err)
		return ""
	}
	return aws.ToString(output.AssessmentRunArn)
}

func (o *_OrchestratorHandler) listDetectors(ctx context.Context) []string {
	guardDutyClient, err := sdkapimgr.Get[guarddutyapi.GuardDutyApi](o.apiMgr, o.region, sdkapimgr.GuardDutyService)
	if err != nil {
		log.Printf("error listing guardduty detectors : [%v]\n", err)
		return nil
	}
	detectorIds := []string{}
	paginator := guardduty.NewListDetectorsPaginator(guardDutyClient, &guardduty.ListDetectorsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			log.Printf("error listing guardduty detectors : [%v]\n", err)
			return detectorIds
		}
		detectorIds = append(detectorIds, page.DetectorIds...)
	}
	return detectorIds
}

func (o *_OrchestratorHandler) startCanaries(ctx context.Context, names []string) []string {
	syntheticsClient, err := sdkapimgr.Get[syntheticsapi.SyntheticsApi](o.apiMgr, o.region, sdkapimgr.SyntheticsService)
	if err != nil {
		log.Printf("error starting canaries : [%v]\n", err)
		return nil
	}
	started := []string{}
	for _, name := range names {
		_, err := syntheticsClient.StartCanary(ctx, &synthetics.StartCanaryInput{Name: aws.String(name)})
		if err != nil {
			log.Printf("error starting canary [%s] : [%v]\n", name, err)
			continue
		}
		started = append(started, name)
	}
	return started
}

// async invoke, the insights function reports on its own
func (o *_OrchestratorHandler) invokeInsights(ctx context.Context, functionName, testRunId string) bool {
	lambdaClient, err := sdkapimgr.Get[lambdaapi.LambdaApi](o.apiMgr, o.region, sdkapimgr.LambdaService)
	if err != nil {
		log.Printf("error invoking insights function : [%v]\n", err)
		return false
	}
	payload, _ := json.Marshal(map[string]string{"testRunId": testRunId})
	_, err = lambdaClient.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(functionName),
		InvocationType: lambdaTypes.InvocationTypeEvent,
		Payload:        payload,
	})
	if err != nil {
		log.Printf("error invoking insights function [%s] : [%v]\n", functionName, err)
		return false
	}
	return true
}
