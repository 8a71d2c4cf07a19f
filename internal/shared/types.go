package shared

import (
	"encoding/json"
	"log"
)

const (
	// environment variables read by the lambda handlers
	EnvEnvironment           string = "ENVIRONMENT"
	EnvProject               string = "PROJECT_NAME"
	EnvTestArtifactsBucket   string = "TEST_ARTIFACTS_BUCKET"
	EnvReportBucket          string = "REPORT_BUCKET"
	EnvReportsBucket         string = "REPORTS_BUCKET"
	EnvCodeBucket            string = "CODE_BUCKET"
	EnvResultsBucket         string = "RESULTS_BUCKET"
	EnvNotificationEmail     string = "NOTIFICATION_EMAIL"
	EnvSnsTopicArn           string = "SNS_TOPIC_ARN"
	EnvSecurityConfig        string = "SECURITY_TESTING_CONFIG"
	EnvFunctionalityConfig   string = "FUNCTIONALITY_TESTING_CONFIG"
	EnvArchitectureConfig    string = "ARCHITECTURE_VALIDATION_CONFIG"
	EnvObservabilityConfig   string = "OBSERVABILITY_CONFIG"
	EnvReportingConfig       string = "REPORTING_CONFIG"
	EnvApiEndpoint           string = "API_ENDPOINT"
	EnvHttpMethod            string = "HTTP_METHOD"
	EnvExpectedStatus        string = "EXPECTED_STATUS"
	EnvPrimaryRegion         string = "PRIMARY_REGION"
	EnvDrRegion              string = "DR_REGION"
	EnvDomainName            string = "DOMAIN_NAME"
	EnvHealthCheckPath       string = "HEALTH_CHECK_PATH"
	EnvRoute53HostedZoneId   string = "ROUTE53_HOSTED_ZONE_ID"
	EnvPrimaryEndpoint       string = "PRIMARY_ENDPOINT"
	EnvDrEndpoint            string = "DR_ENDPOINT"
	EnvAwsRegion             string = "AWS_REGION"
	EnvAssumeRoleArn         string = "ASSUME_ROLE_ARN"
	DefaultRegion            string = "us-east-1"
	TrustedAdvisorRegion     string = "us-east-1"
	DefaultEnvironment       string = "dev"
	DefaultProject           string = "infrastructure-testing"
	ContentTypeJson          string = "application/json"
	ContentTypeHtml          string = "text/html"
	ContentTypeCsv           string = "text/csv"
	ContentTypePdf           string = "application/pdf"
	EnvVarsNotSetErrMsg      string = "env vars not set"
	InvalidEventFormatErrMsg string = "Invalid event format"
)

// severities shared by validators, findings and reports
const (
	SeverityCritical      string = "CRITICAL"
	SeverityHigh          string = "HIGH"
	SeverityMedium        string = "MEDIUM"
	SeverityLow           string = "LOW"
	SeverityInfo          string = "INFO"
	SeverityInformational string = "INFORMATIONAL"
	SeverityUnknown       string = "UNKNOWN"
)

// statuses written into reports
const (
	StatusPassed         string = "PASSED"
	StatusWarning        string = "WARNING"
	StatusFailed         string = "FAILED"
	StatusError          string = "ERROR"
	StatusReviewRequired string = "REVIEW_REQUIRED"
	StatusRecommended    string = "RECOMMENDED"
	StatusStarted        string = "STARTED"
	StatusSuccess        string = "SUCCESS"
	StatusFailure        string = "FAILURE"
	StatusSkipped        string = "SKIPPED"
	StatusPartialSuccess string = "PARTIAL_SUCCESS"
)

// report key prefixes
const (
	SecurityReportsPrefix     string = "security-reports"
	ArchitectureReportsPrefix string = "architecture-reports"
	FunctionalityPrefix       string = "functionality-results"
	ReportsPrefix             string = "reports"
	TestRunsPrefix            string = "test-runs"
	FailoverTestsPrefix       string = "failover-tests"
)

type Key struct {
	PrimaryKey string `json:"primaryKey"`
	SortKey    string `json:"sortKey"`
}

func (k *Key) ToString() string {
	return k.PrimaryKey + "||" + k.SortKey
}

// Response is the document every lambda handler returns.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// NewResponse json encodes body. strings are wrapped as {"message": body}.
func NewResponse(statusCode int, body interface{}) Response {
	if msg, ok := body.(string); ok {
		body = map[string]string{"message": msg}
	}
	content, err := json.Marshal(body)
	if err != nil {
		log.Printf("error marshalling response body : [%v]\n", err)
		return Response{
			StatusCode: 500,
			Body:       `{"error":"failed to encode response"}`,
		}
	}
	return Response{
		StatusCode: statusCode,
		Body:       string(content),
	}
}

// NewErrorResponse returns {"error": msg}
func NewErrorResponse(statusCode int, msg string) Response {
	return NewResponse(statusCode, map[string]string{"error": msg})
}
