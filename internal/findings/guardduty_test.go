package findings

import (
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	guardDutyTypes "github.com/aws/aws-sdk-go-v2/service/guardduty/types"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/stretchr/testify/assert"
)

func TestClassifyGuardDutySeverity(t *testing.T) {
	assertion := assert.New(t)

	tests := []struct {
		score    float64
		expected string
	}{
		{8.9, shared.SeverityHigh},
		{7.5, shared.SeverityHigh},
		{7.0, shared.SeverityHigh},
		{6.9, shared.SeverityMedium},
		{4.0, shared.SeverityMedium},
		{3.9, shared.SeverityLow},
		{1.0, shared.SeverityLow},
		{0.5, shared.SeverityInformational},
		{0, shared.SeverityInformational},
	}
	for _, test := range tests {
		assertion.Equal(test.expected, ClassifyGuardDutySeverity(test.score), test.score)
	}
}

func TestParseGuardDutyDetail(t *testing.T) {
	assertion := assert.New(t)

	tests := []struct {
		name               string
		detail             string
		expectedErr        bool
		expectedId         string
		expectedDetectorId string
		expectedEnrich     bool
	}{
		{"full detail", `{"id":"f1","type":"Recon:EC2/PortProbeUnprotectedPort","severity":7.5,"detectorId":"d1","resource":{"resourceType":"Instance"}}`, false, "f1", "d1", false},
		{"missing ids", `{"type":"Recon:EC2/PortProbeUnprotectedPort"}`, false, "unknown", "unknown", false},
		{"ids only", `{"id":"f1","detectorId":"d1"}`, false, "f1", "d1", true},
		{"empty", ``, true, "", "", false},
		{"null", `null`, true, "", "", false},
		{"not an object", `[1,2]`, true, "", "", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			finding, err := ParseGuardDutyDetail(json.RawMessage(test.detail))
			if test.expectedErr {
				assertion.Error(err)
				return
			}
			assertion.NoError(err)
			assertion.Equal(test.expectedId, finding.Id)
			assertion.Equal(test.expectedDetectorId, finding.DetectorId)
			assertion.Equal(test.expectedEnrich, finding.NeedsEnrichment())
			assertion.NotNil(finding.Service)
			assertion.NotNil(finding.Resource)
		})
	}
}

func TestGuardDutyReportAndEmail(t *testing.T) {
	assertion := assert.New(t)

	finding, err := ParseGuardDutyDetail(json.RawMessage(`{"id":"f1","type":"UnauthorizedAccess:EC2/SSHBruteForce","severity":7.5,"detectorId":"d1","description":"ssh brute force","region":"us-east-1","resource":{"resourceType":"Instance"}}`))
	assertion.NoError(err)
	assertion.True(finding.Actionable())
	assertion.Equal("Instance", finding.ResourceType())

	report := NewGuardDutyReport(finding, "20240101-120000", "app", "prod")
	assertion.Equal(shared.SeverityHigh, report.SeverityCategory)
	assertion.Equal("UnauthorizedAccess:EC2/SSHBruteForce", report.FindingType)
	assertion.Equal(7.5, report.Severity)

	subject, body := GuardDutyEmail(report, finding.ResourceType(), "s3://bucket/key.json")
	assertion.Equal("SECURITY ALERT - HIGH GuardDuty Finding in prod", subject)
	assertion.Contains(body, "Severity: HIGH (7.5)")
	assertion.Contains(body, "Resource Type: Instance")
	assertion.Contains(body, "s3://bucket/key.json")

	low, _ := ParseGuardDutyDetail(json.RawMessage(`{"id":"f2","severity":2}`))
	assertion.False(low.Actionable())
	assertion.Equal("unknown", NewGuardDutyReport(low, "ts", "app", "prod").FindingType)
}

func TestGuardDutyEnrich(t *testing.T) {
	assertion := assert.New(t)

	finding, _ := ParseGuardDutyDetail(json.RawMessage(`{"id":"f1","detectorId":"d1"}`))
	finding.Enrich(guardDutyTypes.Finding{
		Id:          aws.String("f1"),
		Type:        aws.String("Recon:EC2/Portscan"),
		Description: aws.String("port scan"),
		Region:      aws.String("us-west-2"),
		Resource:    &guardDutyTypes.Resource{ResourceType: aws.String("Instance")},
	})
	assertion.Equal("Recon:EC2/Portscan", finding.Type)
	assertion.Equal("port scan", finding.Description)
	assertion.Equal("us-west-2", finding.Region)
	assertion.Equal("Instance", finding.ResourceType())
	assertion.False(finding.NeedsEnrichment())
}

func TestSeveritySummaryAddCategory(t *testing.T) {
	assertion := assert.New(t)

	summary := SeveritySummary{}
	for _, category := range []string{shared.SeverityHigh, shared.SeverityMedium, shared.SeverityMedium, shared.SeverityLow, shared.SeverityInformational, "BOGUS"} {
		summary.AddCategory(category)
	}
	assertion.Equal(SeveritySummary{High: 1, Medium: 2, Low: 1, Informational: 1}, summary)
}
