package findings

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	guardDutyTypes "github.com/aws/aws-sdk-go-v2/service/guardduty/types"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
)

const unknownValue = "unknown"

// ClassifyGuardDutySeverity maps a guardduty severity score onto a category.
func ClassifyGuardDutySeverity(score float64) string {
	switch {
	case score >= 7.0:
		return shared.SeverityHigh
	case score >= 4.0:
		return shared.SeverityMedium
	case score >= 1.0:
		return shared.SeverityLow
	}
	return shared.SeverityInformational
}

// GuardDutyFinding is the detail section of a guardduty eventbridge event.
type GuardDutyFinding struct {
	Id          string                 `json:"id"`
	Type        string                 `json:"type"`
	Severity    float64                `json:"severity"`
	DetectorId  string                 `json:"detectorId"`
	Description string                 `json:"description"`
	Region      string                 `json:"region"`
	Service     map[string]interface{} `json:"service"`
	Resource    map[string]interface{} `json:"resource"`
}

// ParseGuardDutyDetail decodes an event detail. missing ids become "unknown".
func ParseGuardDutyDetail(detail json.RawMessage) (GuardDutyFinding, error) {
	var finding GuardDutyFinding
	if len(detail) == 0 || string(detail) == "null" {
		return finding, errors.New("event detail is empty")
	}
	if err := json.Unmarshal(detail, &finding); err != nil {
		return finding, fmt.Errorf("failed to parse guardduty finding: %w", err)
	}
	if finding.Id == "" {
		finding.Id = unknownValue
	}
	if finding.DetectorId == "" {
		finding.DetectorId = unknownValue
	}
	if finding.Service == nil {
		finding.Service = map[string]interface{}{}
	}
	if finding.Resource == nil {
		finding.Resource = map[string]interface{}{}
	}
	return finding, nil
}

// NeedsEnrichment is true when the event only carries ids, so the finding
// has to be fetched from guardduty
func (f GuardDutyFinding) NeedsEnrichment() bool {
	return f.Type == "" && f.Id != unknownValue && f.DetectorId != unknownValue
}

// Enrich fills the empty fields of f from the sdk finding
func (f *GuardDutyFinding) Enrich(finding guardDutyTypes.Finding) {
	if f.Type == "" {
		f.Type = aws.ToString(finding.Type)
	}
	if f.Severity == 0 {
		f.Severity = aws.ToFloat64(finding.Severity)
	}
	if f.Description == "" {
		f.Description = aws.ToString(finding.Description)
	}
	if f.Region == "" {
		f.Region = aws.ToString(finding.Region)
	}
	if finding.Resource != nil && len(f.Resource) == 0 {
		f.Resource = map[string]interface{}{
			"resourceType": aws.ToString(finding.Resource.ResourceType),
		}
	}
	if finding.Service != nil && len(f.Service) == 0 {
		f.Service = map[string]interface{}{
			"serviceName": aws.ToString(finding.Service.ServiceName),
		}
	}
}

// ResourceType reads resource.resourceType, "" when absent
func (f GuardDutyFinding) ResourceType() string {
	if value, ok := f.Resource["resourceType"].(string); ok {
		return value
	}
	return ""
}

func (f GuardDutyFinding) Category() string {
	return ClassifyGuardDutySeverity(f.Severity)
}

// Actionable findings are emailed
func (f GuardDutyFinding) Actionable() bool {
	category := f.Category()
	return category == shared.SeverityHigh || category == shared.SeverityMedium
}

type GuardDutyReport struct {
	FindingId        string                 `json:"findingId"`
	Timestamp        string                 `json:"timestamp"`
	Project          string                 `json:"project"`
	Environment      string                 `json:"environment"`
	Severity         float64                `json:"severity"`
	SeverityCategory string                 `json:"severityCategory"`
	FindingType      string                 `json:"findingType"`
	Description      string                 `json:"description"`
	DetectorId       string                 `json:"detectorId"`
	Region           string                 `json:"region"`
	Service          map[string]interface{} `json:"service"`
	Resource         map[string]interface{} `json:"resource"`
}

func NewGuardDutyReport(finding GuardDutyFinding, timestamp, project, environment string) GuardDutyReport {
	findingType := finding.Type
	if findingType == "" {
		findingType = unknownValue
	}
	return GuardDutyReport{
		FindingId:        finding.Id,
		Timestamp:        timestamp,
		Project:          project,
		Environment:      environment,
		Severity:         finding.Severity,
		SeverityCategory: finding.Category(),
		FindingType:      findingType,
		Description:      finding.Description,
		DetectorId:       finding.DetectorId,
		Region:           finding.Region,
		Service:          finding.Service,
		Resource:         finding.Resource,
	}
}

// GuardDutyEmail builds the alert subject and text body for report.
func GuardDutyEmail(report GuardDutyReport, resourceType, reportUri string) (string, string) {
	subject := fmt.Sprintf("SECURITY ALERT - %s GuardDuty Finding in %s", report.SeverityCategory, report.Environment)

	var body strings.Builder
	body.WriteString("Security Alert - GuardDuty Finding\n\n")
	fmt.Fprintf(&body, "Project: %s\n", report.Project)
	fmt.Fprintf(&body, "Environment: %s\n", report.Environment)
	fmt.Fprintf(&body, "Finding ID: %s\n", report.FindingId)
	fmt.Fprintf(&body, "Type: %s\n", report.FindingType)
	fmt.Fprintf(&body, "Severity: %s (%v)\n\n", report.SeverityCategory, report.Severity)
	fmt.Fprintf(&body, "Description: %s\n\n", shared.TruncateString(report.Description, maxDescriptionLength))
	fmt.Fprintf(&body, "Region: %s\n\n", report.Region)
	fmt.Fprintf(&body, "Resource Type: %s\n\n", resourceType)
	fmt.Fprintf(&body, "The complete finding details are available at:\n%s\n\n", reportUri)
	body.WriteString("Please investigate this security issue immediately.\n")
	return subject, body.String()
}

// AddCategory counts a guardduty severity category in the inspector buckets
func (s *SeveritySummary) AddCategory(category string) {
	switch category {
	case shared.SeverityHigh:
		s.High++
	case shared.SeverityMedium:
		s.Medium++
	case shared.SeverityLow:
		s.Low++
	case shared.SeverityInformational:
		s.Informational++
	}
}
