package findings

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	inspectorTypes "github.com/aws/aws-sdk-go-v2/service/inspector/types"
)

const (
	// the describe findings api accepts at most 10 arns per call
	DescribeFindingsBatchSize = 10
	ListFindingsPageSize      = 100

	maxEmailedTitles     = 10
	maxDescriptionLength = 500
)

// SeveritySummary counts inspector findings. keys match the inspector severity names.
type SeveritySummary struct {
	High          int `json:"High"`
	Medium        int `json:"Medium"`
	Low           int `json:"Low"`
	Informational int `json:"Informational"`
}

// Add counts severity, anything outside the four summary buckets is ignored
func (s *SeveritySummary) Add(severity string) {
	switch severity {
	case string(inspectorTypes.SeverityHigh):
		s.High++
	case string(inspectorTypes.SeverityMedium):
		s.Medium++
	case string(inspectorTypes.SeverityLow):
		s.Low++
	case string(inspectorTypes.SeverityInformational):
		s.Informational++
	}
}

// Merge adds every bucket of other to s
func (s *SeveritySummary) Merge(other SeveritySummary) {
	s.High += other.High
	s.Medium += other.Medium
	s.Low += other.Low
	s.Informational += other.Informational
}

func (s SeveritySummary) Total() int {
	return s.High + s.Medium + s.Low + s.Informational
}

// Actionable summaries have high or medium findings
func (s SeveritySummary) Actionable() bool {
	return s.High > 0 || s.Medium > 0
}

type InspectorFinding struct {
	Arn                string `json:"arn"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	Severity           string `json:"severity"`
	RecommendedActions string `json:"recommendedActions"`
}

type InspectorReport struct {
	AssessmentRunArn string             `json:"assessmentRunArn"`
	Timestamp        string             `json:"timestamp"`
	Project          string             `json:"project"`
	Environment      string             `json:"environment"`
	FindingsCount    int                `json:"findingsCount"`
	Findings         []InspectorFinding `json:"findings"`
	SeveritySummary  SeveritySummary    `json:"severitySummary"`
}

// NewInspectorReport summarizes the described findings of one assessment run.
// findingsCount is the number of listed arns, which may exceed len(findings).
func NewInspectorReport(runArn, timestamp, project, environment string, findingsCount int, findings []inspectorTypes.Finding) InspectorReport {
	report := InspectorReport{
		AssessmentRunArn: runArn,
		Timestamp:        timestamp,
		Project:          project,
		Environment:      environment,
		FindingsCount:    findingsCount,
		Findings:         make([]InspectorFinding, 0, len(findings)),
	}
	for _, finding := range findings {
		severity := string(finding.Severity)
		if severity == "" {
			severity = "Unknown"
		}
		report.SeveritySummary.Add(severity)
		report.Findings = append(report.Findings, InspectorFinding{
			Arn:                aws.ToString(finding.Arn),
			Title:              aws.ToString(finding.Title),
			Description:        aws.ToString(finding.Description),
			Severity:           severity,
			RecommendedActions: aws.ToString(finding.Recommendation),
		})
	}
	return report
}

// Chunk splits arns into slices of at most size
func Chunk(arns []string, size int) [][]string {
	if size <= 0 {
		return nil
	}
	chunks := [][]string{}
	for start := 0; start < len(arns); start += size {
		end := start + size
		if end > len(arns) {
			end = len(arns)
		}
		chunks = append(chunks, arns[start:end])
	}
	return chunks
}

// InspectorEmail builds the subject and text body for an actionable report.
func InspectorEmail(report InspectorReport, reportUri string) (string, string) {
	summary := report.SeveritySummary
	subject := fmt.Sprintf("Security Testing Report - %d High, %d Medium Findings", summary.High, summary.Medium)

	var body strings.Builder
	fmt.Fprintf(&body, "Security Testing Report - %s (%s)\n\n", report.Project, report.Environment)
	fmt.Fprintf(&body, "Assessment completed at: %s\n\n", report.Timestamp)
	body.WriteString("Finding Summary:\n")
	fmt.Fprintf(&body, "- High: %d\n", summary.High)
	fmt.Fprintf(&body, "- Medium: %d\n", summary.Medium)
	fmt.Fprintf(&body, "- Low: %d\n", summary.Low)
	fmt.Fprintf(&body, "- Informational: %d\n\n", summary.Informational)

	titles := topTitles(report.Findings, maxEmailedTitles)
	if len(titles) > 0 {
		body.WriteString("Top findings:\n")
		for _, title := range titles {
			fmt.Fprintf(&body, "- %s\n", title)
		}
		body.WriteString("\n")
	}

	fmt.Fprintf(&body, "The complete report is available at:\n%s\n\n", reportUri)
	body.WriteString("Please review the findings and take appropriate action.\n")
	return subject, body.String()
}

// high findings first, then medium
func topTitles(findings []InspectorFinding, limit int) []string {
	titles := []string{}
	for _, severity := range []inspectorTypes.Severity{inspectorTypes.SeverityHigh, inspectorTypes.SeverityMedium} {
		for _, finding := range findings {
			if len(titles) == limit {
				return titles
			}
			if finding.Severity == string(severity) {
				titles = append(titles, fmt.Sprintf("[%s] %s", finding.Severity, finding.Title))
			}
		}
	}
	return titles
}
