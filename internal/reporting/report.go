package reporting

import (
	"math"
	"time"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/findings"
)

const (
	SectionSecurity      = "security"
	SectionFunctionality = "functionality"
	SectionArchitecture  = "architecture"
	SectionObservability = "observability"

	HealthExcellent      = "Excellent"
	HealthGood           = "Good"
	HealthFair           = "Fair"
	HealthNeedsAttention = "Needs Attention"
)

type SecuritySection struct {
	ReportCount        int                      `json:"reportCount"`
	FindingsBySeverity findings.SeveritySummary `json:"findingsBySeverity"`
	TotalFindings      int                      `json:"totalFindings"`
	CriticalFindings   int                      `json:"criticalFindings"`
}

// NewSecuritySection totals the aggregated severity buckets, high findings count as critical
func NewSecuritySection(reportCount int, summary findings.SeveritySummary) SecuritySection {
	return SecuritySection{
		ReportCount:        reportCount,
		FindingsBySeverity: summary,
		TotalFindings:      summary.Total(),
		CriticalFindings:   summary.High,
	}
}

type FunctionalitySection struct {
	AverageSuccessRate float64 `json:"averageSuccessRate"`
	LowestSuccessRate  float64 `json:"lowestSuccessRate"`
	DatapointCount     int     `json:"datapointCount"`
}

// NewFunctionalitySection averages the daily success rates. with no
// datapoints the average is 0 and the lowest rate 100.
func NewFunctionalitySection(averages, minimums []float64) FunctionalitySection {
	lowest := 100.0
	for _, value := range minimums {
		lowest = math.Min(lowest, value)
	}
	return FunctionalitySection{
		AverageSuccessRate: Average(averages),
		LowestSuccessRate:  lowest,
		DatapointCount:     len(averages),
	}
}

type ArchitectureSection struct {
	ReportCount         int     `json:"reportCount"`
	LastReportTimestamp *string `json:"lastReportTimestamp"`
}

type ObservabilitySection struct {
	AverageResponseTime float64 `json:"averageResponseTime"`
	P95ResponseTime     float64 `json:"p95ResponseTime"`
	ErrorRate           float64 `json:"errorRate"`
}

// SectionError replaces a section that could not be collected
type SectionError struct {
	Error string `json:"error"`
}

// Sections holds the collected sections. a nil section failed and has an entry in Errors.
type Sections struct {
	Security      *SecuritySection
	Functionality *FunctionalitySection
	Architecture  *ArchitectureSection
	Observability *ObservabilitySection
	Errors        map[string]string
}

// Document renders the sections the way they are stored in the report
func (s Sections) Document() map[string]interface{} {
	doc := map[string]interface{}{}
	set := func(name string, ok bool, section interface{}) {
		if ok {
			doc[name] = section
			return
		}
		msg := s.Errors[name]
		if msg == "" {
			msg = "section not collected"
		}
		doc[name] = SectionError{Error: msg}
	}
	set(SectionSecurity, s.Security != nil, s.Security)
	set(SectionFunctionality, s.Functionality != nil, s.Functionality)
	set(SectionArchitecture, s.Architecture != nil, s.Architecture)
	set(SectionObservability, s.Observability != nil, s.Observability)
	return doc
}

type ReportTimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type ExecutiveSummary struct {
	OverallScore       float64 `json:"overallScore"`
	HealthStatus       string  `json:"healthStatus"`
	SecurityScore      float64 `json:"securityScore"`
	FunctionalityScore float64 `json:"functionalityScore"`
	ObservabilityScore float64 `json:"observabilityScore"`
	SummaryText        string  `json:"summaryText"`
}

type Report struct {
	ReportType       string                 `json:"reportType"`
	Project          string                 `json:"project"`
	Environment      string                 `json:"environment"`
	GeneratedAt      string                 `json:"generatedAt"`
	TimeRange        ReportTimeRange        `json:"timeRange"`
	Sections         map[string]interface{} `json:"sections"`
	ExecutiveSummary ExecutiveSummary       `json:"executiveSummary"`

	sections Sections
}

// NewReport assembles a report and derives its executive summary.
func NewReport(reportType, project, environment string, start, end time.Time, sections Sections) Report {
	report := Report{
		ReportType:  reportType,
		Project:     project,
		Environment: environment,
		GeneratedAt: end.Format(time.RFC3339),
		TimeRange: ReportTimeRange{
			Start: start.Format(time.RFC3339),
			End:   end.Format(time.RFC3339),
		},
		Sections: sections.Document(),
		sections: sections,
	}
	report.ExecutiveSummary = report.summarize()
	return report
}

func (r Report) summarize() ExecutiveSummary {
	summary := ExecutiveSummary{
		SecurityScore:      SecurityScore(r.sections.Security),
		FunctionalityScore: 0,
		ObservabilityScore: 100,
	}
	if r.sections.Functionality != nil {
		summary.FunctionalityScore = r.sections.Functionality.AverageSuccessRate
	}
	if r.sections.Observability != nil {
		summary.ObservabilityScore = 100 - r.sections.Observability.ErrorRate
	}
	summary.OverallScore = (summary.SecurityScore + summary.FunctionalityScore + summary.ObservabilityScore) / 3
	summary.HealthStatus = HealthStatus(summary.OverallScore)
	summary.SummaryText = SummaryText(r, summary)
	return summary
}

// SecurityScore deducts 10 per high and 3 per medium finding, floored at 0.
// a missing section or one without findings scores 100.
func SecurityScore(section *SecuritySection) float64 {
	if section == nil || section.TotalFindings == 0 {
		return 100
	}
	deduction := math.Min(100, float64(section.FindingsBySeverity.High*10+section.FindingsBySeverity.Medium*3))
	return 100 - deduction
}

func HealthStatus(score float64) string {
	switch {
	case score >= 90:
		return HealthExcellent
	case score >= 80:
		return HealthGood
	case score >= 70:
		return HealthFair
	}
	return HealthNeedsAttention
}

// Average returns 0 for no values
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, value := range values {
		sum += value
	}
	return sum / float64(len(values))
}
