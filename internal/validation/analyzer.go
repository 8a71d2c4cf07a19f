package validation

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
)

const (
	SummaryArchitecture    = "architecture_validation"
	SummaryWellArchitected = "well_architected"
	SummaryDR              = "dr_validation"
	SummarySecurityScan    = "security_scan"
)

type AnalyzedIssue struct {
	Component string `json:"component,omitempty"`
	Pillar    string `json:"pillar,omitempty"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	Resource  string `json:"resource,omitempty"`
}

type ReportSummary struct {
	Status      string          `json:"status"`
	Message     string          `json:"message,omitempty"`
	IssuesCount int             `json:"issues_count"`
	PassedCount *int            `json:"passed_count,omitempty"`
	Issues      []AnalyzedIssue `json:"issues"`
	HasCritical bool            `json:"has_critical"`
}

type Summary struct {
	OverallStatus string                   `json:"overall_status"`
	Reports       map[string]ReportSummary `json:"reports"`
}

// statusRank orders statuses so the overall status only escalates
var statusRank = map[string]int{
	shared.StatusPassed:  0,
	shared.StatusWarning: 1,
	shared.StatusFailed:  2,
}

func (s *Summary) add(name string, report ReportSummary) {
	s.Reports[name] = report
	if rank, ok := statusRank[report.Status]; ok && rank > statusRank[s.OverallStatus] {
		s.OverallStatus = report.Status
	}
}

// Failed reports whether the summary should fail a pipeline
func (s *Summary) Failed() bool {
	return s.OverallStatus == shared.StatusFailed
}

// Names returns the analyzed report names in a stable order
func (s *Summary) Names() []string {
	names := make([]string, 0, len(s.Reports))
	for name := range s.Reports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Analyze summarizes every known validation report present in reportDir.
func Analyze(reportDir string) Summary {
	summary := Summary{
		OverallStatus: shared.StatusPassed,
		Reports:       map[string]ReportSummary{},
	}

	if path := filepath.Join(reportDir, ArchitectureReportFile); fileExists(path) {
		summary.add(SummaryArchitecture, analyzeComponentReport(path, "Failed to load architecture validation report"))
	}
	if path := filepath.Join(reportDir, WellArchitectedReportFile); fileExists(path) {
		summary.add(SummaryWellArchitected, analyzeWellArchitected(path))
	}
	// dr validation only runs for some environments, an unreadable report is skipped
	if path := filepath.Join(reportDir, DRReportFile); fileExists(path) {
		if report := analyzeComponentReport(path, ""); report.Status != shared.StatusError {
			summary.add(SummaryDR, report)
		}
	}
	if path := filepath.Join(reportDir, SecurityScanReportFile); fileExists(path) {
		if report, ok := analyzeSecurityScan(path); ok {
			summary.add(SummarySecurityScan, report)
		}
	}
	return summary
}

// componentReport is Report as the analyzer reads it, a missing overall_passed counts as passed
type componentReport struct {
	OverallPassed     *bool                      `json:"overall_passed"`
	HasCriticalIssues bool                       `json:"has_critical_issues"`
	Components        map[string]ComponentResult `json:"components"`
}

func analyzeComponentReport(path, loadErrMsg string) ReportSummary {
	var report componentReport
	if err := loadReport(path, &report); err != nil {
		return ReportSummary{Status: shared.StatusError, Message: loadErrMsg, Issues: []AnalyzedIssue{}}
	}

	issues := []AnalyzedIssue{}
	componentNames := make([]string, 0, len(report.Components))
	for name := range report.Components {
		componentNames = append(componentNames, name)
	}
	sort.Strings(componentNames)
	for _, name := range componentNames {
		for _, issue := range report.Components[name].Issues {
			issues = append(issues, AnalyzedIssue{
				Component: name,
				Severity:  valueOr(issue.Severity, shared.SeverityUnknown),
				Message:   valueOr(issue.Message, "Unknown issue"),
			})
		}
	}

	status := shared.StatusPassed
	if report.OverallPassed != nil && !*report.OverallPassed {
		status = shared.StatusWarning
	}
	if report.HasCriticalIssues {
		status = shared.StatusFailed
	}
	return ReportSummary{
		Status:      status,
		IssuesCount: len(issues),
		Issues:      issues,
		HasCritical: report.HasCriticalIssues,
	}
}

// well-architected findings warn but never fail
func analyzeWellArchitected(path string) ReportSummary {
	var review WellArchitectedReview
	if err := loadReport(path, &review); err != nil {
		return ReportSummary{Status: shared.StatusError, Message: "Failed to load Well-Architected Framework review report", Issues: []AnalyzedIssue{}}
	}

	issues := []AnalyzedIssue{}
	hasHigh := false
	for _, pillar := range review.Pillars {
		for _, issue := range pillar.Issues {
			if issue.Status != shared.StatusReviewRequired {
				continue
			}
			issues = append(issues, AnalyzedIssue{
				Pillar:   valueOr(pillar.Pillar, "Unknown"),
				Severity: valueOr(issue.Severity, shared.SeverityUnknown),
				Message:  valueOr(issue.Message, "Unknown issue"),
			})
			if isHighOrCritical(issue.Severity) {
				hasHigh = true
			}
		}
	}

	status := shared.StatusPassed
	if review.OverallStatus == shared.StatusReviewRequired {
		status = shared.StatusWarning
	}
	return ReportSummary{
		Status:      status,
		IssuesCount: len(issues),
		Issues:      issues,
		HasCritical: hasHigh,
	}
}

type checkovCheck struct {
	CheckName string  `json:"check_name"`
	Severity  *string `json:"severity"`
	Resource  string  `json:"resource"`
}

type checkovReport struct {
	Results *struct {
		PassedChecks []checkovCheck `json:"passed_checks"`
		FailedChecks []checkovCheck `json:"failed_checks"`
	} `json:"results"`
}

// checkov writes one object, or a list of objects when several frameworks ran.
// ok is false when the file is not a checkov report.
func analyzeSecurityScan(path string) (ReportSummary, bool) {
	content, err := os.ReadFile(path)
	if err != nil || isEmptyDocument(content) {
		return ReportSummary{Status: shared.StatusError, Message: "Failed to load security scan report", Issues: []AnalyzedIssue{}}, true
	}
	reports, err := decodeCheckov(content)
	if err != nil {
		return ReportSummary{Status: shared.StatusError, Message: "Failed to load security scan report", Issues: []AnalyzedIssue{}}, true
	}

	issues := []AnalyzedIssue{}
	passed := 0
	found := false
	for _, report := range reports {
		if report.Results == nil {
			continue
		}
		found = true
		passed += len(report.Results.PassedChecks)
		for _, check := range report.Results.FailedChecks {
			severity := shared.SeverityUnknown
			if check.Severity != nil && *check.Severity != "" {
				severity = *check.Severity
			}
			issues = append(issues, AnalyzedIssue{
				Severity: severity,
				Message:  valueOr(check.CheckName, "Unknown issue"),
				Resource: valueOr(check.Resource, "Unknown"),
			})
		}
	}
	if !found {
		return ReportSummary{}, false
	}

	hasCritical := false
	for _, issue := range issues {
		if isHighOrCritical(issue.Severity) {
			hasCritical = true
		}
	}
	status := shared.StatusPassed
	if len(issues) > 0 {
		status = shared.StatusWarning
	}
	if hasCritical {
		status = shared.StatusFailed
	}
	return ReportSummary{
		Status:      status,
		IssuesCount: len(issues),
		PassedCount: &passed,
		Issues:      issues,
		HasCritical: hasCritical,
	}, true
}

func decodeCheckov(content []byte) ([]checkovReport, error) {
	var single checkovReport
	if err := json.Unmarshal(content, &single); err == nil {
		return []checkovReport{single}, nil
	}
	var many []checkovReport
	if err := json.Unmarshal(content, &many); err != nil {
		return nil, errors.New("security scan report is neither an object nor a list")
	}
	return many, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
