package validation

import "github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"

const (
	ArchitectureReportFile    = "architecture_validation.json"
	DRReportFile              = "dr_architecture_validation.json"
	WellArchitectedReportFile = "well_architected_review.json"
	SecurityScanReportFile    = "security_scan.json"
	DefaultSummaryFile        = "validation_summary.json"
	DefaultOutputDir          = "validation_reports"
)

type Issue struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Status   string `json:"status,omitempty"`
}

type ComponentResult struct {
	Passed bool    `json:"passed"`
	Issues []Issue `json:"issues"`
}

func newComponentResult(issues []Issue) ComponentResult {
	if issues == nil {
		issues = []Issue{}
	}
	return ComponentResult{
		Passed: len(issues) == 0,
		Issues: issues,
	}
}

// Report is written by the architecture and DR validators.
type Report struct {
	OverallPassed     bool                       `json:"overall_passed"`
	Environment       string                     `json:"environment,omitempty"`
	HasCriticalIssues bool                       `json:"has_critical_issues,omitempty"`
	Components        map[string]ComponentResult `json:"components"`
}

// finalize derives overall_passed and has_critical_issues from the components
func (r *Report) finalize() {
	r.OverallPassed = true
	for _, component := range r.Components {
		if component.Passed {
			continue
		}
		r.OverallPassed = false
		for _, issue := range component.Issues {
			if issue.Severity == shared.SeverityCritical {
				r.HasCriticalIssues = true
			}
		}
	}
}

// IssueCount is the total number of issues across components
func (r *Report) IssueCount() int {
	count := 0
	for _, component := range r.Components {
		count += len(component.Issues)
	}
	return count
}
