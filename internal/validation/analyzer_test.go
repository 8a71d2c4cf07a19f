package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/stretchr/testify/assert"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestAnalyze(t *testing.T) {
	assertion := assert.New(t)

	passingArchitecture := `{"overall_passed": true, "components": {"networking": {"passed": true, "issues": []}}}`
	warningArchitecture := `{"overall_passed": false, "components": {"networking": {"passed": false, "issues": [{"severity": "HIGH", "message": "No private subnets defined in the architecture"}]}}}`
	criticalArchitecture := `{"overall_passed": false, "has_critical_issues": true, "components": {"security": {"passed": false, "issues": [{"severity": "CRITICAL", "message": "ssh"}]}}}`
	checkovFailed := `{"results": {"passed_checks": [{"check_name": "ok"}], "failed_checks": [{"check_name": "Ensure S3 bucket is encrypted", "severity": "HIGH", "resource": "aws_s3_bucket.data"}]}}`
	checkovLowOnly := `[{"results": {"passed_checks": [{"check_name": "a"}, {"check_name": "b"}], "failed_checks": [{"check_name": "tags", "severity": null}]}}, {"check_type": "secrets"}]`

	tests := []struct {
		name            string
		files           map[string]string
		expectedOverall string
		expectedReports map[string]string
	}{
		{"no reports", map[string]string{}, shared.StatusPassed, map[string]string{}},
		{"passing architecture", map[string]string{ArchitectureReportFile: passingArchitecture}, shared.StatusPassed,
			map[string]string{SummaryArchitecture: shared.StatusPassed}},
		{"warnings escalate once", map[string]string{
			ArchitectureReportFile:    warningArchitecture,
			WellArchitectedReportFile: `{"overall_status": "REVIEW_REQUIRED", "pillars": [{"pillar": "Security", "issues": [{"severity": "HIGH", "message": "iam", "status": "REVIEW_REQUIRED"}, {"severity": "INFO", "message": "ok", "status": "PASSED"}]}]}`,
		}, shared.StatusWarning, map[string]string{SummaryArchitecture: shared.StatusWarning, SummaryWellArchitected: shared.StatusWarning}},
		{"critical dr fails", map[string]string{
			DRReportFile:           criticalArchitecture,
			ArchitectureReportFile: passingArchitecture,
		}, shared.StatusFailed, map[string]string{SummaryDR: shared.StatusFailed, SummaryArchitecture: shared.StatusPassed}},
		{"unreadable architecture is an error, not a failure", map[string]string{ArchitectureReportFile: "{"}, shared.StatusPassed,
			map[string]string{SummaryArchitecture: shared.StatusError}},
		{"unreadable dr report is skipped", map[string]string{DRReportFile: "not json"}, shared.StatusPassed, map[string]string{}},
		{"checkov high failure", map[string]string{SecurityScanReportFile: checkovFailed}, shared.StatusFailed,
			map[string]string{SummarySecurityScan: shared.StatusFailed}},
		{"checkov list with unknown severity", map[string]string{SecurityScanReportFile: checkovLowOnly}, shared.StatusWarning,
			map[string]string{SummarySecurityScan: shared.StatusWarning}},
		{"non checkov security report is ignored", map[string]string{SecurityScanReportFile: `{"tool": "other"}`}, shared.StatusPassed, map[string]string{}},
		{"empty reports are errors", map[string]string{
			ArchitectureReportFile:    `{}`,
			WellArchitectedReportFile: `null`,
			SecurityScanReportFile:    `[]`,
		}, shared.StatusPassed, map[string]string{
			SummaryArchitecture:    shared.StatusError,
			SummaryWellArchitected: shared.StatusError,
			SummarySecurityScan:    shared.StatusError,
		}},
		{"empty dr report is skipped", map[string]string{DRReportFile: `{}`}, shared.StatusPassed, map[string]string{}},
		{"missing overall passed counts as passed", map[string]string{ArchitectureReportFile: `{"components": {}}`}, shared.StatusPassed,
			map[string]string{SummaryArchitecture: shared.StatusPassed}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range test.files {
				writeFile(t, dir, name, content)
			}
			summary := Analyze(dir)
			assertion.Equal(test.expectedOverall, summary.OverallStatus)
			assertion.Len(summary.Reports, len(test.expectedReports))
			for name, status := range test.expectedReports {
				assertion.Equal(status, summary.Reports[name].Status, name)
			}
			assertion.Equal(test.expectedOverall == shared.StatusFailed, summary.Failed())
		})
	}
}

func TestAnalyzeIssueDetails(t *testing.T) {
	assertion := assert.New(t)

	dir := t.TempDir()
	writeFile(t, dir, SecurityScanReportFile, `[{"results": {"passed_checks": [{"check_name": "a"}, {"check_name": "b"}], "failed_checks": [{"check_name": "tags", "severity": null}]}}]`)
	writeFile(t, dir, WellArchitectedReportFile, `{"overall_status": "PASSED", "pillars": [{"pillar": "Cost Optimization", "issues": [{"severity": "LOW", "message": "tags", "status": "REVIEW_REQUIRED"}]}]}`)

	summary := Analyze(dir)
	assertion.Equal([]string{SummarySecurityScan, SummaryWellArchitected}, summary.Names())

	scan := summary.Reports[SummarySecurityScan]
	assertion.Equal(1, scan.IssuesCount)
	assertion.Equal(2, *scan.PassedCount)
	assertion.Equal(shared.SeverityUnknown, scan.Issues[0].Severity)
	assertion.Equal("Unknown", scan.Issues[0].Resource)
	assertion.False(scan.HasCritical)

	wellArchitected := summary.Reports[SummaryWellArchitected]
	assertion.Equal(shared.StatusPassed, wellArchitected.Status)
	assertion.Equal("Cost Optimization", wellArchitected.Issues[0].Pillar)
	assertion.False(wellArchitected.HasCritical)
}

func TestAnalyzeRoundTripsValidatorOutput(t *testing.T) {
	assertion := assert.New(t)

	dir := t.TempDir()
	_, err := WriteReport(dir, ArchitectureReportFile, ValidateArchitecture(planOf(vpc, securityGroup("ssh", ingress(22.0, "0.0.0.0/0")))))
	assertion.NoError(err)
	_, err = WriteReport(dir, WellArchitectedReportFile, RunWellArchitectedReview("dev"))
	assertion.NoError(err)

	summary := Analyze(dir)
	assertion.Equal(shared.StatusFailed, summary.OverallStatus)
	assertion.True(summary.Reports[SummaryArchitecture].HasCritical)
	assertion.Equal(8, summary.Reports[SummaryWellArchitected].IssuesCount)
}
