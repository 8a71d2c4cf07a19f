package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/console"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/validation"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
)

const (
	safePlan = `{"planned_values":{"root_module":{"resources":[
		{"type":"aws_vpc","name":"main","provider_name":"registry.terraform.io/hashicorp/aws","values":{"cidr_block":"10.0.0.0/16"}},
		{"type":"aws_subnet","name":"a","provider_name":"registry.terraform.io/hashicorp/aws","values":{"availability_zone":"us-east-1a","map_public_ip_on_launch":false}},
		{"type":"aws_subnet","name":"b","provider_name":"registry.terraform.io/hashicorp/aws","values":{"availability_zone":"us-east-1b","map_public_ip_on_launch":false}}
	]}}}`
	sshOpenPlan = `{"planned_values":{"root_module":{"resources":[
		{"type":"aws_vpc","name":"main","provider_name":"registry.terraform.io/hashicorp/aws","values":{}},
		{"type":"aws_subnet","name":"a","provider_name":"registry.terraform.io/hashicorp/aws","values":{"availability_zone":"us-east-1a","map_public_ip_on_launch":false}},
		{"type":"aws_subnet","name":"b","provider_name":"registry.terraform.io/hashicorp/aws","values":{"availability_zone":"us-east-1b","map_public_ip_on_launch":false}},
		{"type":"aws_security_group","name":"bastion","provider_name":"registry.terraform.io/hashicorp/aws","values":{"name":"bastion","ingress":[{"to_port":22,"cidr_blocks":["0.0.0.0/0"]}]}}
	]}}}`
)

func newTestApp(args ...string) (*CLIApp, *bytes.Buffer) {
	pterm.DisableOutput()
	var buf bytes.Buffer
	app := NewCLIApp(console.NewConsoleWithWriter(&buf))
	app.DisableBanner()
	app.SetArgs(args)
	return app, &buf
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateArchitectureCommand(t *testing.T) {
	assertion := assert.New(t)

	tests := []struct {
		name        string
		plan        string
		expectedErr error
		passed      bool
	}{
		{"safe plan", safePlan, nil, true},
		{"ssh open to the internet", sshOpenPlan, ErrCriticalFindings, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dir := t.TempDir()
			planFile := writeFile(t, dir, "plan.json", test.plan)
			reportPath := filepath.Join(dir, "reports")

			app, _ := newTestApp("validate-architecture", "--plan-file", planFile, "--report-path", reportPath)
			err := app.Execute()
			if test.expectedErr != nil {
				assertion.ErrorIs(err, test.expectedErr)
			} else {
				assertion.NoError(err)
			}

			content, err := os.ReadFile(filepath.Join(reportPath, validation.ArchitectureReportFile))
			assertion.NoError(err)
			var report validation.Report
			assertion.NoError(json.Unmarshal(content, &report))
			assertion.Equal(test.passed, report.OverallPassed)
		})
	}
}

func TestValidateArchitectureCommandErrors(t *testing.T) {
	assertion := assert.New(t)

	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{"missing plan flag", []string{"validate-architecture", "--report-path", dir}},
		{"missing report flag", []string{"validate-architecture", "--plan-file", "plan.json"}},
		{"plan not found", []string{"validate-architecture", "--plan-file", filepath.Join(dir, "missing.json"), "--report-path", dir}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			app, _ := newTestApp(test.args...)
			err := app.Execute()
			assertion.Error(err)
			assertion.NotErrorIs(err, ErrCriticalFindings)
		})
	}
}

func TestValidateDRCommand(t *testing.T) {
	assertion := assert.New(t)

	dir := t.TempDir()
	planFile := writeFile(t, dir, "plan.json", safePlan)

	tests := []struct {
		name          string
		env           string
		expectReport  bool
		expectedCount int
	}{
		{"non dr environment is skipped", "dev", false, 0},
		// single provider gives a HIGH issue plus the prod RPO issue
		{"prod", "prod", true, 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			outputDir := filepath.Join(t.TempDir(), "out")
			app, _ := newTestApp("validate-dr", "--environment", test.env, "--plan-file", planFile, "--output-dir", outputDir)
			assertion.NoError(app.Execute())

			content, err := os.ReadFile(filepath.Join(outputDir, validation.DRReportFile))
			if !test.expectReport {
				assertion.Error(err)
				return
			}
			assertion.NoError(err)
			var report validation.Report
			assertion.NoError(json.Unmarshal(content, &report))
			assertion.Equal(test.expectedCount, report.IssueCount())
			assertion.False(report.HasCriticalIssues)
		})
	}

	app, _ := newTestApp("validate-dr")
	assertion.Error(app.Execute())
	app, _ = newTestApp("validate-dr", "--environment", "../prod")
	assertion.Error(app.Execute())
}

func TestWellArchitectedCommand(t *testing.T) {
	assertion := assert.New(t)

	outputDir := filepath.Join(t.TempDir(), "reports")
	app, _ := newTestApp("well-architected", "--environment", "staging", "--output-dir", outputDir)
	assertion.NoError(app.Execute())

	content, err := os.ReadFile(filepath.Join(outputDir, validation.WellArchitectedReportFile))
	assertion.NoError(err)
	var review validation.WellArchitectedReview
	assertion.NoError(json.Unmarshal(content, &review))
	assertion.Equal("AWS-CICD-Project-staging", review.Workload)
	assertion.Equal(shared.StatusReviewRequired, review.OverallStatus)
}

func TestAnalyzeCommand(t *testing.T) {
	assertion := assert.New(t)

	critical := `{"overall_passed":false,"has_critical_issues":true,"components":{"security":{"passed":false,"issues":[{"severity":"CRITICAL","message":"ssh"}]}}}`
	warning := `{"overall_passed":false,"components":{"networking":{"passed":false,"issues":[{"severity":"WARNING","message":"no vpc"}]}}}`

	tests := []struct {
		name           string
		report         string
		extraArgs      []string
		expectedErr    error
		expectedStatus string
	}{
		{"critical fails", critical, nil, ErrCriticalFindings, shared.StatusFailed},
		{"critical without fail on critical", critical, []string{"--fail-on-critical=false"}, nil, shared.StatusFailed},
		{"fail on critical as separate value", critical, []string{"--fail-on-critical", "false"}, nil, shared.StatusFailed},
		{"fail on critical is case insensitive", critical, []string{"--fail-on-critical", "TRUE"}, ErrCriticalFindings, shared.StatusFailed},
		{"anything but true disables failing", critical, []string{"--fail-on-critical", "no"}, nil, shared.StatusFailed},
		{"warning passes", warning, nil, nil, shared.StatusWarning},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, validation.ArchitectureReportFile, test.report)

			args := append([]string{"analyze", "--report-dir", dir}, test.extraArgs...)
			app, buf := newTestApp(args...)
			err := app.Execute()
			if test.expectedErr != nil {
				assertion.ErrorIs(err, test.expectedErr)
			} else {
				assertion.NoError(err)
			}
			assertion.Contains(buf.String(), validation.SummaryArchitecture)

			content, err := os.ReadFile(filepath.Join(dir, validation.DefaultSummaryFile))
			assertion.NoError(err)
			var summary validation.Summary
			assertion.NoError(json.Unmarshal(content, &summary))
			assertion.Equal(test.expectedStatus, summary.OverallStatus)
		})
	}
}

func TestConfigFileSuppliesFlags(t *testing.T) {
	assertion := assert.New(t)

	dir := t.TempDir()
	writeFile(t, dir, validation.ArchitectureReportFile, `{"overall_passed":false,"has_critical_issues":true,"components":{}}`)
	configFile := writeFile(t, dir, "infratest.yaml", "report_dir: "+dir+"\noutput_file: summary.json\nfail_on_critical: false\n")

	app, _ := newTestApp("analyze", "-C", configFile)
	assertion.NoError(app.Execute())
	_, err := os.Stat(filepath.Join(dir, "summary.json"))
	assertion.NoError(err)

	// flags on the command line win over the config file
	app, _ = newTestApp("analyze", "-C", configFile, "--fail-on-critical=true")
	assertion.ErrorIs(app.Execute(), ErrCriticalFindings)

	app, _ = newTestApp("analyze", "-C", filepath.Join(dir, "infratest.ini"))
	assertion.Error(app.Execute())
}

func TestCommandsRejectStrayArguments(t *testing.T) {
	assertion := assert.New(t)

	dir := t.TempDir()
	for _, args := range [][]string{
		{"analyze", "--report-dir", dir, "false"},
		{"validate-architecture", "--plan-file", "plan.json", "--report-path", dir, "extra"},
		{"validate-dr", "--environment", "prod", "extra"},
		{"well-architected", "--environment", "prod", "extra"},
	} {
		app, _ := newTestApp(args...)
		err := app.Execute()
		assertion.Error(err, args[0])
		assertion.Contains(err.Error(), "unknown command", args[0])
	}
	_, err := os.Stat(filepath.Join(dir, validation.DefaultSummaryFile))
	assertion.True(os.IsNotExist(err))
}
