package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/console"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/validation"
	"github.com/spf13/cobra"
)

func (app *CLIApp) newValidateArchitectureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate-architecture",
		Args:  cobra.NoArgs,
		Short: "Validate networking, security and availability zones of a terraform plan",
		RunE:  app.runValidateArchitecture,
	}
	cmd.Flags().String("plan-file", "", "Path to Terraform plan JSON file")
	cmd.Flags().String("report-path", "", "Path to output validation reports")
	return cmd
}

func (app *CLIApp) runValidateArchitecture(cmd *cobra.Command, args []string) error {
	planFile, err := requireFlag(cmd, "plan-file")
	if err != nil {
		return err
	}
	reportPath, err := requireFlag(cmd, "report-path")
	if err != nil {
		return err
	}

	plan, err := validation.LoadPlan(planFile)
	if err != nil {
		app.console.LogError("Failed to load plan file: %v", err)
		return err
	}

	app.console.LogInfo("Starting architecture validation...")
	report := validation.ValidateArchitecture(plan)
	return app.writeComponentReport(reportPath, validation.ArchitectureReportFile, report)
}

func (app *CLIApp) newValidateDRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate-dr",
		Args:  cobra.NoArgs,
		Short: "Validate multi-region and RPO/RTO readiness for prod and dr environments",
		RunE:  app.runValidateDR,
	}
	cmd.Flags().String("environment", "", "Environment name (prod or dr)")
	cmd.Flags().String("plan-file", "", "Path to Terraform plan JSON file (optional)")
	cmd.Flags().String("output-dir", validation.DefaultOutputDir, "Output directory for reports")
	return cmd
}

func (app *CLIApp) runValidateDR(cmd *cobra.Command, args []string) error {
	env, err := requireEnvironment(cmd)
	if err != nil {
		return err
	}
	planFile, _ := cmd.Flags().GetString("plan-file")
	outputDir, _ := cmd.Flags().GetString("output-dir")

	if !validation.IsDREnvironment(env) {
		app.console.LogInfo("Skipping DR validation for environment %s", env)
		return nil
	}

	plan, err := validation.LoadDRPlan(env, planFile)
	if err != nil {
		if !errors.Is(err, validation.ErrNoPlan) {
			return err
		}
		app.console.LogWarning("No plan file found, multi-region checks will be limited")
	}

	app.console.LogInfo("Starting DR architecture validation for %s...", env)
	report := validation.ValidateDR(env, plan)
	return app.writeComponentReport(outputDir, validation.DRReportFile, report)
}

// writeComponentReport writes report, prints its issues and maps critical issues to ErrCriticalFindings
func (app *CLIApp) writeComponentReport(dir, filename string, report validation.Report) error {
	path, err := validation.WriteReport(dir, filename, report)
	if err != nil {
		return err
	}
	app.console.LogInfo("Validation complete. Results written to %s", path)

	if rows := componentRows(report); len(rows) > 0 {
		app.console.PrintTable([]string{"Component", "Severity", "Message"}, rows)
	}

	if report.HasCriticalIssues {
		app.console.LogError("Validation found critical issues that must be addressed!")
		return ErrCriticalFindings
	}
	if !report.OverallPassed {
		app.console.LogWarning("Validation found issues that should be reviewed")
		return nil
	}
	app.console.LogSuccess("Validation passed")
	return nil
}

func componentRows(report validation.Report) [][]string {
	names := make([]string, 0, len(report.Components))
	for name := range report.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := [][]string{}
	for _, name := range names {
		for _, issue := range report.Components[name].Issues {
			rows = append(rows, []string{name, console.Severity(issue.Severity), issue.Message})
		}
	}
	return rows
}

func (app *CLIApp) newWellArchitectedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "well-architected",
		Args:  cobra.NoArgs,
		Short: "Run the static Well-Architected pillar review",
		RunE:  app.runWellArchitected,
	}
	cmd.Flags().String("environment", "", "Environment name (dev, test, prod, dr)")
	cmd.Flags().String("output-dir", validation.DefaultOutputDir, "Output directory for reports")
	return cmd
}

func (app *CLIApp) runWellArchitected(cmd *cobra.Command, args []string) error {
	env, err := requireEnvironment(cmd)
	if err != nil {
		return err
	}
	outputDir, _ := cmd.Flags().GetString("output-dir")

	app.console.LogInfo("Reviewing workload %s", validation.WorkloadName(env))
	review := validation.RunWellArchitectedReview(env)

	path, err := validation.WriteReport(outputDir, validation.WellArchitectedReportFile, review)
	if err != nil {
		return err
	}
	app.console.LogInfo("Review complete. Results written to %s", path)

	rows := [][]string{}
	for _, pillar := range review.Pillars {
		for _, issue := range pillar.Issues {
			rows = append(rows, []string{pillar.Pillar, console.Severity(issue.Severity), issue.Status, issue.Message})
		}
	}
	app.console.PrintTable([]string{"Pillar", "Severity", "Status", "Message"}, rows)

	// advisory only
	app.console.LogInfo("Overall status: %s", console.Severity(review.OverallStatus))
	return nil
}

func (app *CLIApp) newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Args:  cobra.NoArgs,
		Short: "Summarize validation reports and fail on critical issues",
		RunE:  app.runAnalyze,
	}
	cmd.Flags().String("report-dir", "", "Directory containing validation reports")
	cmd.Flags().String("fail-on-critical", "true", "Whether to fail on critical issues (true/false)")
	cmd.Flags().String("output-file", validation.DefaultSummaryFile, "Output file for summary, relative to the report directory")
	return cmd
}

func (app *CLIApp) runAnalyze(cmd *cobra.Command, args []string) error {
	reportDir, err := requireFlag(cmd, "report-dir")
	if err != nil {
		return err
	}
	failOnCriticalValue, _ := cmd.Flags().GetString("fail-on-critical")
	failOnCritical := strings.EqualFold(strings.TrimSpace(failOnCriticalValue), "true")
	outputFile, _ := cmd.Flags().GetString("output-file")

	status := app.console.Status(fmt.Sprintf("Analyzing reports in %s", reportDir))
	summary := validation.Analyze(reportDir)
	status.Stop()

	path, err := validation.WriteReport(reportDir, outputFile, summary)
	if err != nil {
		return err
	}
	app.console.LogInfo("Analysis complete. Summary written to %s", path)

	rows := [][]string{}
	for _, name := range summary.Names() {
		report := summary.Reports[name]
		rows = append(rows, []string{name, console.Severity(report.Status), fmt.Sprintf("%d", report.IssuesCount), fmt.Sprintf("%t", report.HasCritical)})
	}
	app.console.PrintTable([]string{"Report", "Status", "Issues", "Critical"}, rows)

	if summary.Failed() && failOnCritical {
		app.console.LogError("Validation failed with critical issues that must be addressed!")
		return ErrCriticalFindings
	}
	if summary.OverallStatus == shared.StatusWarning {
		app.console.LogWarning("Validation found issues that should be reviewed")
	}
	app.console.LogSuccess("Validation analysis completed successfully")
	return nil
}
