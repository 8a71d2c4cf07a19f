package reporting

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
)

var (
	headerColor       = [3]int{40, 40, 40}
	headerTextColor   = [3]int{255, 255, 255}
	sectionTitleColor = [3]int{0, 0, 0}
	bodyTextColor     = [3]int{50, 50, 50}
	lineColor         = [3]int{200, 200, 200}
)

// RenderPDF renders a one page rollup of report.
func RenderPDF(report Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	drawSection := func(title string, content string) {
		if content == "" {
			return
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.MultiCell(190, 5, tr(content), "", "L", false)
		pdf.Ln(8)
	}

	pdf.AddPage()
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	title := fmt.Sprintf("  %s Report: %s (%s)", shared.Title(report.ReportType), report.Project, report.Environment)
	pdf.CellFormat(0, 12, tr(title), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Period: %s to %s", report.TimeRange.Start, report.TimeRange.End)), "", 1, "L", true, 0, "")
	pdf.Ln(10)

	summary := report.ExecutiveSummary
	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(healthColor(summary.HealthStatus))
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("%s (%.1f%%)", summary.HealthStatus, summary.OverallScore)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	drawSection("Executive Summary", summary.SummaryText)
	drawSection("Scores", fmt.Sprintf("Security: %.1f%%\nFunctionality: %.1f%%\nObservability: %.1f%%",
		summary.SecurityScore, summary.FunctionalityScore, summary.ObservabilityScore))
	drawSection("Security", securityText(report.sections))
	drawSection("Functionality", functionalityText(report.sections))
	drawSection("Architecture", architectureText(report.sections))
	drawSection("Observability", observabilityText(report.sections))

	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Generated by the infrastructure testing toolbox | %s", report.GeneratedAt)), "", 0, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error rendering PDF report: %w", err)
	}
	return buf.Bytes(), nil
}

func healthColor(health string) (int, int, int) {
	switch health {
	case HealthExcellent, HealthGood:
		return 0, 128, 0
	case HealthFair:
		return 200, 120, 0
	}
	return 192, 0, 0
}

func sectionErrorText(sections Sections, name string) string {
	return "Not available: " + sections.Errors[name]
}

func securityText(sections Sections) string {
	security := sections.Security
	if security == nil {
		return sectionErrorText(sections, SectionSecurity)
	}
	bySeverity := security.FindingsBySeverity
	return fmt.Sprintf("Reports: %d\nTotal findings: %d\nHigh: %d  Medium: %d  Low: %d  Informational: %d",
		security.ReportCount, security.TotalFindings, bySeverity.High, bySeverity.Medium, bySeverity.Low, bySeverity.Informational)
}

func functionalityText(sections Sections) string {
	functionality := sections.Functionality
	if functionality == nil {
		return sectionErrorText(sections, SectionFunctionality)
	}
	return fmt.Sprintf("Average success rate: %.1f%%\nLowest success rate: %.1f%%\nDatapoints: %d",
		functionality.AverageSuccessRate, functionality.LowestSuccessRate, functionality.DatapointCount)
}

func architectureText(sections Sections) string {
	architecture := sections.Architecture
	if architecture == nil {
		return sectionErrorText(sections, SectionArchitecture)
	}
	last := "none"
	if architecture.LastReportTimestamp != nil {
		last = *architecture.LastReportTimestamp
	}
	return fmt.Sprintf("Reports: %d\nLast report: %s", architecture.ReportCount, last)
}

func observabilityText(sections Sections) string {
	observability := sections.Observability
	if observability == nil {
		return sectionErrorText(sections, SectionObservability)
	}
	return fmt.Sprintf("Average response time: %.2fms\nP95 response time: %.2fms\nError rate: %.2f%%",
		observability.AverageResponseTime, observability.P95ResponseTime, observability.ErrorRate)
}
