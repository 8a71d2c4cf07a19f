package reporting

import (
	"bytes"
	"log"
	"strings"
	"text/template"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
)

var summaryTemplate = template.Must(template.New("summary").Parse(`{{.Project}} ({{.Environment}}) {{.ReportType}} Report

Overall Health: {{.Health}} ({{printf "%.1f" .Overall}}%)

Security: {{printf "%.1f" .Security}}% - {{.TotalFindings}} findings ({{.High}} high, {{.Medium}} medium)

Functionality: {{printf "%.1f" .Functionality}}% - Average API success rate

Performance: Response Time: {{printf "%.2f" .AverageResponseTime}}ms (avg), {{printf "%.2f" .P95ResponseTime}}ms (p95)

Report Period: {{.Start}} to {{.End}}`))

type summaryData struct {
	Project             string
	Environment         string
	ReportType          string
	Health              string
	Overall             float64
	Security            float64
	TotalFindings       int
	High                int
	Medium              int
	Functionality       float64
	AverageResponseTime float64
	P95ResponseTime     float64
	Start               string
	End                 string
}

// SummaryText renders the plain text executive summary of report.
func SummaryText(report Report, summary ExecutiveSummary) string {
	data := summaryData{
		Project:       report.Project,
		Environment:   report.Environment,
		ReportType:    shared.Title(report.ReportType),
		Health:        summary.HealthStatus,
		Overall:       summary.OverallScore,
		Security:      summary.SecurityScore,
		Functionality: summary.FunctionalityScore,
		Start:         report.TimeRange.Start,
		End:           report.TimeRange.End,
	}
	if security := report.sections.Security; security != nil {
		data.TotalFindings = security.TotalFindings
		data.High = security.FindingsBySeverity.High
		data.Medium = security.FindingsBySeverity.Medium
	}
	if observability := report.sections.Observability; observability != nil {
		data.AverageResponseTime = observability.AverageResponseTime
		data.P95ResponseTime = observability.P95ResponseTime
	}

	var buf bytes.Buffer
	if err := summaryTemplate.Execute(&buf, data); err != nil {
		log.Printf("error rendering summary text : [%v]\n", err)
		return ""
	}
	return strings.TrimSpace(buf.String())
}
