package reporting

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	supportTypes "github.com/aws/aws-sdk-go-v2/service/support/types"
)

const (
	CheckStatusOk           = "ok"
	CheckStatusWarning      = "warning"
	CheckStatusError        = "error"
	CheckStatusNotAvailable = "not_available"
)

type CheckSummary struct {
	Ok           int `json:"ok"`
	Warning      int `json:"warning"`
	Error        int `json:"error"`
	NotAvailable int `json:"not_available"`
}

// Add counts status, statuses outside the summary are ignored
func (s *CheckSummary) Add(status string) {
	switch status {
	case CheckStatusOk:
		s.Ok++
	case CheckStatusWarning:
		s.Warning++
	case CheckStatusError:
		s.Error++
	case CheckStatusNotAvailable:
		s.NotAvailable++
	}
}

type CheckInfo struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type ResourcesSummary struct {
	ResourcesProcessed  int64 `json:"resourcesProcessed"`
	ResourcesFlagged    int64 `json:"resourcesFlagged"`
	ResourcesIgnored    int64 `json:"resourcesIgnored"`
	ResourcesSuppressed int64 `json:"resourcesSuppressed"`
}

type FlaggedResource struct {
	ResourceId string   `json:"resourceId"`
	Status     string   `json:"status"`
	Region     string   `json:"region,omitempty"`
	Metadata   []string `json:"metadata"`
}

type FlaggedCheck struct {
	CheckInfo
	Status           string            `json:"status"`
	ResourcesSummary ResourcesSummary  `json:"resourcesSummary"`
	FlaggedResources []FlaggedResource `json:"flaggedResources"`
}

type TrustedAdvisorReport struct {
	Project       string         `json:"project"`
	Environment   string         `json:"environment"`
	Timestamp     string         `json:"timestamp"`
	Summary       CheckSummary   `json:"summary"`
	FlaggedChecks []FlaggedCheck `json:"flaggedChecks"`
}

// NewFlaggedCheck copies the parts of a check result that end up in the report
func NewFlaggedCheck(info CheckInfo, result *supportTypes.TrustedAdvisorCheckResult) FlaggedCheck {
	check := FlaggedCheck{
		CheckInfo:        info,
		FlaggedResources: []FlaggedResource{},
	}
	if result == nil {
		return check
	}
	if result.Status != nil {
		check.Status = *result.Status
	}
	if summary := result.ResourcesSummary; summary != nil {
		check.ResourcesSummary = ResourcesSummary{
			ResourcesProcessed:  summary.ResourcesProcessed,
			ResourcesFlagged:    summary.ResourcesFlagged,
			ResourcesIgnored:    summary.ResourcesIgnored,
			ResourcesSuppressed: summary.ResourcesSuppressed,
		}
	}
	for _, resource := range result.FlaggedResources {
		flagged := FlaggedResource{Metadata: aws.ToStringSlice(resource.Metadata)}
		if resource.ResourceId != nil {
			flagged.ResourceId = *resource.ResourceId
		}
		if resource.Status != nil {
			flagged.Status = *resource.Status
		}
		if resource.Region != nil {
			flagged.Region = *resource.Region
		}
		check.FlaggedResources = append(check.FlaggedResources, flagged)
	}
	return check
}

// FlaggedResourcesByRegion groups csv rows of flagged resources by region.
// global resources land under "global".
func (r TrustedAdvisorReport) FlaggedResourcesByRegion() map[string][][]string {
	rows := map[string][][]string{}
	for _, check := range r.FlaggedChecks {
		for _, resource := range check.FlaggedResources {
			region := resource.Region
			if region == "" {
				region = "global"
			}
			rows[region] = append(rows[region], []string{
				check.Id,
				check.Name,
				check.Category,
				resource.ResourceId,
				resource.Status,
				strings.Join(resource.Metadata, ";"),
			})
		}
	}
	return rows
}

// FlaggedResourceHeaders are the csv headers of FlaggedResourcesByRegion rows
var FlaggedResourceHeaders = []string{"CheckId", "CheckName", "Category", "ResourceId", "Status", "Metadata"}

type categoryTable struct {
	Category string
	Checks   []FlaggedCheck
}

type trustedAdvisorPage struct {
	TrustedAdvisorReport
	Categories []categoryTable
}

var trustedAdvisorTemplate = template.Must(template.New("trusted-advisor").Funcs(template.FuncMap{
	"upper": strings.ToUpper,
	"ratio": func(summary ResourcesSummary) string {
		return fmt.Sprintf("%d / %d", summary.ResourcesFlagged, summary.ResourcesProcessed)
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Trusted Advisor Results - {{.Project}} ({{.Environment}})</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        h1, h2 { color: #0066cc; }
        .summary { display: flex; margin: 20px 0; }
        .summary-box { padding: 10px; margin: 10px; border-radius: 5px; min-width: 100px; text-align: center; }
        .ok { background-color: #dff0d8; color: #3c763d; }
        .warning { background-color: #fcf8e3; color: #8a6d3b; }
        .error { background-color: #f2dede; color: #a94442; }
        .not-available { background-color: #f5f5f5; color: #666; }
        table { border-collapse: collapse; width: 100%; }
        th, td { text-align: left; padding: 8px; border-bottom: 1px solid #ddd; }
        th { background-color: #f2f2f2; }
        tr:hover { background-color: #f5f5f5; }
    </style>
</head>
<body>
    <h1>Trusted Advisor Results</h1>
    <p><strong>Project:</strong> {{.Project}}</p>
    <p><strong>Environment:</strong> {{.Environment}}</p>
    <p><strong>Generated:</strong> {{.Timestamp}}</p>

    <h2>Summary</h2>
    <div class="summary">
        <div class="summary-box ok"><h3>OK</h3><p>{{.Summary.Ok}}</p></div>
        <div class="summary-box warning"><h3>Warning</h3><p>{{.Summary.Warning}}</p></div>
        <div class="summary-box error"><h3>Error</h3><p>{{.Summary.Error}}</p></div>
        <div class="summary-box not-available"><h3>Not Available</h3><p>{{.Summary.NotAvailable}}</p></div>
    </div>

    <h2>Flagged Checks</h2>
{{- range .Categories}}
    <h3>{{.Category}}</h3>
    <table>
        <tr><th>Check</th><th>Status</th><th>Resources</th><th>Description</th></tr>
{{- range .Checks}}
        <tr><td>{{.Name}}</td><td>{{upper .Status}}</td><td>{{ratio .ResourcesSummary}}</td><td>{{.Description}}</td></tr>
{{- end}}
    </table>
{{- end}}
</body>
</html>
`))

// RenderTrustedAdvisorHTML renders the html summary of report, one table per category.
func RenderTrustedAdvisorHTML(report TrustedAdvisorReport) ([]byte, error) {
	byCategory := map[string][]FlaggedCheck{}
	for _, check := range report.FlaggedChecks {
		category := check.Category
		if category == "" {
			category = "Other"
		}
		byCategory[category] = append(byCategory[category], check)
	}
	page := trustedAdvisorPage{TrustedAdvisorReport: report}
	for category, checks := range byCategory {
		page.Categories = append(page.Categories, categoryTable{Category: category, Checks: checks})
	}
	sort.Slice(page.Categories, func(i, j int) bool {
		return page.Categories[i].Category < page.Categories[j].Category
	})

	var buf bytes.Buffer
	if err := trustedAdvisorTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("failed to render trusted advisor summary: %w", err)
	}
	return buf.Bytes(), nil
}
