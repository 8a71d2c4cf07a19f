package reporting

import (
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	supportTypes "github.com/aws/aws-sdk-go-v2/service/support/types"
	"github.com/stretchr/testify/assert"
)

func TestCheckSummaryAdd(t *testing.T) {
	assertion := assert.New(t)

	summary := CheckSummary{}
	for _, status := range []string{"ok", "ok", "warning", "error", "not_available", "unknown"} {
		summary.Add(status)
	}
	assertion.Equal(CheckSummary{Ok: 2, Warning: 1, Error: 1, NotAvailable: 1}, summary)
}

func TestNewFlaggedCheck(t *testing.T) {
	assertion := assert.New(t)

	info := CheckInfo{Id: "Pfx0RwqBli", Name: "Security Groups - Unrestricted Access", Category: "security", Description: "Checks security groups"}
	check := NewFlaggedCheck(info, &supportTypes.TrustedAdvisorCheckResult{
		CheckId: aws.String(info.Id),
		Status:  aws.String("warning"),
		ResourcesSummary: &supportTypes.TrustedAdvisorResourcesSummary{
			ResourcesProcessed: 12,
			ResourcesFlagged:   2,
		},
		FlaggedResources: []supportTypes.TrustedAdvisorResourceDetail{
			{ResourceId: aws.String("sg-1"), Status: aws.String("warning"), Region: aws.String("us-east-1"), Metadata: aws.StringSlice([]string{"us-east-1", "web", "sg-1"})},
			{ResourceId: aws.String("sg-2"), Status: aws.String("error"), Metadata: aws.StringSlice([]string{"global"})},
		},
	})
	assertion.Equal("warning", check.Status)
	assertion.Equal(int64(2), check.ResourcesSummary.ResourcesFlagged)
	assertion.Len(check.FlaggedResources, 2)

	report := TrustedAdvisorReport{FlaggedChecks: []FlaggedCheck{check}}
	rows := report.FlaggedResourcesByRegion()
	assertion.Len(rows, 2)
	assertion.Equal([][]string{{"Pfx0RwqBli", "Security Groups - Unrestricted Access", "security", "sg-1", "warning", "us-east-1;web;sg-1"}}, rows["us-east-1"])
	assertion.Len(rows["global"], 1)
	assertion.Len(FlaggedResourceHeaders, len(rows["global"][0]))

	empty := NewFlaggedCheck(info, nil)
	assertion.NotNil(empty.FlaggedResources)
	assertion.Equal("", empty.Status)
}

func TestRenderTrustedAdvisorHTML(t *testing.T) {
	assertion := assert.New(t)

	report := TrustedAdvisorReport{
		Project:     "app",
		Environment: "prod",
		Timestamp:   "20240101-120000",
		Summary:     CheckSummary{Ok: 10, Warning: 2, Error: 1, NotAvailable: 3},
		FlaggedChecks: []FlaggedCheck{
			{CheckInfo: CheckInfo{Name: "Low Utilization EC2 Instances", Category: "cost_optimizing", Description: "idle <b>instances</b>"}, Status: "warning", ResourcesSummary: ResourcesSummary{ResourcesFlagged: 3, ResourcesProcessed: 40}},
			{CheckInfo: CheckInfo{Name: "Security Groups", Category: "security"}, Status: "error", ResourcesSummary: ResourcesSummary{ResourcesFlagged: 1, ResourcesProcessed: 8}},
			{CheckInfo: CheckInfo{Name: "Uncategorized"}, Status: "not_available"},
		},
	}

	content, err := RenderTrustedAdvisorHTML(report)
	assertion.NoError(err)
	html := string(content)
	assertion.Contains(html, "<title>Trusted Advisor Results - app (prod)</title>")
	assertion.Contains(html, "<h3>OK</h3><p>10</p>")
	assertion.Contains(html, "<h3>Not Available</h3><p>3</p>")
	assertion.Contains(html, "<td>WARNING</td><td>3 / 40</td>")
	assertion.Contains(html, "<td>ERROR</td><td>1 / 8</td>")
	assertion.Contains(html, "<h3>Other</h3>")
	// descriptions are escaped
	assertion.Contains(html, "idle &lt;b&gt;instances&lt;/b&gt;")
	// categories are sorted
	assertion.True(strings.Index(html, "<h3>cost_optimizing</h3>") < strings.Index(html, "<h3>security</h3>"))
}
