package findings

import (
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	inspectorTypes "github.com/aws/aws-sdk-go-v2/service/inspector/types"
	"github.com/stretchr/testify/assert"
)

func inspectorFinding(id int, severity inspectorTypes.Severity) inspectorTypes.Finding {
	return inspectorTypes.Finding{
		Arn:            aws.String(fmt.Sprintf("arn:aws:inspector:us-east-1:012345678910:finding/%d", id)),
		Title:          aws.String(fmt.Sprintf("finding %d", id)),
		Description:    aws.String("description"),
		Severity:       severity,
		Recommendation: aws.String("patch the host"),
	}
}

func TestNewInspectorReport(t *testing.T) {
	assertion := assert.New(t)

	findings := []inspectorTypes.Finding{
		inspectorFinding(1, inspectorTypes.SeverityHigh),
		inspectorFinding(2, inspectorTypes.SeverityMedium),
		inspectorFinding(3, inspectorTypes.SeverityMedium),
		inspectorFinding(4, inspectorTypes.SeverityLow),
		inspectorFinding(5, inspectorTypes.SeverityInformational),
		inspectorFinding(6, inspectorTypes.SeverityUndefined),
	}
	report := NewInspectorReport("run-arn", "20240101-120000", "app", "dev", 6, findings)

	assertion.Equal(6, report.FindingsCount)
	assertion.Len(report.Findings, 6)
	assertion.Equal(SeveritySummary{High: 1, Medium: 2, Low: 1, Informational: 1}, report.SeveritySummary)
	assertion.Equal(5, report.SeveritySummary.Total())
	assertion.True(report.SeveritySummary.Actionable())
	assertion.Equal("patch the host", report.Findings[0].RecommendedActions)

	empty := NewInspectorReport("run-arn", "ts", "app", "dev", 0, nil)
	assertion.NotNil(empty.Findings)
	assertion.False(empty.SeveritySummary.Actionable())
}

func TestChunk(t *testing.T) {
	assertion := assert.New(t)

	arns := make([]string, 23)
	for i := range arns {
		arns[i] = fmt.Sprintf("arn-%d", i)
	}
	tests := []struct {
		name          string
		input         []string
		size          int
		expectedSizes []int
	}{
		{"three chunks", arns, DescribeFindingsBatchSize, []int{10, 10, 3}},
		{"exact", arns[:10], DescribeFindingsBatchSize, []int{10}},
		{"empty", nil, DescribeFindingsBatchSize, []int{}},
		{"invalid size", arns, 0, nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			chunks := Chunk(test.input, test.size)
			if test.expectedSizes == nil {
				assertion.Nil(chunks)
				return
			}
			sizes := []int{}
			for _, chunk := range chunks {
				sizes = append(sizes, len(chunk))
			}
			assertion.Equal(test.expectedSizes, sizes)
		})
	}
}

func TestInspectorEmail(t *testing.T) {
	assertion := assert.New(t)

	findings := []inspectorTypes.Finding{inspectorFinding(0, inspectorTypes.SeverityMedium)}
	for i := 1; i <= 12; i++ {
		findings = append(findings, inspectorFinding(i, inspectorTypes.SeverityHigh))
	}
	report := NewInspectorReport("run-arn", "20240101-120000", "app", "prod", len(findings), findings)

	subject, body := InspectorEmail(report, "s3://bucket/key.json")
	assertion.Equal("Security Testing Report - 12 High, 1 Medium Findings", subject)
	assertion.Contains(body, "Security Testing Report - app (prod)")
	assertion.Contains(body, "- High: 12")
	assertion.Contains(body, "[High] finding 1\n")
	assertion.Contains(body, "[High] finding 10\n")
	// only ten titles, high findings first
	assertion.NotContains(body, "finding 11")
	assertion.NotContains(body, "[Medium] finding 0")
	assertion.Contains(body, "s3://bucket/key.json")
}
