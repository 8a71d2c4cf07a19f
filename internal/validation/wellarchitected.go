package validation

import "github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"

type PillarReview struct {
	Pillar string  `json:"pillar"`
	Issues []Issue `json:"issues"`
	Passed bool    `json:"passed"`
}

type WellArchitectedReview struct {
	Workload      string         `json:"workload"`
	Environment   string         `json:"environment"`
	OverallStatus string         `json:"overall_status"`
	Pillars       []PillarReview `json:"pillars"`
}

// WorkloadName is the workload reviewed for env
func WorkloadName(env string) string {
	return "AWS-CICD-Project-" + env
}

func reviewRequired(severity, message string) Issue {
	return Issue{Severity: severity, Message: message, Status: shared.StatusReviewRequired}
}

// pillar checks are advisory, pillars always pass
var pillarChecks = []PillarReview{
	{
		Pillar: "Operational Excellence",
		Issues: []Issue{
			{Severity: shared.SeverityInfo, Message: "CI/CD pipeline is properly configured for automated infrastructure deployment", Status: shared.StatusPassed},
			{Severity: shared.SeverityInfo, Message: "Ensure monitoring and observability are implemented", Status: shared.StatusRecommended},
		},
	},
	{
		Pillar: "Security",
		Issues: []Issue{
			reviewRequired(shared.SeverityHigh, "Validate IAM roles follow principle of least privilege"),
			reviewRequired(shared.SeverityMedium, "Verify proper network segmentation with security groups and NACLs"),
			reviewRequired(shared.SeverityHigh, "Ensure data encryption is enabled for sensitive resources"),
		},
	},
	{
		Pillar: "Reliability",
		Issues: []Issue{
			reviewRequired(shared.SeverityHigh, "Ensure resources are deployed across multiple Availability Zones"),
			reviewRequired(shared.SeverityMedium, "Verify backup and recovery mechanisms are in place"),
		},
	},
	{
		Pillar: "Performance Efficiency",
		Issues: []Issue{
			reviewRequired(shared.SeverityLow, "Validate instance types are appropriately sized for the workload"),
		},
	},
	{
		Pillar: "Cost Optimization",
		Issues: []Issue{
			reviewRequired(shared.SeverityLow, "Ensure resources have proper cost allocation tags"),
			reviewRequired(shared.SeverityMedium, "Review architecture for potential unused or over-provisioned resources"),
		},
	},
}

// RunWellArchitectedReview evaluates the static pillar checks for env.
func RunWellArchitectedReview(env string) WellArchitectedReview {
	review := WellArchitectedReview{
		Workload:      WorkloadName(env),
		Environment:   env,
		OverallStatus: shared.StatusPassed,
		Pillars:       make([]PillarReview, 0, len(pillarChecks)),
	}
	for _, check := range pillarChecks {
		pillar := PillarReview{
			Pillar: check.Pillar,
			Issues: append([]Issue{}, check.Issues...),
			Passed: true,
		}
		for _, issue := range pillar.Issues {
			if issue.Status == shared.StatusReviewRequired && isHighOrCritical(issue.Severity) {
				review.OverallStatus = shared.StatusReviewRequired
			}
		}
		review.Pillars = append(review.Pillars, pillar)
	}
	return review
}

func isHighOrCritical(severity string) bool {
	return severity == shared.SeverityHigh || severity == shared.SeverityCritical
}
