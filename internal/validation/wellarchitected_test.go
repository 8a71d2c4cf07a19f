package validation

import (
	"testing"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/stretchr/testify/assert"
)

func TestRunWellArchitectedReview(t *testing.T) {
	assertion := assert.New(t)

	review := RunWellArchitectedReview("prod")
	assertion.Equal("AWS-CICD-Project-prod", review.Workload)
	assertion.Equal("prod", review.Environment)
	assertion.Equal(shared.StatusReviewRequired, review.OverallStatus)

	expected := []struct {
		pillar string
		issues int
	}{
		{"Operational Excellence", 2},
		{"Security", 3},
		{"Reliability", 2},
		{"Performance Efficiency", 1},
		{"Cost Optimization", 2},
	}
	assertion.Len(review.Pillars, len(expected))
	for i, test := range expected {
		assertion.Equal(test.pillar, review.Pillars[i].Pillar)
		assertion.Len(review.Pillars[i].Issues, test.issues)
		assertion.True(review.Pillars[i].Passed)
	}

	// reviews do not share issue slices
	review.Pillars[0].Issues[0].Message = "changed"
	assertion.NotEqual("changed", RunWellArchitectedReview("dev").Pillars[0].Issues[0].Message)
}
