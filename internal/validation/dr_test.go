package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/stretchr/testify/assert"
)

func TestValidateDR(t *testing.T) {
	assertion := assert.New(t)

	primary := Resource{Type: "aws_s3_bucket", ProviderName: "registry.terraform.io/hashicorp/aws"}
	secondary := Resource{Type: "aws_s3_bucket", ProviderName: "registry.terraform.io/hashicorp/aws.dr"}
	random := Resource{Type: "random_id", ProviderName: "registry.terraform.io/hashicorp/random"}

	tests := []struct {
		name                string
		env                 string
		plan                *Plan
		expectedMultiRegion []Issue
		expectedRpoRto      []Issue
	}{
		{"no plan in prod", "prod", nil,
			[]Issue{{Severity: shared.SeverityMedium, Message: "Unable to validate multi-region setup - no plan data available"}},
			[]Issue{{Severity: shared.SeverityMedium, Message: "Production environment should have cross-region replication configured for critical data stores"}}},
		{"single provider in dr", "dr", planOf(primary, random),
			[]Issue{{Severity: shared.SeverityHigh, Message: "DR architecture does not appear to be multi-region. Only found providers: registry.terraform.io/hashicorp/aws"}},
			[]Issue{{Severity: shared.SeverityMedium, Message: "DR environment should have automated failover mechanisms configured"}}},
		{"two providers in prod", "prod", planOf(primary, secondary),
			[]Issue{},
			[]Issue{{Severity: shared.SeverityMedium, Message: "Production environment should have cross-region replication configured for critical data stores"}}},
		{"two providers outside dr environments", "test", planOf(primary, secondary),
			[]Issue{},
			[]Issue{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			report := ValidateDR(test.env, test.plan)
			assertion.Equal(test.env, report.Environment)
			assertion.Equal(test.expectedMultiRegion, report.Components[ComponentMultiRegion].Issues)
			assertion.Equal(test.expectedRpoRto, report.Components[ComponentRpoRto].Issues)
			assertion.Equal(len(test.expectedMultiRegion) == 0 && len(test.expectedRpoRto) == 0, report.OverallPassed)
			assertion.False(report.HasCriticalIssues)
		})
	}
}

func TestIsDREnvironment(t *testing.T) {
	assertion := assert.New(t)
	for env, expected := range map[string]bool{"prod": true, "dr": true, "dev": false, "test": false, "": false} {
		assertion.Equal(expected, IsDREnvironment(env), env)
	}
}

func TestLoadDRPlan(t *testing.T) {
	assertion := assert.New(t)

	dir := t.TempDir()
	wd, wdErr := os.Getwd()
	assertion.NoError(wdErr)
	assertion.NoError(os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err := LoadDRPlan("prod", "")
	assertion.ErrorIs(err, ErrNoPlan)

	assertion.NoError(os.MkdirAll(filepath.Join("environments", "prod"), 0o755))
	assertion.NoError(os.WriteFile(filepath.Join("environments", "prod", "plan.json"), []byte(`{"planned_values":{"root_module":{"resources":[{"type":"aws_vpc"}]}}}`), 0o644))

	// a missing explicit plan falls back to the environment default
	plan, err := LoadDRPlan("prod", filepath.Join(dir, "missing.json"))
	assertion.NoError(err)
	assertion.Len(plan.Resources(), 1)

	explicit := filepath.Join(dir, "explicit.json")
	assertion.NoError(os.WriteFile(explicit, []byte(`{"planned_values":{"root_module":{"resources":[]}}}`), 0o644))
	plan, err = LoadDRPlan("prod", explicit)
	assertion.NoError(err)
	assertion.Empty(plan.Resources())
}
