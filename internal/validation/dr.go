package validation

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
)

const (
	ComponentMultiRegion = "multi_region"
	ComponentRpoRto      = "rpo_rto"
)

var ErrNoPlan = errors.New("no plan file found")

// IsDREnvironment reports whether DR validation applies to env
func IsDREnvironment(env string) bool {
	return env == "prod" || env == "dr"
}

// LoadDRPlan loads planFile, falling back to environments/<env>/plan.json.
func LoadDRPlan(env, planFile string) (*Plan, error) {
	if planFile != "" {
		if _, err := os.Stat(planFile); err == nil {
			return LoadPlan(planFile)
		}
	}
	defaultPath := filepath.Join("environments", env, "plan.json")
	if _, err := os.Stat(defaultPath); err == nil {
		return LoadPlan(defaultPath)
	}
	return nil, ErrNoPlan
}

// ValidateDR checks multi-region coverage and the RPO/RTO expectations for env.
// plan may be nil.
func ValidateDR(env string, plan *Plan) Report {
	report := Report{
		Environment: env,
		Components: map[string]ComponentResult{
			ComponentMultiRegion: validateMultiRegion(plan),
			ComponentRpoRto:      newComponentResult(validateRpoRto(env)),
		},
	}
	report.finalize()
	return report
}

func validateMultiRegion(plan *Plan) ComponentResult {
	if plan == nil {
		return ComponentResult{
			Passed: false,
			Issues: []Issue{{
				Severity: shared.SeverityMedium,
				Message:  "Unable to validate multi-region setup - no plan data available",
			}},
		}
	}

	providers := map[string]bool{}
	for _, resource := range plan.Resources() {
		if strings.Contains(resource.ProviderName, "aws") {
			providers[resource.ProviderName] = true
		}
	}
	if len(providers) >= 2 {
		return newComponentResult(nil)
	}

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return newComponentResult([]Issue{{
		Severity: shared.SeverityHigh,
		Message:  "DR architecture does not appear to be multi-region. Only found providers: " + strings.Join(names, ", "),
	}})
}

// placeholder expectations until replication resources are inspected
func validateRpoRto(env string) []Issue {
	switch env {
	case "prod":
		return []Issue{{
			Severity: shared.SeverityMedium,
			Message:  "Production environment should have cross-region replication configured for critical data stores",
		}}
	case "dr":
		return []Issue{{
			Severity: shared.SeverityMedium,
			Message:  "DR environment should have automated failover mechanisms configured",
		}}
	}
	return nil
}
