package validation

import (
	"fmt"
	"strconv"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
)

const (
	ComponentNetworking       = "networking"
	ComponentSecurity         = "security"
	ComponentHighAvailability = "high_availability"

	openCidr = "0.0.0.0/0"
	sshPort  = 22
)

// ValidateArchitecture checks a plan for networking, ingress and availability zone problems.
func ValidateArchitecture(plan *Plan) Report {
	report := Report{
		Components: map[string]ComponentResult{
			ComponentNetworking:       newComponentResult(validateNetworking(plan)),
			ComponentSecurity:         newComponentResult(validateSecurity(plan)),
			ComponentHighAvailability: newComponentResult(validateHighAvailability(plan)),
		},
	}
	report.finalize()
	return report
}

func validateNetworking(plan *Plan) []Issue {
	issues := []Issue{}
	if len(plan.ResourcesOfType("aws_vpc")) == 0 {
		return append(issues, Issue{
			Severity: shared.StatusWarning,
			Message:  "No VPC configuration found in the plan",
		})
	}

	privateSubnets := 0
	for _, subnet := range plan.ResourcesOfType("aws_subnet") {
		if !subnet.BoolValue("map_public_ip_on_launch") {
			privateSubnets++
		}
	}
	if privateSubnets == 0 {
		issues = append(issues, Issue{
			Severity: shared.SeverityHigh,
			Message:  "No private subnets defined in the architecture",
		})
	}
	return issues
}

func validateSecurity(plan *Plan) []Issue {
	issues := []Issue{}
	for _, securityGroup := range plan.ResourcesOfType("aws_security_group") {
		name := securityGroup.StringValue("name")
		if name == "" {
			name = "unknown"
		}
		for _, rawRule := range securityGroup.ListValue("ingress") {
			rule, ok := rawRule.(map[string]interface{})
			if !ok || !containsCidr(rule["cidr_blocks"], openCidr) {
				continue
			}
			port, hasPort := portValue(rule["to_port"])
			if hasPort && port == sshPort {
				issues = append(issues, Issue{
					Severity: shared.SeverityCritical,
					Message:  fmt.Sprintf("Security group %s allows SSH access from the internet", name),
				})
				continue
			}
			portText := "unknown"
			if hasPort {
				portText = strconv.Itoa(port)
			}
			issues = append(issues, Issue{
				Severity: shared.SeverityHigh,
				Message:  fmt.Sprintf("Security group %s allows access from the internet on port %s", name, portText),
			})
		}
	}
	return issues
}

func validateHighAvailability(plan *Plan) []Issue {
	zones := map[string]bool{}
	for _, subnet := range plan.ResourcesOfType("aws_subnet") {
		if zone := subnet.StringValue("availability_zone"); zone != "" {
			zones[zone] = true
		}
	}
	if len(zones) >= 2 {
		return []Issue{}
	}
	return []Issue{{
		Severity: shared.SeverityHigh,
		Message:  fmt.Sprintf("Architecture uses only %d Availability Zones. At least 2 are recommended for high availability.", len(zones)),
	}}
}

func containsCidr(raw interface{}, cidr string) bool {
	blocks, ok := raw.([]interface{})
	if !ok {
		return false
	}
	for _, block := range blocks {
		if value, ok := block.(string); ok && value == cidr {
			return true
		}
	}
	return false
}

// json numbers decode as float64
func portValue(raw interface{}) (int, bool) {
	switch value := raw.(type) {
	case float64:
		return int(value), true
	case int:
		return value, true
	case string:
		port, err := strconv.Atoi(value)
		return port, err == nil
	}
	return 0, false
}
