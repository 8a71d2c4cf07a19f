package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/guardduty"
	guardDutyTypes "github.com/aws/aws-sdk-go-v2/service/guardduty/types"
	"github.com/aws/aws-sdk-go-v2/service/inspector"
	inspectorTypes "github.com/aws/aws-sdk-go-v2/service/inspector/types"
)

var (
	TestAssessmentTemplateArn      = "arn:aws:inspector:us-east-1:012345678910:target/0-abc/template/0-def"
	TestErrorAssessmentTemplateArn = "arn:aws:inspector:us-east-1:012345678910:target/0-abc/template/0-err"
	TestAssessmentRunArn           = "arn:aws:inspector:us-east-1:012345678910:target/0-abc/template/0-def/run/0-123"
	TestErrorAssessmentRunArn      = "arn:aws:inspector:us-east-1:012345678910:target/0-abc/template/0-def/run/0-err"
	TestDetectorId                 = "12abc34d567e8fa901bc2d34e56789f0"
)

type MockInspectorApi struct {
	mu             sync.Mutex
	Findings       []inspectorTypes.Finding // returned by list and describe
	DescribeCalls  int
	StartedRunName []string
}

// start assessment run
func (m *MockInspectorApi) StartAssessmentRun(ctx context.Context, params *inspector.StartAssessmentRunInput, optFns ...func(*inspector.Options)) (*inspector.StartAssessmentRunOutput, error) {
	if aws.ToString(params.AssessmentTemplateArn) == TestErrorAssessmentTemplateArn {
		return nil, errors.New("access denied")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartedRunName = append(m.StartedRunName, aws.ToString(params.AssessmentRunName))
	return &inspector.StartAssessmentRunOutput{
		AssessmentRunArn: aws.String(TestAssessmentRunArn),
	}, nil
}

// list findings, a single page
func (m *MockInspectorApi) ListFindings(ctx context.Context, params *inspector.ListFindingsInput, optFns ...func(*inspector.Options)) (*inspector.ListFindingsOutput, error) {
	for _, runArn := range params.AssessmentRunArns {
		if runArn == TestErrorAssessmentRunArn {
			return nil, errors.New("no such entity")
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	arns := []string{}
	for _, finding := range m.Findings {
		arns = append(arns, aws.ToString(finding.Arn))
	}
	return &inspector.ListFindingsOutput{FindingArns: arns}, nil
}

// describe findings. the real api accepts at most 10 arns
func (m *MockInspectorApi) DescribeFindings(ctx context.Context, params *inspector.DescribeFindingsInput, optFns ...func(*inspector.Options)) (*inspector.DescribeFindingsOutput, error) {
	if len(params.FindingArns) == 0 || len(params.FindingArns) > 10 {
		return nil, errors.New("invalid input")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DescribeCalls++
	wanted := map[string]bool{}
	for _, arn := range params.FindingArns {
		wanted[arn] = true
	}
	findings := []inspectorTypes.Finding{}
	for _, finding := range m.Findings {
		if wanted[aws.ToString(finding.Arn)] {
			findings = append(findings, finding)
		}
	}
	return &inspector.DescribeFindingsOutput{Findings: findings}, nil
}

type MockGuardDutyApi struct {
	DetectorIds []string
	Findings    []guardDutyTypes.Finding
	ListErr     error
}

// list detectors
func (m *MockGuardDutyApi) ListDetectors(ctx context.Context, params *guardduty.ListDetectorsInput, optFns ...func(*guardduty.Options)) (*guardduty.ListDetectorsOutput, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return &guardduty.ListDetectorsOutput{DetectorIds: m.DetectorIds}, nil
}

// get findings
func (m *MockGuardDutyApi) GetFindings(ctx context.Context, params *guardduty.GetFindingsInput, optFns ...func(*guardduty.Options)) (*guardduty.GetFindingsOutput, error) {
	if aws.ToString(params.DetectorId) != TestDetectorId {
		return nil, errors.New("detector not found")
	}
	findings := []guardDutyTypes.Finding{}
	for _, finding := range m.Findings {
		for _, id := range params.FindingIds {
			if aws.ToString(finding.Id) == id {
				findings = append(findings, finding)
			}
		}
	}
	return &guardduty.GetFindingsOutput{Findings: findings}, nil
}
