package mock

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/wellarchitected"
	waTypes "github.com/aws/aws-sdk-go-v2/service/wellarchitected/types"
)

var (
	TestWorkloadId      = "abcdef0123456789abcdef0123456789"
	TestErrorWorkloadId = "errorf0123456789abcdef0123456789"
)

type MockWellArchitectedApi struct {
	Workloads    []waTypes.WorkloadSummary
	ListErr      error
	LensReview   *waTypes.LensReview
	Improvements map[string][]waTypes.ImprovementSummary // pillar id -> improvements
}

// list workloads, filtered by name prefix
func (m *MockWellArchitectedApi) ListWorkloads(ctx context.Context, params *wellarchitected.ListWorkloadsInput, optFns ...func(*wellarchitected.Options)) (*wellarchitected.ListWorkloadsOutput, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	prefix := aws.ToString(params.WorkloadNamePrefix)
	summaries := []waTypes.WorkloadSummary{}
	for _, workload := range m.Workloads {
		if strings.HasPrefix(aws.ToString(workload.WorkloadName), prefix) {
			summaries = append(summaries, workload)
		}
	}
	return &wellarchitected.ListWorkloadsOutput{WorkloadSummaries: summaries}, nil
}

// get lens review
func (m *MockWellArchitectedApi) GetLensReview(ctx context.Context, params *wellarchitected.GetLensReviewInput, optFns ...func(*wellarchitected.Options)) (*wellarchitected.GetLensReviewOutput, error) {
	if aws.ToString(params.WorkloadId) == TestErrorWorkloadId {
		return nil, errors.New("resource not found")
	}
	return &wellarchitected.GetLensReviewOutput{
		WorkloadId: params.WorkloadId,
		LensReview: m.LensReview,
	}, nil
}

// list lens review improvements for a pillar
func (m *MockWellArchitectedApi) ListLensReviewImprovements(ctx context.Context, params *wellarchitected.ListLensReviewImprovementsInput, optFns ...func(*wellarchitected.Options)) (*wellarchitected.ListLensReviewImprovementsOutput, error) {
	return &wellarchitected.ListLensReviewImprovementsOutput{
		WorkloadId:           params.WorkloadId,
		ImprovementSummaries: m.Improvements[aws.ToString(params.PillarId)],
	}, nil
}
