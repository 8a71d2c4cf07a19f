package wellarchitectedapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/wellarchitected"
)

type WellArchitectedApi interface {
	// list workloads
	ListWorkloads(ctx context.Context, params *wellarchitected.ListWorkloadsInput, optFns ...func(*wellarchitected.Options)) (*wellarchitected.ListWorkloadsOutput, error)
	// get lens review
	GetLensReview(ctx context.Context, params *wellarchitected.GetLensReviewInput, optFns ...func(*wellarchitected.Options)) (*wellarchitected.GetLensReviewOutput, error)
	// list lens review improvements
	ListLensReviewImprovements(ctx context.Context, params *wellarchitected.ListLensReviewImprovementsInput, optFns ...func(*wellarchitected.Options)) (*wellarchitected.ListLensReviewImprovementsOutput, error)
}

type _WellArchitectedSDKClient struct {
	waClient *wellarchitected.Client
}

func NewWellArchitectedSDKClient(client *wellarchitected.Client) WellArchitectedApi {
	return &_WellArchitectedSDKClient{
		waClient: client,
	}
}

// list workloads
func (c *_WellArchitectedSDKClient) ListWorkloads(ctx context.Context, params *wellarchitected.ListWorkloadsInput, optFns ...func(*wellarchitected.Options)) (*wellarchitected.ListWorkloadsOutput, error) {
	return c.waClient.ListWorkloads(ctx, params, optFns...)
}

// get lens review
func (c *_WellArchitectedSDKClient) GetLensReview(ctx context.Context, params *wellarchitected.GetLensReviewInput, optFns ...func(*wellarchitected.Options)) (*wellarchitected.GetLensReviewOutput, error) {
	return c.waClient.GetLensReview(ctx, params, optFns...)
}

// list lens review improvements
func (c *_WellArchitectedSDKClient) ListLensReviewImprovements(ctx context.Context, params *wellarchitected.ListLensReviewImprovementsInput, optFns ...func(*wellarchitected.Options)) (*wellarchitected.ListLensReviewImprovementsOutput, error) {
	return c.waClient.ListLensReviewImprovements(ctx, params, optFns...)
}
