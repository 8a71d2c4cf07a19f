package inspectorapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/inspector"
)

type InspectorApi interface {
	// start assessment run
	StartAssessmentRun(ctx context.Context, params *inspector.StartAssessmentRunInput, optFns ...func(*inspector.Options)) (*inspector.StartAssessmentRunOutput, error)
	// list findings
	ListFindings(ctx context.Context, params *inspector.ListFindingsInput, optFns ...func(*inspector.Options)) (*inspector.ListFindingsOutput, error)
	// describe findings
	DescribeFindings(ctx context.Context, params *inspector.DescribeFindingsInput, optFns ...func(*inspector.Options)) (*inspector.DescribeFindingsOutput, error)
}

type _InspectorSDKClient struct {
	inspectorClient *inspector.Client
}

func NewInspectorSDKClient(client *inspector.Client) InspectorApi {
	return &_InspectorSDKClient{
		inspectorClient: client,
	}
}

// start assessment run
func (c *_InspectorSDKClient) StartAssessmentRun(ctx context.Context, params *inspector.StartAssessmentRunInput, optFns ...func(*inspector.Options)) (*inspector.StartAssessmentRunOutput, error) {
	return c.inspectorClient.StartAssessmentRun(ctx, params, optFns...)
}

// list findings
func (c *_InspectorSDKClient) ListFindings(ctx context.Context, params *inspector.ListFindingsInput, optFns ...func(*inspector.Options)) (*inspector.ListFindingsOutput, error) {
	return c.inspectorClient.ListFindings(ctx, params, optFns...)
}

// describe findings
func (c *_InspectorSDKClient) DescribeFindings(ctx context.Context, params *inspector.DescribeFindingsInput, optFns ...func(*inspector.Options)) (*inspector.DescribeFindingsOutput, error) {
	return c.inspectorClient.DescribeFindings(ctx, params, optFns...)
}
