package syntheticsapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/synthetics"
)

type SyntheticsApi interface {
	// get canary
	GetCanary(ctx context.Context, params *synthetics.GetCanaryInput, optFns ...func(*synthetics.Options)) (*synthetics.GetCanaryOutput, error)
	// get canary runs
	GetCanaryRuns(ctx context.Context, params *synthetics.GetCanaryRunsInput, optFns ...func(*synthetics.Options)) (*synthetics.GetCanaryRunsOutput, error)
	// start canary
	StartCanary(ctx context.Context, params *synthetics.StartCanaryInput, optFns ...func(*synthetics.Options)) (*synthetics.StartCanaryOutput, error)
}

type _SyntheticsSDKClient struct {
	syntheticsClient *synthetics.Client
}

func NewSyntheticsSDKClient(client *synthetics.Client) SyntheticsApi {
	return &_SyntheticsSDKClient{
		syntheticsClient: client,
	}
}

// get canary
func (c *_SyntheticsSDKClient) GetCanary(ctx context.Context, params *synthetics.GetCanaryInput, optFns ...func(*synthetics.Options)) (*synthetics.GetCanaryOutput, error) {
	return c.syntheticsClient.GetCanary(ctx, params, optFns...)
}

// get canary runs
func (c *_SyntheticsSDKClient) GetCanaryRuns(ctx context.Context, params *synthetics.GetCanaryRunsInput, optFns ...func(*synthetics.Options)) (*synthetics.GetCanaryRunsOutput, error) {
	return c.syntheticsClient.GetCanaryRuns(ctx, params, optFns...)
}

// start canary
func (c *_SyntheticsSDKClient) StartCanary(ctx context.Context, params *synthetics.StartCanaryInput, optFns ...func(*synthetics.Options)) (*synthetics.StartCanaryOutput, error) {
	return c.syntheticsClient.StartCanary(ctx, params, optFns...)
}
