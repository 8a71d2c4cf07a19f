package supportapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/support"
)

// SupportApi covers the trusted advisor operations of the support service. the
// support endpoint only exists in us-east-1.
type SupportApi interface {
	// describe trusted advisor checks
	DescribeTrustedAdvisorChecks(ctx context.Context, params *support.DescribeTrustedAdvisorChecksInput, optFns ...func(*support.Options)) (*support.DescribeTrustedAdvisorChecksOutput, error)
	// describe trusted advisor check result
	DescribeTrustedAdvisorCheckResult(ctx context.Context, params *support.DescribeTrustedAdvisorCheckResultInput, optFns ...func(*support.Options)) (*support.DescribeTrustedAdvisorCheckResultOutput, error)
	// refresh trusted advisor check
	RefreshTrustedAdvisorCheck(ctx context.Context, params *support.RefreshTrustedAdvisorCheckInput, optFns ...func(*support.Options)) (*support.RefreshTrustedAdvisorCheckOutput, error)
}

type _SupportSDKClient struct {
	supportClient *support.Client
}

func NewSupportSDKClient(client *support.Client) SupportApi {
	return &_SupportSDKClient{
		supportClient: client,
	}
}

// describe trusted advisor checks
func (c *_SupportSDKClient) DescribeTrustedAdvisorChecks(ctx context.Context, params *support.DescribeTrustedAdvisorChecksInput, optFns ...func(*support.Options)) (*support.DescribeTrustedAdvisorChecksOutput, error) {
	return c.supportClient.DescribeTrustedAdvisorChecks(ctx, params, optFns...)
}

// describe trusted advisor check result
func (c *_SupportSDKClient) DescribeTrustedAdvisorCheckResult(ctx context.Context, params *support.DescribeTrustedAdvisorCheckResultInput, optFns ...func(*support.Options)) (*support.DescribeTrustedAdvisorCheckResultOutput, error) {
	return c.supportClient.DescribeTrustedAdvisorCheckResult(ctx, params, optFns...)
}

// refresh trusted advisor check
func (c *_SupportSDKClient) RefreshTrustedAdvisorCheck(ctx context.Context, params *support.RefreshTrustedAdvisorCheckInput, optFns ...func(*support.Options)) (*support.RefreshTrustedAdvisorCheckOutput, error) {
	return c.supportClient.RefreshTrustedAdvisorCheck(ctx, params, optFns...)
}
