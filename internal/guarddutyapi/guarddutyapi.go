package guarddutyapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/guardduty"
)

type GuardDutyApi interface {
	// list detectors
	ListDetectors(ctx context.Context, params *guardduty.ListDetectorsInput, optFns ...func(*guardduty.Options)) (*guardduty.ListDetectorsOutput, error)
	// get findings
	GetFindings(ctx context.Context, params *guardduty.GetFindingsInput, optFns ...func(*guardduty.Options)) (*guardduty.GetFindingsOutput, error)
}

type _GuardDutySDKClient struct {
	guardDutyClient *guardduty.Client
}

func NewGuardDutySDKClient(client *guardduty.Client) GuardDutyApi {
	return &_GuardDutySDKClient{
		guardDutyClient: client,
	}
}

// list detectors
func (c *_GuardDutySDKClient) ListDetectors(ctx context.Context, params *guardduty.ListDetectorsInput, optFns ...func(*guardduty.Options)) (*guardduty.ListDetectorsOutput, error) {
	return c.guardDutyClient.ListDetectors(ctx, params, optFns...)
}

// get findings
func (c *_GuardDutySDKClient) GetFindings(ctx context.Context, params *guardduty.GetFindingsInput, optFns ...func(*guardduty.Options)) (*guardduty.GetFindingsOutput, error) {
	return c.guardDutyClient.GetFindings(ctx, params, optFns...)
}
