package stsapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sts"
)

type StsApi interface {
	// get caller identity
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

type _StsSDKClient struct {
	stsClient *sts.Client
}

func NewStsSDKClient(client *sts.Client) StsApi {
	return &_StsSDKClient{
		stsClient: client,
	}
}

// get caller identity
func (c *_StsSDKClient) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return c.stsClient.GetCallerIdentity(ctx, params, optFns...)
}
