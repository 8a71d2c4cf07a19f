package xrayapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/xray"
)

type XRayApi interface {
	// get trace summaries
	GetTraceSummaries(ctx context.Context, params *xray.GetTraceSummariesInput, optFns ...func(*xray.Options)) (*xray.GetTraceSummariesOutput, error)
	// get service graph
	GetServiceGraph(ctx context.Context, params *xray.GetServiceGraphInput, optFns ...func(*xray.Options)) (*xray.GetServiceGraphOutput, error)
}

type _XRaySDKClient struct {
	xrayClient *xray.Client
}

func NewXRaySDKClient(client *xray.Client) XRayApi {
	return &_XRaySDKClient{
		xrayClient: client,
	}
}

// get trace summaries
func (c *_XRaySDKClient) GetTraceSummaries(ctx context.Context, params *xray.GetTraceSummariesInput, optFns ...func(*xray.Options)) (*xray.GetTraceSummariesOutput, error) {
	return c.xrayClient.GetTraceSummaries(ctx, params, optFns...)
}

// get service graph
func (c *_XRaySDKClient) GetServiceGraph(ctx context.Context, params *xray.GetServiceGraphInput, optFns ...func(*xray.Options)) (*xray.GetServiceGraphOutput, error) {
	return c.xrayClient.GetServiceGraph(ctx, params, optFns...)
}
