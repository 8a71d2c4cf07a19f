package cloudwatchapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
)

type CloudWatchApi interface {
	// get metric statistics
	GetMetricStatistics(ctx context.Context, params *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error)
	// put metric data
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

type _CloudWatchSDKClient struct {
	cwClient *cloudwatch.Client
}

func NewCloudWatchSDKClient(client *cloudwatch.Client) CloudWatchApi {
	return &_CloudWatchSDKClient{
		cwClient: client,
	}
}

// get metric statistics
func (c *_CloudWatchSDKClient) GetMetricStatistics(ctx context.Context, params *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error) {
	return c.cwClient.GetMetricStatistics(ctx, params, optFns...)
}

// put metric data
func (c *_CloudWatchSDKClient) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	return c.cwClient.PutMetricData(ctx, params, optFns...)
}
