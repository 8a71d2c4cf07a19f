package snsapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type SnsApi interface {
	// publish message to topic
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type _SnsSDKClient struct {
	snsClient *sns.Client
}

func NewSnsSDKClient(client *sns.Client) SnsApi {
	return &_SnsSDKClient{
		snsClient: client,
	}
}

// publish message to topic
func (c *_SnsSDKClient) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return c.snsClient.Publish(ctx, params, optFns...)
}
