package lambdaapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

type LambdaApi interface {
	// invoke function
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

type _LambdaSDKClient struct {
	lambdaClient *lambda.Client
}

func NewLambdaSDKClient(client *lambda.Client) LambdaApi {
	return &_LambdaSDKClient{
		lambdaClient: client,
	}
}

// invoke function
func (c *_LambdaSDKClient) Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error) {
	return c.lambdaClient.Invoke(ctx, params, optFns...)
}
