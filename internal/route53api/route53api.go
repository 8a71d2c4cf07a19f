package route53api

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/route53"
)

type Route53Api interface {
	// list resource record sets
	ListResourceRecordSets(ctx context.Context, params *route53.ListResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error)
	// change resource record sets
	ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
	// get change
	GetChange(ctx context.Context, params *route53.GetChangeInput, optFns ...func(*route53.Options)) (*route53.GetChangeOutput, error)
}

type _Route53SDKClient struct {
	route53Client *route53.Client
}

func NewRoute53SDKClient(client *route53.Client) Route53Api {
	return &_Route53SDKClient{
		route53Client: client,
	}
}

// list resource record sets
func (c *_Route53SDKClient) ListResourceRecordSets(ctx context.Context, params *route53.ListResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error) {
	return c.route53Client.ListResourceRecordSets(ctx, params, optFns...)
}

// change resource record sets
func (c *_Route53SDKClient) ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
	return c.route53Client.ChangeResourceRecordSets(ctx, params, optFns...)
}

// get change
func (c *_Route53SDKClient) GetChange(ctx context.Context, params *route53.GetChangeInput, optFns ...func(*route53.Options)) (*route53.GetChangeOutput, error) {
	return c.route53Client.GetChange(ctx, params, optFns...)
}
