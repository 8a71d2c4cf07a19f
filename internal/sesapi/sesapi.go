package sesapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ses"
)

type SesApi interface {
	// send email
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type _SesSDKClient struct {
	sesClient *ses.Client
}

func NewSesSDKClient(client *ses.Client) SesApi {
	return &_SesSDKClient{
		sesClient: client,
	}
}

// send email
func (c *_SesSDKClient) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return c.sesClient.SendEmail(ctx, params, optFns...)
}
