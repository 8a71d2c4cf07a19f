package handlers

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sesTypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sesapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/snsapi"
)

// send a text email from and to address. the address must be verified in ses.
func sendEmail(ctx context.Context, sesClient sesapi.SesApi, address, subject, body string) error {
	_, err := sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(address),
		Destination: &sesTypes.Destination{
			ToAddresses: []string{address},
		},
		Message: &sesTypes.Message{
			Subject: &sesTypes.Content{Data: aws.String(subject)},
			Body: &sesTypes.Body{
				Text: &sesTypes.Content{Data: aws.String(body)},
			},
		},
	})
	return err
}

// publish a json encoded message
func publishJSON(ctx context.Context, snsClient snsapi.SnsApi, topicArn, subject string, message interface{}) error {
	content, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return publish(ctx, snsClient, topicArn, subject, string(content))
}

func publish(ctx context.Context, snsClient snsapi.SnsApi, topicArn, subject, message string) error {
	_, err := snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	return err
}
