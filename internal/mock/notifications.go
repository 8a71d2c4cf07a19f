package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

var (
	TestEmailAddress      = "security-team@example.com"
	TestErrorEmailAddress = "bounce@example.com"
	TestTopicArn          = "arn:aws:sns:us-east-1:012345678910:infra-testing-reports"
	TestErrorTopicArn     = "arn:aws:sns:us-east-1:012345678910:error-topic"
)

type MockSesApi struct {
	mu   sync.Mutex
	Sent []*ses.SendEmailInput
}

// send email. fails when the source is TestErrorEmailAddress
func (m *MockSesApi) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	if aws.ToString(params.Source) == TestErrorEmailAddress {
		return nil, errors.New("message rejected")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, params)
	return &ses.SendEmailOutput{MessageId: aws.String("test-message-id")}, nil
}

func (m *MockSesApi) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

type MockSnsApi struct {
	mu        sync.Mutex
	Published []*sns.PublishInput
	FailFirst int // number of publishes that fail before any succeeds
}

// publish. fails when the topic is TestErrorTopicArn or while FailFirst is positive
func (m *MockSnsApi) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	if aws.ToString(params.TopicArn) == TestErrorTopicArn {
		return nil, errors.New("topic not found")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailFirst > 0 {
		m.FailFirst--
		return nil, errors.New("throttled")
	}
	m.Published = append(m.Published, params)
	return &sns.PublishOutput{MessageId: aws.String("test-message-id")}, nil
}

func (m *MockSnsApi) PublishedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Published)
}
