package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/handlers"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
)

var trustedAdvisorResultsHandler handlers.Handler

func handler(ctx context.Context, event map[string]interface{}) (shared.Response, error) {
	log.Printf("incoming event : [%+v]\n", event)
	return trustedAdvisorResultsHandler.Handle(ctx, handlers.TrustedAdvisorResultsEvent{Payload: event})
}

func main() {
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(shared.Region()),
		config.WithRetryMode(aws.RetryModeStandard),
		config.WithRetryMaxAttempts(3))
	if err != nil {
		log.Fatalf("failed to load aws config : [%v]\n", err)
	}

	trustedAdvisorResultsHandler, err = handlers.NewTrustedAdvisorResultsHandler(cfg)
	if err != nil {
		log.Fatalf("error : [%v]\n", err)
	}

	lambda.Start(handler)
}
