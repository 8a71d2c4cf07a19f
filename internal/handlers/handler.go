package handlers

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
)

// Handler is implemented by every lambda handler. an error is only returned
// when params is not the handler's event type, every other failure is a
// non 200 response.
type Handler interface {
	Handle(ctx context.Context, params interface{}) (shared.Response, error)
}

// build an api manager for the lambda's region with only the services it calls.
// every client runs under ASSUME_ROLE_ARN when it is set.
func newApiMgr(cfg aws.Config, services ...string) (sdkapimgr.SdkApiMgr, error) {
	roleArn := shared.GetEnv(shared.EnvAssumeRoleArn, "")
	if roleArn != "" {
		log.Printf("assuming role : [%s]\n", roleArn)
	}
	return sdkapimgr.InitAwsClientMgr(sdkapimgr.SDKApiMgrConfig{
		Cfg:      cfg,
		Services: services,
		RoleArn:  roleArn,
	})
}

// project and environment tag every report key
func projectAndEnvironment() (string, string) {
	return shared.GetEnv(shared.EnvProject, shared.DefaultProject), shared.GetEnv(shared.EnvEnvironment, shared.DefaultEnvironment)
}

// sleep for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
