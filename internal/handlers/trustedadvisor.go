package handlers

import (
	"context"
	"log"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/support"
	supportTypes "github.com/aws/aws-sdk-go-v2/service/support/types"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/keyvaluestore"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/reporting"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/supportapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/worker"
)

const trustedAdvisorPoolSize = 5

// list every trusted advisor check in english
func describeTrustedAdvisorChecks(ctx context.Context, apiMgr sdkapimgr.SdkApiMgr) ([]supportTypes.TrustedAdvisorCheckDescription, error) {
	supportClient, err := sdkapimgr.Get[supportapi.SupportApi](apiMgr, shared.TrustedAdvisorRegion, sdkapimgr.SupportService)
	if err != nil {
		return nil, err
	}
	output, err := supportClient.DescribeTrustedAdvisorChecks(ctx, &support.DescribeTrustedAdvisorChecksInput{
		Language: aws.String("en"),
	})
	if err != nil {
		return nil, err
	}
	log.Printf("found [%d] trusted advisor checks\n", len(output.Checks))
	return output.Checks, nil
}

func checkInfo(check supportTypes.TrustedAdvisorCheckDescription) reporting.CheckInfo {
	return reporting.CheckInfo{
		Id:          aws.ToString(check.Id),
		Name:        aws.ToString(check.Name),
		Category:    aws.ToString(check.Category),
		Description: aws.ToString(check.Description),
	}
}

// run action for every check on a pool of check workers and return the outcomes
// in check order
func runTrustedAdvisorChecks(ctx context.Context, apiMgr sdkapimgr.SdkApiMgr, action worker.TrustedAdvisorAction, checks []supportTypes.TrustedAdvisorCheckDescription) ([]worker.TrustedAdvisorCheckOutcome, error) {
	outcomes := keyvaluestore.NewKeyValueStore[worker.TrustedAdvisorCheckOutcome]()
	requestChan := make(chan interface{}, trustedAdvisorPoolSize)
	errorChan := make(chan error, trustedAdvisorPoolSize)
	wg := new(sync.WaitGroup)

	collector := worker.NewErrorCollector(errorChan)
	_, err := worker.NewTrustedAdvisorCheckPool(trustedAdvisorPoolSize, worker.TrustedAdvisorCheckWorkerConfig{
		Outcomes: outcomes,
		WorkerConfig: worker.WorkerConfig{
			Ctx:          ctx,
			Id:           "trusted-advisor-" + string(action),
			Wg:           wg,
			RequestChan:  requestChan,
			ErrorChan:    errorChan,
			SdkClientMgr: apiMgr,
		},
	})
	if err != nil {
		close(requestChan)
		wg.Wait()
		close(errorChan)
		collector.Wait()
		return nil, err
	}

	for _, check := range checks {
		requestChan <- worker.TrustedAdvisorCheckRequest{Action: action, Check: check}
	}
	close(requestChan)
	wg.Wait()
	close(errorChan)
	collector.Wait()

	results := make([]worker.TrustedAdvisorCheckOutcome, 0, len(checks))
	for _, check := range checks {
		outcome, ok := outcomes.Get(worker.TrustedAdvisorOutcomeKey(aws.ToString(check.Id), action))
		if !ok {
			continue
		}
		results = append(results, outcome)
	}
	return results, nil
}
