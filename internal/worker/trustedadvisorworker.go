package worker

import (
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/support"
	supportTypes "github.com/aws/aws-sdk-go-v2/service/support/types"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/keyvaluestore"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/supportapi"
)

type TrustedAdvisorAction string

const (
	TrustedAdvisorRefresh        TrustedAdvisorAction = "refresh"
	TrustedAdvisorDescribeResult TrustedAdvisorAction = "describe-result"
)

// TrustedAdvisorCheckWorker refreshes checks or fetches their results. A pool of
// these workers shares one request channel and one outcome store.
type TrustedAdvisorCheckWorker struct {
	outcomes keyvaluestore.KeyValueStore[TrustedAdvisorCheckOutcome]
	Worker
}

type TrustedAdvisorCheckWorkerConfig struct {
	Outcomes     keyvaluestore.KeyValueStore[TrustedAdvisorCheckOutcome]
	WorkerConfig WorkerConfig
}

type TrustedAdvisorCheckRequest struct {
	Action TrustedAdvisorAction
	Check  supportTypes.TrustedAdvisorCheckDescription
}

type TrustedAdvisorCheckOutcome struct {
	Check         supportTypes.TrustedAdvisorCheckDescription
	Result        *supportTypes.TrustedAdvisorCheckResult // set for describe-result
	RefreshStatus string                                  // set for refresh
	Err           error
}

// TrustedAdvisorOutcomeKey is the outcome store key for a check and action
func TrustedAdvisorOutcomeKey(checkId string, action TrustedAdvisorAction) shared.Key {
	return shared.Key{
		PrimaryKey: checkId,
		SortKey:    string(action),
	}
}

func NewTrustedAdvisorCheckWorker(config TrustedAdvisorCheckWorkerConfig) (*TrustedAdvisorCheckWorker, error) {
	if config.Outcomes == nil {
		return nil, errors.New("outcome store is required")
	}
	worker, err := NewWorker(config.WorkerConfig)
	if err != nil {
		return nil, errors.New("invalid worker config: " + err.Error())
	}
	checkWorker := &TrustedAdvisorCheckWorker{
		outcomes: config.Outcomes,
		Worker:   worker,
	}
	if err := worker.Start(checkWorker); err != nil {
		return nil, err
	}
	return checkWorker, nil
}

// NewTrustedAdvisorCheckPool starts size workers sharing config's request channel
// and wait group. ids are suffixed with the worker index.
func NewTrustedAdvisorCheckPool(size int, config TrustedAdvisorCheckWorkerConfig) ([]*TrustedAdvisorCheckWorker, error) {
	if size <= 0 {
		return nil, errors.New("pool size must be positive")
	}
	baseId := config.WorkerConfig.Id
	pool := make([]*TrustedAdvisorCheckWorker, 0, size)
	for i := 0; i < size; i++ {
		config.WorkerConfig.Id = fmt.Sprintf("%s-%d", baseId, i)
		checkWorker, err := NewTrustedAdvisorCheckWorker(config)
		if err != nil {
			return nil, err
		}
		pool = append(pool, checkWorker)
	}
	return pool, nil
}

func (tw *TrustedAdvisorCheckWorker) Handle(params interface{}) {
	request, ok := params.(TrustedAdvisorCheckRequest)
	if !ok {
		tw.ReportError(errors.New("type assertion failure. request is not type trusted advisor check request"))
		return
	}
	checkId := aws.ToString(request.Check.Id)
	outcome := TrustedAdvisorCheckOutcome{Check: request.Check}
	key := TrustedAdvisorOutcomeKey(checkId, request.Action)

	supportClient, err := sdkapimgr.Get[supportapi.SupportApi](tw.Apis(), shared.TrustedAdvisorRegion, sdkapimgr.SupportService)
	if err != nil {
		outcome.Err = err
		tw.outcomes.Set(key, outcome)
		return
	}

	ctx := tw.Context()
	switch request.Action {
	case TrustedAdvisorRefresh:
		output, err := supportClient.RefreshTrustedAdvisorCheck(ctx, &support.RefreshTrustedAdvisorCheckInput{
			CheckId: aws.String(checkId),
		})
		if err != nil {
			log.Printf("error refreshing check [%s] : [%v]\n", checkId, err)
			outcome.Err = err
		} else if output.Status != nil {
			outcome.RefreshStatus = aws.ToString(output.Status.Status)
		}
	case TrustedAdvisorDescribeResult:
		output, err := supportClient.DescribeTrustedAdvisorCheckResult(ctx, &support.DescribeTrustedAdvisorCheckResultInput{
			CheckId:  aws.String(checkId),
			Language: aws.String("en"),
		})
		if err != nil {
			log.Printf("warning : error getting result for check [%s] : [%v]\n", checkId, err)
			outcome.Err = err
		} else {
			outcome.Result = output.Result
		}
	default:
		outcome.Err = errors.New("unknown trusted advisor action : " + string(request.Action))
	}
	tw.outcomes.Set(key, outcome)
}
