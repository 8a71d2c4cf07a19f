package handlers

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/worker"
)

// send requests through a metric worker for namespace. returns the number of
// published datums and the errors the worker reported.
func publishMetrics(ctx context.Context, apiMgr sdkapimgr.SdkApiMgr, region, namespace string, requests []worker.MetricWorkerRequest) (int, []error) {
	requestChan := make(chan interface{}, len(requests))
	errorChan := make(chan error, 1)
	wg := new(sync.WaitGroup)
	collector := worker.NewErrorCollector(errorChan)

	metricWorker, err := worker.NewMetricWorker(worker.MetricWorkerConfig{
		Region:    region,
		Namespace: namespace,
		WorkerConfig: worker.WorkerConfig{
			Ctx:          ctx,
			Id:           fmt.Sprintf("metrics-%s", namespace),
			Wg:           wg,
			RequestChan:  requestChan,
			ErrorChan:    errorChan,
			SdkClientMgr: apiMgr,
		},
	})
	if err != nil {
		close(errorChan)
		collector.Wait()
		return 0, []error{err}
	}

	for _, request := range requests {
		requestChan <- request
	}
	close(requestChan)
	wg.Wait()
	close(errorChan)
	errs := collector.Wait()
	log.Printf("published [%d] of [%d] datums to [%s]\n", metricWorker.Published(), len(requests), namespace)
	return metricWorker.Published(), errs
}
