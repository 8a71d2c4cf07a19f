package worker

import (
	"errors"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cloudwatchTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/cloudwatchapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
)

const DefaultMetricBatchSize = 20

// MetricWorker batches datums and publishes them to a single cloudwatch namespace.
type MetricWorker struct {
	maxBatchSize int
	region       string
	namespace    string
	batch        []cloudwatchTypes.MetricDatum
	published    int
	Worker
}

type MetricWorkerConfig struct {
	Region       string
	Namespace    string
	MaxBatchSize int // defaults to DefaultMetricBatchSize
	WorkerConfig WorkerConfig
}

type MetricWorkerRequest struct {
	Datum cloudwatchTypes.MetricDatum
}

// NewMetricRequest builds a request for a single datum with optional name/value dimension pairs.
func NewMetricRequest(name string, value float64, unit cloudwatchTypes.StandardUnit, dimensions ...string) MetricWorkerRequest {
	datum := cloudwatchTypes.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
	}
	for i := 0; i+1 < len(dimensions); i += 2 {
		datum.Dimensions = append(datum.Dimensions, cloudwatchTypes.Dimension{
			Name:  aws.String(dimensions[i]),
			Value: aws.String(dimensions[i+1]),
		})
	}
	return MetricWorkerRequest{Datum: datum}
}

func NewMetricWorker(config MetricWorkerConfig) (*MetricWorker, error) {
	if !shared.IsValidAwsRegion(config.Region) {
		log.Printf("invalid region [%v]\n", config.Region)
		return nil, errors.New("invalid region")
	}
	if strings.TrimSpace(config.Namespace) == "" {
		return nil, errors.New("namespace is required")
	}
	maxBatchSize := config.MaxBatchSize
	if maxBatchSize <= 0 {
		maxBatchSize = DefaultMetricBatchSize
	}

	worker, err := NewWorker(config.WorkerConfig)
	if err != nil {
		return nil, errors.New("invalid worker config: " + err.Error())
	}

	metricWorker := &MetricWorker{
		maxBatchSize: maxBatchSize,
		region:       config.Region,
		namespace:    config.Namespace,
		batch:        []cloudwatchTypes.MetricDatum{},
		Worker:       worker,
	}

	if err := worker.Start(metricWorker); err != nil {
		return nil, err
	}

	return metricWorker, nil
}

// Published is the number of datums cloudwatch accepted
func (mw *MetricWorker) Published() int {
	return mw.published
}

func (mw *MetricWorker) Handle(params interface{}) {
	request, ok := params.(MetricWorkerRequest)
	if !ok {
		mw.ReportError(errors.New("type assertion failure. request is not type metric worker request"))
		return
	}
	mw.batch = append(mw.batch, request.Datum)
	if len(mw.batch) >= mw.maxBatchSize {
		mw.flush()
	}
}

func (mw *MetricWorker) Finalize() {
	log.Printf("finalizing worker [%v], [%v] datums pending\n", mw.Id(), len(mw.batch))
	if len(mw.batch) > 0 {
		mw.flush()
	}
	log.Printf("worker [%v] published [%v] datums to [%v]\n", mw.Id(), mw.published, mw.namespace)
}

// send the current batch and reset it, whether or not the put succeeds
func (mw *MetricWorker) flush() {
	batch := mw.batch
	mw.batch = []cloudwatchTypes.MetricDatum{}

	cloudwatchClient, err := sdkapimgr.Get[cloudwatchapi.CloudWatchApi](mw.Apis(), mw.region, sdkapimgr.CloudWatchService)
	if err != nil {
		mw.ReportError(err)
		return
	}
	_, err = cloudwatchClient.PutMetricData(mw.Context(), &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(mw.namespace),
		MetricData: batch,
	})
	if err != nil {
		log.Printf("error publishing metrics to [%v] : [%v]\n", mw.namespace, err)
		mw.ReportError(err)
		return
	}
	mw.published += len(batch)
}
