package worker

import (
	"bytes"
	"encoding/csv"
	"errors"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/s3api"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
)

type _CSVWorker struct {
	region       string              // region of the s3 api used for writes
	records      [][]string          // records written so far
	buffer       *bytes.Buffer       // csv output buffer
	csvWriter    *csv.Writer         // writes to buffer
	outputConfig OutputConfiguration // where the finished file goes
	objectKey    string              // s3 key written by the finalizer
	Worker
}

type CsvWorkerConfig struct {
	Region       string // region of the s3 api used for writes
	WorkerConfig WorkerConfig
	OutputConfig OutputConfiguration
}

type OutputConfiguration struct {
	Headers    []string // header row
	Filename   string   // file name, joined to Prefix for s3 and to Dir for local writes
	Prefix     string   // s3 key prefix
	Dir        string   // local directory, defaults to the working directory
	BucketName string
	WriteLocal bool
	Writes3    bool
}

type CsvWorkerRequest struct {
	CsvRecord []string
}

// create new csv worker
func NewCSVWorker(config CsvWorkerConfig) (*_CSVWorker, error) {
	if config.OutputConfig.Writes3 && !shared.IsValidAwsRegion(config.Region) {
		log.Printf("invalid region [%v]\n", config.Region)
		return nil, errors.New("invalid region")
	}

	// check for valid output configuration
	if !config.OutputConfig.WriteLocal && !config.OutputConfig.Writes3 {
		return nil, errors.New("invalid output configuration. writing to S3 & local file system set to false")
	}
	if config.OutputConfig.Writes3 && config.OutputConfig.BucketName == "" {
		return nil, errors.New("invalid output configuration. bucket name is empty")
	}
	if config.OutputConfig.Filename == "" {
		return nil, errors.New("invalid output configuration. filename is empty")
	}
	if len(config.OutputConfig.Headers) == 0 {
		return nil, errors.New("invalid output configuration. header is empty")
	}

	buffer := new(bytes.Buffer)
	csvWriter := csv.NewWriter(buffer)
	if err := csvWriter.Write(config.OutputConfig.Headers); err != nil {
		return nil, err
	}

	worker, err := NewWorker(config.WorkerConfig)
	if err != nil {
		return nil, errors.New("invalid worker config : " + err.Error())
	}

	csvWorker := &_CSVWorker{
		region:       config.Region,
		records:      [][]string{},
		buffer:       buffer,
		csvWriter:    csvWriter,
		outputConfig: config.OutputConfig,
		objectKey:    path.Join(config.OutputConfig.Prefix, config.OutputConfig.Filename),
		Worker:       worker,
	}

	if err := worker.Start(csvWorker); err != nil {
		return nil, err
	}

	return csvWorker, nil
}

// ObjectKey is the s3 key the finished file is written to
func (csvWorker *_CSVWorker) ObjectKey() string {
	return csvWorker.objectKey
}

// RecordCount is the number of rows written, excluding the header
func (csvWorker *_CSVWorker) RecordCount() int {
	return len(csvWorker.records)
}

// handle requests
func (csvWorker *_CSVWorker) Handle(request interface{}) {
	req, ok := request.(CsvWorkerRequest)
	if !ok {
		csvWorker.ReportError(errors.New("type assertion failure. request is not type csv worker request"))
		return
	}
	csvWorker.records = append(csvWorker.records, req.CsvRecord)
	if err := csvWorker.csvWriter.Write(req.CsvRecord); err != nil {
		csvWorker.ReportError(err)
	}
}

// finalize processing
func (csvWorker *_CSVWorker) Finalize() {
	csvWorker.csvWriter.Flush()
	if err := csvWorker.csvWriter.Error(); err != nil {
		csvWorker.ReportError(err)
		return
	}
	finalBytes := csvWorker.buffer.Bytes()

	if csvWorker.outputConfig.WriteLocal {
		filename := filepath.Join(csvWorker.outputConfig.Dir, csvWorker.outputConfig.Filename)
		log.Printf("writing to file [%v]\n", filename)
		if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
			csvWorker.ReportError(err)
		} else if err := os.WriteFile(filename, finalBytes, 0o644); err != nil {
			log.Printf("error writing to file [%v]\n", err.Error())
			csvWorker.ReportError(err)
		} else {
			log.Printf("finished writing to file [%v]\n", filename)
		}
	}

	if csvWorker.outputConfig.Writes3 {
		log.Printf("writing to s3 [%v]\n", csvWorker.objectKey)
		s3Client, err := sdkapimgr.Get[s3api.S3Api](csvWorker.Apis(), csvWorker.region, sdkapimgr.S3Service)
		if err != nil {
			csvWorker.ReportError(err)
			return
		}
		err = s3api.PutBytes(csvWorker.Context(), s3Client, csvWorker.outputConfig.BucketName, csvWorker.objectKey, shared.ContentTypeCsv, finalBytes)
		if err != nil {
			log.Printf("error writing to s3 [%v]\n", err.Error())
			csvWorker.ReportError(err)
		}
	}
}
