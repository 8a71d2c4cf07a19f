package worker

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
)

var (
	ErrMissingId          = errors.New("worker id is required")
	ErrMissingWaitGroup   = errors.New("wait group is required")
	ErrMissingRequestChan = errors.New("request channel is required")
	ErrMissingErrorChan   = errors.New("error channel is required")
	ErrMissingApiMgr      = errors.New("sdk api manager is required")
	ErrAlreadyStarted     = errors.New("worker already started")
)

// Worker drains a request channel, possibly shared with other workers,
// until it is closed.
type Worker interface {
	// Start launches the receive loop. handler may also implement Finalizer.
	Start(handler RequestHandler) error
	// Wait blocks on the (possibly shared) wait group
	Wait()
	Id() string
	Context() context.Context
	Apis() sdkapimgr.SdkApiMgr
	// ReportError forwards err to the error channel
	ReportError(err error)
}

type RequestHandler interface {
	Handle(request interface{})
}

// Finalizer runs once after the request channel is closed and drained.
type Finalizer interface {
	Finalize()
}

type WorkerConfig struct {
	Ctx          context.Context
	Id           string
	Wg           *sync.WaitGroup
	RequestChan  chan interface{}
	ErrorChan    chan error
	SdkClientMgr sdkapimgr.SdkApiMgr
}

func (config WorkerConfig) validate() error {
	switch {
	case config.Id == "":
		return ErrMissingId
	case config.Wg == nil:
		return ErrMissingWaitGroup
	case config.RequestChan == nil:
		return ErrMissingRequestChan
	case config.ErrorChan == nil:
		return ErrMissingErrorChan
	case config.SdkClientMgr == nil:
		return ErrMissingApiMgr
	}
	return nil
}

type _Worker struct {
	config  WorkerConfig
	started bool
}

// NewWorker validates config. nothing is received until Start is called.
func NewWorker(config WorkerConfig) (Worker, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if config.Ctx == nil {
		log.Printf("worker [%v] has no context, using background\n", config.Id)
		config.Ctx = context.Background()
	}
	return &_Worker{config: config}, nil
}

func (w *_Worker) Start(handler RequestHandler) error {
	if w.started {
		return ErrAlreadyStarted
	}
	if handler == nil {
		return errors.New("request handler is required")
	}
	w.started = true
	finalizer, _ := handler.(Finalizer)

	w.config.Wg.Add(1)
	go func() {
		defer w.config.Wg.Done()
		handled := 0
		for request := range w.config.RequestChan {
			handler.Handle(request)
			handled++
		}
		log.Printf("worker [%v] drained [%v] requests\n", w.config.Id, handled)
		if finalizer != nil {
			finalizer.Finalize()
		}
	}()
	log.Printf("worker [%v] started\n", w.config.Id)
	return nil
}

func (w *_Worker) Wait() {
	w.config.Wg.Wait()
}

func (w *_Worker) Id() string {
	return w.config.Id
}

func (w *_Worker) Context() context.Context {
	return w.config.Ctx
}

func (w *_Worker) Apis() sdkapimgr.SdkApiMgr {
	return w.config.SdkClientMgr
}

func (w *_Worker) ReportError(err error) {
	w.config.ErrorChan <- err
}

// ErrorCollector drains an error channel in the background.
type ErrorCollector struct {
	wg     sync.WaitGroup
	mu     sync.Mutex
	errors []error
}

func NewErrorCollector(errorChan chan error) *ErrorCollector {
	collector := &ErrorCollector{}
	collector.wg.Add(1)
	go func() {
		defer collector.wg.Done()
		for err := range errorChan {
			log.Printf("worker error : [%v]\n", err)
			collector.mu.Lock()
			collector.errors = append(collector.errors, err)
			collector.mu.Unlock()
		}
	}()
	return collector
}

// Wait blocks until the drained channel is closed and returns every error seen.
func (c *ErrorCollector) Wait() []error {
	c.wg.Wait()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors
}
