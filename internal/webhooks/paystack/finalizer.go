package paystackwebhook

import (
	"context"
	"fmt"
	"sync"
	"time"

	pkgerrors "github.com/tiimbooktu/artmarket-backend/pkg/errors"
	"github.com/tiimbooktu/artmarket-backend/pkg/logger"
)

// Finalizer processes verified webhook events off the request path. The HTTP
// handler enqueues and acknowledges immediately; the worker finalizes with its
// own deadline so slow database work never stalls gateway delivery.
type Finalizer struct {
	svc     *Service
	queue   chan Event
	timeout time.Duration
	logg    *logger.Logger

	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewFinalizer builds the worker with a bounded queue.
func NewFinalizer(svc *Service, queueSize int, timeout time.Duration, logg *logger.Logger) (*Finalizer, error) {
	if svc == nil {
		return nil, fmt.Errorf("webhook service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Finalizer{
		svc:     svc,
		queue:   make(chan Event, queueSize),
		timeout: timeout,
		logg:    logg,
	}, nil
}

// Start launches the worker goroutine. Safe to call once.
func (f *Finalizer) Start() {
	f.startOnce.Do(func() {
		f.wg.Add(1)
		go f.run()
	})
}

// Enqueue hands a verified event to the worker. It fails fast when the queue
// is full so the handler can signal backpressure to the gateway.
func (f *Finalizer) Enqueue(event Event) error {
	select {
	case f.queue <- event:
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeDependency, "webhook queue is full")
	}
}

// Shutdown stops accepting events and drains the queue, bounded by ctx.
func (f *Finalizer) Shutdown(ctx context.Context) error {
	f.stopOnce.Do(func() {
		close(f.queue)
	})

	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Finalizer) run() {
	defer f.wg.Done()
	for event := range f.queue {
		ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
		if err := f.svc.HandleEvent(ctx, event); err != nil {
			f.logg.Error(f.logg.WithField(ctx, "event", event.Event), "webhook finalization failed", err)
		}
		cancel()
	}
}
