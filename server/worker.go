package server

import (
	"errors"
	"fmt"

	"github.com/chazu/doml/vm"
)

// ErrWorkerStopped is returned by Do after Stop.
var ErrWorkerStopped = errors.New("worker stopped")

// request is a unit of work executed on the worker goroutine.
type request struct {
	fn   func(*vm.Registry) any
	done chan result
}

type result struct {
	value any
	err   error
}

// Worker serializes access to a binding registry through a single
// goroutine. Handlers that assemble documents or walk the registry go
// through it so registry swaps never interleave with a lookup.
type Worker struct {
	reg      *vm.Registry
	requests chan request
	quit     chan struct{}
}

// NewWorker creates a Worker and starts the processing goroutine.
func NewWorker(reg *vm.Registry) *Worker {
	w := &Worker{
		reg:      reg,
		requests: make(chan request, 64),
		quit:     make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Worker) loop() {
	for {
		select {
		case req := <-w.requests:
			req.done <- w.execute(req.fn)
		case <-w.quit:
			return
		}
	}
}

// execute runs fn, recovering from panics.
func (w *Worker) execute(fn func(*vm.Registry) any) result {
	var res result
	func() {
		defer func() {
			if r := recover(); r != nil {
				res.err = fmt.Errorf("%v", r)
			}
		}()
		res.value = fn(w.reg)
	}()
	return res
}

// Do submits fn for execution on the worker goroutine and blocks until it
// completes. A panic in fn is returned as an error.
func (w *Worker) Do(fn func(*vm.Registry) any) (any, error) {
	select {
	case <-w.quit:
		return nil, ErrWorkerStopped
	default:
	}

	req := request{
		fn:   fn,
		done: make(chan result, 1),
	}
	select {
	case w.requests <- req:
	case <-w.quit:
		return nil, ErrWorkerStopped
	}
	select {
	case res := <-req.done:
		return res.value, res.err
	case <-w.quit:
		return nil, ErrWorkerStopped
	}
}

// SetRegistry replaces the registry used by later requests.
func (w *Worker) SetRegistry(reg *vm.Registry) {
	w.Do(func(*vm.Registry) any {
		w.reg = reg
		return nil
	})
}

// Stop shuts down the worker goroutine.
func (w *Worker) Stop() {
	close(w.quit)
}
