// Package runtime carries the process plumbing shared by the agent's
// services: a supervisor that runs them and a subscription queue used for
// event fan-out.
package runtime

import (
	"context"
	"sync"
)

type worker struct {
	name   string
	run    func(context.Context) error
	closeF func() error
}

// Supervisor runs a fixed set of named workers and tears them down in
// reverse registration order. The first worker error is kept and returned
// from Wait.
type Supervisor struct {
	mu      sync.Mutex
	workers []worker
	wg      sync.WaitGroup
	errOnce sync.Once
	err     error
}

func NewSupervisor() *Supervisor {
	return &Supervisor{}
}

// Add registers a worker. run blocks until the context is cancelled; closeF
// may be nil.
func (s *Supervisor) Add(name string, run func(context.Context) error, closeF func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, worker{name: name, run: run, closeF: closeF})
}

// Start launches all registered workers.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.workers {
		w := w
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := w.run(ctx); err != nil {
				s.errOnce.Do(func() { s.err = err })
			}
		}()
	}
	return nil
}

// Wait blocks until the context is cancelled, then closes the workers in
// reverse order and waits for all of them to return.
func (s *Supervisor) Wait(ctx context.Context) error {
	<-ctx.Done()
	for i := len(s.workers) - 1; i >= 0; i-- {
		if s.workers[i].closeF != nil {
			_ = s.workers[i].closeF()
		}
	}
	s.wg.Wait()
	return s.err
}
