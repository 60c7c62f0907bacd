package util

import (
	"context"
	"sync"
)

// Pool bounds how many submitted tasks run at once. Neither Go nor GoOrdered
// blocks the caller: waiting for a free slot happens in a goroutine.
type Pool struct {
	slots chan struct{}
	wg    sync.WaitGroup
}

// NewPool returns a pool running at most size tasks concurrently.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Go schedules fn on the pool.
func (p *Pool) Go(fn func()) {
	p.GoOrdered(fn)
}

// GoOrdered schedules fns as one batch. A single launcher takes slots in
// list order and starts each task before taking the next slot, so fns[i]
// always starts before fns[i+1].
func (p *Pool) GoOrdered(fns ...func()) {
	if len(fns) == 0 {
		return
	}
	p.wg.Add(len(fns))
	go func() {
		for _, fn := range fns {
			p.slots <- struct{}{}
			started := make(chan struct{})
			go func() {
				defer p.wg.Done()
				defer func() { <-p.slots }()
				close(started)
				fn()
			}()
			<-started
		}
	}()
}

// Size returns the concurrency limit.
func (p *Pool) Size() int {
	return cap(p.slots)
}

// Busy returns how many tasks are running right now.
func (p *Pool) Busy() int {
	return len(p.slots)
}

// Wait blocks until every submitted task has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// WaitContext is Wait bounded by ctx. It returns ctx.Err() if ctx ends first;
// the tasks keep running in that case.
func (p *Pool) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
