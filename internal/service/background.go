package service

import (
	"context"
	"sync"
)

// Background runs side effects off the request path and lets shutdown wait
// for the ones still in flight. The zero value is ready to use.
type Background struct {
	wg sync.WaitGroup
}

// Go runs f in a tracked goroutine
func (b *Background) Go(f func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		f()
	}()
}

// Wait blocks until every tracked goroutine has returned or ctx is done
func (b *Background) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
