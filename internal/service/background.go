package service

import (
	"context"
	"sync"
)

// waitBackground blocks until wg drains or ctx is done.
func waitBackground(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
