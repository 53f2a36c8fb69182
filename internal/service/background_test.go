package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitBackground(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, waitBackground(ctx, &wg), context.DeadlineExceeded)

	go func() {
		time.Sleep(10 * time.Millisecond)
		wg.Done()
	}()
	assert.NoError(t, waitBackground(context.Background(), &wg))
}
