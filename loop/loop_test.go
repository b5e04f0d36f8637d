package loop_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"fxl/loop"
)

func start(t *testing.T) (*loop.Loop, context.CancelFunc, <-chan error) {
	t.Helper()
	l := loop.New(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()
	return l, cancel, errc
}

func TestLoop_OrderAndDefer(t *testing.T) {
	l, cancel, errc := start(t)

	var got []string
	done := make(chan struct{})
	require.NoError(t, l.Post(func() {
		got = append(got, "a")
		l.Defer(func() {
			got = append(got, "a-deferred")
			l.Defer(func() { got = append(got, "a-deferred-2") })
		})
	}))
	require.NoError(t, l.Post(func() { got = append(got, "b") }))
	require.NoError(t, l.Post(func() { panic("boom") }))
	require.NoError(t, l.Post(func() { got = append(got, "c"); close(done) }))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("tasks did not run")
	}
	assert.Equal(t, []string{"a", "a-deferred", "a-deferred-2", "b", "c"}, got)
	assert.EqualValues(t, 6, l.Executed())

	cancel()
	assert.True(t, errors.Is(<-errc, context.Canceled))
	assert.ErrorIs(t, l.Post(func() {}), loop.ErrClosed)
}

func TestLoop_ConcurrentPost(t *testing.T) {
	l, cancel, errc := start(t)
	defer func() {
		cancel()
		<-errc
	}()

	const n = 200
	var wg sync.WaitGroup
	results := make(chan int, n)
	count := 0 // touched on loop goroutine only
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Post(func() {
				count++
				results <- i
			}))
		}()
	}
	wg.Wait()
	for range n {
		select {
		case <-results:
		case <-time.After(5 * time.Second):
			t.Fatal("missing results")
		}
	}
	final := make(chan int)
	require.NoError(t, l.Post(func() { final <- count }))
	assert.Equal(t, n, <-final)
}

func TestLoop_RunTwice(t *testing.T) {
	l, cancel, errc := start(t)
	defer func() {
		cancel()
		<-errc
	}()
	ready := make(chan struct{})
	require.NoError(t, l.Post(func() { close(ready) }))
	<-ready
	assert.Error(t, l.Run(context.Background()))
}
