package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/config"
)

func testServer() *GracefulServer {
	cfg := &config.Config{Server: config.ServerConfig{ShutdownTimeout: 5 * time.Second}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewGracefulServer(&http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}, logger, cfg)
}

func TestShutdown_RunsEveryHook(t *testing.T) {
	gs := testServer()
	var ran atomic.Int32
	for range 3 {
		gs.RegisterShutdownHook(func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	require.NoError(t, gs.Shutdown(context.Background()))
	assert.Equal(t, int32(3), ran.Load())
}

func TestShutdown_ReturnsHookError(t *testing.T) {
	gs := testServer()
	errFlush := errors.New("flush failed")
	var ran atomic.Int32

	gs.RegisterShutdownHook(func(ctx context.Context) error { return errFlush })
	gs.RegisterShutdownHook(func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})

	err := gs.Shutdown(context.Background())
	assert.ErrorIs(t, err, errFlush)
	assert.Equal(t, int32(1), ran.Load(), "a failing hook does not stop the others")
}

func TestShutdown_Timeout(t *testing.T) {
	gs := testServer()
	gs.RegisterShutdownHook(func(ctx context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, gs.Shutdown(ctx), context.DeadlineExceeded)
}

func TestRun_StopsWhenContextIsDone(t *testing.T) {
	gs := testServer()
	hookRan := make(chan struct{})
	gs.RegisterShutdownHook(func(ctx context.Context) error {
		close(hookRan)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	<-hookRan
}

func TestRun_ListenFailure(t *testing.T) {
	gs := testServer()
	gs.server.Addr = "256.0.0.1:bad"

	err := gs.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server failed")
}
