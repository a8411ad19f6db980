// Package shutdown wires OS signals to context cancellation so the server
// and its background jobs stop together.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"careline/pkg/logger"
)

// NotifyContext returns a context canceled on SIGINT/SIGTERM. A second
// signal exits immediately.
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-ch:
			logger.Info("shutdown_signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
			return
		}
		<-ch
		logger.Warn("forced_exit")
		os.Exit(1)
	}()
	return ctx, cancel
}
