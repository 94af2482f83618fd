//go:build windows

package cmd

import (
	"context"
	"os"
	"os/signal"
)

func setupShutdownHandler() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
