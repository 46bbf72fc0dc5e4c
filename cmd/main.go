package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/saker-ai/tauri-agent/pkg/runtime"
)

func main() {
	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	agent, err := runtime.New(configPath)
	if err != nil {
		fallback, _ := zap.NewProduction()
		defer fallback.Sync()
		fallback.Fatal("failed to start agent", zap.Error(err))
	}
	logger := agent.Logger()
	defer logger.Sync()

	go func() {
		if err := agent.Run(); err != nil {
			logger.Fatal("agent stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := agent.Shutdown(ctx); err != nil {
		logger.Error("agent shutdown failed", zap.Error(err))
	}
}
