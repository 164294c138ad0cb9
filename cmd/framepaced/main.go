package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/framepace/framepace/common"
	"github.com/framepace/framepace/internal/config"
	"github.com/framepace/framepace/internal/daemon"
	"github.com/framepace/framepace/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Println("framepaced:", err.Error())
		os.Exit(1)
	}
}

func run() error {
	path := os.Getenv(common.ConfigPathEnv)
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(afero.NewOsFs(), path)
	if err != nil {
		return err
	}

	log := logger.NewStandardLogger(stdlog.Default())
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return daemon.New(log, cfg).Run(ctx)
}
