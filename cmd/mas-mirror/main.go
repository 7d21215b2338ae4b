package main

import (
	"errors"
	"os"

	"github.com/ibm-mas/image-set-configs/internal/pkg/cli"
	"github.com/ibm-mas/image-set-configs/internal/pkg/errcode"
	clog "github.com/ibm-mas/image-set-configs/internal/pkg/log"
	"github.com/ibm-mas/image-set-configs/internal/pkg/runner"
)

func main() {
	if err := run(); err != nil {
		os.Exit(exitCodeFromError(err))
	}
}

func run() error {
	// Setup pluggable logger. Feel free to plugin your own logger just use
	// the PluggableLoggerInterface in the file internal/pkg/log/logger.go
	log := clog.New("info")
	rootCmd := cli.NewMirrorCmd(log)
	err := rootCmd.Execute()
	if err != nil {
		log.Error("[Executor] %v ", err)
	}
	return err
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	if e, ok := err.(cli.CodeExiter); ok {
		return e.ExitCode()
	}
	if errors.Is(err, runner.ErrToolNotFound) {
		return errcode.ToolNotFoundErr
	}
	return errcode.GenericErr
}
