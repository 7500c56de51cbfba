// rigviewer opens a rigged model in a window and plays procedural motions
// on it.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/rigscope/internal/config"
	"github.com/Faultbox/rigscope/internal/logger"
	"github.com/Faultbox/rigscope/internal/viewer"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== rigscope viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	v, err := viewer.New(cfg)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	switch path := config.ModelPath(); {
	case path != "":
		if err := v.Open(path); err != nil {
			logger.Error("cannot open model", zap.Error(err))
			v.OpenDemo()
		}
	default:
		// Nothing to show otherwise until a file is dropped or opened.
		v.OpenDemo()
	}

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
