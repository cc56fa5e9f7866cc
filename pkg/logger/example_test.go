package logger_test

import (
	"github.com/wonny/aegis-factor/pkg/config"
	"github.com/wonny/aegis-factor/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	log := logger.New(cfg)

	log.Debug("This won't appear (level is info)")
	log.Info("Pipeline started")
	log.Infof("Loaded %d fields", 4)
}

// Example_stage demonstrates stage-tagged structured logging
func Example_stage() {
	log := logger.New(&config.Config{Env: "production", LogLevel: "info", LogFormat: "json"})

	log.Stage("S4:Selector").WithFields(map[string]interface{}{
		"dates": 60,
		"top_k": 10,
	}).Info("Selection completed")
}
