package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// NewNamed builds a zap logger for the given environment and names it after the service.
// Development gets the console encoder at debug level; everything else logs JSON at info.
func NewNamed(appEnv, name string) (*zap.Logger, error) {
	var cfg zap.Config
	if appEnv == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return log.Named(name).With(zap.String("env", appEnv)), nil
}
