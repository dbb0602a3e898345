package config

import "go.uber.org/zap"

// NewLogger returns a JSON production logger for production deployments and
// a human-readable development logger everywhere else.
func NewLogger(cfg Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
