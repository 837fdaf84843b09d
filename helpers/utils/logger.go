package utils

import "go.uber.org/zap"

// NewLogger builds the structured logger: JSON in production, console
// otherwise.
func NewLogger(production bool) (*zap.Logger, error) {
	var config zap.Config
	if production {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}
	return config.Build()
}
