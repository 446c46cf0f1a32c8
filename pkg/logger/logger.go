// pkg/logger/logger.go
package logger

import (
	"go.uber.org/zap"
)

type Sugared = *zap.SugaredLogger

// New returns a production logger for env "prod" and a development logger otherwise.
func New(env string) Sugared {
	var z *zap.Logger
	if env == "prod" {
		z, _ = zap.NewProduction()
	} else {
		z, _ = zap.NewDevelopment()
	}
	return z.Sugar().Named("absolute")
}

// Nop is handy for tests and for CLI commands run with --quiet.
func Nop() Sugared {
	return zap.NewNop().Sugar()
}
