package logging

import (
	"os"

	"go.uber.org/zap"
)

// New builds the process logger. LOG_MODE=dev switches to the console
// encoder; anything else gets production JSON.
func New(service string) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if os.Getenv("LOG_MODE") == "dev" {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return l.With(zap.String("service", service))
}
